// internal/model/user.go
package model

import "time"

type User struct {
	ID        int       `db:"id" json:"id"`
	GoogleID  string    `db:"google_id" json:"-"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Picture   string    `db:"picture" json:"picture,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
