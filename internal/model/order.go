// internal/model/order.go
package model

import "time"

// Order references its customer by id only; the customer is not required to exist.
type Order struct {
	ID         int       `db:"id" json:"id"`
	OrderRef   string    `db:"order_ref" json:"order_ref"`
	Product    string    `db:"product" json:"product"`
	Amount     float64   `db:"amount" json:"amount"`
	Date       time.Time `db:"order_date" json:"date"`
	CustomerID int       `db:"customer_id" json:"customer_id"`
}
