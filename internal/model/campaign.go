// internal/model/campaign.go
package model

import "time"

type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "SENT"
	DeliveryFailed DeliveryStatus = "FAILED"
)

// Campaign is written once with its rules and logs and never updated.
// AudienceCount always equals len(Logs).
type Campaign struct {
	ID            int           `db:"id" json:"id"`
	Name          string        `db:"name" json:"name"`
	Objective     string        `db:"objective" json:"objective"`
	Rules         []Rule        `db:"-" json:"rules"`
	AudienceCount int           `db:"audience_count" json:"audience_count"`
	Logs          []DeliveryLog `db:"-" json:"logs"`
	CreatedBy     int           `db:"created_by" json:"created_by"`
	Creator       *UserRef      `db:"-" json:"creator,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// DeliveryLog is the simulated outcome for one customer of one campaign.
type DeliveryLog struct {
	CampaignID    int            `db:"campaign_id" json:"-"`
	CustomerID    int            `db:"customer_id" json:"customer_id"`
	CustomerName  string         `db:"customer_name" json:"customer_name,omitempty"`
	CustomerEmail string         `db:"customer_email" json:"customer_email,omitempty"`
	Status        DeliveryStatus `db:"status" json:"status"`
	Opened        bool           `db:"opened" json:"opened"`
}

type UserRef struct {
	ID    int    `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
