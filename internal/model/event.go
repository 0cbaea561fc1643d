// internal/model/event.go
package model

import "time"

const EventCampaignCreated = "campaign.created"

// CampaignEvent is published after a campaign has been committed.
type CampaignEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	CampaignID    int       `json:"campaign_id"`
	AudienceCount int       `json:"audience_count"`
	CreatedBy     int       `json:"created_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}
