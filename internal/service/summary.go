package service

import (
	"fmt"
	"math"

	"github.com/unclebandit/campaign-crm/internal/model"
)

// Summary holds the delivery numbers of one campaign.
type Summary struct {
	Total        int `json:"total"`
	Delivered    int `json:"delivered"`
	DeliveredPct int `json:"delivered_pct"`
	Opened       int `json:"opened"`
	OpenPct      int `json:"open_pct"`
}

// Summarize is recomputed from the immutable logs on every call.
func Summarize(c *model.Campaign) Summary {
	s := Summary{Total: c.AudienceCount}
	for _, l := range c.Logs {
		if l.Status == model.DeliverySent {
			s.Delivered++
		}
		if l.Opened {
			s.Opened++
		}
	}
	s.DeliveredPct = percent(s.Delivered, s.Total)
	s.OpenPct = percent(s.Opened, s.Delivered)
	return s
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func (s Summary) Text() string {
	return fmt.Sprintf(
		"Your campaign reached %d users. %d messages were delivered successfully (%d%%). "+
			"Approximately %d%% of delivered messages (%d) were opened by customers.",
		s.Total, s.Delivered, s.DeliveredPct, s.OpenPct, s.Opened,
	)
}
