// Package metrics provides Prometheus metrics for the campaign CRM.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unclebandit/campaign-crm/internal/model"
)

var (
	// AudiencePreviewsTotal counts audience previews by outcome
	AudiencePreviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "audience",
			Name:      "previews_total",
			Help:      "Total number of audience previews by outcome",
		},
		[]string{"outcome"},
	)

	// CampaignsCreatedTotal counts persisted campaigns
	CampaignsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "campaign",
			Name:      "created_total",
			Help:      "Total number of campaigns created",
		},
	)

	// AudienceSize tracks the resolved audience size of created campaigns
	AudienceSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "crm",
			Subsystem: "campaign",
			Name:      "audience_size",
			Help:      "Resolved audience size of created campaigns",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// DeliveryOutcomesTotal counts simulated delivery outcomes
	DeliveryOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "delivery",
			Name:      "outcomes_total",
			Help:      "Total number of delivery outcomes by status and opened flag",
		},
		[]string{"status", "opened"},
	)

	// SummaryCacheTotal counts summary cache lookups by result
	SummaryCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "summary",
			Name:      "cache_lookups_total",
			Help:      "Summary cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// RecordPreview records one preview; err decides the outcome label.
func RecordPreview(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	AudiencePreviewsTotal.WithLabelValues(outcome).Inc()
}

// RecordCampaign records a committed campaign and each of its delivery outcomes.
func RecordCampaign(c *model.Campaign) {
	CampaignsCreatedTotal.Inc()
	AudienceSize.Observe(float64(c.AudienceCount))
	for _, l := range c.Logs {
		DeliveryOutcomesTotal.WithLabelValues(string(l.Status), strconv.FormatBool(l.Opened)).Inc()
	}
}
