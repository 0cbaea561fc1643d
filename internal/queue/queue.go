package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
)

// TopicCampaignEvents carries model.CampaignEvent payloads.
const TopicCampaignEvents = "campaign_events"

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers to subscribers in goroutines with retry
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	wg       sync.WaitGroup

	MaxRetries int
	Backoff    time.Duration
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Topic      string
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		job := JobPayload{
			Topic:      topic,
			Payload:    payload,
			MaxRetries: q.MaxRetries,
		}
		q.wg.Add(1)
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	defer q.wg.Done()

	log := logrus.WithField("topic", job.Topic)
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			log.Debug("job processed")
			return // ACK
		}

		job.RetryCount++
		log.WithError(err).Warnf("job failed (attempt %d/%d)", job.RetryCount, job.MaxRetries)

		if job.RetryCount > job.MaxRetries {
			log.Errorf("job permanently failed after %d retries", job.MaxRetries)
			return // No requeue
		}

		// Linear backoff before retry
		time.Sleep(time.Duration(job.RetryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every published job has finished, including retries.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}

// SummaryFunc computes the summary text of a stored campaign.
type SummaryFunc func(ctx context.Context, campaignID int) (string, error)

// DecodeCampaignEvent accepts the payload shapes the queues deliver: the
// event itself from the in-memory queue, raw JSON bodies from AMQP.
func DecodeCampaignEvent(payload any) (model.CampaignEvent, error) {
	var ev model.CampaignEvent
	switch p := payload.(type) {
	case model.CampaignEvent:
		return p, nil
	case *model.CampaignEvent:
		if p == nil {
			return ev, fmt.Errorf("nil campaign event")
		}
		return *p, nil
	case []byte:
		err := json.Unmarshal(p, &ev)
		return ev, err
	case json.RawMessage:
		err := json.Unmarshal(p, &ev)
		return ev, err
	default:
		return ev, fmt.Errorf("unexpected campaign event payload %T", payload)
	}
}

// StartCampaignEventSubscriber logs the summary of every created campaign.
// Malformed payloads and unknown campaigns are dropped; other summary
// failures are returned so the queue retries them.
func StartCampaignEventSubscriber(q Queue, summarize SummaryFunc) error {
	return q.Subscribe(TopicCampaignEvents, func(payload any) error {
		ev, err := DecodeCampaignEvent(payload)
		if err != nil {
			logrus.WithError(err).Warn("dropping malformed campaign event")
			return nil
		}
		if ev.Type != "" && ev.Type != model.EventCampaignCreated {
			return nil
		}

		log := logrus.WithFields(logrus.Fields{
			"event_id":       ev.EventID,
			"campaign_id":    ev.CampaignID,
			"audience_count": ev.AudienceCount,
		})

		summary, err := summarize(context.Background(), ev.CampaignID)
		if errors.Is(err, appErrors.ErrNotFound) {
			log.Warn("campaign of event not found")
			return nil
		}
		if err != nil {
			log.WithError(err).Warn("failed to summarize campaign")
			return err
		}

		log.WithField("summary", summary).Info("campaign created")
		return nil
	})
}
