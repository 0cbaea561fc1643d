// internal/delivery/provider.go
package delivery

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/unclebandit/campaign-crm/internal/model"
)

const (
	DefaultSendRate = 0.9
	DefaultOpenRate = 0.3
)

// Outcome is what a provider reports for one customer.
type Outcome struct {
	Status model.DeliveryStatus
	Opened bool
}

// Provider sends a campaign message to one customer.
type Provider interface {
	Send(ctx context.Context, customer model.Customer) (Outcome, error)
}

// SimulatedProvider draws two independent Bernoulli outcomes per customer:
// SENT with probability SendRate, then opened with probability OpenRate.
// A failed send is never opened.
type SimulatedProvider struct {
	SendRate float64
	OpenRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedProvider returns an unseeded provider with the given rates.
func NewSimulatedProvider(sendRate, openRate float64) *SimulatedProvider {
	return NewSeededProvider(time.Now().UnixNano(), sendRate, openRate)
}

// NewSeededProvider returns a provider whose draws are reproducible.
func NewSeededProvider(seed int64, sendRate, openRate float64) *SimulatedProvider {
	return &SimulatedProvider{
		SendRate: sendRate,
		OpenRate: openRate,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (p *SimulatedProvider) Send(ctx context.Context, _ model.Customer) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rng.Float64() >= p.SendRate {
		return Outcome{Status: model.DeliveryFailed}, nil
	}
	return Outcome{Status: model.DeliverySent, Opened: p.rng.Float64() < p.OpenRate}, nil
}

var _ Provider = (*SimulatedProvider)(nil)
