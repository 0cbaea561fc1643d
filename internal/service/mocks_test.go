package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/unclebandit/campaign-crm/internal/audience"
	"github.com/unclebandit/campaign-crm/internal/auth"
	"github.com/unclebandit/campaign-crm/internal/delivery"
	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
)

// --- Mock Repositories ---

func matches(c audience.Constraint, num float64, text string) bool {
	if c.Numeric {
		switch c.Op {
		case audience.OpEq:
			return num == c.Number
		case audience.OpNeq:
			return num != c.Number
		case audience.OpGt:
			return num > c.Number
		case audience.OpLt:
			return num < c.Number
		}
		return false
	}
	switch c.Op {
	case audience.OpEq:
		return text == c.Text
	case audience.OpNeq:
		return text != c.Text
	}
	return false
}

type MockCustomerRepo struct {
	customers []model.Customer
	insertErr error
}

func (m *MockCustomerRepo) GetByID(_ context.Context, id int) (*model.Customer, error) {
	for _, c := range m.customers {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockCustomerRepo) ListAll(_ context.Context) ([]model.Customer, error) {
	return append([]model.Customer{}, m.customers...), nil
}

func (m *MockCustomerRepo) BulkInsert(_ context.Context, customers []model.Customer) (int, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	for _, c := range customers {
		c.ID = len(m.customers) + 1
		m.customers = append(m.customers, c)
	}
	return len(customers), nil
}

func (m *MockCustomerRepo) FindMatching(_ context.Context, filter audience.CustomerFilter, restrictTo []int) ([]model.Customer, error) {
	var allowed map[int]bool
	if restrictTo != nil {
		allowed = map[int]bool{}
		for _, id := range restrictTo {
			allowed[id] = true
		}
	}

	out := []model.Customer{}
	for _, c := range m.customers {
		if allowed != nil && !allowed[c.ID] {
			continue
		}
		ok := true
		for field, cons := range filter {
			switch field {
			case audience.CustomerAge:
				ok = ok && matches(cons, c.Age, "")
			case audience.CustomerCity:
				ok = ok && matches(cons, 0, c.City)
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type MockOrderRepo struct {
	orders []model.Order
}

func (m *MockOrderRepo) ListAll(_ context.Context) ([]model.Order, error) {
	return append([]model.Order{}, m.orders...), nil
}

func (m *MockOrderRepo) BulkInsert(_ context.Context, orders []model.Order) (int, error) {
	for _, o := range orders {
		o.ID = len(m.orders) + 1
		if o.Date.IsZero() {
			o.Date = time.Now()
		}
		m.orders = append(m.orders, o)
	}
	return len(orders), nil
}

func (m *MockOrderRepo) CustomerIDsMatching(_ context.Context, filter audience.OrderFilter) ([]int, error) {
	seen := map[int]bool{}
	out := []int{}
	for _, o := range m.orders {
		ok := true
		for field, cons := range filter {
			switch field {
			case audience.OrderAmount:
				ok = ok && matches(cons, o.Amount, "")
			case audience.OrderProduct:
				ok = ok && matches(cons, 0, o.Product)
			}
		}
		if ok && !seen[o.CustomerID] {
			seen[o.CustomerID] = true
			out = append(out, o.CustomerID)
		}
	}
	sort.Ints(out)
	return out, nil
}

type MockCampaignRepo struct {
	mu        sync.Mutex
	campaigns []*model.Campaign
	createErr error
	getCalls  int
}

func (m *MockCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	if c.AudienceCount != len(c.Logs) {
		return errors.New("audience count mismatch")
	}
	c.ID = len(m.campaigns) + 1
	stored := *c
	stored.Logs = append([]model.DeliveryLog{}, c.Logs...)
	m.campaigns = append(m.campaigns, &stored)
	return nil
}

func (m *MockCampaignRepo) GetByID(_ context.Context, id int) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCalls++
	for _, c := range m.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, appErrors.NewCampaignNotFound(id)
}

func (m *MockCampaignRepo) ListCampaigns(_ context.Context, offset, limit int) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := append([]*model.Campaign{}, m.campaigns...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if limit <= 0 {
		return all, len(all), nil
	}
	if offset >= len(all) {
		return []*model.Campaign{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

type MockUserRepo struct {
	users []*model.User
	err   error
}

func (m *MockUserRepo) GetByID(_ context.Context, id int) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepo) FindOrCreateByGoogleID(_ context.Context, u *model.User) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, existing := range m.users {
		if existing.GoogleID == u.GoogleID {
			existing.Email, existing.Name = u.Email, u.Name
			return existing, nil
		}
	}
	created := *u
	created.ID = len(m.users) + 1
	m.users = append(m.users, &created)
	return &created, nil
}

// --- Collaborators ---

// scriptedProvider replays outcomes in order and then fails.
type scriptedProvider struct {
	outcomes []delivery.Outcome
	next     int
	err      error
}

func (p *scriptedProvider) Send(_ context.Context, _ model.Customer) (delivery.Outcome, error) {
	if p.err != nil {
		return delivery.Outcome{}, p.err
	}
	if p.next >= len(p.outcomes) {
		return delivery.Outcome{}, errors.New("script exhausted")
	}
	o := p.outcomes[p.next]
	p.next++
	return o, nil
}

type MockQueue struct {
	mu        sync.Mutex
	published []any
	err       error
}

func (q *MockQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, payload)
	return nil
}

func (q *MockQueue) Subscribe(topic string, handler func(payload any) error) error {
	return nil
}

type MockCache struct {
	entries map[int]string
	getErr  error
	sets    int
}

func (c *MockCache) Get(_ context.Context, id int) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	s, ok := c.entries[id]
	return s, ok, nil
}

func (c *MockCache) Set(_ context.Context, id int, summary string) error {
	if c.entries == nil {
		c.entries = map[int]string{}
	}
	c.entries[id] = summary
	c.sets++
	return nil
}

type MockIdentity struct {
	identity *auth.Identity
	err      error
}

func (m *MockIdentity) Verify(_ context.Context, _ string) (*auth.Identity, error) {
	return m.identity, m.err
}
