package audience

import (
	"context"
	"errors"

	"github.com/unclebandit/campaign-crm/internal/model"
)

// memStore evaluates filters over slices and counts the reads it serves.
type memStore struct {
	customers []model.Customer
	orders    []model.Order

	customerReads int
	orderReads    int
	lastRestrict  []int
	failOrders    bool
}

func matches(c Constraint, num float64, text string) bool {
	if c.Numeric {
		switch c.Op {
		case OpEq:
			return num == c.Number
		case OpNeq:
			return num != c.Number
		case OpGt:
			return num > c.Number
		case OpLt:
			return num < c.Number
		}
		return false
	}
	switch c.Op {
	case OpEq:
		return text == c.Text
	case OpNeq:
		return text != c.Text
	}
	return false
}

func (m *memStore) FindMatching(_ context.Context, filter CustomerFilter, restrictTo []int) ([]model.Customer, error) {
	m.customerReads++
	m.lastRestrict = restrictTo

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
			case CustomerAge:
				ok = ok && matches(cons, c.Age, "")
			case CustomerCity:
				ok = ok && matches(cons, 0, c.City)
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) CustomerIDsMatching(_ context.Context, filter OrderFilter) ([]int, error) {
	m.orderReads++
	if m.failOrders {
		return nil, errors.New("orders unavailable")
	}

	out := []int{}
	for _, o := range m.orders {
		ok := true
		for field, cons := range filter {
			switch field {
			case OrderAmount:
				ok = ok && matches(cons, o.Amount, "")
			case OrderProduct:
				ok = ok && matches(cons, 0, o.Product)
			}
		}
		if ok {
			// duplicates on purpose: the resolver must collapse them
			out = append(out, o.CustomerID)
		}
	}
	return out, nil
}
