// internal/audience/resolver.go
package audience

import (
	"context"
	"fmt"
	"sort"

	"github.com/unclebandit/campaign-crm/internal/model"
)

// CustomerFinder returns customers matching filter. A nil restrictTo means no
// id restriction; otherwise only ids in restrictTo may be returned.
type CustomerFinder interface {
	FindMatching(ctx context.Context, filter CustomerFilter, restrictTo []int) ([]model.Customer, error)
}

// OrderFinder returns the distinct customer ids owning at least one order
// matching filter.
type OrderFinder interface {
	CustomerIDsMatching(ctx context.Context, filter OrderFilter) ([]int, error)
}

// Resolver evaluates a compiled filter against the stores. Preview and
// campaign creation both go through Resolve.
type Resolver struct {
	Customers CustomerFinder
	Orders    OrderFinder
}

func NewResolver(customers CustomerFinder, orders OrderFinder) *Resolver {
	return &Resolver{Customers: customers, Orders: orders}
}

// Resolve returns the audience sorted by customer id with no duplicates.
//
// A customer matches when it satisfies the customer filter and, if the order
// filter is non-empty, owns at least one matching order. An empty order
// filter adds no restriction.
func (r *Resolver) Resolve(ctx context.Context, f *Filter) ([]model.Customer, error) {
	if f == nil {
		f = &Filter{}
	}

	var restrictTo []int
	if len(f.Order) > 0 {
		ids, err := r.Orders.CustomerIDsMatching(ctx, f.Order)
		if err != nil {
			return nil, fmt.Errorf("resolve order filter: %w", err)
		}
		if len(ids) == 0 {
			return []model.Customer{}, nil
		}
		restrictTo = uniqueIDs(ids)
	}

	customers, err := r.Customers.FindMatching(ctx, f.Customer, restrictTo)
	if err != nil {
		return nil, fmt.Errorf("resolve customer filter: %w", err)
	}

	return dedupe(customers), nil
}

// ResolveRules compiles and resolves in one step.
func (r *Resolver) ResolveRules(ctx context.Context, rules []model.Rule) ([]model.Customer, error) {
	f, err := Compile(rules)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, f)
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func dedupe(customers []model.Customer) []model.Customer {
	seen := make(map[int]struct{}, len(customers))
	out := make([]model.Customer, 0, len(customers))
	for _, c := range customers {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
