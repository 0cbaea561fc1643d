// internal/audience/compile.go
package audience

import (
	"sort"

	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
)

type CustomerFilter map[CustomerField]Constraint

type OrderFilter map[OrderField]Constraint

// Filter is the compiled, storage-independent form of a rule set.
// Constraints within one entity are conjoined.
type Filter struct {
	Customer CustomerFilter `json:"customer"`
	Order    OrderFilter    `json:"order"`
}

// Compile validates every rule and splits them per entity. A second rule on
// an (entity, field) pair that already has one is rejected.
func Compile(rules []model.Rule) (*Filter, error) {
	f := &Filter{
		Customer: CustomerFilter{},
		Order:    OrderFilter{},
	}

	for i, raw := range rules {
		rule, err := NewRule(i, raw)
		if err != nil {
			return nil, err
		}

		switch r := rule.(type) {
		case CustomerRule:
			if _, dup := f.Customer[r.Field]; dup {
				return nil, duplicate(i, raw)
			}
			f.Customer[r.Field] = r.Cons
		case OrderRule:
			if _, dup := f.Order[r.Field]; dup {
				return nil, duplicate(i, raw)
			}
			f.Order[r.Field] = r.Cons
		}
	}

	return f, nil
}

func duplicate(i int, raw model.Rule) error {
	return &appErrors.InvalidRuleError{
		Index:    i,
		Entity:   raw.Entity,
		Field:    raw.Field,
		Operator: raw.Operator,
		Value:    raw.Value,
		Reason:   "field already has a rule",
	}
}

// Fields returns the customer fields in a stable order.
func (f CustomerFilter) Fields() []CustomerField {
	out := make([]CustomerField, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fields returns the order fields in a stable order.
func (f OrderFilter) Fields() []OrderField {
	out := make([]OrderField, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
