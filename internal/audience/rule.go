// internal/audience/rule.go
package audience

import (
	"math"
	"strconv"
	"strings"

	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
)

/*
 * Typed targeting rules.
 *
 * A model.Rule is free text. NewRule turns it into one of two closed variants,
 * CustomerRule or OrderRule, each restricted to its entity's fields. Every
 * check that can fail happens here, so a compiled Filter is always valid.
 *
 * Value coercion:
 *   - numeric fields (age, amount) need a finite number for every operator
 *   - text fields (city, product) accept only eq/neq and compare verbatim
 */

type Entity string

const (
	EntityCustomer Entity = "customer"
	EntityOrder    Entity = "order"
)

type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpLt  Operator = "lt"
)

func (o Operator) valid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpLt:
		return true
	}
	return false
}

func (o Operator) ordered() bool {
	return o == OpGt || o == OpLt
}

// Kind is the storage type of a field.
type Kind int

const (
	KindNumeric Kind = iota
	KindText
)

type CustomerField string

const (
	CustomerAge  CustomerField = "age"
	CustomerCity CustomerField = "city"
)

var customerFields = map[CustomerField]Kind{
	CustomerAge:  KindNumeric,
	CustomerCity: KindText,
}

type OrderField string

const (
	OrderAmount  OrderField = "amount"
	OrderProduct OrderField = "product"
)

var orderFields = map[OrderField]Kind{
	OrderAmount:  KindNumeric,
	OrderProduct: KindText,
}

// Constraint is a single comparison against a coerced value.
type Constraint struct {
	Op      Operator `json:"op"`
	Numeric bool     `json:"numeric"`
	Number  float64  `json:"number,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// Arg returns the value to bind in a query.
func (c Constraint) Arg() any {
	if c.Numeric {
		return c.Number
	}
	return c.Text
}

// Rule is either a CustomerRule or an OrderRule.
type Rule interface {
	Entity() Entity
	FieldName() string
	Constraint() Constraint
	isRule()
}

type CustomerRule struct {
	Field CustomerField
	Cons  Constraint
}

func (r CustomerRule) Entity() Entity         { return EntityCustomer }
func (r CustomerRule) FieldName() string      { return string(r.Field) }
func (r CustomerRule) Constraint() Constraint { return r.Cons }
func (CustomerRule) isRule()                  {}

type OrderRule struct {
	Field OrderField
	Cons  Constraint
}

func (r OrderRule) Entity() Entity         { return EntityOrder }
func (r OrderRule) FieldName() string      { return string(r.Field) }
func (r OrderRule) Constraint() Constraint { return r.Cons }
func (OrderRule) isRule()                  {}

// NewRule validates a raw rule. index is only used in the error.
func NewRule(index int, raw model.Rule) (Rule, error) {
	invalid := func(reason string) error {
		return &appErrors.InvalidRuleError{
			Index:    index,
			Entity:   raw.Entity,
			Field:    raw.Field,
			Operator: raw.Operator,
			Value:    raw.Value,
			Reason:   reason,
		}
	}

	op := Operator(strings.ToLower(strings.TrimSpace(raw.Operator)))
	if !op.valid() {
		return nil, invalid("unknown operator")
	}

	field := strings.TrimSpace(raw.Field)

	switch Entity(strings.ToLower(strings.TrimSpace(raw.Entity))) {
	case EntityCustomer:
		kind, ok := customerFields[CustomerField(field)]
		if !ok {
			return nil, invalid("unknown customer field")
		}
		cons, reason := coerce(op, kind, raw.Value)
		if reason != "" {
			return nil, invalid(reason)
		}
		return CustomerRule{Field: CustomerField(field), Cons: cons}, nil

	case EntityOrder:
		kind, ok := orderFields[OrderField(field)]
		if !ok {
			return nil, invalid("unknown order field")
		}
		cons, reason := coerce(op, kind, raw.Value)
		if reason != "" {
			return nil, invalid(reason)
		}
		return OrderRule{Field: OrderField(field), Cons: cons}, nil

	default:
		return nil, invalid("unknown entity")
	}
}

// coerce builds the constraint or returns a non-empty reason.
func coerce(op Operator, kind Kind, value string) (Constraint, string) {
	if kind == KindText {
		if op.ordered() {
			return Constraint{}, "operator not supported on a text field"
		}
		return Constraint{Op: op, Text: value}, ""
	}

	n, ok := parseNumber(value)
	if !ok {
		if op.ordered() {
			return Constraint{}, "gt/lt require a numeric value"
		}
		return Constraint{}, "numeric field requires a numeric value"
	}
	return Constraint{Op: op, Numeric: true, Number: n}, ""
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
