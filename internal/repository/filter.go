// internal/repository/filter.go
package repository

import (
	"github.com/huandu/go-sqlbuilder"

	"github.com/unclebandit/campaign-crm/internal/audience"
)

// condition renders one compiled constraint against a column. Column names
// come from the closed field enums in internal/audience, never from input.
func condition(cond *sqlbuilder.Cond, column string, c audience.Constraint) string {
	switch c.Op {
	case audience.OpGt:
		return cond.GreaterThan(column, c.Arg())
	case audience.OpLt:
		return cond.LessThan(column, c.Arg())
	case audience.OpNeq:
		return cond.NotEqual(column, c.Arg())
	default:
		return cond.Equal(column, c.Arg())
	}
}

func applyCustomerFilter(sb *sqlbuilder.SelectBuilder, f audience.CustomerFilter) {
	for _, field := range f.Fields() {
		sb.Where(condition(&sb.Cond, string(field), f[field]))
	}
}

func applyOrderFilter(sb *sqlbuilder.SelectBuilder, f audience.OrderFilter) {
	for _, field := range f.Fields() {
		sb.Where(condition(&sb.Cond, string(field), f[field]))
	}
}
