package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/campaign-crm/internal/audience"
	"github.com/unclebandit/campaign-crm/internal/db"
	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
)

type OrderRepositoryInterface interface {
	audience.OrderFinder
	ListAll(ctx context.Context) ([]model.Order, error)
	BulkInsert(ctx context.Context, orders []model.Order) (int, error)
}

type OrderRepository struct {
	DB *db.Database
}

// BulkInsert writes orders in batches inside one transaction. Missing refs
// get a uuid and a zero date becomes now. A ref that already exists is a
// ValidationError and nothing is written.
func (r *OrderRepository) BulkInsert(ctx context.Context, orders []model.Order) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for i := range orders {
		if orders[i].OrderRef == "" {
			orders[i].OrderRef = uuid.New().String()
		}
		if orders[i].Date.IsZero() {
			orders[i].Date = now
		}
	}

	err := inTx(ctx, r.DB, "insert orders", func(tx *sqlx.Tx) error {
		return batches(len(orders), insertBatchSize, func(start, end int) error {
			ib := r.DB.Flavor.NewInsertBuilder()
			ib.InsertInto("orders")
			ib.Cols("order_ref", "product", "amount", "order_date", "customer_id")
			for _, o := range orders[start:end] {
				ib.Values(o.OrderRef, o.Product, o.Amount, o.Date.UTC(), o.CustomerID)
			}
			query, args := ib.Build()
			_, err := tx.ExecContext(ctx, query, args...)
			return err
		})
	})
	if isUniqueViolation(err) {
		return 0, appErrors.NewValidationError("order_ref", "already exists")
	}
	if err != nil {
		return 0, appErrors.NewStorageError("insert orders", err)
	}
	return len(orders), nil
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	query, err := r.DB.Queries.Raw("list-orders")
	if err != nil {
		return nil, err
	}

	orders := []model.Order{}
	if err := r.DB.SelectContext(ctx, &orders, query); err != nil {
		return nil, appErrors.NewStorageError("list orders", err)
	}
	return orders, nil
}

// CustomerIDsMatching is the semi-join half of audience resolution: the
// distinct owners of at least one matching order.
func (r *OrderRepository) CustomerIDsMatching(ctx context.Context, filter audience.OrderFilter) ([]int, error) {
	sb := r.DB.Flavor.NewSelectBuilder()
	sb.Select("customer_id").Distinct()
	sb.From("orders")
	applyOrderFilter(sb, filter)
	sb.OrderBy("customer_id")

	query, args := sb.Build()
	ids := []int{}
	if err := r.DB.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, appErrors.NewStorageError("find order owners", err)
	}
	return ids, nil
}

var _ OrderRepositoryInterface = (*OrderRepository)(nil)
