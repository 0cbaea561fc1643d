package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/campaign-crm/internal/audience"
	"github.com/unclebandit/campaign-crm/internal/db"
	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
)

// CustomerRepositoryInterface defines methods used by service
type CustomerRepositoryInterface interface {
	audience.CustomerFinder
	GetByID(ctx context.Context, id int) (*model.Customer, error)
	ListAll(ctx context.Context) ([]model.Customer, error)
	BulkInsert(ctx context.Context, customers []model.Customer) (int, error)
}

// CustomerRepository is the concrete implementation
type CustomerRepository struct {
	DB *db.Database
}

var customerColumns = []string{"id", "name", "email", "age", "city", "created_at"}

// GetByID fetches a customer by ID, nil when it does not exist
func (r *CustomerRepository) GetByID(ctx context.Context, id int) (*model.Customer, error) {
	query, err := r.DB.Queries.Raw("get-customer")
	if err != nil {
		return nil, err
	}

	var c model.Customer
	if err := r.DB.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.NewStorageError("get customer", err)
	}
	return &c, nil
}

// ListAll fetches all customers ordered by id
func (r *CustomerRepository) ListAll(ctx context.Context) ([]model.Customer, error) {
	query, err := r.DB.Queries.Raw("list-customers")
	if err != nil {
		return nil, err
	}

	customers := []model.Customer{}
	if err := r.DB.SelectContext(ctx, &customers, query); err != nil {
		return nil, appErrors.NewStorageError("list customers", err)
	}
	return customers, nil
}

// BulkInsert writes customers in batches inside one transaction; either all
// rows land or none.
func (r *CustomerRepository) BulkInsert(ctx context.Context, customers []model.Customer) (int, error) {
	if len(customers) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for i := range customers {
		customers[i].CreatedAt = now
	}

	err := inTx(ctx, r.DB, "insert customers", func(tx *sqlx.Tx) error {
		return batches(len(customers), insertBatchSize, func(start, end int) error {
			ib := r.DB.Flavor.NewInsertBuilder()
			ib.InsertInto("customers")
			ib.Cols("name", "email", "age", "city", "created_at")
			for _, c := range customers[start:end] {
				ib.Values(c.Name, c.Email, c.Age, c.City, c.CreatedAt)
			}
			query, args := ib.Build()
			_, err := tx.ExecContext(ctx, query, args...)
			return err
		})
	})
	if err != nil {
		return 0, appErrors.NewStorageError("insert customers", err)
	}
	return len(customers), nil
}

// FindMatching runs the compiled customer filter. A non-nil restrictTo limits
// the result to those ids; an empty restrictTo matches nobody.
func (r *CustomerRepository) FindMatching(ctx context.Context, filter audience.CustomerFilter, restrictTo []int) ([]model.Customer, error) {
	customers := []model.Customer{}
	if restrictTo != nil && len(restrictTo) == 0 {
		return customers, nil
	}

	find := func(ids []int) error {
		sb := r.DB.Flavor.NewSelectBuilder()
		sb.Select(customerColumns...)
		sb.From("customers")
		applyCustomerFilter(sb, filter)
		if ids != nil {
			sb.Where(sb.In("id", sqlbuilder.Flatten(ids)...))
		}
		sb.OrderBy("id")

		query, args := sb.Build()
		page := []model.Customer{}
		if err := r.DB.SelectContext(ctx, &page, query, args...); err != nil {
			return err
		}
		customers = append(customers, page...)
		return nil
	}

	var err error
	if restrictTo == nil {
		err = find(nil)
	} else {
		// ids are bound in chunks so the list never reaches the driver's
		// parameter limit
		err = batches(len(restrictTo), idBatchSize, func(start, end int) error {
			return find(restrictTo[start:end])
		})
	}
	if err != nil {
		return nil, appErrors.NewStorageError("find customers", err)
	}

	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers, nil
}

var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)
