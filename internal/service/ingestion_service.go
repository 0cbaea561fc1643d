package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
	"github.com/unclebandit/campaign-crm/internal/repository"
)

// CustomerInput is one row of a customer upload.
type CustomerInput struct {
	Name  string  `json:"name" yaml:"name" validate:"required"`
	Email string  `json:"email" yaml:"email" validate:"omitempty,email"`
	Age   float64 `json:"age" yaml:"age" validate:"gte=0,lte=150"`
	City  string  `json:"city" yaml:"city"`
}

// OrderInput is one row of an order upload. Date is RFC 3339 and optional.
type OrderInput struct {
	OrderRef   string  `json:"order_ref" yaml:"order_ref"`
	Product    string  `json:"product" yaml:"product"`
	Amount     float64 `json:"amount" yaml:"amount" validate:"gte=0"`
	Date       string  `json:"date" yaml:"date"`
	CustomerID int     `json:"customer_id" yaml:"customer_id" validate:"required,gt=0"`
}

type IngestionService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	OrderRepo    repository.OrderRepositoryInterface
}

// AddCustomers validates every row before writing any; the insert is all or nothing.
func (s *IngestionService) AddCustomers(ctx context.Context, rows []CustomerInput) (int, error) {
	if len(rows) == 0 {
		return 0, appErrors.NewValidationError("customers", "at least one customer is required")
	}

	customers := make([]model.Customer, 0, len(rows))
	for i, row := range rows {
		row.Name = strings.TrimSpace(row.Name)
		row.Email = strings.TrimSpace(row.Email)
		row.City = strings.TrimSpace(row.City)
		if err := validateStruct(fmt.Sprintf("customers[%d]", i), row); err != nil {
			return 0, err
		}
		customers = append(customers, model.Customer{
			Name:  row.Name,
			Email: row.Email,
			Age:   row.Age,
			City:  row.City,
		})
	}

	n, err := s.CustomerRepo.BulkInsert(ctx, customers)
	if err != nil {
		return 0, err
	}
	logrus.WithField("count", n).Info("customers added")
	return n, nil
}

// AddOrders validates every row before writing any; the insert is all or nothing.
func (s *IngestionService) AddOrders(ctx context.Context, rows []OrderInput) (int, error) {
	if len(rows) == 0 {
		return 0, appErrors.NewValidationError("orders", "at least one order is required")
	}

	orders := make([]model.Order, 0, len(rows))
	refs := make(map[string]int, len(rows))
	for i, row := range rows {
		prefix := fmt.Sprintf("orders[%d]", i)
		if err := validateStruct(prefix, row); err != nil {
			return 0, err
		}

		o := model.Order{
			OrderRef:   strings.TrimSpace(row.OrderRef),
			Product:    strings.TrimSpace(row.Product),
			Amount:     row.Amount,
			CustomerID: row.CustomerID,
		}
		if o.OrderRef != "" {
			if first, ok := refs[o.OrderRef]; ok {
				return 0, appErrors.NewValidationError(prefix+".order_ref", fmt.Sprintf("duplicates orders[%d].order_ref", first))
			}
			refs[o.OrderRef] = i
		}
		if row.Date != "" {
			date, err := time.Parse(time.RFC3339, row.Date)
			if err != nil {
				return 0, appErrors.NewValidationError(prefix+".date", "must be an RFC 3339 timestamp")
			}
			o.Date = date
		}
		orders = append(orders, o)
	}

	n, err := s.OrderRepo.BulkInsert(ctx, orders)
	if err != nil {
		return 0, err
	}
	logrus.WithField("count", n).Info("orders added")
	return n, nil
}

func (s *IngestionService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.CustomerRepo.ListAll(ctx)
}

func (s *IngestionService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.OrderRepo.ListAll(ctx)
}
