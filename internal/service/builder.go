package service

import (
	"context"
	"fmt"

	"github.com/unclebandit/campaign-crm/internal/delivery"
	"github.com/unclebandit/campaign-crm/internal/model"
)

// BuildDeliveryLogs asks the provider for one outcome per customer, in
// audience order. A failed delivery is never recorded as opened. Any provider
// error aborts the build so that no partial campaign is persisted.
func BuildDeliveryLogs(ctx context.Context, provider delivery.Provider, audience []model.Customer) ([]model.DeliveryLog, error) {
	logs := make([]model.DeliveryLog, 0, len(audience))
	for _, customer := range audience {
		outcome, err := provider.Send(ctx, customer)
		if err != nil {
			return nil, fmt.Errorf("deliver to customer %d: %w", customer.ID, err)
		}

		switch outcome.Status {
		case model.DeliverySent:
		case model.DeliveryFailed:
			outcome.Opened = false
		default:
			return nil, fmt.Errorf("deliver to customer %d: unknown status %q", customer.ID, outcome.Status)
		}

		logs = append(logs, model.DeliveryLog{
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
			Status:        outcome.Status,
			Opened:        outcome.Opened,
		})
	}
	return logs, nil
}
