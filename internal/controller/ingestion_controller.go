package controller

import (
	"net/http"

	"github.com/unclebandit/campaign-crm/internal/service"
)

type IngestionController struct {
	IngestionService *service.IngestionService
}

func (c *IngestionController) AddCustomers(w http.ResponseWriter, r *http.Request) {
	var rows []service.CustomerInput
	if err := DecodeJSON(w, r, &rows); err != nil {
		WriteError(w, r, err)
		return
	}

	n, err := c.IngestionService.AddCustomers(r.Context(), rows)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Customers added",
		"count":   n,
	})
}

func (c *IngestionController) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := c.IngestionService.ListCustomers(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, customers)
}

func (c *IngestionController) AddOrders(w http.ResponseWriter, r *http.Request) {
	var rows []service.OrderInput
	if err := DecodeJSON(w, r, &rows); err != nil {
		WriteError(w, r, err)
		return
	}

	n, err := c.IngestionService.AddOrders(r.Context(), rows)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Orders added",
		"count":   n,
	})
}

func (c *IngestionController) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := c.IngestionService.ListOrders(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, orders)
}
