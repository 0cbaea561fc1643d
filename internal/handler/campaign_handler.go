// internal/handler/campaign_handler.go
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/campaign-crm/internal/controller"
	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/service"
)

// CampaignHandler holds the dependencies for read-side campaign handlers
type CampaignHandler struct {
	Service *service.CampaignService
}

func NewCampaignHandler(svc *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{Service: svc}
}

func campaignID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, appErrors.NewValidationError("id", "invalid campaign id")
	}
	return id, nil
}

// ListCampaignsHandler returns campaigns newest first. With page or
// page_size in the query the response is paginated.
func (h *CampaignHandler) ListCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	pageStr := r.URL.Query().Get("page")
	pageSizeStr := r.URL.Query().Get("page_size")

	if pageStr == "" && pageSizeStr == "" {
		campaigns, err := h.Service.ListCampaigns(r.Context())
		if err != nil {
			controller.WriteError(w, r, err)
			return
		}
		controller.WriteJSON(w, http.StatusOK, campaigns)
		return
	}

	page, _ := strconv.Atoi(pageStr)
	pageSize, _ := strconv.Atoi(pageSizeStr)

	campaigns, pagination, err := h.Service.ListCampaignsPage(r.Context(), page, pageSize)
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}

	controller.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

// GetCampaignHandler returns details of a single campaign by ID
func (h *CampaignHandler) GetCampaignHandler(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}

	campaign, err := h.Service.GetCampaign(r.Context(), id)
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}

	controller.WriteJSON(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) GetCampaignSummaryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}

	summary, err := h.Service.GetCampaignSummary(r.Context(), id)
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}

	controller.WriteJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (h *CampaignHandler) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	suggestions := h.Service.Suggestions(r.URL.Query().Get("objective"))
	controller.WriteJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions})
}
