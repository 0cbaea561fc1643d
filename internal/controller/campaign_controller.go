// internal/controller/campaign_controller.go
package controller

import (
	"net/http"

	"github.com/unclebandit/campaign-crm/internal/auth"
	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
	"github.com/unclebandit/campaign-crm/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

func (c *CampaignController) PreviewAudience(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rules []model.Rule `json:"rules"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		WriteError(w, r, err)
		return
	}

	count, err := c.CampaignService.PreviewAudience(r.Context(), body.Rules)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		WriteError(w, r, appErrors.ErrUnauthorized)
		return
	}

	var body struct {
		Name      string       `json:"name"`
		Objective string       `json:"objective"`
		Rules     []model.Rule `json:"rules"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		WriteError(w, r, err)
		return
	}

	result, err := c.CampaignService.CreateCampaign(r.Context(), body.Name, body.Objective, body.Rules, actor.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":        "Campaign created",
		"campaign_id":    result.CampaignID,
		"audience_count": result.AudienceCount,
	})
}
