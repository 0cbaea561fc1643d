package handler

import (
	"net/http"

	"github.com/unclebandit/campaign-crm/internal/controller"
	"github.com/unclebandit/campaign-crm/internal/service"
)

type AuthHandler struct {
	Service *service.AuthService
}

// LoginHandler exchanges a Google ID token for a session token.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := controller.DecodeJSON(w, r, &body); err != nil {
		controller.WriteError(w, r, err)
		return
	}

	result, err := h.Service.Login(r.Context(), body.Token)
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}

	controller.WriteJSON(w, http.StatusOK, result)
}
