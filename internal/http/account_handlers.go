package http

import (
	"net/http"
	"strings"
	"time"

	httpmiddleware "github.com/sfdportal/portal/internal/http/middleware"
	"github.com/sfdportal/portal/internal/repo"
	"github.com/sfdportal/portal/internal/service"
)

// Login autentica colaboradores e administradores. No primeiro acesso a senha enviada é gravada.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.Username) == "" {
		WriteError(w, http.StatusBadRequest, CodeValidation, "usuário é obrigatório", nil)
		return
	}
	if !h.loginLimiter.Allow("login:" + payload.Username) {
		httpmiddleware.WriteRateLimited(w)
		return
	}

	result, err := h.accounts.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": result.AccessToken,
		"expires_at":   result.ExpiresAt.UTC().Format(time.RFC3339),
		"user":         result.User.Public(),
		"next":         result.Next,
	})
}

// Me devolve a conta autenticada e o destino sugerido.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"user": user.Public(),
		"next": service.NextDestination(user),
	})
}

// CompleteRegistration grava o cadastro do próprio colaborador.
func (h *Handler) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var payload struct {
		PersonalData *repo.PersonalData `json:"personalData"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.PersonalData == nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "personalData é obrigatório", nil)
		return
	}

	updated, err := h.accounts.CompleteRegistration(r.Context(), user.ID, *payload.PersonalData)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user": updated.Public(),
		"next": service.NextDestination(*updated),
	})
}

// MyContent lista o que foi destinado à conta autenticada.
func (h *Handler) MyContent(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	list, err := h.content.VisibleTo(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, contentSummaries(list))
}
