package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sfdportal/portal/internal/pix"
	"github.com/sfdportal/portal/internal/repo"
	"github.com/sfdportal/portal/internal/service"
)

// ListUsers lista colaboradores.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	users, err := h.accounts.ListUsers(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, publicUsers(users))
}

// CreateUser cadastra colaborador por matrícula ou CPF.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var payload struct {
		Identifier string      `json:"identifier"`
		IDType     repo.IDType `json:"idType"`
		CPF        string      `json:"cpf"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.IDType == "" {
		payload.IDType = repo.IDTypeMatricula
	}

	user, message, err := h.accounts.CreateUserForEmployee(r.Context(), actor, service.EmployeeInput{
		Identifier: payload.Identifier,
		IDType:     payload.IDType,
		CPF:        payload.CPF,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"user":    user.Public(),
		"message": message,
	})
}

// GetUser devolve ficha do colaborador com histórico de conteúdos e QR PIX.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	user, err := h.accounts.GetUser(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	history, err := h.content.VisibleTo(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	qrCode := ""
	if user.PersonalData != nil {
		qrCode = pix.QRCodeURL(user.PersonalData.BankData.PixKey)
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user":         user.Public(),
		"content":      contentSummaries(history),
		"pixQrCodeUrl": qrCode,
	})
}

// DeleteUser remove conta; contas embutidas são protegidas.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.accounts.DeleteUser(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAdmins lista administradores visíveis.
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	admins, err := h.accounts.ListAdmins(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, publicUsers(admins))
}

// CreateAdmin cadastra administrador com permissões independentes.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var payload struct {
		Username    string             `json:"username"`
		Password    string             `json:"password"`
		Permissions repo.CapabilitySet `json:"permissions"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	admin, err := h.accounts.CreateAdmin(r.Context(), actor, payload.Username, payload.Password, payload.Permissions)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, admin.Public())
}
