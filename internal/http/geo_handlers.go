package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListStates lista as UFs para o formulário de cadastro.
func (h *Handler) ListStates(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.geo.States(r.Context()))
}

// ListCities lista os municípios da UF.
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.geo.Cities(r.Context(), chi.URLParam(r, "uf")))
}

// Chat encaminha a mensagem ao assistente de RH.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		History []string `json:"history"`
		Message string   `json:"message"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Message == "" {
		WriteError(w, http.StatusBadRequest, CodeValidation, "mensagem é obrigatória", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"reply": h.assistant.Chat(r.Context(), payload.History, payload.Message),
	})
}
