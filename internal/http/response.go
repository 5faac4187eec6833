package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sfdportal/portal/internal/repo"
	"github.com/sfdportal/portal/internal/service"
)

// Códigos de erro do envelope.
const (
	CodeValidation = "VALIDATION"
	CodeAuth       = "AUTH"
	CodeForbidden  = "FORBIDDEN"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL"
)

// SuccessEnvelope padroniza respostas com dados.
type SuccessEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// ErrorEnvelope padroniza respostas de erro.
type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{Data: data, Error: nil})
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:  nil,
		Error: &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// writeServiceError traduz erros de domínio para status e código do envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("erro interno")
		WriteError(w, status, code, "erro interno", nil)
		return
	}
	WriteError(w, status, code, err.Error(), nil)
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrDuplicateUsername):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, service.ErrWrongPassword):
		return http.StatusUnauthorized, CodeAuth
	case errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, service.ErrProtectedAccount):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrContentNotFound),
		errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, service.ErrFirstAccessPasswordTooShort),
		errors.Is(err, service.ErrMissingRequiredField),
		errors.Is(err, service.ErrEmptyTargetSelection),
		errors.Is(err, service.ErrAdminPasswordRequired),
		errors.Is(err, service.ErrInvalidIDType),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidContentType):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, repo.ErrConflict):
		return http.StatusConflict, CodeConflict
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
