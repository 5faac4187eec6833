package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sfdportal/portal/internal/assistant"
	"github.com/sfdportal/portal/internal/config"
	"github.com/sfdportal/portal/internal/geo"
	httpmiddleware "github.com/sfdportal/portal/internal/http/middleware"
	"github.com/sfdportal/portal/internal/repo"
	"github.com/sfdportal/portal/internal/service"
)

// Dependencies agrupa os serviços montados em cmd/api.
type Dependencies struct {
	Store     *repo.Store
	Accounts  *service.AccountService
	Content   *service.ContentService
	Geo       *geo.Client
	Assistant *assistant.Service
}

type Handler struct {
	cfg          *config.Config
	store        *repo.Store
	accounts     *service.AccountService
	content      *service.ContentService
	geo          *geo.Client
	assistant    *assistant.Service
	loginLimiter *httpmiddleware.RateLimiter
	authLimiter  *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	h := &Handler{
		cfg:          cfg,
		store:        deps.Store,
		accounts:     deps.Accounts,
		content:      deps.Content,
		geo:          deps.Geo,
		assistant:    deps.Assistant,
		loginLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitLogin.RequestsPerSecond, cfg.RateLimitLogin.Burst),
		authLimiter:  httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.loginLimiter))
		public.Post("/auth/login", h.Login)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(h.accounts.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)
		private.Put("/me/registration", h.CompleteRegistration)
		private.Get("/me/content", h.MyContent)
		private.Get("/content/{id}/download", h.DownloadContent)

		private.Route("/geo", func(g chi.Router) {
			g.Get("/states", h.ListStates)
			g.Get("/states/{uf}/cities", h.ListCities)
		})
		private.Post("/assistant/chat", h.Chat)

		private.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireRole(string(repo.RoleAdmin)))

			admin.Route("/users", func(u chi.Router) {
				u.Get("/", h.ListUsers)
				u.Post("/", h.CreateUser)
				u.Get("/{id}", h.GetUser)
				u.Delete("/{id}", h.DeleteUser)
			})
			admin.Route("/admins", func(a chi.Router) {
				a.Get("/", h.ListAdmins)
				a.Post("/", h.CreateAdmin)
			})
			admin.Route("/content", func(c chi.Router) {
				c.Get("/", h.ListContent)
				c.Post("/", h.PublishContent)
				c.Post("/describe", h.DescribeContent)
				c.Patch("/{id}", h.UpdateContent)
				c.Delete("/{id}", h.DeleteContent)
			})
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida o backend de armazenamento.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		WriteError(w, http.StatusServiceUnavailable, CodeInternal, "armazenamento indisponível", map[string]any{
			"store": err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

// actor carrega o registro atual da conta autenticada; permissões alteradas valem na hora.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (repo.User, bool) {
	subject := httpmiddleware.GetSubject(r.Context())
	user, err := h.accounts.Me(r.Context(), subject)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			WriteError(w, http.StatusUnauthorized, CodeAuth, "conta não encontrada", nil)
			return repo.User{}, false
		}
		writeServiceError(w, err)
		return repo.User{}, false
	}
	return *user, true
}

func jsonDecode(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := jsonDecode(r, dst); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return false
	}
	return true
}

func publicUsers(users []repo.User) []repo.User {
	out := make([]repo.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

func contentSummaries(list []repo.Content) []repo.Content {
	out := make([]repo.Content, 0, len(list))
	for _, c := range list {
		out = append(out, c.Summary())
	}
	return out
}
