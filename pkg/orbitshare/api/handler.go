// Package api exposes the orbitshare core over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/orbitshare/orbitshare/pkg/orbitshare"
)

// Handler wires the orbitshare service to chi routes.
type Handler struct {
	service  orbitshare.Service
	verifier TokenVerifier
	logger   *slog.Logger
}

// NewHandler creates a new HTTP handler around the service.
func NewHandler(service orbitshare.Service, verifier TokenVerifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:  service,
		verifier: verifier,
		logger:   logger,
	}
}

// Routes returns the API routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.verifier))
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
		})
	})

	r.Route("/resources", func(r chi.Router) {
		r.Get("/", h.ListResources)
		r.Get("/{id}/download", h.DownloadResource)
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.verifier))
			r.Post("/upload", h.UploadResource)
			r.Get("/user", h.ListUserResources)
			r.Delete("/{id}", h.DeleteResource)
		})
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/{resourceID}", h.ListReviews)
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.verifier))
			r.Post("/", h.CreateReview)
		})
	})

	return r
}

// messageResponse is the uniform error (and simple success) body.
type messageResponse struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, messageResponse{Message: message})
}

// renderError maps domain errors onto HTTP statuses. Internal failures get
// a stable generic message so diagnostic detail never leaks to callers.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orbitshare.ErrValidation),
		errors.Is(err, orbitshare.ErrEmailTaken),
		errors.Is(err, orbitshare.ErrInvalidCredentials):
		writeMessage(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, orbitshare.ErrResourceNotFound),
		errors.Is(err, orbitshare.ErrUserNotFound):
		writeMessage(w, r, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, r, http.StatusInternalServerError, "server error")
	}
}
