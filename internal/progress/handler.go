// AngelaMos | 2026
// handler.go

package progress

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cyberlearn-io/cyberlearn-backend/internal/core"
	"github.com/cyberlearn-io/cyberlearn-backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Get("/paths", h.ListPaths)

	r.Route("/progress", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetProgress)
		r.Post("/enroll", h.Enroll)
		r.Get("/{pathID}", h.GetPathProgress)
		r.Put("/{pathID}/sections", h.UpdateProgress)
		r.Post("/{pathID}/sections/{sectionKey}/complete", h.CompleteSection)
	})
}

// ListPaths returns the curriculum catalog. Public, no auth required.
func (h *Handler) ListPaths(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.service.ListPaths())
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	overview, err := h.service.GetProgress(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, overview)
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.EnrollInPath(r.Context(), userID, req.PathID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "path")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) GetPathProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	pathID := chi.URLParam(r, "pathID")

	resp, err := h.service.GetPathProgress(r.Context(), userID, pathID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "enrollment")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	pathID := chi.URLParam(r, "pathID")

	var req UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdateProgress(r.Context(), userID, pathID, req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "unknown section key")
			return
		}
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "enrollment")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) CompleteSection(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	pathID := chi.URLParam(r, "pathID")
	sectionKey := chi.URLParam(r, "sectionKey")

	var req struct {
		Score int `json:"score" validate:"min=0,max=1000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.CompleteSection(
		r.Context(),
		userID,
		pathID,
		sectionKey,
		req.Score,
	)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "unknown section key")
			return
		}
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "enrollment")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}
