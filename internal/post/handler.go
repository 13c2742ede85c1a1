// AngelaMos | 2026
// handler.go

package post

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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
	authenticator, optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/posts", func(r chi.Router) {
		// Reads work anonymously; liked_by_me hydrates when a token
		// is present.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", h.ListUserPosts)
			r.Get("/platform", h.ListPlatformPosts)
			r.Get("/feed", h.CombinedFeed)
			r.Get("/search", h.Search)
			r.Get("/{postID}", h.GetPost)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/", h.CreatePost)
			r.Put("/{postID}", h.EditPost)
			r.Delete("/{postID}", h.DeletePost)
			r.Put("/{postID}/like", h.Like)
			r.Delete("/{postID}/like", h.Unlike)
			r.Post("/{postID}/toggle-like", h.ToggleLike)
			r.Post("/{postID}/replies", h.AddReply)
			r.Put("/{postID}/replies/{replyID}", h.EditReply)
			r.Delete("/{postID}/replies/{replyID}", h.DeleteReply)
			r.Post("/{postID}/visibility", h.ToggleVisibility)
		})
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/posts", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.Stats)
	})
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	if actorID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.CreatePost(
		r.Context(),
		actorID,
		middleware.IsAdmin(r.Context()),
		req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	resp, err := h.service.GetPost(
		r.Context(),
		middleware.GetUserID(r.Context()),
		postID,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) EditPost(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	postID := chi.URLParam(r, "postID")

	var req EditPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.EditPost(
		r.Context(),
		actorID,
		middleware.IsAdmin(r.Context()),
		postID,
		req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeletePost(
		r.Context(),
		middleware.GetUserID(r.Context()),
		middleware.IsAdmin(r.Context()),
		chi.URLParam(r, "postID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Like(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "postID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Unlike(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "postID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ToggleLike(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "postID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) AddReply(w http.ResponseWriter, r *http.Request) {
	var req AddReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.AddReply(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "postID"),
		req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) EditReply(w http.ResponseWriter, r *http.Request) {
	var req EditReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.EditReply(
		r.Context(),
		middleware.GetUserID(r.Context()),
		middleware.IsAdmin(r.Context()),
		chi.URLParam(r, "postID"),
		chi.URLParam(r, "replyID"),
		req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteReply(
		r.Context(),
		middleware.GetUserID(r.Context()),
		middleware.IsAdmin(r.Context()),
		chi.URLParam(r, "postID"),
		chi.URLParam(r, "replyID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ToggleVisibility(
		r.Context(),
		middleware.IsAdmin(r.Context()),
		chi.URLParam(r, "postID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	h.listPosts(w, r, false)
}

func (h *Handler) ListPlatformPosts(w http.ResponseWriter, r *http.Request) {
	h.listPosts(w, r, true)
}

func (h *Handler) listPosts(
	w http.ResponseWriter,
	r *http.Request,
	isPlatform bool,
) {
	sortBy, ok := ParseSortField(r.URL.Query().Get("sort_by"))
	if !ok {
		core.BadRequest(w, "sort_by must be one of date, likes, replies, engagement")
		return
	}

	order, ok := ParseSortOrder(r.URL.Query().Get("order"))
	if !ok {
		core.BadRequest(w, "order must be asc or desc")
		return
	}

	posts, err := h.service.ListPosts(
		r.Context(),
		middleware.GetUserID(r.Context()),
		isPlatform,
		parseIntQuery(r, "limit", 0),
		sortBy,
		order,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, PostListResponse{Posts: posts})
}

func (h *Handler) CombinedFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.CombinedFeed(
		r.Context(),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, PostListResponse{Posts: posts})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.SearchPosts(
		r.Context(),
		middleware.GetUserID(r.Context()),
		r.URL.Query().Get("q"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, PostListResponse{Posts: posts})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetPostsStats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEditWindowExpired):
		core.JSONError(w, core.NewAppError(
			err,
			"the edit window for this content has expired",
			http.StatusForbidden,
			"EDIT_WINDOW_EXPIRED",
		))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "insufficient permissions")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "post")
	default:
		core.InternalServerError(w, err)
	}
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
