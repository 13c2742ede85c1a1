// AngelaMos | 2026
// handler.go

// Package opengraph serves the server-rendered share page whose only
// job is giving social-media crawlers og:* and twitter:* meta tags.
package opengraph

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cyberlearn-io/cyberlearn-backend/internal/core"
	"github.com/cyberlearn-io/cyberlearn-backend/internal/post"
)

const descriptionLimit = 200

// PostSource resolves a post by id. Hidden posts resolve too; share
// links behave like direct-by-id access, not like the feed.
type PostSource interface {
	GetPost(
		ctx context.Context,
		actorID, postID string,
	) (*post.PostResponse, error)
}

type Handler struct {
	posts    PostSource
	baseURL  string
	siteName string
	tmpl     *template.Template
}

func NewHandler(posts PostSource, baseURL string) *Handler {
	return &Handler{
		posts:    posts,
		baseURL:  baseURL,
		siteName: "CyberLearn",
		tmpl:     template.Must(template.New("share").Parse(sharePageHTML)),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/share/posts/{postID}", h.SharePost)
}

type sharePageData struct {
	Title       string
	Description string
	URL         string
	SiteName    string
}

func (h *Handler) SharePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	p, err := h.posts.GetPost(r.Context(), "", postID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			//nolint:errcheck // nothing to do about a failed 404 write
			_, _ = w.Write([]byte("Post not found"))
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := sharePageData{
		Title:       p.AuthorName + " on CyberLearn",
		Description: truncate(p.Content, descriptionLimit),
		URL:         h.baseURL + "/share/posts/" + p.ID,
		SiteName:    h.siteName,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

const sharePageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:type" content="article">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:url" content="{{.URL}}">
<meta property="og:site_name" content="{{.SiteName}}">
<meta name="twitter:card" content="summary">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
</head>
<body>
<p>{{.Description}}</p>
</body>
</html>
`
