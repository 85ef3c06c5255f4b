package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/postpilot/postpilot/internal/api/middleware"
	"github.com/postpilot/postpilot/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler    http.HandlerFunc
	GenerateHandler  http.HandlerFunc
	PostNowHandler   http.HandlerFunc
	ScheduleHandler  http.HandlerFunc
	ListPostsHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Generation fans out to the content provider; rate limit it per client.
	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}
		r.Post("/api/v1/generate-content", orNotImplemented(deps.GenerateHandler))
	})

	r.Post("/api/v1/post-to-facebook", orNotImplemented(deps.PostNowHandler))
	r.Post("/api/v1/schedule-post", orNotImplemented(deps.ScheduleHandler))
	r.Get("/api/v1/posts", orNotImplemented(deps.ListPostsHandler))

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
