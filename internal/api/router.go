package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/notestore"
	"github.com/starford/ansuz/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, is mounted at GET /events inside the auth group and
// receives mutation events from the handlers.
func NewRouter(store *notestore.Store, authEnabled bool, token string, broker *sse.Broker) chi.Router {
	h := NewHandler(store, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD and capture.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.SaveNote)
	r.Post("/notes/image", h.SaveImageNote)
	r.Post("/notes/image-url", h.SaveImageURLNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Get("/notes/{id}/image", h.ServeImage)

	// Search.
	r.Get("/search", h.Search)

	// Tag index and statistics.
	r.Get("/tags", h.AllTags)
	r.Get("/tags/recent", h.RecentTags)
	r.Get("/tags/popular", h.PopularTags)
	r.Get("/tags/statistics", h.TagStatistics)
	r.Post("/tags/refresh", h.RefreshStatistics)
	r.Get("/tags/{name}/notes", h.NotesByTag)
	r.Post("/tags/{name}/rename", h.RenameTag)
	r.Delete("/tags/{name}", h.DeleteTag)

	// Theme.
	r.Get("/theme", h.GetTheme)
	r.Put("/theme", h.SetTheme)
	r.Post("/theme/toggle", h.ToggleTheme)

	// Export / import.
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// SSE endpoint (protected by the same auth middleware).
	if broker != nil {
		r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
			broker.ServeHTTP(w, req)
		})
	}

	return r
}
