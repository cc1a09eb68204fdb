package player

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the playback session API. Identity middleware is
// applied by the bootstrap layer.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/sessions", h.createSession)
	r.Post("/sessions/{sessionID}/open", h.open)
	r.Post("/sessions/{sessionID}/close", h.close)
	return r
}

// LiveRoutes returns the unauthenticated handle-serving route. Handle
// IDs are unguessable UUIDs minted per resolution, which is the same
// trust model as the object URLs they replace.
func LiveRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/{handleID}", h.serveLive)
	return r
}
