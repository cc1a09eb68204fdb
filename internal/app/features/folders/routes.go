package folders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a chi.Router with the folder API mounted. Caller
// identity middleware is applied by the bootstrap layer.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.create)
	r.Get("/", h.list)

	r.Route("/id/{folderID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.remove)
		r.Patch("/rename", h.rename)
		r.Patch("/share", h.share)
		r.Get("/shares", h.shares)
	})

	r.Route("/{folderID}/assets", func(r chi.Router) {
		r.Post("/", h.uploadAsset)
		r.Get("/*", h.downloadAsset)
		r.Delete("/*", h.deleteAsset)
	})

	return r
}

// TeacherRoutes returns the identity directory lookup used by the
// share picker.
func TeacherRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/search", h.searchTeachers)
	return r
}
