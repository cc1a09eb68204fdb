// Package handles holds resolved package content in memory and hands
// out short-lived URL-like references to it.
//
// A handle is process-local: the bytes live only in this registry and
// are served from /live/{id}. Playback sessions release their handles
// explicitly when a render is superseded or closed; the TTL is a
// backstop so that an abandoned session cannot pin bytes forever.
package handles

import (
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL bounds the lifetime of a handle that is never explicitly
// released.
const DefaultTTL = 30 * time.Minute

// URLPrefix is the path under which handle bytes are served.
const URLPrefix = "/live/"

// Handle is one live reference to in-memory bytes.
type Handle struct {
	ID          string
	ContentType string
	Bytes       []byte
}

// URL returns the URL-like string the rendering surface uses to load
// this handle.
func (h *Handle) URL() string {
	return URLPrefix + h.ID
}

// Registry allocates and releases handles.
type Registry struct {
	cache  *ttlworker.Cache[string, *Handle]
	logger *zap.Logger
}

// NewRegistry creates a handle registry. A non-positive ttl falls back
// to DefaultTTL.
func NewRegistry(ttl time.Duration, logger *zap.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		cache:  ttlworker.NewCache[string, *Handle](ttl),
		logger: logger,
	}
}

// Create allocates a handle for the given bytes and returns it live.
func (r *Registry) Create(contentType string, data []byte) *Handle {
	h := &Handle{
		ID:          uuid.New().String(),
		ContentType: contentType,
		Bytes:       data,
	}
	r.cache.Set(h.ID, h)
	return h
}

// Lookup returns the handle with the given ID, or nil if it has been
// released or expired.
func (r *Registry) Lookup(id string) *Handle {
	return r.cache.Get(id)
}

// Release drops a single handle. Releasing an unknown ID is a no-op;
// release paths run on every exit route and may overlap.
func (r *Registry) Release(id string) {
	r.cache.Delete(id)
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	n := 0
	_ = r.cache.Range(func(string, *Handle) error {
		n++
		return nil
	})
	return n
}

// ReleaseAll drops every handle in the set. Used when a resolution is
// superseded or a viewing session ends.
func (r *Registry) ReleaseAll(ids []string) {
	for _, id := range ids {
		r.cache.Delete(id)
	}
	if len(ids) > 0 && r.logger != nil {
		r.logger.Debug("released handles", zap.Int("count", len(ids)))
	}
}
