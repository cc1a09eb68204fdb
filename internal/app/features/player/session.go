package player

import (
	"context"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aalaeg1/into-EdU/internal/app/system/archive"
	"github.com/aalaeg1/into-EdU/internal/app/system/handles"
	"github.com/aalaeg1/into-EdU/internal/app/system/resolve"
	"github.com/aalaeg1/into-EdU/internal/domain/errs"
	"github.com/aalaeg1/into-EdU/internal/domain/models"
)

// State is the playback session lifecycle state. A failed resolution
// is transient: the session settles back at idle so the next Open can
// retry.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateDisplayed State = "displayed"
)

// sessionTTL bounds how long an untouched session object is kept.
// Handles carry their own TTL, so an expired session cannot leak them
// past the handle backstop.
const sessionTTL = time.Hour

// render is one committed resolution: the target plus every handle the
// pass allocated. Each pass tracks its own set so that a superseded
// pass can be released without touching the pass that replaced it.
type render struct {
	token     uint64
	assetName string
	targetURL string
	handleIDs []string
}

// Session owns the playback lifecycle for one viewer. Open calls mint
// monotonically increasing tokens; only the newest token may commit its
// result, and a stale result is released the moment it arrives.
type Session struct {
	ID string

	reg    *handles.Registry
	logger *zap.Logger

	mu      sync.Mutex
	latest  uint64  // newest token handed out
	state   State
	current *render // non-nil iff state == StateDisplayed
}

// Fetcher loads the raw stored bytes of an asset.
type Fetcher func(ctx context.Context) ([]byte, error)

// Open resolves an asset and makes it the displayed render. The
// returned URL is the render target. If a newer Open supersedes this
// one while it is resolving, the stale result's handles are released
// immediately and errs.ErrSuperseded is returned.
func (s *Session) Open(ctx context.Context, asset models.Asset, fetch Fetcher) (string, error) {
	token := s.begin(asset.OriginalName)

	raw, err := fetch(ctx)
	if err != nil {
		s.fail(token)
		return "", &errs.FetchError{Err: err}
	}

	var res *resolve.Result
	if asset.Kind == models.KindPackage && archive.IsContainer(asset.OriginalName) {
		entries, err := archive.Decode(raw)
		if err != nil {
			s.fail(token)
			return "", err
		}
		res, err = resolve.Package(s.reg, entries)
		if err != nil {
			s.fail(token)
			return "", err
		}
	} else {
		// Standalone document: the raw bytes render directly.
		res = resolve.Document(s.reg, asset.ContentType, raw)
	}

	url, ok := s.commit(token, asset.OriginalName, res)
	if !ok {
		s.reg.ReleaseAll(res.HandleIDs)
		return "", errs.ErrSuperseded
	}
	return url, nil
}

// Close releases the displayed render, if any, and returns the session
// to idle. Minting a fresh token here invalidates any pass still
// resolving: its commit fails the token check and the Open caller
// releases the result instead of installing it on a closed session.
func (s *Session) Close() {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.state = StateIdle
	s.latest++
	s.mu.Unlock()

	if prev != nil {
		s.reg.ReleaseAll(prev.handleIDs)
	}
}

// CurrentState returns the session's lifecycle state.
func (s *Session) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// begin mints the request token for a new Open pass. Leaving the
// Displayed state releases the previous render here, before resolution
// starts, so the viewer never holds two live renders.
func (s *Session) begin(assetName string) uint64 {
	s.mu.Lock()
	s.latest++
	token := s.latest
	prev := s.current
	s.current = nil
	s.state = StateResolving
	s.mu.Unlock()

	if prev != nil {
		s.reg.ReleaseAll(prev.handleIDs)
	}
	s.logger.Debug("playback resolving",
		zap.String("session", s.ID),
		zap.String("asset", assetName),
		zap.Uint64("token", token),
	)
	return token
}

// commit installs the result as the displayed render, unless a newer
// token exists, in which case the caller must release the result.
func (s *Session) commit(token uint64, assetName string, res *resolve.Result) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.latest {
		// Superseded while resolving; the newer pass owns the session.
		return "", false
	}

	s.current = &render{
		token:     token,
		assetName: assetName,
		targetURL: res.Target.URL(),
		handleIDs: res.HandleIDs,
	}
	s.state = StateDisplayed
	return s.current.targetURL, true
}

// fail records a failed resolution for the newest token and returns
// the session to idle, ready for the next Open. A stale token's
// failure changes nothing.
func (s *Session) fail(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.latest {
		return
	}
	s.state = StateIdle
	s.logger.Debug("playback resolution failed",
		zap.String("session", s.ID),
		zap.Uint64("token", token),
	)
}

// Manager tracks live playback sessions by ID.
type Manager struct {
	sessions *ttlworker.Cache[string, *Session]
	reg      *handles.Registry
	logger   *zap.Logger
}

// NewManager creates a session manager backed by the given handle
// registry.
func NewManager(reg *handles.Registry, logger *zap.Logger) *Manager {
	return &Manager{
		sessions: ttlworker.NewCache[string, *Session](sessionTTL),
		reg:      reg,
		logger:   logger,
	}
}

// Create starts a new idle session.
func (m *Manager) Create() *Session {
	s := &Session{
		ID:     uuid.New().String(),
		reg:    m.reg,
		logger: m.logger,
		state:  StateIdle,
	}
	m.sessions.Set(s.ID, s)
	return s
}

// Get returns the session with the given ID, or nil.
func (m *Manager) Get(id string) *Session {
	return m.sessions.Get(id)
}

// Close releases a session's handles and forgets it.
func (m *Manager) Close(id string) {
	if s := m.sessions.Get(id); s != nil {
		s.Close()
		m.sessions.Delete(id)
	}
}
