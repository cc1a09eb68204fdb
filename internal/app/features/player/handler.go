// Package player runs playback sessions: it resolves folder assets
// into live handles and serves the handle bytes at /live/{id}.
package player

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/aalaeg1/into-EdU/internal/app/store/folder"
	"github.com/aalaeg1/into-EdU/internal/app/store/teacherdir"
	"github.com/aalaeg1/into-EdU/internal/app/system/handles"
	"github.com/aalaeg1/into-EdU/internal/app/system/identity"
	"github.com/aalaeg1/into-EdU/internal/app/system/jsonutil"
	"github.com/aalaeg1/into-EdU/internal/domain/errs"
)

// ByteReader is the read-only slice of the blob store playback needs.
type ByteReader interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
}

// Handler provides the playback API handlers.
type Handler struct {
	manager *Manager
	folders *folder.Store
	blobs   ByteReader
	reg     *handles.Registry
	logger  *zap.Logger
}

// NewHandler creates a new player Handler sharing the given handle
// registry with the /live serving route.
func NewHandler(db *mongo.Database, blobs ByteReader, reg *handles.Registry, logger *zap.Logger) *Handler {
	return &Handler{
		manager: NewManager(reg, logger),
		folders: folder.New(db, teacherdir.New(db)),
		blobs:   blobs,
		reg:     reg,
		logger:  logger,
	}
}

type openRequest struct {
	FolderID   string `json:"folder_id"`
	StorageKey string `json:"storage_key"`
}

func (p openRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FolderID, validation.Required),
		validation.Field(&p.StorageKey, validation.Required),
	)
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
	State     State  `json:"state"`
}

type openResponse struct {
	SessionID string `json:"session_id"`
	State     State  `json:"state"`
	URL       string `json:"url"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	s := h.manager.Create()
	h.logger.Debug("playback session created", zap.String("session", s.ID))
	jsonutil.Created(w, sessionResponse{SessionID: s.ID, State: s.CurrentState()})
}

// open resolves one folder asset and makes it the session's displayed
// render. The caller must be able to view the folder.
func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := identity.FromContext(ctx)

	s := h.manager.Get(chi.URLParam(r, "sessionID"))
	if s == nil {
		jsonutil.NotFound(w, "session not found")
		return
	}

	var in openRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if err := in.Validate(); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	folderID, err := primitive.ObjectIDFromHex(in.FolderID)
	if err != nil {
		jsonutil.FromError(w, errs.ErrNotFound)
		return
	}

	f, err := h.folders.GetViewable(ctx, folderID, actor)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	asset := f.AssetByKey(in.StorageKey)
	if asset == nil {
		jsonutil.FromError(w, errs.ErrNotFound)
		return
	}

	url, err := s.Open(ctx, *asset, func(ctx context.Context) ([]byte, error) {
		reader, err := h.blobs.Get(ctx, asset.StorageKey)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return io.ReadAll(reader)
	})
	if err != nil {
		h.logger.Warn("playback resolution failed",
			zap.String("session", s.ID),
			zap.String("asset", asset.OriginalName),
			zap.Error(err))
		jsonutil.FromError(w, err)
		return
	}

	h.logger.Info("playback displayed",
		zap.String("session", s.ID),
		zap.String("asset", asset.OriginalName),
		zap.String("url", url))
	jsonutil.OK(w, openResponse{SessionID: s.ID, State: s.CurrentState(), URL: url})
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if h.manager.Get(id) == nil {
		jsonutil.NotFound(w, "session not found")
		return
	}
	h.manager.Close(id)
	jsonutil.NoContent(w)
}

// serveLive streams a handle's bytes. Released and expired handles are
// indistinguishable from ones that never existed.
func (h *Handler) serveLive(w http.ResponseWriter, r *http.Request) {
	handle := h.reg.Lookup(chi.URLParam(r, "handleID"))
	if handle == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", handle.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(handle.Bytes); err != nil {
		h.logger.Warn("failed to stream handle", zap.Error(err))
	}
}
