// Package folders provides the folder JSON API: create/list/rename/
// delete, share-list management, and asset upload/download against the
// byte store.
package folders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/aalaeg1/into-EdU/internal/app/store/folder"
	"github.com/aalaeg1/into-EdU/internal/app/store/teacherdir"
	"github.com/aalaeg1/into-EdU/internal/app/system/access"
	"github.com/aalaeg1/into-EdU/internal/app/system/archive"
	"github.com/aalaeg1/into-EdU/internal/app/system/identity"
	"github.com/aalaeg1/into-EdU/internal/app/system/jsonutil"
	"github.com/aalaeg1/into-EdU/internal/app/system/normalize"
	"github.com/aalaeg1/into-EdU/internal/domain/errs"
	"github.com/aalaeg1/into-EdU/internal/domain/models"
)

const maxUploadSize = 32 << 20 // 32MB

// ByteStore is the slice of the blob store this feature needs.
// Satisfied by waffle's storage.Store implementations.
type ByteStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// Handler provides the folder API handlers.
type Handler struct {
	folders  *folder.Store
	teachers *teacherdir.Store
	blobs    ByteStore
	logger   *zap.Logger
}

// NewHandler creates a new folders Handler.
func NewHandler(db *mongo.Database, blobs ByteStore, logger *zap.Logger) *Handler {
	teachers := teacherdir.New(db)
	return &Handler{
		folders:  folder.New(db, teachers),
		teachers: teachers,
		blobs:    blobs,
		logger:   logger,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	var in createRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if err := in.Validate(); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	f, err := h.folders.Create(r.Context(), actor, in.Name)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	h.logger.Info("folder created",
		zap.String("folder", f.ID.Hex()),
		zap.String("owner", f.OwnerEmail))
	jsonutil.Created(w, f)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	folders, err := h.folders.ListAccessible(r.Context(), actor)
	if err != nil {
		h.logger.Error("failed to list folders", zap.Error(err))
		jsonutil.FromError(w, err)
		return
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	jsonutil.OK(w, folders)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())
	id, ok := folderID(w, r)
	if !ok {
		return
	}

	f, err := h.folders.GetViewable(r.Context(), id, actor)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	jsonutil.OK(w, f)
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())
	id, ok := folderID(w, r)
	if !ok {
		return
	}

	var in renameRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if err := in.Validate(); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	f, err := h.folders.Rename(r.Context(), id, actor, in.Name)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	jsonutil.OK(w, f)
}

// remove deletes the folder record, then makes a best-effort pass over
// the asset bytes. A byte that fails to delete is logged and skipped;
// the folder is gone either way.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())
	id, ok := folderID(w, r)
	if !ok {
		return
	}

	f, err := h.folders.Delete(r.Context(), id, actor)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}

	for _, a := range f.Assets {
		if err := h.blobs.Delete(r.Context(), a.StorageKey); err != nil {
			h.logger.Warn("failed to delete asset bytes",
				zap.String("folder", id.Hex()),
				zap.String("key", a.StorageKey),
				zap.Error(err))
		}
	}

	h.logger.Info("folder deleted",
		zap.String("folder", id.Hex()),
		zap.Int("assets", len(f.Assets)))
	jsonutil.NoContent(w)
}

func (h *Handler) share(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())
	id, ok := folderID(w, r)
	if !ok {
		return
	}

	var in shareRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if err := in.Validate(); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	add := make([]folder.ShareInput, 0, len(in.Add))
	for _, a := range in.Add {
		add = append(add, folder.ShareInput{
			Email: a.Email,
			Role:  models.ShareRole(a.Role),
		})
	}

	f, err := h.folders.Share(r.Context(), id, actor, add, in.Remove)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	jsonutil.OK(w, f)
}

// shares lists the owner and collaborators, enriched with directory
// names where the teacher record still exists.
func (h *Handler) shares(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())
	id, ok := folderID(w, r)
	if !ok {
		return
	}

	f, err := h.folders.GetViewable(r.Context(), id, actor)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}

	emails := make([]string, 0, len(f.SharedWith)+1)
	emails = append(emails, f.OwnerEmail)
	for _, entry := range f.SharedWith {
		emails = append(emails, entry.Email)
	}
	teachers, err := h.teachers.FindByEmails(r.Context(), emails)
	if err != nil {
		h.logger.Error("failed to resolve share teachers", zap.Error(err))
		jsonutil.FromError(w, err)
		return
	}
	byEmail := make(map[string]models.Teacher, len(teachers))
	for _, t := range teachers {
		byEmail[t.Email] = t
	}

	resp := sharesResponse{
		Owner:      enrich(f.OwnerEmail, "owner", byEmail),
		SharedWith: make([]shareView, 0, len(f.SharedWith)),
	}
	for _, entry := range f.SharedWith {
		resp.SharedWith = append(resp.SharedWith, enrich(entry.Email, string(entry.Role), byEmail))
	}
	jsonutil.OK(w, resp)
}

func enrich(email, role string, byEmail map[string]models.Teacher) shareView {
	v := shareView{Email: email, Role: role, DisplayName: email}
	if t, ok := byEmail[email]; ok {
		v.Nom = t.Nom
		v.Prenom = t.Prenom
		v.DisplayName = t.DisplayName()
	}
	return v
}

// uploadAsset stores the bytes first and the record second; a record
// failure removes the just-uploaded bytes.
func (h *Handler) uploadAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := identity.FromContext(ctx)
	id, ok := folderID(w, r)
	if !ok {
		return
	}

	// Check capability before accepting any bytes.
	f, err := h.folders.GetViewable(ctx, id, actor)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	if !access.CanEdit(f, actor) {
		jsonutil.FromError(w, errs.ErrForbidden)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonutil.BadRequest(w, "file too large (max 32MB)")
		return
	}
	upload, header, err := r.FormFile("file")
	if err != nil {
		jsonutil.BadRequest(w, "missing file field")
		return
	}
	defer upload.Close()

	kind := models.AssetKind(normalize.Kind(r.FormValue("kind")))
	if kind == "" {
		kind = models.KindDocument
		if archive.IsContainer(header.Filename) {
			kind = models.KindPackage
		}
	}
	if !kind.Valid() {
		jsonutil.BadRequest(w, "kind must be document or package")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Storage key: assets/YYYY/MM/uuid.ext
	now := time.Now().UTC()
	key := fmt.Sprintf("assets/%04d/%02d/%s%s",
		now.Year(), int(now.Month()), uuid.New().String()[:8], filepath.Ext(header.Filename))

	if err := h.blobs.Put(ctx, key, upload, &storage.PutOptions{ContentType: contentType}); err != nil {
		h.logger.Error("failed to store asset bytes",
			zap.String("folder", id.Hex()),
			zap.String("key", key),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to store file")
		return
	}

	asset := models.Asset{
		Kind:         kind,
		StorageKey:   key,
		OriginalName: header.Filename,
		ContentType:  contentType,
		Size:         header.Size,
	}
	added, err := h.folders.AddAsset(ctx, id, actor, asset)
	if err != nil {
		// Clean up the uploaded bytes on record failure.
		_ = h.blobs.Delete(ctx, key)
		jsonutil.FromError(w, err)
		return
	}

	h.logger.Info("asset uploaded",
		zap.String("folder", id.Hex()),
		zap.String("key", key),
		zap.String("kind", string(kind)),
		zap.Int64("size", header.Size))
	jsonutil.Created(w, added)
}

func (h *Handler) deleteAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := identity.FromContext(ctx)
	id, ok := folderID(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "*")

	removed, err := h.folders.RemoveAsset(ctx, id, actor, key)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}

	if err := h.blobs.Delete(ctx, removed.StorageKey); err != nil {
		h.logger.Warn("failed to delete asset bytes",
			zap.String("folder", id.Hex()),
			zap.String("key", removed.StorageKey),
			zap.Error(err))
	}
	jsonutil.NoContent(w)
}

// downloadAsset streams stored bytes inline; ?dl=1 switches to an
// attachment disposition.
func (h *Handler) downloadAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := identity.FromContext(ctx)
	id, ok := folderID(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "*")

	f, err := h.folders.GetViewable(ctx, id, actor)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	a := f.AssetByKey(key)
	if a == nil {
		jsonutil.FromError(w, errs.ErrNotFound)
		return
	}

	reader, err := h.blobs.Get(ctx, a.StorageKey)
	if err != nil {
		h.logger.Error("failed to read asset bytes",
			zap.String("key", a.StorageKey),
			zap.Error(err))
		jsonutil.NotFound(w, "file not found")
		return
	}
	defer reader.Close()

	disposition := "inline"
	if r.URL.Query().Get("dl") == "1" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, a.OriginalName))

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream asset",
			zap.String("key", a.StorageKey),
			zap.Error(err))
	}
}

// searchTeachers backs the share picker: prefix match on email and
// names, never including the caller.
func (h *Handler) searchTeachers(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	query := normalize.QueryParam(r.URL.Query().Get("q"))
	if query == "" {
		jsonutil.OK(w, []teacherView{})
		return
	}

	teachers, err := h.teachers.Search(r.Context(), query, actor, 10)
	if err != nil {
		h.logger.Error("teacher search failed", zap.Error(err))
		jsonutil.FromError(w, err)
		return
	}

	out := make([]teacherView, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, teacherView{Email: t.Email, Nom: t.Nom, Prenom: t.Prenom})
	}
	jsonutil.OK(w, out)
}

// folderID parses the folderID URL parameter. Malformed IDs read as a
// folder that does not exist.
func folderID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "folderID"))
	if err != nil {
		jsonutil.FromError(w, errs.ErrNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}
