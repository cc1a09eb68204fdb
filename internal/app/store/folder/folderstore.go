// Package folder is the folder repository: CRUD over folder records
// with ownership, share-list, and name-uniqueness invariants enforced
// against the identity directory.
//
// Every operation takes the acting teacher explicitly. A folder the
// actor cannot view is reported as errs.ErrNotFound, never
// errs.ErrForbidden, so callers cannot probe for the existence of
// other teachers' folders. ErrForbidden only ever reaches actors who
// can already see the folder.
package folder

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aalaeg1/into-EdU/internal/app/system/access"
	"github.com/aalaeg1/into-EdU/internal/app/system/normalize"
	"github.com/aalaeg1/into-EdU/internal/domain/errs"
	"github.com/aalaeg1/into-EdU/internal/domain/models"
)

// CollectionName is the MongoDB collection for folder records.
const CollectionName = "folders"

// Directory resolves teacher emails against the identity directory.
// Satisfied by teacherdir.Store.
type Directory interface {
	Missing(ctx context.Context, emails []string) ([]string, error)
}

// Store provides access to the folders collection.
type Store struct {
	c   *mongo.Collection
	dir Directory
}

// New creates a new folder store backed by the given database and
// identity directory.
func New(db *mongo.Database, dir Directory) *Store {
	return &Store{
		c:   db.Collection(CollectionName),
		dir: dir,
	}
}

// Create inserts a new empty folder owned by ownerEmail. Fails with
// errs.ErrDuplicateName when the owner already has a folder with that
// exact name.
func (s *Store) Create(ctx context.Context, ownerEmail, name string) (*models.Folder, error) {
	now := time.Now().UTC()
	f := models.Folder{
		ID:         primitive.NewObjectID(),
		Name:       normalize.FolderName(name),
		OwnerEmail: normalize.Email(ownerEmail),
		SharedWith: []models.ShareEntry{},
		Assets:     []models.Asset{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errs.ErrDuplicateName
		}
		return nil, err
	}
	return &f, nil
}

// GetViewable fetches a folder the actor can view. Missing folders and
// folders the actor has no access to are both errs.ErrNotFound.
func (s *Store) GetViewable(ctx context.Context, id primitive.ObjectID, actor string) (*models.Folder, error) {
	f, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanView(f, actor) {
		return nil, errs.ErrNotFound
	}
	return f, nil
}

// Rename changes a folder's name. Owner only. Renaming to the current
// name is a no-op success; renaming onto another folder of the same
// owner fails with errs.ErrDuplicateName.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, actor, newName string) (*models.Folder, error) {
	f, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(f, actor); err != nil {
		return nil, err
	}

	newName = normalize.FolderName(newName)
	if newName == f.Name {
		return f, nil
	}

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": newName, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Folder
	if err := res.Decode(&updated); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errs.ErrDuplicateName
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes a folder record. Owner only. The removed folder is
// returned so the caller can cascade best-effort deletion of its asset
// bytes; the record itself is removed unconditionally.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, actor string) (*models.Folder, error) {
	f, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(f, actor); err != nil {
		return nil, err
	}

	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return nil, err
	}
	return f, nil
}

// ShareInput is one share-list addition.
type ShareInput struct {
	Email string
	Role  models.ShareRole
}

// Share mutates a folder's collaborator list. Owner only.
//
// Validation is all-or-nothing: every email referenced by add and
// remove must resolve in the identity directory or nothing is applied
// and *errs.UnknownIdentitiesError reports the unknowns. Removals
// apply before additions; adding an existing collaborator overwrites
// their role; adding the owner is silently ignored.
//
// Directory validation and the apply are two steps, not one
// transaction: an identity deleted from the directory in between can
// still land in the share list. The directory is treated as
// eventually consistent.
func (s *Store) Share(ctx context.Context, id primitive.ObjectID, actor string, add []ShareInput, remove []string) (*models.Folder, error) {
	f, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(f, actor); err != nil {
		return nil, err
	}

	me := normalize.Email(actor)

	adds := make([]models.ShareEntry, 0, len(add))
	for _, in := range add {
		email := normalize.Email(in.Email)
		if email == "" || email == me {
			continue
		}
		role := models.ShareRole(normalize.Role(string(in.Role)))
		if role != models.RoleEdit {
			role = models.RoleView
		}
		adds = append(adds, models.ShareEntry{Email: email, Role: role})
	}

	removals := make([]string, 0, len(remove))
	for _, e := range remove {
		if n := normalize.Email(e); n != "" {
			removals = append(removals, n)
		}
	}

	// All-or-nothing directory check over the union of both lists.
	union := make([]string, 0, len(adds)+len(removals))
	seen := make(map[string]bool)
	for _, a := range adds {
		if !seen[a.Email] {
			seen[a.Email] = true
			union = append(union, a.Email)
		}
	}
	for _, e := range removals {
		if !seen[e] {
			seen[e] = true
			union = append(union, e)
		}
	}
	if len(union) > 0 {
		missing, err := s.dir.Missing(ctx, union)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			return nil, &errs.UnknownIdentitiesError{Emails: missing}
		}
	}

	// Apply removals first, then upsert additions.
	shared := make([]models.ShareEntry, 0, len(f.SharedWith))
	for _, entry := range f.SharedWith {
		if !contains(removals, entry.Email) {
			shared = append(shared, entry)
		}
	}
	for _, a := range adds {
		replaced := false
		for i := range shared {
			if shared[i].Email == a.Email {
				shared[i].Role = a.Role
				replaced = true
				break
			}
		}
		if !replaced {
			shared = append(shared, a)
		}
	}

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"shared_with": shared, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Folder
	if err := res.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// AddAsset appends asset metadata to a folder. Requires edit
// capability (owner or edit collaborator). The bytes themselves are
// already in the byte store under asset.StorageKey.
func (s *Store) AddAsset(ctx context.Context, id primitive.ObjectID, actor string, asset models.Asset) (*models.Asset, error) {
	f, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEdit(f, actor) {
		return nil, s.deniedErr(f, actor)
	}

	asset.UploadedAt = time.Now().UTC()
	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"assets": asset},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// RemoveAsset removes asset metadata by storage key and returns the
// removed record so the caller can drop the bytes. Requires edit
// capability; an unknown key is errs.ErrNotFound.
func (s *Store) RemoveAsset(ctx context.Context, id primitive.ObjectID, actor, storageKey string) (*models.Asset, error) {
	f, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEdit(f, actor) {
		return nil, s.deniedErr(f, actor)
	}

	removed := f.AssetByKey(storageKey)
	if removed == nil {
		return nil, errs.ErrNotFound
	}

	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$pull": bson.M{"assets": bson.M{"storage_key": storageKey}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return nil, err
	}
	out := *removed
	return &out, nil
}

// ListAccessible returns every folder the teacher owns or is a
// collaborator on, sorted by name.
func (s *Store) ListAccessible(ctx context.Context, email string) ([]models.Folder, error) {
	me := normalize.Email(email)
	cur, err := s.c.Find(ctx,
		bson.M{"$or": []bson.M{
			{"owner_email": me},
			{"shared_with.email": me},
		}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var folders []models.Folder
	if err := cur.All(ctx, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (s *Store) getByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	var f models.Folder
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// requireOwner enforces the owner-only operations. Collaborators get
// ErrForbidden; everyone else gets ErrNotFound, same as a missing
// folder.
func (s *Store) requireOwner(f *models.Folder, actor string) error {
	if access.IsOwner(f, actor) {
		return nil
	}
	return s.deniedErr(f, actor)
}

func (s *Store) deniedErr(f *models.Folder, actor string) error {
	if access.CanView(f, actor) {
		return errs.ErrForbidden
	}
	return errs.ErrNotFound
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
