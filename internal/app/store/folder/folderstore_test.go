package folder

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aalaeg1/into-EdU/internal/app/store/teacherdir"
	"github.com/aalaeg1/into-EdU/internal/domain/errs"
	"github.com/aalaeg1/into-EdU/internal/domain/models"
	"github.com/aalaeg1/into-EdU/internal/testutil"
)

const (
	owner    = "owner@school.edu"
	editor   = "editor@school.edu"
	viewer   = "viewer@school.edu"
	stranger = "stranger@school.edu"
)

// setup returns a folder store whose directory knows owner, editor,
// viewer and stranger.
func setup(t *testing.T) *Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	dir := teacherdir.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	for _, email := range []string{owner, editor, viewer, stranger} {
		if _, err := dir.Create(ctx, models.Teacher{Email: email}); err != nil {
			t.Fatalf("seed teacher %s: %v", email, err)
		}
	}
	return New(db, dir)
}

func mustCreate(t *testing.T, s *Store, ownerEmail, name string) *models.Folder {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f, err := s.Create(ctx, ownerEmail, name)
	if err != nil {
		t.Fatalf("Create(%q, %q) error = %v", ownerEmail, name, err)
	}
	return f
}

func mustShare(t *testing.T, s *Store, id primitive.ObjectID, actor string, add []ShareInput) *models.Folder {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f, err := s.Share(ctx, id, actor, add, nil)
	if err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	return f
}

func TestCreate(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := mustCreate(t, s, owner, "Algebra")
	if f.Name != "Algebra" || f.OwnerEmail != owner {
		t.Errorf("created folder = %q owned by %q", f.Name, f.OwnerEmail)
	}
	if f.SharedWith == nil || f.Assets == nil {
		t.Error("new folder should have empty, non-nil share and asset lists")
	}

	if _, err := s.Create(ctx, owner, "Algebra"); !errors.Is(err, errs.ErrDuplicateName) {
		t.Errorf("duplicate create error = %v, want ErrDuplicateName", err)
	}

	// Same name under a different owner is fine.
	if _, err := s.Create(ctx, editor, "Algebra"); err != nil {
		t.Errorf("create under other owner error = %v", err)
	}

	// Names are case-sensitive: "algebra" is a different folder.
	if _, err := s.Create(ctx, owner, "algebra"); err != nil {
		t.Errorf("create with different case error = %v", err)
	}
}

func TestGetViewable(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := mustCreate(t, s, owner, "Geometry")
	mustShare(t, s, f.ID, owner, []ShareInput{{Email: viewer, Role: models.RoleView}})

	for _, actor := range []string{owner, viewer} {
		if _, err := s.GetViewable(ctx, f.ID, actor); err != nil {
			t.Errorf("GetViewable as %s error = %v", actor, err)
		}
	}

	// Non-collaborators cannot tell the folder exists.
	if _, err := s.GetViewable(ctx, f.ID, stranger); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("GetViewable as stranger error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetViewable(ctx, primitive.NewObjectID(), owner); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("GetViewable missing id error = %v, want ErrNotFound", err)
	}
}

func TestRename(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := mustCreate(t, s, owner, "Drafts")
	mustCreate(t, s, owner, "Published")
	mustShare(t, s, f.ID, owner, []ShareInput{{Email: editor, Role: models.RoleEdit}})

	updated, err := s.Rename(ctx, f.ID, owner, "Lessons")
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if updated.Name != "Lessons" {
		t.Errorf("renamed folder name = %q, want %q", updated.Name, "Lessons")
	}

	// Renaming to the current name succeeds without change.
	if _, err := s.Rename(ctx, f.ID, owner, "Lessons"); err != nil {
		t.Errorf("self-rename error = %v", err)
	}

	// Colliding with another folder of the same owner fails.
	if _, err := s.Rename(ctx, f.ID, owner, "Published"); !errors.Is(err, errs.ErrDuplicateName) {
		t.Errorf("rename collision error = %v, want ErrDuplicateName", err)
	}

	// Edit collaborators cannot rename; strangers cannot see the folder.
	if _, err := s.Rename(ctx, f.ID, editor, "Hijacked"); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("rename as editor error = %v, want ErrForbidden", err)
	}
	if _, err := s.Rename(ctx, f.ID, stranger, "Hijacked"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("rename as stranger error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := mustCreate(t, s, owner, "Old Units")
	mustShare(t, s, f.ID, owner, []ShareInput{{Email: editor, Role: models.RoleEdit}})

	if _, err := s.Delete(ctx, f.ID, editor); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("delete as editor error = %v, want ErrForbidden", err)
	}
	if _, err := s.Delete(ctx, f.ID, stranger); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("delete as stranger error = %v, want ErrNotFound", err)
	}

	removed, err := s.Delete(ctx, f.ID, owner)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if removed.ID != f.ID {
		t.Errorf("deleted folder id = %v, want %v", removed.ID, f.ID)
	}
	if _, err := s.GetViewable(ctx, f.ID, owner); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("get after delete error = %v, want ErrNotFound", err)
	}
}

func TestShare(t *testing.T) {
	s := setup(t)
	_, cancel := testutil.TestContext()
	defer cancel()

	f := mustCreate(t, s, owner, "Physics")

	updated := mustShare(t, s, f.ID, owner, []ShareInput{
		{Email: "  Viewer@School.EDU ", Role: models.RoleView},
		{Email: editor, Role: models.RoleEdit},
	})
	if len(updated.SharedWith) != 2 {
		t.Fatalf("share list length = %d, want 2", len(updated.SharedWith))
	}
	if got := updated.ShareFor(viewer); got == nil || got.Role != models.RoleView {
		t.Errorf("viewer share entry = %+v", got)
	}
	if got := updated.ShareFor(editor); got == nil || got.Role != models.RoleEdit {
		t.Errorf("editor share entry = %+v", got)
	}
}

func TestShareOverwritesRole(t *testing.T) {
	s := setup(t)

	f := mustCreate(t, s, owner, "Chemistry")
	mustShare(t, s, f.ID, owner, []ShareInput{{Email: viewer, Role: models.RoleView}})
	updated := mustShare(t, s, f.ID, owner, []ShareInput{{Email: viewer, Role: models.RoleEdit}})

	if len(updated.SharedWith) != 1 {
		t.Fatalf("share list length = %d, want 1 (role change must not duplicate)", len(updated.SharedWith))
	}
	if updated.SharedWith[0].Role != models.RoleEdit {
		t.Errorf("role after re-share = %q, want edit", updated.SharedWith[0].Role)
	}
}

func TestShareIgnoresOwnerAndDefaultsRole(t *testing.T) {
	s := setup(t)

	f := mustCreate(t, s, owner, "Biology")
	updated := mustShare(t, s, f.ID, owner, []ShareInput{
		{Email: owner, Role: models.RoleEdit},
		{Email: viewer, Role: "admin"},
	})

	if len(updated.SharedWith) != 1 {
		t.Fatalf("share list length = %d, want 1 (owner must be skipped)", len(updated.SharedWith))
	}
	entry := updated.SharedWith[0]
	if entry.Email != viewer || entry.Role != models.RoleView {
		t.Errorf("entry = %+v, want viewer with view role", entry)
	}
}

func TestShareUnknownIdentityIsAllOrNothing(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := mustCreate(t, s, owner, "History")

	_, err := s.Share(ctx, f.ID, owner, []ShareInput{
		{Email: viewer, Role: models.RoleView},
		{Email: "ghost@school.edu", Role: models.RoleView},
	}, nil)

	var unknown *errs.UnknownIdentitiesError
	if !errors.As(err, &unknown) {
		t.Fatalf("Share() error = %v, want UnknownIdentitiesError", err)
	}
	if len(unknown.Emails) != 1 || unknown.Emails[0] != "ghost@school.edu" {
		t.Errorf("unknown emails = %v", unknown.Emails)
	}

	// Nothing was applied, not even the valid entry.
	current, err := s.GetViewable(ctx, f.ID, owner)
	if err != nil {
		t.Fatalf("GetViewable() error = %v", err)
	}
	if len(current.SharedWith) != 0 {
		t.Errorf("share list after failed share = %v, want empty", current.SharedWith)
	}
}

func TestShareRemoveBeforeAdd(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := mustCreate(t, s, owner, "Music")
	mustShare(t, s, f.ID, owner, []ShareInput{{Email: viewer, Role: models.RoleView}})

	// Remove and re-add in one call: the addition wins.
	updated, err := s.Share(ctx, f.ID, owner,
		[]ShareInput{{Email: viewer, Role: models.RoleEdit}},
		[]string{viewer},
	)
	if err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	if len(updated.SharedWith) != 1 || updated.SharedWith[0].Role != models.RoleEdit {
		t.Errorf("share list = %+v, want single edit entry", updated.SharedWith)
	}

	// Pure removal.
	updated, err = s.Share(ctx, f.ID, owner, nil, []string{viewer})
	if err != nil {
		t.Fatalf("Share() removal error = %v", err)
	}
	if len(updated.SharedWith) != 0 {
		t.Errorf("share list after removal = %+v, want empty", updated.SharedWith)
	}
}

func TestShareOwnerOnly(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := mustCreate(t, s, owner, "Art")
	mustShare(t, s, f.ID, owner, []ShareInput{{Email: editor, Role: models.RoleEdit}})

	if _, err := s.Share(ctx, f.ID, editor, []ShareInput{{Email: viewer, Role: models.RoleView}}, nil); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("share as editor error = %v, want ErrForbidden", err)
	}
	if _, err := s.Share(ctx, f.ID, stranger, nil, []string{editor}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("share as stranger error = %v, want ErrNotFound", err)
	}
}

func TestAssets(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := mustCreate(t, s, owner, "Uploads")
	mustShare(t, s, f.ID, owner, []ShareInput{
		{Email: editor, Role: models.RoleEdit},
		{Email: viewer, Role: models.RoleView},
	})

	asset := models.Asset{
		Kind:         models.KindPackage,
		StorageKey:   "assets/2026/08/abc123",
		OriginalName: "lesson.h5p",
		ContentType:  "application/zip",
		Size:         1024,
	}

	// Editors may add.
	added, err := s.AddAsset(ctx, f.ID, editor, asset)
	if err != nil {
		t.Fatalf("AddAsset() error = %v", err)
	}
	if added.UploadedAt.IsZero() {
		t.Error("AddAsset() should stamp UploadedAt")
	}

	// Viewers may not add or remove.
	if _, err := s.AddAsset(ctx, f.ID, viewer, asset); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("AddAsset as viewer error = %v, want ErrForbidden", err)
	}
	if _, err := s.RemoveAsset(ctx, f.ID, viewer, asset.StorageKey); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("RemoveAsset as viewer error = %v, want ErrForbidden", err)
	}
	if _, err := s.AddAsset(ctx, f.ID, stranger, asset); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("AddAsset as stranger error = %v, want ErrNotFound", err)
	}

	// Unknown key.
	if _, err := s.RemoveAsset(ctx, f.ID, owner, "assets/nope"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("RemoveAsset unknown key error = %v, want ErrNotFound", err)
	}

	removed, err := s.RemoveAsset(ctx, f.ID, owner, asset.StorageKey)
	if err != nil {
		t.Fatalf("RemoveAsset() error = %v", err)
	}
	if removed.OriginalName != asset.OriginalName {
		t.Errorf("removed asset = %+v", removed)
	}

	current, err := s.GetViewable(ctx, f.ID, owner)
	if err != nil {
		t.Fatalf("GetViewable() error = %v", err)
	}
	if len(current.Assets) != 0 {
		t.Errorf("assets after removal = %+v, want empty", current.Assets)
	}
}

func TestListAccessible(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := mustCreate(t, s, owner, "B Mine")
	theirs := mustCreate(t, s, editor, "A Theirs")
	mustCreate(t, s, editor, "Private")
	mustShare(t, s, theirs.ID, editor, []ShareInput{{Email: owner, Role: models.RoleView}})

	folders, err := s.ListAccessible(ctx, owner)
	if err != nil {
		t.Fatalf("ListAccessible() error = %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("ListAccessible() returned %d folders, want 2", len(folders))
	}
	// Sorted by name.
	if folders[0].ID != theirs.ID || folders[1].ID != mine.ID {
		t.Errorf("order = [%s, %s], want [A Theirs, B Mine]", folders[0].Name, folders[1].Name)
	}
}
