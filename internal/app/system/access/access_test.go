package access

import (
	"testing"

	"github.com/aalaeg1/into-EdU/internal/domain/models"
)

func testFolder() *models.Folder {
	return &models.Folder{
		Name:       "Unit 1",
		OwnerEmail: "a@x.com",
		SharedWith: []models.ShareEntry{
			{Email: "b@x.com", Role: models.RoleView},
			{Email: "c@x.com", Role: models.RoleEdit},
		},
	}
}

func TestFor(t *testing.T) {
	f := testFolder()

	tests := []struct {
		email string
		want  Capability
	}{
		{"a@x.com", Owner},
		{"A@X.COM", Owner},
		{"  a@x.com ", Owner},
		{"b@x.com", Viewer},
		{"c@x.com", Editor},
		{"d@x.com", None},
		{"", None},
	}
	for _, tt := range tests {
		if got := For(f, tt.email); got != tt.want {
			t.Errorf("For(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestOwnerAlwaysOwner(t *testing.T) {
	// Even a share entry naming the owner must not demote them.
	f := testFolder()
	f.SharedWith = append(f.SharedWith, models.ShareEntry{Email: "a@x.com", Role: models.RoleView})

	if got := For(f, "a@x.com"); got != Owner {
		t.Errorf("For(owner) = %v, want Owner", got)
	}
}

func TestDerivedPredicates(t *testing.T) {
	f := testFolder()

	if !CanView(f, "a@x.com") || !CanView(f, "b@x.com") || !CanView(f, "c@x.com") {
		t.Error("owner, viewer, and editor should all be able to view")
	}
	if CanView(f, "d@x.com") {
		t.Error("stranger should not be able to view")
	}

	if !CanEdit(f, "a@x.com") || !CanEdit(f, "c@x.com") {
		t.Error("owner and editor should be able to edit")
	}
	if CanEdit(f, "b@x.com") {
		t.Error("viewer should not be able to edit")
	}

	if !IsOwner(f, "a@x.com") {
		t.Error("owner should hold owner capability")
	}
	if IsOwner(f, "c@x.com") {
		t.Error("editor must never hold owner capability")
	}
}

func TestCapabilityString(t *testing.T) {
	tests := []struct {
		c    Capability
		want string
	}{
		{Owner, "owner"},
		{Editor, "editor"},
		{Viewer, "viewer"},
		{None, "none"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
