// Package access decides what a teacher may do with a folder.
//
// Evaluation is pure: no store access, no caching. Callers must fetch
// the folder fresh before asking, because a capability computed from a
// stale folder is a stale capability.
package access

import (
	"github.com/aalaeg1/into-EdU/internal/app/system/normalize"
	"github.com/aalaeg1/into-EdU/internal/domain/models"
)

// Capability is the access level a teacher holds over a folder.
type Capability int

const (
	None Capability = iota
	Viewer
	Editor
	Owner
)

// String returns the capability name for logging.
func (c Capability) String() string {
	switch c {
	case Owner:
		return "owner"
	case Editor:
		return "editor"
	case Viewer:
		return "viewer"
	default:
		return "none"
	}
}

// For computes the capability of the given teacher over the folder.
// Emails are compared after normalization, matching how the store
// persists them.
func For(folder *models.Folder, email string) Capability {
	me := normalize.Email(email)
	if me == "" {
		return None
	}
	if normalize.Email(folder.OwnerEmail) == me {
		return Owner
	}
	if s := folder.ShareFor(me); s != nil {
		if s.Role == models.RoleEdit {
			return Editor
		}
		return Viewer
	}
	return None
}

// CanView reports whether the teacher may read the folder and its
// assets.
func CanView(folder *models.Folder, email string) bool {
	return For(folder, email) >= Viewer
}

// CanEdit reports whether the teacher may add or remove assets.
func CanEdit(folder *models.Folder, email string) bool {
	return For(folder, email) >= Editor
}

// IsOwner reports whether the teacher may rename or delete the folder
// or mutate its share list. Editors never hold these rights.
func IsOwner(folder *models.Folder, email string) bool {
	return For(folder, email) == Owner
}
