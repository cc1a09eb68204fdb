package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareRole is the capability a collaborator holds on a folder.
type ShareRole string

const (
	RoleView ShareRole = "view"
	RoleEdit ShareRole = "edit"
)

// Valid reports whether the role is one of the known share roles.
func (r ShareRole) Valid() bool {
	return r == RoleView || r == RoleEdit
}

// AssetKind distinguishes plain documents from playable packages.
type AssetKind string

const (
	KindDocument AssetKind = "document"
	KindPackage  AssetKind = "package"
)

// Valid reports whether the kind is one of the known asset kinds.
func (k AssetKind) Valid() bool {
	return k == KindDocument || k == KindPackage
}

// ShareEntry grants a non-owner teacher access to a folder.
// The owner never appears in the share list.
type ShareEntry struct {
	Email string    `bson:"email" json:"email"`
	Role  ShareRole `bson:"role" json:"role"`
}

// Asset is one uploaded file inside a folder. StorageKey is the key in
// the byte store; OriginalName is the name the uploader gave the file.
type Asset struct {
	Kind         AssetKind `bson:"kind" json:"kind"`
	StorageKey   string    `bson:"storage_key" json:"storageKey"`
	OriginalName string    `bson:"original_name" json:"originalName"`
	ContentType  string    `bson:"content_type" json:"contentType"`
	Size         int64     `bson:"size" json:"size"`
	UploadedAt   time.Time `bson:"uploaded_at" json:"uploadedAt"`
}

// Folder is a teacher-owned collection of assets, optionally shared
// with other teachers. (OwnerEmail, Name) is unique per owner with
// exact case-sensitive matching; OwnerEmail never changes after
// creation.
type Folder struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	OwnerEmail string             `bson:"owner_email" json:"ownerEmail"`
	SharedWith []ShareEntry       `bson:"shared_with" json:"sharedWith"`
	Assets     []Asset            `bson:"assets" json:"assets"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

// AssetByKey returns the asset with the given storage key, or nil.
func (f *Folder) AssetByKey(key string) *Asset {
	for i := range f.Assets {
		if f.Assets[i].StorageKey == key {
			return &f.Assets[i]
		}
	}
	return nil
}

// ShareFor returns the share entry for the given (normalized) email,
// or nil if the teacher is not a collaborator.
func (f *Folder) ShareFor(email string) *ShareEntry {
	for i := range f.SharedWith {
		if f.SharedWith[i].Email == email {
			return &f.SharedWith[i]
		}
	}
	return nil
}
