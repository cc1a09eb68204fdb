// Package errs defines the error taxonomy shared by the folder
// repository, the content pipeline, and the API layer.
//
// Sentinels are matched with errors.Is; the richer types carry detail
// and still match their sentinel so handlers can branch on category
// without losing specifics.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers missing folders and missing assets. For
	// non-owners it is deliberately indistinguishable from
	// ErrForbidden at the API boundary so that probing cannot reveal
	// which folder IDs exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor's capability is insufficient.
	ErrForbidden = errors.New("forbidden")

	// ErrDuplicateName means the (owner, name) pair is already taken.
	ErrDuplicateName = errors.New("folder name already used")

	// ErrSuperseded means a playback resolution finished after a newer
	// open request took over the session; its result was discarded and
	// its handles released.
	ErrSuperseded = errors.New("resolution superseded by a newer request")

	// ErrManifestMissing means an archive has zero or more than one
	// index.html entry. An ambiguous entry point is an error, never a
	// guess.
	ErrManifestMissing = errors.New("no unique index.html entry in archive")
)

// UnknownIdentitiesError reports share targets that do not resolve in
// the identity directory. The share call applies nothing when this is
// returned.
type UnknownIdentitiesError struct {
	Emails []string
}

func (e *UnknownIdentitiesError) Error() string {
	return fmt.Sprintf("unknown teachers: %s", strings.Join(e.Emails, ", "))
}

// DecodeError means the uploaded bytes are not a valid archive
// container. Terminal: decoding the same bytes again cannot succeed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid package archive: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FetchError means the stored bytes could not be retrieved from the
// byte store. A collaborator failure; the caller may retry.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching stored bytes: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
