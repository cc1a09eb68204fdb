// Package jsonutil provides helper functions for JSON API responses.
//
// Use these helpers in API handlers to ensure consistent JSON responses
// with proper Content-Type headers and error formatting.
package jsonutil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aalaeg1/into-EdU/internal/domain/errs"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 OK JSON response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created JSON response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 No Content response (no body).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
// The response body is {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 Unauthorized error response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden writes a 403 Forbidden error response.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Conflict writes a 409 Conflict error response.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message)
}

// InternalError writes a 500 Internal Server Error response.
// Use this for unexpected server errors. Do not expose internal details
// to clients - log the actual error separately.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

// FromError maps a domain error onto the wire.
//
// The repository hides folders the actor cannot see behind ErrNotFound,
// so a 404 here never confirms existence; ErrForbidden (403) only
// reaches callers who can already view the folder. Storage keys and
// other internals never appear in response bodies.
func FromError(w http.ResponseWriter, err error) {
	var unknown *errs.UnknownIdentitiesError
	var decode *errs.DecodeError
	var fetch *errs.FetchError

	switch {
	case errors.Is(err, errs.ErrNotFound):
		NotFound(w, "folder not found")
	case errors.Is(err, errs.ErrForbidden):
		Forbidden(w, "forbidden")
	case errors.Is(err, errs.ErrDuplicateName):
		Conflict(w, "folder name already used")
	case errors.As(err, &unknown):
		JSON(w, http.StatusBadRequest, map[string]any{
			"error":   "unknown teachers",
			"unknown": unknown.Emails,
		})
	case errors.Is(err, errs.ErrManifestMissing):
		Error(w, http.StatusUnprocessableEntity, "package has no unique index.html entry")
	case errors.As(err, &decode):
		Error(w, http.StatusUnprocessableEntity, "package archive could not be decoded")
	case errors.As(err, &fetch):
		Error(w, http.StatusBadGateway, "stored content could not be fetched")
	case errors.Is(err, errs.ErrSuperseded):
		Conflict(w, "superseded by a newer open request")
	default:
		InternalError(w, "internal error")
	}
}
