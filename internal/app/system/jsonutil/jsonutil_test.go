package jsonutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aalaeg1/into-EdU/internal/domain/errs"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errs.ErrNotFound, http.StatusNotFound},
		{"forbidden", errs.ErrForbidden, http.StatusForbidden},
		{"duplicate", errs.ErrDuplicateName, http.StatusConflict},
		{"manifest", errs.ErrManifestMissing, http.StatusUnprocessableEntity},
		{"decode", &errs.DecodeError{Err: errors.New("bad zip")}, http.StatusUnprocessableEntity},
		{"fetch", &errs.FetchError{Err: errors.New("down")}, http.StatusBadGateway},
		{"superseded", errs.ErrSuperseded, http.StatusConflict},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestFromError_UnknownIdentities(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, &errs.UnknownIdentitiesError{Emails: []string{"ghost@x.com"}})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Error   string   `json:"error"`
		Unknown []string `json:"unknown"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Unknown) != 1 || body.Unknown[0] != "ghost@x.com" {
		t.Errorf("unknown = %v", body.Unknown)
	}
}

func TestFromError_WrappedSentinel(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, errors.Join(errors.New("context"), errs.ErrNotFound))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
