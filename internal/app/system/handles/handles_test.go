package handles

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCreateAndLookup(t *testing.T) {
	r := NewRegistry(time.Minute, zap.NewNop())

	h := r.Create("text/html", []byte("<html></html>"))
	if h.ID == "" {
		t.Fatal("handle ID is empty")
	}
	if !strings.HasPrefix(h.URL(), URLPrefix) {
		t.Errorf("URL() = %q, want %q prefix", h.URL(), URLPrefix)
	}

	got := r.Lookup(h.ID)
	if got == nil {
		t.Fatal("Lookup() returned nil for live handle")
	}
	if got.ContentType != "text/html" {
		t.Errorf("ContentType = %q", got.ContentType)
	}
	if string(got.Bytes) != "<html></html>" {
		t.Errorf("Bytes = %q", got.Bytes)
	}
}

func TestRelease(t *testing.T) {
	r := NewRegistry(time.Minute, zap.NewNop())

	h := r.Create("image/png", []byte("png"))
	r.Release(h.ID)
	if r.Lookup(h.ID) != nil {
		t.Error("Lookup() after Release() should return nil")
	}

	// Double release must be harmless.
	r.Release(h.ID)
}

func TestReleaseAll(t *testing.T) {
	r := NewRegistry(time.Minute, zap.NewNop())

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		ids = append(ids, r.Create("application/octet-stream", []byte{byte(i)}).ID)
	}
	r.ReleaseAll(ids)
	for _, id := range ids {
		if r.Lookup(id) != nil {
			t.Errorf("handle %s still live after ReleaseAll", id)
		}
	}
}

func TestHandlesAreIndependent(t *testing.T) {
	r := NewRegistry(time.Minute, zap.NewNop())

	a := r.Create("text/html", []byte("a"))
	b := r.Create("text/html", []byte("b"))
	r.Release(a.ID)

	if r.Lookup(b.ID) == nil {
		t.Error("releasing one handle must not release another")
	}
}
