package resolve

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aalaeg1/into-EdU/internal/app/system/archive"
	"github.com/aalaeg1/into-EdU/internal/app/system/handles"
	"github.com/aalaeg1/into-EdU/internal/domain/errs"
)

func newRegistry() *handles.Registry {
	return handles.NewRegistry(time.Minute, zap.NewNop())
}

func entry(path, content string) archive.Entry {
	return archive.Entry{Path: path, Bytes: []byte(content)}
}

func targetHTML(t *testing.T, reg *handles.Registry, res *Result) string {
	t.Helper()
	h := reg.Lookup(res.Target.ID)
	if h == nil {
		t.Fatal("render target handle not live")
	}
	return string(h.Bytes)
}

func TestPackage_RoundTrip(t *testing.T) {
	reg := newRegistry()
	entries := []archive.Entry{
		entry("index.html", `<img src="./img/logo.png">`),
		entry("img/logo.png", "png-bytes"),
	}

	res, err := Package(reg, entries)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}

	html := targetHTML(t, reg, res)
	if strings.Contains(html, "./img/logo.png") {
		t.Errorf("unresolved reference remains: %q", html)
	}
	logoURL := res.URLs["img/logo.png"]
	if logoURL == "" {
		t.Fatal("no handle URL for img/logo.png")
	}
	if got := strings.Count(html, logoURL); got != 1 {
		t.Errorf("handle URL occurs %d times, want 1 (html: %q)", got, html)
	}
}

func TestPackage_NestedManifestDirectory(t *testing.T) {
	// References relative to the manifest's own directory must resolve
	// even though the archive stores the full path.
	reg := newRegistry()
	entries := []archive.Entry{
		entry("content/index.html", `<script src="js/app.js"></script><img src="/img/logo.png">`),
		entry("content/js/app.js", "js"),
		entry("content/img/logo.png", "png"),
	}

	res, err := Package(reg, entries)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}

	html := targetHTML(t, reg, res)
	for _, ref := range []string{"js/app.js", "img/logo.png"} {
		if strings.Contains(html, `"`+ref+`"`) || strings.Contains(html, `"/`+ref+`"`) {
			t.Errorf("reference %q not rewritten: %q", ref, html)
		}
	}
}

func TestPackage_LongerPathFirst(t *testing.T) {
	reg := newRegistry()
	entries := []archive.Entry{
		entry("index.html", `<a href="a/b.png.bak">backup</a>`),
		entry("a/b.png", "short"),
		entry("a/b.png.bak", "long"),
	}

	res, err := Package(reg, entries)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}

	html := targetHTML(t, reg, res)
	bakURL := res.URLs["a/b.png.bak"]
	shortURL := res.URLs["a/b.png"]
	if !strings.Contains(html, bakURL) {
		t.Errorf("longer path's URL missing from rewritten manifest: %q", html)
	}
	// A partial match of the shorter path inside the longer reference
	// would leave shortURL followed by ".bak".
	if strings.Contains(html, shortURL+".bak") {
		t.Errorf("shorter path corrupted the longer reference: %q", html)
	}
}

func TestPackage_PatternUnsafeNames(t *testing.T) {
	// Filenames with regex metacharacters must be matched literally.
	reg := newRegistry()
	entries := []archive.Entry{
		entry("index.html", `<img src="img/logo (1)+x.png">`),
		entry("img/logo (1)+x.png", "png"),
	}

	res, err := Package(reg, entries)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}

	html := targetHTML(t, reg, res)
	if strings.Contains(html, "logo (1)+x.png") {
		t.Errorf("pattern-unsafe filename not rewritten: %q", html)
	}
	if !strings.Contains(html, res.URLs["img/logo (1)+x.png"]) {
		t.Error("handle URL for pattern-unsafe filename missing")
	}
}

func TestPackage_AmbiguousManifest(t *testing.T) {
	reg := newRegistry()
	entries := []archive.Entry{
		entry("index.html", "a"),
		entry("content/index.html", "b"),
	}

	_, err := Package(reg, entries)
	if !errors.Is(err, errs.ErrManifestMissing) {
		t.Fatalf("Package() error = %v, want ErrManifestMissing", err)
	}
}

func TestPackage_NoManifest(t *testing.T) {
	reg := newRegistry()
	entries := []archive.Entry{
		entry("img/logo.png", "png"),
	}

	_, err := Package(reg, entries)
	if !errors.Is(err, errs.ErrManifestMissing) {
		t.Fatalf("Package() error = %v, want ErrManifestMissing", err)
	}
}

func TestPackage_ManifestCaseInsensitive(t *testing.T) {
	reg := newRegistry()
	entries := []archive.Entry{
		entry("content/Index.HTML", `<p>hi</p>`),
	}

	res, err := Package(reg, entries)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	if targetHTML(t, reg, res) != "<p>hi</p>" {
		t.Error("manifest text not carried into render target")
	}
}

func TestPackage_DirectoriesIgnored(t *testing.T) {
	reg := newRegistry()
	entries := []archive.Entry{
		{Path: "img/", IsDirectory: true},
		entry("index.html", `<img src="img/a.png">`),
		entry("img/a.png", "png"),
	}

	res, err := Package(reg, entries)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	if _, ok := res.URLs["img/"]; ok {
		t.Error("directory entry received a handle")
	}
	// Files plus the render target.
	if got := len(res.HandleIDs); got != 3 {
		t.Errorf("len(HandleIDs) = %d, want 3", got)
	}
}

func TestPackage_HandleSetCoversAllEntries(t *testing.T) {
	reg := newRegistry()
	entries := []archive.Entry{
		entry("index.html", ""),
		entry("a.css", "a"),
		entry("b.js", "b"),
	}

	res, err := Package(reg, entries)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	if got := len(res.HandleIDs); got != 4 {
		t.Fatalf("len(HandleIDs) = %d, want 4", got)
	}
	for _, id := range res.HandleIDs {
		if reg.Lookup(id) == nil {
			t.Errorf("handle %s not live after resolution", id)
		}
	}

	reg.ReleaseAll(res.HandleIDs)
	for _, id := range res.HandleIDs {
		if reg.Lookup(id) != nil {
			t.Errorf("handle %s still live after release", id)
		}
	}
}

func TestDocument(t *testing.T) {
	reg := newRegistry()

	res := Document(reg, "application/pdf", []byte("%PDF"))
	if res.Target == nil || len(res.HandleIDs) != 1 {
		t.Fatalf("Document() result = %+v", res)
	}
	h := reg.Lookup(res.Target.ID)
	if h == nil {
		t.Fatal("standalone document handle not live")
	}
	if h.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q", h.ContentType)
	}
}

func TestDocument_DefaultContentType(t *testing.T) {
	reg := newRegistry()
	res := Document(reg, "", []byte("x"))
	if got := reg.Lookup(res.Target.ID).ContentType; got != "application/octet-stream" {
		t.Errorf("ContentType = %q, want application/octet-stream", got)
	}
}
