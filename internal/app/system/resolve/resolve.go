// Package resolve turns a decoded package archive into a single
// renderable document. Every internal reference in the manifest is
// rewritten to a live handle URL so the rendered page is fully
// self-contained.
package resolve

import (
	"mime"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aalaeg1/into-EdU/internal/app/system/archive"
	"github.com/aalaeg1/into-EdU/internal/app/system/handles"
	"github.com/aalaeg1/into-EdU/internal/domain/errs"
)

// Result is one completed resolution. HandleIDs lists every handle the
// pass allocated, the render target included; the caller owns their
// release.
type Result struct {
	Target    *handles.Handle
	URLs      map[string]string // entry path -> handle URL
	HandleIDs []string
}

// manifestName is the entry-point filename, matched case-insensitively
// as a path suffix.
const manifestName = "index.html"

// Package resolves a decoded archive. It locates the unique manifest,
// materializes a handle per byte-bearing entry, rewrites every
// internal reference in the manifest text, and wraps the result into
// the render-target handle. The manifest check runs before any handle
// is allocated, so a failed resolution allocates nothing.
func Package(reg *handles.Registry, entries []archive.Entry) (*Result, error) {
	manifest, err := findManifest(entries)
	if err != nil {
		return nil, err
	}

	files := make([]archive.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDirectory {
			files = append(files, e)
		}
	}

	// Materialize handles. Entries have no ordering dependency on one
	// another, so each materializes on its own goroutine; the rewrite
	// below must not start until every handle exists, because the
	// manifest may reference any entry.
	made := make([]*handles.Handle, len(files))
	var wg sync.WaitGroup
	for i, e := range files {
		wg.Add(1)
		go func(i int, e archive.Entry) {
			defer wg.Done()
			made[i] = reg.Create(contentTypeFor(e.Path), e.Bytes)
		}(i, e)
	}
	wg.Wait()

	urls := make(map[string]string, len(files))
	ids := make([]string, 0, len(files)+1)
	for i, e := range files {
		urls[e.Path] = made[i].URL()
		ids = append(ids, made[i].ID)
	}

	// The manifest is rewritten as text, not referenced through its
	// handle.
	html := string(manifest.Bytes)
	html = rewrite(html, manifest.Path, urls)

	target := reg.Create("text/html", []byte(html))
	ids = append(ids, target.ID)

	return &Result{Target: target, URLs: urls, HandleIDs: ids}, nil
}

// Document resolves a standalone (non-archive) asset: the raw bytes
// become the render target directly through a single handle.
func Document(reg *handles.Registry, contentType string, raw []byte) *Result {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := reg.Create(contentType, raw)
	return &Result{Target: h, HandleIDs: []string{h.ID}}
}

// findManifest returns the single non-directory entry whose path ends
// in index.html, compared case-insensitively. Zero or multiple
// candidates is ErrManifestMissing: an ambiguous entry point is never
// guessed at.
func findManifest(entries []archive.Entry) (*archive.Entry, error) {
	var found *archive.Entry
	for i := range entries {
		e := &entries[i]
		if e.IsDirectory {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Path), manifestName) {
			if found != nil {
				return nil, errs.ErrManifestMissing
			}
			found = e
		}
	}
	if found == nil {
		return nil, errs.ErrManifestMissing
	}
	return found, nil
}

// rewrite replaces every internal reference in the manifest text with
// its handle URL.
//
// Paths are substituted longest first so a path that is a substring of
// another (a/b.png vs a/b.png.bak) can never match inside a reference
// that was already resolved. Each path is tried in the literal forms
// the manifest might spell it: as stored in the archive, relative to
// the manifest's directory, and the relative form prefixed with ./
// or /. Replacement is literal, so names containing pattern
// metacharacters (., +, parentheses) need no escaping.
func rewrite(html, manifestPath string, urls map[string]string) string {
	manifestDir := ""
	if i := strings.LastIndex(manifestPath, "/"); i >= 0 {
		manifestDir = manifestPath[:i]
	}

	paths := make([]string, 0, len(urls))
	for p := range urls {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) > len(paths[j])
		}
		return paths[i] < paths[j] // stable order for equal lengths
	})

	for _, p := range paths {
		rel := p
		if manifestDir != "" {
			rel = strings.TrimPrefix(p, manifestDir+"/")
		}

		candidates := []string{p, rel, "./" + rel, "/" + rel}
		seen := make(map[string]bool, len(candidates))
		for _, cand := range candidates {
			if cand == "" || seen[cand] {
				continue
			}
			seen[cand] = true
			html = strings.ReplaceAll(html, cand, urls[p])
		}
	}

	return html
}

// contentTypeFor guesses a content type from an archive entry path.
func contentTypeFor(p string) string {
	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
