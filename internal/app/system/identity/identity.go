// Package identity extracts the authenticated caller from each
// request.
//
// Authentication itself is external: an upstream gateway verifies the
// teacher and forwards the normalized identity in a header. This core
// only reads it, and every repository and evaluator call receives the
// actor explicitly, never from ambient state.
package identity

import (
	"context"
	"net/http"

	"github.com/aalaeg1/into-EdU/internal/app/system/jsonutil"
	"github.com/aalaeg1/into-EdU/internal/app/system/normalize"
)

// DefaultHeader is the header carrying the caller's teacher email.
const DefaultHeader = "X-Teacher-Email"

type contextKey struct{}

// Middleware rejects requests without a caller identity and stores the
// normalized email in the request context. An empty headerName falls
// back to DefaultHeader.
func Middleware(headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = DefaultHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := normalize.Email(r.Header.Get(headerName))
			if email == "" {
				jsonutil.Unauthorized(w, "missing "+headerName)
				return
			}
			ctx := context.WithValue(r.Context(), contextKey{}, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the caller's normalized email, or "" when the
// request did not pass through Middleware.
func FromContext(ctx context.Context) string {
	email, _ := ctx.Value(contextKey{}).(string)
	return email
}

// WithTestIdentity injects a caller identity directly, bypassing the
// middleware. Test helper only.
func WithTestIdentity(r *http.Request, email string) *http.Request {
	ctx := context.WithValue(r.Context(), contextKey{}, normalize.Email(email))
	return r.WithContext(ctx)
}
