// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ViewerKey is the context key for the authenticated viewer identity.
// Exported so it can be used consistently across packages.
type ViewerKey struct{}

// WithViewerID returns a context with the viewer identity embedded.
// The identity is asserted upstream by the identity collaborator; this
// subsystem only carries it.
func WithViewerID(ctx context.Context, viewerID string) context.Context {
	return context.WithValue(ctx, ViewerKey{}, viewerID)
}

// ViewerFromContext returns the viewer identity from context, or empty
// string if no identity was asserted.
func ViewerFromContext(ctx context.Context) string {
	if v := ctx.Value(ViewerKey{}); v != nil {
		return v.(string)
	}
	return ""
}
