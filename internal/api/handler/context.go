package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saferoute/saferoute/internal/api/middleware"
)

// GetUserID retrieves the authenticated user ID from the context.
// This is a convenience wrapper around middleware.GetUserID.
func GetUserID(ctx context.Context) string {
	return middleware.GetUserID(ctx)
}

// pathParam retrieves a chi URL parameter.
func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
