package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/saferoute/saferoute/internal/api/models"
	"github.com/saferoute/saferoute/internal/auth"
)

type userIDKey struct{}

// TokenValidator validates access tokens. Satisfied by *auth.JWTService.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.JWTClaims, error)
}

// Auth returns a middleware that requires a valid JWT bearer token and puts
// the authenticated user ID on the request context.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r)
			if problem != "" {
				writeUnauthorized(w, r, problem)
				return
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrAccessTokenExpired):
					writeUnauthorized(w, r, "access token has expired")
				case errors.Is(err, auth.ErrInvalidAccessToken):
					writeUnauthorized(w, r, "invalid access token")
				default:
					writeUnauthorized(w, r, "authentication failed")
				}
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header. The Bearer
// scheme is matched case-insensitively per RFC 6750.
func bearerToken(r *http.Request) (token, problem string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing authorization header"
	}

	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "invalid authorization header format"
	}

	token = header[len(prefix):]
	if token == "" {
		return "", "missing bearer token"
	}
	return token, ""
}

// writeUnauthorized builds the 401 problem inline rather than going through
// the response package, which would import back into middleware.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	problem := models.NewUnauthorized(GetRequestID(r.Context()), detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetUserID returns the authenticated user ID from the context, or an empty
// string for unauthenticated requests.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}
