package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"dsarhub/pkg/platform/secrets"
)

// JWTValidator defines the interface for validating admin JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	Subject string
	Role    string
}

// Context keys for storing authenticated caller information
type contextKeyAdminSubject struct{}
type contextKeyConnectorSource struct{}

var (
	ContextKeyAdminSubject    = contextKeyAdminSubject{}
	ContextKeyConnectorSource = contextKeyConnectorSource{}
)

// GetAdminSubject retrieves the authenticated admin subject from the context
func GetAdminSubject(ctx context.Context) string {
	subject, ok := ctx.Value(ContextKeyAdminSubject).(string)
	if !ok {
		return ""
	}
	return subject
}

// GetConnectorSource retrieves the authenticated connector name from the
// context. The identity service uses it as the default provenance label for
// merged identifiers.
func GetConnectorSource(ctx context.Context) string {
	source, ok := ctx.Value(ContextKeyConnectorSource).(string)
	if !ok {
		return ""
	}
	return source
}

const bearerPrefix = "Bearer "

// RequireAdminToken guards catalogue-management endpoints with a JWT carrying
// an admin role claim.
func RequireAdminToken(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized admin access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized admin access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}
			if claims.Role != "admin" {
				logger.WarnContext(ctx, "forbidden admin access - wrong role",
					"role", claims.Role,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}`))
				return
			}

			ctx = context.WithValue(ctx, ContextKeyAdminSubject, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireConnectorKey authenticates connector callbacks against bcrypt-hashed
// API keys. The expected header shape is "Authorization: Bearer <name>:<key>";
// on success the connector name is stamped into the context as the provenance
// source.
func RequireConnectorKey(keys map[string]string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			credential, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized connector access - missing credential",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			name, key, ok := strings.Cut(credential, ":")
			hash, known := keys[name]
			if !ok || !known || secrets.Verify(key, hash) != nil {
				logger.WarnContext(ctx, "unauthorized connector access - invalid credential",
					"connector", name,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid connector credential")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyConnectorSource, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
