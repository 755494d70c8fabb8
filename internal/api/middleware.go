// internal/api/middleware.go
package api

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/api/apiutil"
	"github.com/codr1/Padelicious/internal/api/authz"
)

type Middleware func(http.Handler) http.Handler

type requestIDKey struct{}

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

// RequestIDFromContext returns the id assigned by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", RequestIDFromContext(r.Context())).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				// Log the full stack trace
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				apiutil.WriteJSON(w, http.StatusInternalServerError, apiutil.ErrorBody{
					Error:   "internal",
					Message: "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		// Create a logger with the request ID
		logger := log.With().Str("request_id", requestID).Logger()

		// Add both the request ID and logger to context
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set default content type if not set
		if r.Header.Get("Accept") == "" {
			r.Header.Set("Accept", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// WithAdminAuth verifies the bearer token and requires a staff or admin role.
func WithAdminAuth(verifier *authz.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.Ctx(r.Context())
			ctx := r.Context()
			user, err := verifier.VerifyRequest(r)
			if err != nil {
				logger.Debug().Err(err).Msg("Admin token rejected")
			} else {
				ctx = authz.ContextWithUser(ctx, user)
			}

			if err := authz.RequireRole(ctx, authz.RoleStaff, authz.RoleAdmin); err != nil {
				switch {
				case errors.Is(err, authz.ErrUnauthenticated):
					logger.Warn().Msg("Admin access denied: unauthenticated")
					writeAuthError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				case errors.Is(err, authz.ErrForbidden):
					logger.Warn().Str("user_id", user.ID).Str("role", user.Role).Msg("Admin access denied: forbidden")
					writeAuthError(w, http.StatusForbidden, "forbidden", "staff role required")
				default:
					logger.Error().Err(err).Msg("Admin access denied: error")
					writeAuthError(w, http.StatusInternalServerError, "internal", "failed to authorize request")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	}
	apiutil.WriteJSON(w, status, apiutil.ErrorBody{Error: code, Message: message})
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
