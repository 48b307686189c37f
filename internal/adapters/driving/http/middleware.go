package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
)

// Context keys
type contextKey string

const projectContextKey contextKey = "project_context"

// APIKeyMiddleware authenticates public requests by API key.
type APIKeyMiddleware struct {
	apiKeys driving.APIKeyService
}

// NewAPIKeyMiddleware creates an APIKeyMiddleware.
func NewAPIKeyMiddleware(apiKeys driving.APIKeyService) *APIKeyMiddleware {
	return &APIKeyMiddleware{apiKeys: apiKeys}
}

// Authenticate resolves the bearer credential to a project scope and
// adds it to the request context.
func (m *APIKeyMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := r.Header.Get("Authorization")
		if credential == "" {
			writeError(w, http.StatusUnauthorized, "missing api key")
			return
		}

		scope, err := m.apiKeys.Authenticate(r.Context(), credential)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrKeyExpired):
				writeError(w, http.StatusUnauthorized, "api key expired")
			case errors.Is(err, domain.ErrProjectInactive):
				writeError(w, http.StatusForbidden, "project inactive")
			default:
				writeError(w, http.StatusUnauthorized, "invalid api key")
			}
			return
		}

		ctx := context.WithValue(r.Context(), projectContextKey, scope)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetProjectScope retrieves the authenticated project from the request
// context.
func GetProjectScope(ctx context.Context) *domain.AuthenticatedProject {
	if ctx == nil {
		return nil
	}
	scope, ok := ctx.Value(projectContextKey).(*domain.AuthenticatedProject)
	if !ok {
		return nil
	}
	return scope
}

// RateLimitMiddleware bounds request throughput per authenticated
// project. It must run after APIKeyMiddleware.
type RateLimitMiddleware struct {
	limiter driven.RateLimiter
}

// NewRateLimitMiddleware creates a RateLimitMiddleware.
func NewRateLimitMiddleware(limiter driven.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit checks the project's window and annotates the response with
// rate-limit headers. A limiter outage fails open.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := GetProjectScope(r.Context())
		if scope == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		decision, err := m.limiter.Check(r.Context(), scope.ProjectID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", decision.ResetAt.Unix()))

		if !decision.Allowed {
			retryAfter := int(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AdminMiddleware gates management endpoints behind session tokens.
type AdminMiddleware struct {
	auth driving.AdminAuthService
}

// NewAdminMiddleware creates an AdminMiddleware.
func NewAdminMiddleware(auth driving.AdminAuthService) *AdminMiddleware {
	return &AdminMiddleware{auth: auth}
}

// Authenticate validates the session token.
func (m *AdminMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		if _, err := m.auth.Verify(token); err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "token expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractBearerToken extracts the Bearer token from Authorization header
func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// Logging middleware

// LoggingMiddleware logs HTTP requests.
type LoggingMiddleware struct {
	logger *slog.Logger
}

// NewLoggingMiddleware creates a LoggingMiddleware.
func NewLoggingMiddleware(logger *slog.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingMiddleware{logger: logger}
}

// Handler wraps an http.Handler with request logging.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		m.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", time.Since(start),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
