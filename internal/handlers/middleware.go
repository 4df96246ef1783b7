package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"sternwerk/internal/models"
	"sternwerk/internal/security"
	"sternwerk/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey  ContextKey = "user"
	ChildContextKey ContextKey = "child"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService  *service.AuthService
	childAuth    *service.ChildAuthService
	childService *service.ChildService
	csrf         *security.CSRFGenerator
	limiter      *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, childAuth *service.ChildAuthService, childService *service.ChildService, csrf *security.CSRFGenerator) *Middleware {
	return &Middleware{
		authService:  authService,
		childAuth:    childAuth,
		childService: childService,
		csrf:         csrf,
		limiter:      security.NewRateLimiter(20, time.Minute),
	}
}

// RequireParent requires a valid parent session cookie
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		user, err := m.authService.ValidateSession(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.ExpireCookie(r, SessionCookieName))
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireChild requires a valid child device token in the Authorization header
func (m *Middleware) RequireChild(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		childID, err := m.childAuth.ValidateToken(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		child, err := m.childService.GetChild(childID)
		if err != nil {
			// The profile behind the token may have been deleted
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ChildContextKey, child)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect validates the CSRF header for state-changing parent requests
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}

		token := r.Header.Get(CSRFHeaderName)
		if !m.csrf.ValidateToken(cookie.Value, token) {
			respondWithError(w, http.StatusForbidden, "Invalid CSRF token", "", nil)
			return
		}

		next(w, r)
	}
}

// RateLimit throttles requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.GetClientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetUserFromContext retrieves the parent user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetChildFromContext retrieves the authenticated child from the request context
func GetChildFromContext(ctx context.Context) *models.Child {
	child, ok := ctx.Value(ChildContextKey).(*models.Child)
	if !ok {
		return nil
	}
	return child
}
