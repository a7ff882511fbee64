package session

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ca-terumi-k/todo-app-v1/internal/todo"
)

type ctxKey string

const sessionContextKey ctxKey = "todo.session"

func withSessionContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	return s, ok && s != nil
}

// StoreFromRequest returns the list of the request's session, or nil.
func StoreFromRequest(r *http.Request) *todo.Store {
	s, ok := FromContext(r.Context())
	if !ok {
		return nil
	}
	return s.Store
}

// Cookies attaches sessions to requests through a cookie.
type Cookies struct {
	registry *Registry
	name     string
	maxAge   time.Duration
}

func NewCookies(registry *Registry, name string, maxAge time.Duration) *Cookies {
	if strings.TrimSpace(name) == "" {
		name = "todo_session"
	}
	return &Cookies{registry: registry, name: name, maxAge: maxAge}
}

// Require resolves the request's session, starting a new one when the
// cookie is missing or stale, and stores it in the request context.
func (c *Cookies) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *Session
		if cookie, err := r.Cookie(c.name); err == nil {
			sess, _ = c.registry.Get(cookie.Value)
		}
		if sess == nil {
			sess = c.registry.Create()
		}
		c.setCookie(w, r, sess.ID)
		next.ServeHTTP(w, r.WithContext(withSessionContext(r.Context(), sess)))
	})
}

func (c *Cookies) RequireFunc(fn http.HandlerFunc) http.Handler {
	return c.Require(fn)
}

func (c *Cookies) setCookie(w http.ResponseWriter, r *http.Request, id string) {
	cookie := &http.Cookie{
		Name:     c.name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   shouldUseSecureCookie(r),
		SameSite: http.SameSiteLaxMode,
	}
	if c.maxAge > 0 {
		cookie.MaxAge = int(c.maxAge.Seconds())
	}
	http.SetCookie(w, cookie)
}

func shouldUseSecureCookie(r *http.Request) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TODO_COOKIE_SECURE"))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}
