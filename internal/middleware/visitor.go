package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rahul4469/toplane-guide/context"
)

// visitorCookieMaxAge keeps a visitor id for 30 days.
const visitorCookieMaxAge = 30 * 24 * 60 * 60

type VisitorMiddleware struct {
	cookieName string
	secure     bool
}

func NewVisitorMiddleware(cookieName string, secure bool) *VisitorMiddleware {
	return &VisitorMiddleware{
		cookieName: cookieName,
		secure:     secure,
	}
}

// SetVisitor loads the visitor id from its cookie, issuing a new one when
// the cookie is missing or malformed, and stores it in the request context.
// This middleware should run on ALL page routes. The id only selects a
// display slot; it is not an authentication mechanism.
func (m *VisitorMiddleware) SetVisitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitorID := ""
		if cookie, err := r.Cookie(m.cookieName); err == nil {
			if id, err := uuid.Parse(cookie.Value); err == nil {
				visitorID = id.String()
			}
		}

		ctx := r.Context()
		if visitorID == "" {
			visitorID = uuid.NewString()
			ctx = context.ContextSetNewVisitor(ctx)
			http.SetCookie(w, &http.Cookie{
				Name:     m.cookieName,
				Value:    visitorID,
				Path:     "/",
				MaxAge:   visitorCookieMaxAge,
				HttpOnly: true,
				Secure:   m.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx = context.ContextSetVisitor(ctx, visitorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HELPER FUNCS --------------------------------------------

// CurrentVisitor returns the visitor id of the request, "" if unset.
func CurrentVisitor(r *http.Request) string {
	return context.ContextGetVisitor(r.Context())
}

// IsNewVisitor reports whether the request came without a usable visitor
// cookie, so its id was issued just now.
func IsNewVisitor(r *http.Request) bool {
	return context.ContextIsNewVisitor(r.Context())
}

// MustCurrentVisitor is like CurrentVisitor but panics if no visitor is found.
// Only use this in handlers behind SetVisitor.
func MustCurrentVisitor(r *http.Request) string {
	visitorID := context.ContextGetVisitor(r.Context())
	if visitorID == "" {
		panic("MustCurrentVisitor called without SetVisitor middleware")
	}
	return visitorID
}
