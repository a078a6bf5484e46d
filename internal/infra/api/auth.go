package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"tutor-onboarding/internal/infra/logging"
	"tutor-onboarding/internal/usecase"
)

const sessionCookie = "tutor_session"

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Domain string
	Secure bool
}

func setSessionCookie(w http.ResponseWriter, cfg CookieConfig, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// tokenFromRequest prefers "Authorization: Bearer" over the cookie.
func tokenFromRequest(r *http.Request) string {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return strings.TrimSpace(hdr[7:])
		}
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *usecase.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller attached by RequireAuth, or nil.
func PrincipalFrom(ctx context.Context) *usecase.Principal {
	p, _ := ctx.Value(principalKey{}).(*usecase.Principal)
	return p
}

// RequireAuth rejects requests without a live session.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.sessions.Authenticate(r.Context(), tokenFromRequest(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := logging.WithUserID(WithPrincipal(r.Context(), p), p.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
