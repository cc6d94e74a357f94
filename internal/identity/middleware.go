package identity

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// Middleware resolves the caller from the Authorization bearer token, falling
// back to the session cookie. Requests it cannot resolve pass through without
// a subject; handlers decide what an anonymous caller may do.
func Middleware(v Verifier, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			subject, err := v.Verify(r.Context(), token)
			if err != nil {
				level := slog.LevelWarn
				if errors.Is(err, ErrNoToken) {
					level = slog.LevelDebug
				}
				logger.Log(r.Context(), level, "token rejected",
					"path", r.URL.Path,
					"error", err.Error(),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
