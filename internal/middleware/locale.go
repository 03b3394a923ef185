package middleware

import (
	"net/http"
	"strings"

	"compagnie-lumen.org/web/internal/locale"
)

// Locale records the locale a route is served in and the visitor's negotiated
// preference, and sets Content-Language.
func Locale(tag locale.Tag) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLocale(r.Context(), tag)
			if al := r.Header.Get("Accept-Language"); al != "" {
				ctx = WithPreferred(ctx, locale.Match(al))
			}
			w.Header().Set("Content-Language", tag.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// VaryLocale sets Vary header for Accept-Language on dynamic responses
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}

// RedirectDefaultPrefix permanently redirects /{default}/... to the unprefixed path.
func RedirectDefaultPrefix(w http.ResponseWriter, r *http.Request) {
	prefix := "/" + locale.Default.String()
	target := strings.TrimPrefix(r.URL.Path, prefix)
	if target == "" || target[0] != '/' {
		target = "/" + target
	}
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusPermanentRedirect)
}
