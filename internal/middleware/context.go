package middleware

import (
	"context"

	"compagnie-lumen.org/web/internal/locale"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyLocale    ctxKey = "locale"
	ctxKeyPreferred ctxKey = "preferred_locale"
)

// WithLocale stores the locale the response is rendered in.
func WithLocale(ctx context.Context, tag locale.Tag) context.Context {
	return context.WithValue(ctx, ctxKeyLocale, tag)
}

// LocaleFrom returns the request locale, or the default locale.
func LocaleFrom(ctx context.Context) locale.Tag {
	if v, ok := ctx.Value(ctxKeyLocale).(locale.Tag); ok && v != "" {
		return v
	}
	return locale.Default
}

// WithPreferred stores the locale negotiated from Accept-Language.
func WithPreferred(ctx context.Context, tag locale.Tag) context.Context {
	return context.WithValue(ctx, ctxKeyPreferred, tag)
}

// PreferredFrom returns the negotiated locale and whether one was recorded.
func PreferredFrom(ctx context.Context) (locale.Tag, bool) {
	v, ok := ctx.Value(ctxKeyPreferred).(locale.Tag)
	return v, ok && v != ""
}
