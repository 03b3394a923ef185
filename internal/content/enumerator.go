package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"compagnie-lumen.org/web/internal/cms"
	"compagnie-lumen.org/web/internal/locale"
)

// ErrPaginationFailure wraps a failed page fetch during enumeration. Results returned
// alongside it are partial but usable.
var ErrPaginationFailure = errors.New("content: pagination failure")

// RouteParam identifies one page to pre-render.
type RouteParam struct {
	Locale locale.Tag `json:"locale"`
	Path   []string   `json:"path"`
}

// URLPath renders the route as a site path: unprefixed for the default locale and
// "/{locale}/..." otherwise. A trailing "index" segment maps to the directory.
func (p RouteParam) URLPath() string {
	segs := p.Path
	if n := len(segs); n > 0 && segs[n-1] == "index" {
		segs = segs[:n-1]
	}
	var b strings.Builder
	if !p.Locale.IsDefault() {
		b.WriteString("/")
		b.WriteString(p.Locale.String())
	}
	for _, s := range segs {
		b.WriteString("/")
		b.WriteString(s)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// Enumerator walks every page of a content type.
type Enumerator struct {
	store  cms.Store
	logger *zap.Logger
}

// NewEnumerator returns an enumerator reading from store.
func NewEnumerator(store cms.Store, logger *zap.Logger) *Enumerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enumerator{store: store, logger: logger.Named("enumerator")}
}

// Items accumulates every record of typeTag in store order. Pagination stops when the
// store reports no more pages or a page is empty. On a failed fetch the items gathered
// so far are returned with an error wrapping ErrPaginationFailure.
func (e *Enumerator) Items(ctx context.Context, typeTag string) ([]cms.Item, error) {
	var items []cms.Item
	after := ""
	seen := map[string]struct{}{}
	for pageNum := 1; ; pageNum++ {
		page, err := e.store.FetchPage(ctx, typeTag, after)
		if err != nil {
			e.logger.Warn("pagination stopped",
				zap.String("type", typeTag),
				zap.Int("page", pageNum),
				zap.Int("items", len(items)),
				zap.Error(err),
			)
			return items, fmt.Errorf("%w: %s page %d: %w", ErrPaginationFailure, typeTag, pageNum, err)
		}
		if len(page.Items) == 0 {
			break
		}
		items = append(items, page.Items...)
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		if _, dup := seen[page.NextCursor]; dup {
			e.logger.Warn("pagination cursor repeated", zap.String("type", typeTag), zap.Int("page", pageNum))
			break
		}
		seen[page.NextCursor] = struct{}{}
		after = page.NextCursor
	}
	return items, nil
}

// Enumerate returns one RouteParam per non-default locale and canonical record of
// typeTag, locales in LocaleSet order and records in store order. Records whose last
// breadcrumb carries a locale suffix are translations and are skipped.
func (e *Enumerator) Enumerate(ctx context.Context, typeTag string) ([]RouteParam, error) {
	items, err := e.Items(ctx, typeTag)
	return Expand(locale.NonDefault(), items), err
}

// EnumerateDefault returns the unprefixed default-locale routes of typeTag with the same
// filtering rule as Enumerate.
func (e *Enumerator) EnumerateDefault(ctx context.Context, typeTag string) ([]RouteParam, error) {
	items, err := e.Items(ctx, typeTag)
	return Expand([]locale.Tag{locale.Default}, items), err
}

// Expand pairs every locale with every canonical item, locale-major.
func Expand(locales []locale.Tag, items []cms.Item) []RouteParam {
	routes := make([]RouteParam, 0, len(locales)*len(items))
	for _, loc := range locales {
		for _, item := range items {
			if path, ok := CanonicalPath(item); ok {
				routes = append(routes, RouteParam{Locale: loc, Path: path})
			}
		}
	}
	return routes
}

// CanonicalPath returns the item's breadcrumbs with locale suffixes removed, or false
// when the item is itself a translation.
func CanonicalPath(item cms.Item) ([]string, bool) {
	crumbs := item.Breadcrumbs
	if len(crumbs) == 0 {
		crumbs = cms.BreadcrumbsOf(item.RelativePath)
	}
	if len(crumbs) == 0 || locale.HasSuffix(crumbs[len(crumbs)-1]) {
		return nil, false
	}
	path := make([]string, len(crumbs))
	for i, c := range crumbs {
		path[i] = locale.StripSuffix(c)
	}
	return path, true
}

// Canonical filters items down to canonical (non-translation) records.
func Canonical(items []cms.Item) []cms.Item {
	out := make([]cms.Item, 0, len(items))
	for _, it := range items {
		if _, ok := CanonicalPath(it); ok {
			out = append(out, it)
		}
	}
	return out
}
