package site

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"compagnie-lumen.org/web/internal/cms"
	"compagnie-lumen.org/web/internal/content"
	"compagnie-lumen.org/web/internal/handlers"
	"compagnie-lumen.org/web/internal/locale"
	mw "compagnie-lumen.org/web/internal/middleware"
	"compagnie-lumen.org/web/internal/observability"
)

func (s *Site) page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tag := mw.LocaleFrom(ctx)
	logger := observability.FromContext(ctx)

	unprefixed := "/" + strings.Trim(chi.URLParam(r, "*"), "/")
	logical := handlers.LogicalPath(unprefixed)
	if unprefixed != "/" && !validSegments(logical) {
		s.notFound(w, r)
		return
	}

	res, err := s.caches[cms.TypePages].ResolveWithSource(ctx, logical, tag.String())
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			s.notFound(w, r)
			return
		}
		logger.Error("resolve page", zap.Strings("path", logical), zap.Error(err))
		s.serverError(w, r)
		return
	}
	if res.Fallback {
		logger.Debug("serving default-locale content", zap.String("candidate", res.Candidate))
	}

	data := s.view.Content(tag, unprefixed, res).WithSuggestion(mw.PreferredFrom(ctx))
	s.attachListing(ctx, &data, tag, res.Item)
	s.render(w, r, http.StatusOK, data)
}

// attachListing adds the collection or section listing a page asks for. Failures
// degrade to a page without (or with a partial) listing.
func (s *Site) attachListing(ctx context.Context, data *handlers.PageData, tag locale.Tag, item cms.Item) {
	kind, target := handlers.ListingFor(item)
	if kind == "" {
		return
	}
	logger := observability.FromContext(ctx)

	switch kind {
	case handlers.ListSection:
		pages := s.caches[cms.TypePages]
		items, err := pages.Items(ctx, cms.TypePages)
		if err != nil {
			logger.Warn("section listing incomplete", zap.String("section", target), zap.Error(err))
		}
		resolved := s.resolveAll(ctx, pages, handlers.SectionChildren(items, target), tag)
		data.Listing = s.view.Section(tag, resolved)
	case cms.TypeAgenda, cms.TypeTeam:
		cache := s.caches[kind]
		items, err := cache.Items(ctx, kind)
		if err != nil {
			logger.Warn("collection listing incomplete", zap.String("collection", kind), zap.Error(err))
		}
		var paths [][]string
		for _, it := range items {
			if p, ok := content.CanonicalPath(it); ok {
				paths = append(paths, p)
			}
		}
		resolved := s.resolveAll(ctx, cache, paths, tag)
		var jsonld []string
		if kind == cms.TypeAgenda {
			data.Listing, jsonld = s.view.Agenda(tag, resolved)
		} else {
			data.Listing, jsonld = s.view.Team(tag, resolved)
		}
		data.SEO.JSONLD = append(data.SEO.JSONLD, jsonld...)
	default:
		logger.Warn("unknown listing", zap.String("kind", kind))
	}
}

func (s *Site) resolveAll(ctx context.Context, cache *content.Cache, paths [][]string, tag locale.Tag) []cms.Item {
	out := make([]cms.Item, 0, len(paths))
	for _, p := range paths {
		item, err := cache.Resolve(ctx, p, tag.String())
		if err != nil {
			if !errors.Is(err, content.ErrNotFound) {
				observability.FromContext(ctx).Warn("resolve listing entry", zap.Strings("path", p), zap.Error(err))
			}
			continue
		}
		out = append(out, item)
	}
	return out
}

func (s *Site) notFound(w http.ResponseWriter, r *http.Request) {
	tag, unprefixed := localeOfPath(r.URL.Path)
	data := s.view.NotFound(tag, unprefixed)
	s.render(w, r, http.StatusNotFound, data)
}

func (s *Site) serverError(w http.ResponseWriter, r *http.Request) {
	tag, unprefixed := localeOfPath(r.URL.Path)
	s.render(w, r, http.StatusInternalServerError, s.view.Error(tag, unprefixed))
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, data handlers.PageData) {
	data.Status = status
	if err := s.renderer.Render(w, status, data); err != nil {
		observability.FromContext(r.Context()).Error("render page", zap.Int("status", status), zap.Error(err))
	}
}

// localeOfPath splits a request path into its locale prefix and the unprefixed rest.
func localeOfPath(p string) (locale.Tag, string) {
	trimmed := strings.TrimPrefix(p, "/")
	first, rest, _ := strings.Cut(trimmed, "/")
	if tag, ok := locale.Parse(first); ok && !tag.IsDefault() && first == tag.String() {
		return tag, "/" + rest
	}
	return locale.Default, "/" + trimmed
}

// servable reports whether a route's logical path is reachable by URL: the home page
// or a path of valid segments.
func servable(path []string) bool {
	if len(path) == 1 && path[0] == "index" {
		return true
	}
	return validSegments(path)
}

// validSegments rejects segments carrying a dot, which would address translation
// records directly, and "index", which is only reachable as the directory itself.
func validSegments(path []string) bool {
	if len(path) == 0 {
		return false
	}
	for _, seg := range path {
		if seg == "" || seg == "index" || strings.ContainsAny(seg, ".\\") || strings.HasPrefix(seg, "_") {
			return false
		}
	}
	return true
}
