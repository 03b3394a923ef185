// Package site wires content resolution, view models and templates into the HTTP
// router shared by the web server and the static generator.
package site

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"compagnie-lumen.org/web/internal/cms"
	"compagnie-lumen.org/web/internal/content"
	"compagnie-lumen.org/web/internal/handlers"
	"compagnie-lumen.org/web/internal/i18n"
	"compagnie-lumen.org/web/internal/locale"
	mw "compagnie-lumen.org/web/internal/middleware"
)

// ContentTypes are the content types the site reads.
var ContentTypes = []string{cms.TypePages, cms.TypeAgenda, cms.TypeTeam}

// Options configures a Site.
type Options struct {
	BaseURL      string
	Name         string
	TemplatesDir string
	PublicDir    string
	Dev          bool
	Revalidate   time.Duration
	Timeout      time.Duration
	Now          func() time.Time
}

// Site serves the localized pages of the company site.
type Site struct {
	opts       Options
	logger     *zap.Logger
	enumerator *content.Enumerator
	caches     map[string]*content.Cache
	view       handlers.Site
	renderer   *Renderer
}

// New builds a Site reading from store.
func New(store cms.Store, bundle *i18n.Bundle, logger *zap.Logger, opts Options) (*Site, error) {
	if store == nil {
		return nil, errors.New("site: content store is required")
	}
	if bundle == nil {
		return nil, errors.New("site: i18n bundle is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Name == "" {
		opts.Name = bundle.T(locale.Default, "site.name")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	enumerator := content.NewEnumerator(store, logger)
	caches := make(map[string]*content.Cache, len(ContentTypes))
	for _, typeTag := range ContentTypes {
		resolver := content.NewResolver(store, typeTag, logger)
		caches[typeTag] = content.NewCache(resolver, enumerator, opts.Revalidate)
	}
	return &Site{
		opts:       opts,
		logger:     logger.Named("site"),
		enumerator: enumerator,
		caches:     caches,
		view:       handlers.Site{BaseURL: opts.BaseURL, Name: opts.Name, Bundle: bundle, Now: opts.Now},
		renderer:   NewRenderer(opts.TemplatesDir, opts.Dev, bundle),
	}, nil
}

// Enumerator exposes the route enumerator of the site's store.
func (s *Site) Enumerator() *content.Enumerator {
	return s.enumerator
}

// Renderer exposes the template renderer.
func (s *Site) Renderer() *Renderer {
	return s.renderer
}

// Purge drops every cached record and listing.
func (s *Site) Purge() {
	for _, c := range s.caches {
		c.Purge()
	}
}

// Router builds the HTTP handler.
func (s *Site) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(s.opts.Timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	if s.opts.PublicDir != "" {
		assets := http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(s.opts.PublicDir, "assets")))
		r.Handle("/assets/*", assets)
	}
	r.Get("/sitemap.xml", s.sitemap)
	r.Get("/robots.txt", s.robots)

	def := "/" + locale.Default.String()
	r.HandleFunc(def, mw.RedirectDefaultPrefix)
	r.HandleFunc(def+"/*", mw.RedirectDefaultPrefix)

	for _, tag := range locale.NonDefault() {
		r.Route("/"+tag.String(), func(r chi.Router) {
			r.Use(mw.Locale(tag))
			r.Use(mw.VaryLocale)
			r.Get("/", s.page)
			r.Get("/*", s.page)
		})
	}
	r.Group(func(r chi.Router) {
		r.Use(mw.Locale(locale.Default))
		r.Use(mw.VaryLocale)
		r.Get("/", s.page)
		r.Get("/*", s.page)
	})
	r.NotFound(s.notFound)
	return r
}

// Routes lists every page route, default locale first. Partial results are returned
// with an error wrapping content.ErrPaginationFailure.
func (s *Site) Routes(ctx context.Context) ([]content.RouteParam, error) {
	defaults, errDef := s.enumerator.EnumerateDefault(ctx, cms.TypePages)
	localized, errLoc := s.enumerator.Enumerate(ctx, cms.TypePages)
	routes := make([]content.RouteParam, 0, len(defaults)+len(localized))
	for _, r := range append(defaults, localized...) {
		if servable(r.Path) {
			routes = append(routes, r)
		}
	}
	return routes, errors.Join(errDef, errLoc)
}
