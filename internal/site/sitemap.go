package site

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"compagnie-lumen.org/web/internal/cms"
	"compagnie-lumen.org/web/internal/content"
	"compagnie-lumen.org/web/internal/locale"
	"compagnie-lumen.org/web/internal/observability"
	"compagnie-lumen.org/web/internal/seo"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string        `xml:"loc"`
	LastMod    string        `xml:"lastmod,omitempty"`
	Alternates []sitemapLink `xml:"xhtml:link"`
}

type sitemapLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Sitemap builds the sitemap of every page route from the cached listing.
func (s *Site) Sitemap(r *http.Request) ([]byte, error) {
	ctx := r.Context()
	items, err := s.caches[cms.TypePages].Items(ctx, cms.TypePages)
	if err != nil {
		observability.FromContext(ctx).Warn("sitemap incomplete", zap.Error(err))
	}
	lastMod := map[string]string{}
	for _, it := range items {
		if p, ok := content.CanonicalPath(it); ok && !it.UpdatedAt.IsZero() {
			lastMod[strings.Join(p, "/")] = it.UpdatedAt.UTC().Format("2006-01-02")
		}
	}

	set := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTML: "http://www.w3.org/1999/xhtml",
	}
	for _, route := range content.Expand(locale.All(), items) {
		if !servable(route.Path) {
			continue
		}
		canonical := content.RouteParam{Locale: locale.Default, Path: route.Path}.URLPath()
		u := sitemapURL{
			Loc:     seo.AbsoluteURL(s.opts.BaseURL, route.URLPath()),
			LastMod: lastMod[strings.Join(route.Path, "/")],
		}
		for _, alt := range seo.Alternates(s.opts.BaseURL, canonical) {
			u.Alternates = append(u.Alternates, sitemapLink{Rel: "alternate", Hreflang: alt.Hreflang, Href: alt.Href})
		}
		set.URLs = append(set.URLs, u)
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("site: marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func (s *Site) sitemap(w http.ResponseWriter, r *http.Request) {
	body, err := s.Sitemap(r)
	if err != nil {
		observability.FromContext(r.Context()).Error("sitemap", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Site) robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "User-agent: *\nAllow: /\nSitemap: %s\n", seo.AbsoluteURL(s.opts.BaseURL, "/sitemap.xml"))
}
