// Package handlers builds the view models rendered by the site templates.
package handlers

import (
	"html/template"
	"strings"
	"time"

	"compagnie-lumen.org/web/internal/cms"
	"compagnie-lumen.org/web/internal/content"
	"compagnie-lumen.org/web/internal/format"
	"compagnie-lumen.org/web/internal/i18n"
	"compagnie-lumen.org/web/internal/locale"
	"compagnie-lumen.org/web/internal/nav"
	"compagnie-lumen.org/web/internal/seo"
)

// PageData is the view model for every page using the shared layout.
type PageData struct {
	Title    string
	Lang     string
	Locale   locale.Tag
	SiteName string
	SEO      seo.Meta
	Status   int
	Year     int

	Path        string // unprefixed
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Languages   []nav.LanguageLink
	// Suggest links to the page in the visitor's preferred locale when it differs.
	Suggest *nav.LanguageLink
	// Fallback is set when the page is shown in the default locale because no
	// translation exists.
	Fallback bool

	Page    *PageView
	Listing *Listing
}

// PageView is the rendered content record.
type PageView struct {
	Title   string
	Summary string
	Image   string
	Body    template.HTML
	Date    string
	DateISO string
	Updated string
}

// Site carries the settings shared by every view model.
type Site struct {
	BaseURL string
	Name    string
	Bundle  *i18n.Bundle
	Now     func() time.Time
}

// Layout fills the fields every page needs: navigation, breadcrumbs, language links
// and SEO defaults.
func (s Site) Layout(tag locale.Tag, unprefixedPath, title string) PageData {
	if unprefixedPath == "" {
		unprefixedPath = "/"
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	crumbs := nav.Breadcrumbs(tag, unprefixedPath)
	if title != "" && len(crumbs) > 1 {
		crumbs[len(crumbs)-1].Label = title
		crumbs[len(crumbs)-1].LabelKey = ""
	}
	data := PageData{
		Title:       title,
		Lang:        tag.String(),
		Locale:      tag,
		SiteName:    s.Name,
		Status:      200,
		Year:        now.Year(),
		Path:        unprefixedPath,
		Nav:         nav.Build(tag, unprefixedPath),
		Breadcrumbs: crumbs,
		Languages:   nav.Languages(tag, unprefixedPath),
		SEO:         seo.Build(s.BaseURL, s.Name, tag, unprefixedPath, title, "", ""),
	}
	return data
}

// Content builds the view model of a resolved content page.
func (s Site) Content(tag locale.Tag, unprefixedPath string, res content.Resolution) PageData {
	item := res.Item
	data := s.Layout(tag, unprefixedPath, item.Title)
	data.Fallback = res.Fallback
	data.Page = &PageView{
		Title:   item.Title,
		Summary: item.Summary,
		Image:   item.Image,
		Body:    cms.RenderHTML(item.Body),
		Date:    format.Date(item.Date, tag),
		DateISO: format.ISO(item.Date),
		Updated: format.Date(item.UpdatedAt, tag),
	}
	data.SEO = seo.Build(s.BaseURL, s.Name, tag, unprefixedPath, item.Title, item.Summary, item.Image)
	if unprefixedPath == "/" {
		data.SEO.Title = s.Name
		data.SEO.JSONLD = append(data.SEO.JSONLD, seo.JSON(seo.PerformingGroup(s.Name, seo.AbsoluteURL(s.BaseURL, "/"), "", nil)))
	} else {
		data.SEO.JSONLD = append(data.SEO.JSONLD, seo.JSON(seo.BreadcrumbList(s.breadcrumbItems(tag, data.Breadcrumbs))))
	}
	if res.Fallback {
		data.SEO.Canonical = seo.AbsoluteURL(s.BaseURL, nav.Href(locale.Default, unprefixedPath))
	}
	return data
}

// NotFound builds the view model of the 404 page.
func (s Site) NotFound(tag locale.Tag, unprefixedPath string) PageData {
	title := s.t(tag, "notfound.title")
	data := s.Layout(tag, unprefixedPath, title)
	data.Status = 404
	data.Breadcrumbs = nil
	data.SEO.Robots = "noindex"
	data.SEO.Alternates = nil
	return data
}

// Error builds the view model of the 500 page.
func (s Site) Error(tag locale.Tag, unprefixedPath string) PageData {
	data := s.NotFound(tag, unprefixedPath)
	data.Title = s.t(tag, "error.title")
	data.SEO.Title = data.Title + " | " + s.Name
	data.Status = 500
	return data
}

// WithSuggestion sets Suggest when preferred differs from the rendered locale.
func (d PageData) WithSuggestion(preferred locale.Tag, ok bool) PageData {
	if !ok || preferred == d.Locale {
		return d
	}
	for _, l := range d.Languages {
		if l.Locale == preferred {
			link := l
			d.Suggest = &link
			break
		}
	}
	return d
}

func (s Site) breadcrumbItems(tag locale.Tag, crumbs []nav.Crumb) []seo.BreadcrumbItem {
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		name := c.Label
		if c.LabelKey != "" {
			name = s.t(tag, c.LabelKey)
		}
		items = append(items, seo.BreadcrumbItem{Name: name, Item: seo.AbsoluteURL(s.BaseURL, c.Href)})
	}
	return items
}

func (s Site) t(tag locale.Tag, key string) string {
	if s.Bundle == nil {
		return key
	}
	return s.Bundle.T(tag, key)
}

// LogicalPath maps an unprefixed URL path to the logical content path; "/" is "index".
func LogicalPath(unprefixedPath string) []string {
	trimmed := strings.Trim(unprefixedPath, "/")
	if trimmed == "" {
		return []string{"index"}
	}
	return strings.Split(trimmed, "/")
}
