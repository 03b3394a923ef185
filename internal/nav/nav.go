// Package nav builds locale-aware navigation, breadcrumbs and language links.
package nav

import (
	"path"
	"strings"

	"compagnie-lumen.org/web/internal/locale"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // unprefixed, e.g. "/agenda"
	LabelKey string // i18n key, e.g. "nav.agenda"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// LanguageLink points at the current page in another locale.
type LanguageLink struct {
	Locale   locale.Tag
	Href     string
	LabelKey string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/about", LabelKey: "nav.about"},
	{Path: "/agenda", LabelKey: "nav.agenda"},
	{Path: "/representations", LabelKey: "nav.representations"},
	{Path: "/ateliers", LabelKey: "nav.ateliers"},
	{Path: "/team", LabelKey: "nav.team"},
	{Path: "/contact", LabelKey: "nav.contact"},
}

// Href prefixes an unprefixed site path with the locale segment. The default locale
// is served without a prefix.
func Href(tag locale.Tag, p string) string {
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	if tag.IsDefault() || !locale.IsSupported(tag.String()) {
		return p
	}
	if p == "/" {
		return "/" + tag.String()
	}
	return "/" + tag.String() + p
}

// Build renders navigation items for tag with active state given the unprefixed
// current path.
func Build(tag locale.Tag, currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     Href(tag, it.Path),
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the unprefixed current path, starting
// with Home. Known sections use their nav label; deeper segments a prettified slug.
func Breadcrumbs(tag locale.Tag, currentPath string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: Href(tag, "/"), LabelKey: "nav.home", Active: currentPath == "/"}}
	clean := path.Clean("/" + currentPath)
	if clean == "/" {
		return crumbs
	}
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, part := range parts {
		href += "/" + part
		c := Crumb{Href: Href(tag, href), Label: titleFromSegment(part), Active: i == len(parts)-1}
		if i == 0 {
			for _, it := range Main {
				if it.Path == href {
					c.LabelKey = it.LabelKey
					break
				}
			}
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

// Languages lists the current page in every supported locale.
func Languages(current locale.Tag, currentPath string) []LanguageLink {
	tags := locale.All()
	out := make([]LanguageLink, 0, len(tags))
	for _, t := range tags {
		out = append(out, LanguageLink{
			Locale:   t,
			Href:     Href(t, currentPath),
			LabelKey: "lang." + t.String(),
			Active:   t == current,
		})
	}
	return out
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = toUpper(r[0])
	return string(r)
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
