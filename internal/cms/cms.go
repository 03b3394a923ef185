// Package cms reads content records from the headless content store.
package cms

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"compagnie-lumen.org/web/internal/locale"
)

// ErrNotFound is returned when a content record cannot be located.
var ErrNotFound = errors.New("cms: not found")

// Extension is the file extension of content records.
const Extension = ".mdx"

// Content types published by the site.
const (
	TypePages  = "pages"
	TypeAgenda = "agenda"
	TypeTeam   = "team"
)

// Item is a single content record. Items are values; use Clone before handing one
// to code that may mutate slices or maps.
type Item struct {
	Type         string
	RelativePath string
	Breadcrumbs  []string
	Locale       locale.Tag
	Title        string
	Summary      string
	Body         string
	Date         time.Time
	Image        string
	Order        int
	Extra        map[string]any
	UpdatedAt    time.Time
}

// Page is one slice of a paginated listing.
type Page struct {
	Items      []Item
	NextCursor string
	HasMore    bool
}

// Store is the read side of the content store.
type Store interface {
	// FetchOne returns the record at relativePath or ErrNotFound.
	FetchOne(ctx context.Context, typeTag, relativePath string) (Item, error)
	// FetchPage returns the page following the after cursor; "" starts at the beginning.
	FetchPage(ctx context.Context, typeTag, after string) (Page, error)
}

// String returns the front matter field key as a trimmed string.
func (it Item) String(key string) string {
	v, ok := it.Extra[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// Slug is the last breadcrumb without any locale suffix.
func (it Item) Slug() string {
	if len(it.Breadcrumbs) == 0 {
		return ""
	}
	return locale.StripSuffix(it.Breadcrumbs[len(it.Breadcrumbs)-1])
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	cp := it
	if it.Breadcrumbs != nil {
		cp.Breadcrumbs = append([]string(nil), it.Breadcrumbs...)
	}
	if it.Extra != nil {
		cp.Extra = make(map[string]any, len(it.Extra))
		for k, v := range it.Extra {
			cp.Extra[k] = v
		}
	}
	return cp
}

// BreadcrumbsOf derives breadcrumbs from a relative path: the extension is dropped and
// the rest is split on "/". "ateliers/danse.de.mdx" yields ["ateliers", "danse.de"].
func BreadcrumbsOf(relativePath string) []string {
	p := strings.Trim(path.Clean("/"+strings.TrimSpace(relativePath)), "/")
	p = strings.TrimSuffix(p, Extension)
	p = strings.TrimSuffix(p, ".md")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}

// LocaleOf returns the locale an item is written in: the explicit front matter value
// when supported, else the filename suffix, else the default locale.
func LocaleOf(explicit string, breadcrumbs []string) locale.Tag {
	if tag, ok := locale.Parse(explicit); ok {
		return tag
	}
	if len(breadcrumbs) > 0 {
		if tag, ok := locale.SuffixOf(breadcrumbs[len(breadcrumbs)-1]); ok {
			return tag
		}
	}
	return locale.Default
}

func validTypeTag(typeTag string) bool {
	if typeTag == "" {
		return false
	}
	for _, r := range typeTag {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

// cleanRelativePath rejects absolute paths and parent references. It returns "" when
// the path must not be looked up.
func cleanRelativePath(relativePath string) string {
	relativePath = strings.TrimSpace(relativePath)
	if relativePath == "" || strings.HasPrefix(relativePath, "/") || strings.Contains(relativePath, "\\") {
		return ""
	}
	for _, seg := range strings.Split(relativePath, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ""
		}
	}
	return relativePath
}
