package handlers

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"compagnie-lumen.org/web/internal/cms"
	"compagnie-lumen.org/web/internal/content"
	"compagnie-lumen.org/web/internal/format"
	"compagnie-lumen.org/web/internal/locale"
	"compagnie-lumen.org/web/internal/nav"
	"compagnie-lumen.org/web/internal/seo"
)

// Front matter keys that turn a page into a listing.
const (
	KeyCollection = "collection"
	KeySection    = "section"
)

// Listing kinds understood by the templates.
const (
	ListAgenda  = "agenda"
	ListTeam    = "team"
	ListSection = "section"
)

// Listing is a list of entries shown below a page body.
type Listing struct {
	Kind     string
	Entries  []Entry
	Past     []Entry
	EmptyKey string
}

// Entry is one listed record.
type Entry struct {
	Title   string
	Summary string
	Href    string
	Image   string
	Date    string
	DateISO string
	Venue   string
	Link    string
	Role    string
	start   time.Time
	order   int
}

// ListingFor returns the listing requested by a page's front matter, if any.
func ListingFor(item cms.Item) (kind, target string) {
	if c := item.String(KeyCollection); c != "" {
		return c, c
	}
	if s := item.String(KeySection); s != "" {
		return ListSection, s
	}
	return "", ""
}

// Agenda lists events split into upcoming (ascending) and past (most recent first).
// Events on the current day count as upcoming.
func (s Site) Agenda(tag locale.Tag, items []cms.Item) (*Listing, []string) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	l := &Listing{Kind: ListAgenda, EmptyKey: "agenda.empty"}
	var jsonld []string
	for _, it := range items {
		e := Entry{
			Title:   it.Title,
			Summary: it.Summary,
			Image:   it.Image,
			Date:    format.DateTime(it.Date, tag),
			DateISO: format.ISO(it.Date),
			Venue:   it.String("venue"),
			Link:    it.String("link"),
			start:   it.Date,
		}
		if !it.Date.IsZero() && it.Date.Before(today) {
			l.Past = append(l.Past, e)
			continue
		}
		l.Entries = append(l.Entries, e)
		jsonld = append(jsonld, seo.JSON(seo.Event(it.Title, e.Link, e.Venue, it.Date, s.Name)))
	}
	coll := collator(tag)
	sort.SliceStable(l.Entries, func(i, j int) bool {
		a, b := l.Entries[i], l.Entries[j]
		if !a.start.Equal(b.start) {
			return a.start.Before(b.start)
		}
		return coll.CompareString(a.Title, b.Title) < 0
	})
	sort.SliceStable(l.Past, func(i, j int) bool {
		return l.Past[i].start.After(l.Past[j].start)
	})
	return l, jsonld
}

// Team lists members by their order field, then name.
func (s Site) Team(tag locale.Tag, items []cms.Item) (*Listing, []string) {
	l := &Listing{Kind: ListTeam, EmptyKey: "team.empty"}
	var jsonld []string
	for _, it := range items {
		role := it.String("role")
		l.Entries = append(l.Entries, Entry{
			Title:   it.Title,
			Summary: it.Summary,
			Image:   it.Image,
			Role:    role,
			order:   it.Order,
		})
		jsonld = append(jsonld, seo.JSON(seo.Person(it.Title, role, it.Image)))
	}
	coll := collator(tag)
	sort.SliceStable(l.Entries, func(i, j int) bool {
		a, b := l.Entries[i], l.Entries[j]
		if a.order != b.order {
			return a.order < b.order
		}
		return coll.CompareString(a.Title, b.Title) < 0
	})
	return l, jsonld
}

// Section lists the detail pages of a section by title. Each entry links to the
// page in tag.
func (s Site) Section(tag locale.Tag, items []cms.Item) *Listing {
	l := &Listing{Kind: ListSection, EmptyKey: "section.empty"}
	for _, it := range items {
		crumbs := it.Breadcrumbs
		if len(crumbs) == 0 {
			crumbs = cms.BreadcrumbsOf(it.RelativePath)
		}
		l.Entries = append(l.Entries, Entry{
			Title:   it.Title,
			Summary: it.Summary,
			Image:   it.Image,
			Href:    nav.Href(tag, "/"+strings.Join(stripSuffixes(crumbs), "/")),
			Date:    format.Date(it.Date, tag),
		})
	}
	coll := collator(tag)
	sort.SliceStable(l.Entries, func(i, j int) bool {
		return coll.CompareString(l.Entries[i].Title, l.Entries[j].Title) < 0
	})
	return l
}

// SectionChildren selects the canonical records whose path is {segment}/{slug}.
func SectionChildren(items []cms.Item, segment string) [][]string {
	var out [][]string
	for _, it := range items {
		path, ok := content.CanonicalPath(it)
		if !ok || len(path) != 2 || path[0] != segment || path[1] == "index" {
			continue
		}
		out = append(out, path)
	}
	return out
}

func stripSuffixes(path []string) []string {
	out := make([]string, len(path))
	for i, p := range path {
		out[i] = locale.StripSuffix(p)
	}
	return out
}

func collator(tag locale.Tag) *collate.Collator {
	lang, err := language.Parse(tag.String())
	if err != nil {
		lang = language.French
	}
	return collate.New(lang, collate.IgnoreCase)
}
