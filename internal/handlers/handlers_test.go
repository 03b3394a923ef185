package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"compagnie-lumen.org/web/internal/cms"
	"compagnie-lumen.org/web/internal/content"
	"compagnie-lumen.org/web/internal/locale"
)

func testSite() Site {
	return Site{
		BaseURL: "https://compagnie-lumen.org",
		Name:    "Compagnie Lumen",
		Now:     func() time.Time { return time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC) },
	}
}

func record(rel string, mutate func(*cms.Item)) cms.Item {
	crumbs := cms.BreadcrumbsOf(rel)
	it := cms.Item{RelativePath: rel, Breadcrumbs: crumbs, Locale: cms.LocaleOf("", crumbs), Title: rel}
	if mutate != nil {
		mutate(&it)
	}
	return it
}

func TestLogicalPath(t *testing.T) {
	require.Equal(t, []string{"index"}, LogicalPath("/"))
	require.Equal(t, []string{"index"}, LogicalPath(""))
	require.Equal(t, []string{"ateliers", "danse"}, LogicalPath("/ateliers/danse/"))
}

func TestContentPage(t *testing.T) {
	site := testSite()
	item := record("ateliers/danse.mdx", func(it *cms.Item) {
		it.Title = "Danse"
		it.Summary = "Atelier hebdomadaire"
		it.Body = "Un **atelier**"
	})

	data := site.Content(locale.DE, "/ateliers/danse", content.Resolution{Item: item, Locale: locale.DE, Fallback: true})
	require.Equal(t, "de", data.Lang)
	require.Equal(t, 2026, data.Year)
	require.True(t, data.Fallback)
	require.Contains(t, string(data.Page.Body), "<strong>atelier</strong>")
	require.Equal(t, "Danse | Compagnie Lumen", data.SEO.Title)
	require.Equal(t, "https://compagnie-lumen.org/ateliers/danse", data.SEO.Canonical)
	require.Len(t, data.Breadcrumbs, 3)
	require.Equal(t, "Danse", data.Breadcrumbs[2].Label)
	require.Len(t, data.SEO.JSONLD, 1)
	require.Contains(t, data.SEO.JSONLD[0], "BreadcrumbList")
	require.Equal(t, "/de/agenda", data.Nav[1].Href)
}

func TestHomePage(t *testing.T) {
	site := testSite()
	data := site.Content(locale.FR, "/", content.Resolution{Item: record("index.mdx", nil), Locale: locale.FR})
	require.Equal(t, "Compagnie Lumen", data.SEO.Title)
	require.Contains(t, data.SEO.JSONLD[0], "PerformingGroup")
	require.Len(t, data.Breadcrumbs, 1)
}

func TestNotFoundAndError(t *testing.T) {
	site := testSite()
	nf := site.NotFound(locale.EN, "/nope")
	require.Equal(t, 404, nf.Status)
	require.Equal(t, "noindex", nf.SEO.Robots)
	require.Nil(t, nf.Breadcrumbs)

	e := site.Error(locale.EN, "/nope")
	require.Equal(t, 500, e.Status)
	require.Equal(t, "error.title", e.Title)
}

func TestWithSuggestion(t *testing.T) {
	data := testSite().Layout(locale.FR, "/team", "Équipe")
	require.Nil(t, data.WithSuggestion(locale.FR, true).Suggest)
	require.Nil(t, data.WithSuggestion(locale.DE, false).Suggest)

	s := data.WithSuggestion(locale.DE, true).Suggest
	require.NotNil(t, s)
	require.Equal(t, "/de/team", s.Href)
}

func TestAgendaListing(t *testing.T) {
	site := testSite()
	items := []cms.Item{
		record("tournee.mdx", func(it *cms.Item) { it.Title = "Tournée"; it.Date = time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC) }),
		record("premiere.mdx", func(it *cms.Item) {
			it.Title = "Première"
			it.Date = time.Date(2026, 6, 15, 20, 30, 0, 0, time.UTC)
			it.Extra = map[string]any{"venue": "Théâtre", "link": "https://billets.example"}
		}),
		record("hiver.mdx", func(it *cms.Item) { it.Title = "Hiver"; it.Date = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) }),
		record("automne.mdx", func(it *cms.Item) { it.Title = "Automne"; it.Date = time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC) }),
	}
	l, jsonld := site.Agenda(locale.FR, items)
	require.Equal(t, ListAgenda, l.Kind)
	require.Len(t, l.Entries, 2)
	require.Equal(t, "Première", l.Entries[0].Title)
	require.Equal(t, "Théâtre", l.Entries[0].Venue)
	require.Equal(t, "15 juin 2026 à 20h30", l.Entries[0].Date)
	require.Equal(t, "Tournée", l.Entries[1].Title)
	require.Len(t, l.Past, 2)
	require.Equal(t, "Hiver", l.Past[0].Title)
	require.Len(t, jsonld, 2)
}

func TestTeamListing(t *testing.T) {
	items := []cms.Item{
		record("zoe.mdx", func(it *cms.Item) { it.Title = "Zoé"; it.Order = 1 }),
		record("emile.mdx", func(it *cms.Item) { it.Title = "Émile"; it.Order = 2 }),
		record("anna.mdx", func(it *cms.Item) {
			it.Title = "Anna"
			it.Order = 2
			it.Extra = map[string]any{"role": "Chorégraphe"}
		}),
	}
	l, jsonld := testSite().Team(locale.FR, items)
	var names []string
	for _, e := range l.Entries {
		names = append(names, e.Title)
	}
	require.Equal(t, []string{"Zoé", "Anna", "Émile"}, names)
	require.Equal(t, "Chorégraphe", l.Entries[1].Role)
	require.Len(t, jsonld, 3)
}

func TestSectionListing(t *testing.T) {
	items := []cms.Item{
		record("ateliers.mdx", nil),
		record("ateliers/theatre.mdx", nil),
		record("ateliers/danse.mdx", nil),
		record("ateliers/danse.en.mdx", nil),
		record("ateliers/index.mdx", nil),
		record("representations/lumen.mdx", nil),
	}
	children := SectionChildren(items, "ateliers")
	require.Equal(t, [][]string{{"ateliers", "theatre"}, {"ateliers", "danse"}}, children)

	resolved := []cms.Item{
		record("ateliers/theatre.mdx", func(it *cms.Item) { it.Title = "Theatre" }),
		record("ateliers/danse.en.mdx", func(it *cms.Item) { it.Title = "Dance" }),
	}
	l := testSite().Section(locale.EN, resolved)
	require.Equal(t, "Dance", l.Entries[0].Title)
	require.Equal(t, "/en/ateliers/danse", l.Entries[0].Href)
	require.True(t, strings.HasPrefix(l.Entries[1].Href, "/en/"))
}

func TestListingFor(t *testing.T) {
	kind, target := ListingFor(record("agenda.mdx", func(it *cms.Item) { it.Extra = map[string]any{"collection": "agenda"} }))
	require.Equal(t, "agenda", kind)
	require.Equal(t, "agenda", target)

	kind, target = ListingFor(record("ateliers.mdx", func(it *cms.Item) { it.Extra = map[string]any{"section": "ateliers"} }))
	require.Equal(t, ListSection, kind)
	require.Equal(t, "ateliers", target)

	kind, _ = ListingFor(record("about.mdx", nil))
	require.Empty(t, kind)
}
