package seo

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"compagnie-lumen.org/web/internal/locale"
)

func TestBuild(t *testing.T) {
	m := Build("https://compagnie-lumen.org/", "Compagnie Lumen", locale.DE, "/ateliers/danse", "Tanz", "Workshop", "/assets/img/danse.jpg")

	require.Equal(t, "Tanz | Compagnie Lumen", m.Title)
	require.Equal(t, "https://compagnie-lumen.org/de/ateliers/danse", m.Canonical)
	require.Equal(t, "de_DE", m.OG.Locale)
	require.Equal(t, "https://compagnie-lumen.org/assets/img/danse.jpg", m.OG.Image)
	require.Equal(t, "summary_large_image", m.Twitter.Card)

	require.Len(t, m.Alternates, 5)
	require.Equal(t, Alternate{Href: "https://compagnie-lumen.org/ateliers/danse", Hreflang: "fr"}, m.Alternates[0])
	require.Equal(t, "https://compagnie-lumen.org/sr/ateliers/danse", m.Alternates[3].Href)
	require.Equal(t, "x-default", m.Alternates[4].Hreflang)
}

func TestBuildHome(t *testing.T) {
	m := Build("https://compagnie-lumen.org", "Compagnie Lumen", locale.FR, "/", "Compagnie Lumen", "", "")
	require.Equal(t, "Compagnie Lumen", m.Title)
	require.Equal(t, "https://compagnie-lumen.org/", m.Canonical)
	require.Equal(t, "summary", m.Twitter.Card)
	require.Equal(t, "https://compagnie-lumen.org/en", m.Alternates[2].Href)
}

func TestJSONLD(t *testing.T) {
	start := time.Date(2026, 11, 20, 20, 30, 0, 0, time.UTC)
	out := JSON(Event("Première", "https://compagnie-lumen.org/agenda", "Théâtre de la Ville", start, "Compagnie Lumen"))
	require.True(t, strings.HasPrefix(out, "{"))
	require.Contains(t, out, `"@type":"Event"`)
	require.Contains(t, out, `"startDate":"2026-11-20T20:30:00Z"`)
	require.Contains(t, out, `"name":"Théâtre de la Ville"`)

	crumbs := BreadcrumbList([]BreadcrumbItem{{Name: "Accueil", Item: "https://compagnie-lumen.org/"}, {Name: "Ateliers", Item: "https://compagnie-lumen.org/ateliers"}})
	require.Len(t, crumbs["itemListElement"], 2)

	group := PerformingGroup("Compagnie Lumen", "https://compagnie-lumen.org", "", nil)
	require.NotContains(t, group, "sameAs")
	require.Equal(t, "", JSON(map[string]any{"bad": func() {}}))
}
