// Package seo assembles page metadata: canonical URLs, hreflang alternates and
// schema.org JSON-LD payloads.
package seo

import (
	"strings"

	"compagnie-lumen.org/web/internal/locale"
	"compagnie-lumen.org/web/internal/nav"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card  string
	Image string
}

// Alternate is one <link rel="alternate" hreflang> entry.
type Alternate struct {
	Href     string
	Hreflang string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	Alternates  []Alternate
	JSONLD      []string
}

// ogLocales maps site locales to Open Graph locale codes.
var ogLocales = map[locale.Tag]string{
	locale.FR: "fr_FR",
	locale.DE: "de_DE",
	locale.EN: "en_GB",
	locale.SR: "sr_RS",
}

// AbsoluteURL joins the site base URL with a site path.
func AbsoluteURL(baseURL, p string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	return baseURL + p
}

// Alternates lists the page in every locale plus x-default, which points at the
// default locale.
func Alternates(baseURL, unprefixedPath string) []Alternate {
	tags := locale.All()
	out := make([]Alternate, 0, len(tags)+1)
	for _, t := range tags {
		out = append(out, Alternate{Href: AbsoluteURL(baseURL, nav.Href(t, unprefixedPath)), Hreflang: t.String()})
	}
	out = append(out, Alternate{Href: AbsoluteURL(baseURL, nav.Href(locale.Default, unprefixedPath)), Hreflang: "x-default"})
	return out
}

// Build fills a Meta for a page rendered in tag at unprefixedPath.
func Build(baseURL, siteName string, tag locale.Tag, unprefixedPath, title, description, image string) Meta {
	canonical := AbsoluteURL(baseURL, nav.Href(tag, unprefixedPath))
	fullTitle := siteName
	if title != "" && title != siteName {
		fullTitle = title + " | " + siteName
	}
	if image != "" && !strings.HasPrefix(image, "http://") && !strings.HasPrefix(image, "https://") {
		image = AbsoluteURL(baseURL, image)
	}
	card := "summary"
	if image != "" {
		card = "summary_large_image"
	}
	return Meta{
		Title:       fullTitle,
		Description: description,
		Canonical:   canonical,
		Robots:      "index,follow",
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Image:       image,
			Type:        "website",
			URL:         canonical,
			SiteName:    siteName,
			Locale:      ogLocales[tag],
		},
		Twitter:    Twitter{Card: card, Image: image},
		Alternates: Alternates(baseURL, unprefixedPath),
	}
}
