package cms

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// knownFields are mapped onto Item; everything else lands in Item.Extra.
var knownFields = map[string]struct{}{
	"title":      {},
	"summary":    {},
	"locale":     {},
	"date":       {},
	"image":      {},
	"order":      {},
	"updated_at": {},
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	Locale    string `yaml:"locale"`
	Date      string `yaml:"date"`
	Image     string `yaml:"image"`
	Order     int    `yaml:"order"`
	UpdatedAt string `yaml:"updated_at"`
}

// ParseMDX builds an Item from a raw MDX document. The YAML front matter between the
// leading "---" lines populates the metadata; the rest is the body.
func ParseMDX(typeTag, relativePath string, data []byte) (Item, error) {
	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	extra := map[string]any{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Item{}, fmt.Errorf("cms: parse front matter %s/%s: %w", typeTag, relativePath, err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal([]byte(fm), &raw); err != nil {
			return Item{}, fmt.Errorf("cms: parse front matter %s/%s: %w", typeTag, relativePath, err)
		}
		for k, v := range raw {
			if _, known := knownFields[k]; known {
				continue
			}
			extra[k] = v
		}
	}

	crumbs := BreadcrumbsOf(relativePath)
	item := Item{
		Type:         typeTag,
		RelativePath: relativePath,
		Breadcrumbs:  crumbs,
		Locale:       LocaleOf(front.Locale, crumbs),
		Title:        strings.TrimSpace(front.Title),
		Summary:      strings.TrimSpace(front.Summary),
		Body:         body,
		Date:         parseContentDate(front.Date),
		Image:        strings.TrimSpace(front.Image),
		Order:        front.Order,
		UpdatedAt:    parseContentDate(front.UpdatedAt),
	}
	if len(extra) > 0 {
		item.Extra = extra
	}
	if item.Title == "" {
		item.Title = prettifySlug(item.Slug())
	}
	return item, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	input = strings.ReplaceAll(input, "\r\n", "\n")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n")
		}
	}
	return "", input
}

func parseContentDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
		"02/01/2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return slug
	}
	parts := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, part := range parts {
		runes := []rune(part)
		runes[0] = asciiUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

func asciiUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
