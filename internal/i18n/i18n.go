// Package i18n holds the interface strings of the site, one JSON file per locale.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"compagnie-lumen.org/web/internal/locale"
)

// Bundle maps locale → key → translated string.
type Bundle struct {
	dict map[locale.Tag]map[string]string
}

// Load reads {dir}/{locale}.json for every supported locale. Only the default
// locale's file is required.
func Load(dir string) (*Bundle, error) {
	b := &Bundle{dict: map[locale.Tag]map[string]string{}}
	for _, tag := range locale.All() {
		path := filepath.Join(dir, tag.String()+".json")
		raw, err := os.ReadFile(path)
		if err != nil {
			if tag.IsDefault() {
				return nil, fmt.Errorf("i18n: load locale %s: %w", tag, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", tag, err)
		}
		b.dict[tag] = m
	}
	return b, nil
}

// Has reports whether a dictionary was loaded for tag.
func (b *Bundle) Has(tag locale.Tag) bool {
	_, ok := b.dict[tag]
	return ok
}

// T returns translation for key in tag, falling back to the default locale and
// finally to the key itself.
func (b *Bundle) T(tag locale.Tag, key string) string {
	if m, ok := b.dict[tag]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := b.dict[locale.Default]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Tf is T with "{name}" placeholders replaced from pairs of name, value.
func (b *Bundle) Tf(tag locale.Tag, key string, pairs ...string) string {
	s := b.T(tag, key)
	if len(pairs) < 2 {
		return s
	}
	args := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		args = append(args, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(args...).Replace(s)
}

// Resolve chooses the best loaded locale for an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) locale.Tag {
	tag := locale.Match(acceptLang)
	if b.Has(tag) {
		return tag
	}
	return locale.Default
}
