// Package format renders dates for the site's locales.
package format

import (
	"fmt"
	"time"

	"compagnie-lumen.org/web/internal/locale"
)

var months = map[locale.Tag][12]string{
	locale.FR: {"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
	locale.DE: {"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
	locale.EN: {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	locale.SR: {"januar", "februar", "mart", "april", "maj", "jun", "jul", "avgust", "septembar", "oktobar", "novembar", "decembar"},
}

// Date formats t as a long date, e.g. "14 mai 2026" or "14. Mai 2026".
// The zero time renders as "".
func Date(t time.Time, tag locale.Tag) string {
	if t.IsZero() {
		return ""
	}
	names, ok := months[tag]
	if !ok {
		names = months[locale.Default]
		tag = locale.Default
	}
	month := names[t.Month()-1]
	switch tag {
	case locale.DE:
		return fmt.Sprintf("%d. %s %d", t.Day(), month, t.Year())
	case locale.SR:
		return fmt.Sprintf("%d. %s %d.", t.Day(), month, t.Year())
	default:
		return fmt.Sprintf("%d %s %d", t.Day(), month, t.Year())
	}
}

// DateTime appends the time of day when t carries one.
func DateTime(t time.Time, tag locale.Tag) string {
	d := Date(t, tag)
	if d == "" || (t.Hour() == 0 && t.Minute() == 0) {
		return d
	}
	switch tag {
	case locale.EN:
		return d + ", " + t.Format("15:04")
	case locale.FR:
		return d + " à " + t.Format("15h04")
	default:
		return d + ", " + t.Format("15:04")
	}
}

// ISO returns t as an RFC 3339 date for machine-readable attributes.
func ISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
