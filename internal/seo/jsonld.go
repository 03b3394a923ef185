package seo

import (
	"encoding/json"
	"time"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// PerformingGroup describes the company itself.
func PerformingGroup(name, url, logoURL string, sameAs []string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "PerformingGroup",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	if len(sameAs) > 0 {
		m["sameAs"] = sameAs
	}
	return m
}

// Event describes one performance or workshop date.
func Event(name, url, venue string, start time.Time, performer string) map[string]any {
	m := map[string]any{
		"@context":            "https://schema.org",
		"@type":               "Event",
		"name":                name,
		"eventStatus":         "https://schema.org/EventScheduled",
		"eventAttendanceMode": "https://schema.org/OfflineEventAttendanceMode",
	}
	if url != "" {
		m["url"] = url
	}
	if !start.IsZero() {
		m["startDate"] = start.Format(time.RFC3339)
	}
	if venue != "" {
		m["location"] = map[string]any{"@type": "Place", "name": venue}
	}
	if performer != "" {
		m["performer"] = map[string]any{"@type": "PerformingGroup", "name": performer}
	}
	return m
}

// Person describes a team member.
func Person(name, role, imageURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     name,
	}
	if role != "" {
		m["jobTitle"] = role
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}
