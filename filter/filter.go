// Package filter narrows a complaint set by the list-view filters. Apply is
// pure and stable: it never reorders survivors and never mutates its input.
package filter

import (
	"regexp"
	"strings"

	"publicpulse/dates"
	"publicpulse/models"
)

// datePattern recognizes a search term that looks like a date, e.g.
// "05.03.2024" or "5-3-24".
var datePattern = regexp.MustCompile(`^\d{1,2}[.-]\d{1,2}[.-]\d{2,4}$`)

// Apply returns the records matching filters, in their original order. Empty
// filter fields add no constraint; an empty Filters value returns the input
// slice as-is.
func Apply(records []models.Complaint, filters models.Filters) []models.Complaint {
	filters.SearchTerm = strings.TrimSpace(filters.SearchTerm)
	if filters.Empty() {
		return records
	}

	out := make([]models.Complaint, 0, len(records))
	for _, c := range records {
		if keep(c, filters) {
			out = append(out, c)
		}
	}
	return out
}

func keep(c models.Complaint, f models.Filters) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Agency != "" && c.Agency != f.Agency {
		return false
	}
	if f.Importance != "" && c.Importance != f.Importance {
		return false
	}
	if f.SearchTerm != "" && !matchesSearch(c, f.SearchTerm) {
		return false
	}
	return true
}

// matchesSearch checks the search term against a record. A date-like term is
// compared against the record's created_at by calendar day; when the record's
// date parses, that comparison alone decides. Otherwise the term must appear,
// case-insensitively, in at least one text field.
func matchesSearch(c models.Complaint, term string) bool {
	if datePattern.MatchString(term) {
		if wanted, ok := dates.Parse(term); ok {
			if created, ok := dates.Parse(c.CreatedAt); ok {
				return dates.SameDay(created, wanted)
			}
		}
	}

	needle := strings.ToLower(term)
	for _, field := range []string{
		c.ReportText, c.Service, c.ContactInfo, c.ID, c.Address, c.Region, c.City,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
