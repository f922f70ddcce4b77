// Package paginate slices a filtered complaint set into fixed-size pages and
// tracks the current page for a list view.
package paginate

import "publicpulse/models"

// PageSize is the fixed complaints-list page size.
const PageSize = 10

// TotalPages returns the page count for n records, never less than 1.
func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}

// Slice returns the records of the given 1-based page.
func Slice(records []models.Complaint, page int) []models.Complaint {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(records) {
		return nil
	}
	end := start + PageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// Pager tracks the current page over a changing record count.
type Pager struct {
	current int
	total   int
}

// NewPager starts on page 1 of a set with n records.
func NewPager(n int) *Pager {
	return &Pager{current: 1, total: TotalPages(n)}
}

// Current returns the current 1-based page.
func (p *Pager) Current() int { return p.current }

// Total returns the page count.
func (p *Pager) Total() int { return p.total }

// Next advances one page when not already on the last.
func (p *Pager) Next() {
	if p.current < p.total {
		p.current++
	}
}

// Prev steps back one page when not already on the first.
func (p *Pager) Prev() {
	if p.current > 1 {
		p.current--
	}
}

// GoTo jumps to page n. Out-of-range requests are no-ops.
func (p *Pager) GoTo(n int) {
	if n >= 1 && n <= p.total {
		p.current = n
	}
}

// Resize recomputes the page count for n records. When the current page no
// longer exists it resets to 1 rather than dangling past the end.
func (p *Pager) Resize(n int) {
	p.total = TotalPages(n)
	if p.current > p.total {
		p.current = 1
	}
}
