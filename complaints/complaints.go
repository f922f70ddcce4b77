// Package complaints drives the complaint list view: it keeps the full
// region-scoped record set, applies the client-side filters, and pages the
// result. State changes go through actions so the paging invariants hold.
package complaints

import (
	"context"
	"sync"
	"time"

	"publicpulse/filter"
	"publicpulse/models"
	"publicpulse/paginate"
	"publicpulse/repository"
	"publicpulse/stats"
)

// Snapshot is the list-view state handed to consumers.
type Snapshot struct {
	Complaints  []models.Complaint `json:"complaints"`
	Loading     bool               `json:"loading"`
	Error       string             `json:"error,omitempty"`
	Stats       models.Stats       `json:"stats"`
	Filters     models.Filters     `json:"filters"`
	CurrentPage int                `json:"current_page"`
	TotalPages  int                `json:"total_pages"`
	TotalCount  int                `json:"total_count"`
}

// View is the list-view state container for one region scope.
type View struct {
	repo     *repository.Repository
	agencies map[string]string

	mu       sync.Mutex
	region   string
	records  []models.Complaint
	filtered []models.Complaint
	filters  models.Filters
	stats    models.Stats
	pager    *paginate.Pager
	loading  bool
	err      string

	now func() time.Time
}

// NewView returns a View scoped to region ("" or "all" for every region).
func NewView(repo *repository.Repository, agencies map[string]string, region string) *View {
	if region == "" {
		region = models.RegionAll
	}
	return &View{
		repo:     repo,
		agencies: agencies,
		region:   region,
		pager:    paginate.NewPager(0),
		now:      time.Now,
	}
}

// Load fetches the record set (through the cache) and recomputes the view.
func (v *View) Load(ctx context.Context) error {
	return v.fetch(ctx, false)
}

// RefreshData forces a cache-bypassing re-fetch.
func (v *View) RefreshData(ctx context.Context) error {
	return v.fetch(ctx, true)
}

func (v *View) fetch(ctx context.Context, force bool) error {
	v.mu.Lock()
	if v.loading {
		v.mu.Unlock()
		return nil
	}
	v.loading = true
	region := v.region
	v.mu.Unlock()

	records, err := v.repo.FetchAll(ctx, region, force)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false

	if err != nil {
		// Keep whatever the view already shows.
		v.err = err.Error()
		return err
	}

	v.records = records
	v.err = ""
	// Headline counters describe the whole fetched set; the filters below
	// narrow only the listing.
	v.stats = stats.Aggregate(records, v.now(), v.agencies).Stats
	v.applyLocked()
	return nil
}

// applyLocked re-filters the record set and resizes the pager.
func (v *View) applyLocked() {
	v.filtered = filter.Apply(v.records, v.filters)
	v.pager.Resize(len(v.filtered))
}

// HandleFilterChange replaces the filters and resets to page 1.
func (v *View) HandleFilterChange(f models.Filters) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filters = f
	v.applyLocked()
	v.pager.GoTo(1)
}

// NextPage advances one page within bounds.
func (v *View) NextPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pager.Next()
}

// PrevPage steps back one page within bounds.
func (v *View) PrevPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pager.Prev()
}

// GoToPage jumps to page n; out-of-range requests are no-ops.
func (v *View) GoToPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pager.GoTo(n)
}

// Snapshot returns the current page of the filtered set plus the headline
// stats of the full fetched set.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	return Snapshot{
		Complaints:  paginate.Slice(v.filtered, v.pager.Current()),
		Loading:     v.loading,
		Error:       v.err,
		Stats:       v.stats,
		Filters:     v.filters,
		CurrentPage: v.pager.Current(),
		TotalPages:  v.pager.Total(),
		TotalCount:  len(v.filtered),
	}
}
