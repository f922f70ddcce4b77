// Package analytics holds the process-wide dashboard state: the current
// aggregate, the selected region and period, and the fetch lifecycle. All
// mutation goes through actions on the Store so the staleness and reentrancy
// rules are enforced in one place.
package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/apex/log"

	"publicpulse/dates"
	"publicpulse/models"
	"publicpulse/repository"
	"publicpulse/stats"
)

// Periods accepted by SetPeriod.
const (
	Period7d  = "7d"
	Period30d = "30d"
	Period90d = "90d"
	Period1y  = "1y"
	PeriodAll = "all"
)

// Staleness is how old the last fetch may be before a passive read re-fetches.
const Staleness = 5 * time.Minute

// periodCutoff returns the earliest created_at admitted by period, and
// ok=false for "all" (no cutoff).
func periodCutoff(period string, now time.Time) (time.Time, bool) {
	switch period {
	case Period7d:
		return now.AddDate(0, 0, -7), true
	case Period30d:
		return now.AddDate(0, 0, -30), true
	case Period90d:
		return now.AddDate(0, 0, -90), true
	case Period1y:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// Snapshot is one observable state of the Store.
type Snapshot struct {
	Analytics      models.AggregateResult `json:"analytics"`
	Loading        bool                   `json:"loading"`
	Error          string                 `json:"error,omitempty"`
	SelectedRegion string                 `json:"selected_region"`
	SelectedPeriod string                 `json:"selected_period"`
	LastFetched    time.Time              `json:"last_fetched"`
}

// Store is the shared analytics state container.
type Store struct {
	repo     *repository.Repository
	agencies map[string]string

	mu             sync.Mutex
	analytics      models.AggregateResult
	loading        bool
	err            string
	selectedRegion string
	selectedPeriod string
	lastFetched    time.Time
	fetched        bool

	// generation stamps each fetch with the region/period state that
	// triggered it; a result from a superseded fetch is discarded.
	generation int

	subs []func(Snapshot)

	// now is replaceable in tests.
	now func() time.Time
}

// NewStore returns a Store scoped to all regions and the full period.
func NewStore(repo *repository.Repository, agencies map[string]string) *Store {
	return &Store{
		repo:           repo,
		agencies:       agencies,
		selectedRegion: models.RegionAll,
		selectedPeriod: PeriodAll,
		now:            time.Now,
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Analytics:      s.analytics,
		Loading:        s.loading,
		Error:          s.err,
		SelectedRegion: s.selectedRegion,
		SelectedPeriod: s.selectedPeriod,
		LastFetched:    s.lastFetched,
	}
}

// Subscribe registers fn to be called with every state change. Callbacks run
// synchronously under the state transition; keep them short.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	for _, fn := range s.subs {
		fn(snap)
	}
}

// SetRegion switches the dashboard region and forces a refresh.
func (s *Store) SetRegion(ctx context.Context, region string) error {
	s.mu.Lock()
	if region == "" {
		region = models.RegionAll
	}
	if s.selectedRegion == region {
		s.mu.Unlock()
		return nil
	}
	s.selectedRegion = region
	s.generation++
	s.mu.Unlock()

	return s.fetch(ctx, true)
}

// SetPeriod switches the dashboard period and forces a refresh. Unknown
// period values fall back to the full range.
func (s *Store) SetPeriod(ctx context.Context, period string) error {
	switch period {
	case Period7d, Period30d, Period90d, Period1y, PeriodAll:
	default:
		period = PeriodAll
	}

	s.mu.Lock()
	if s.selectedPeriod == period {
		s.mu.Unlock()
		return nil
	}
	s.selectedPeriod = period
	s.generation++
	s.mu.Unlock()

	return s.fetch(ctx, true)
}

// Refresh forces a cache-bypassing re-fetch.
func (s *Store) Refresh(ctx context.Context) error {
	return s.fetch(ctx, true)
}

// Ensure re-fetches only when no fetch has happened yet or the last one is
// older than the staleness window. Passive reads go through here. A
// stale-by-time snapshot forces through the repository cache; a first read
// may still be served from it.
func (s *Store) Ensure(ctx context.Context) error {
	s.mu.Lock()
	fetched := s.fetched
	fresh := fetched && s.now().Sub(s.lastFetched) <= Staleness
	s.mu.Unlock()

	if fresh {
		return nil
	}
	return s.fetch(ctx, fetched)
}

// fetch runs one aggregate refresh. A fetch already in flight suppresses this
// one; a result arriving after the region or period changed again is dropped.
func (s *Store) fetch(ctx context.Context, force bool) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	gen := s.generation
	region := s.selectedRegion
	period := s.selectedPeriod
	s.notifyLocked()
	s.mu.Unlock()

	records, err := s.repo.FetchAll(ctx, region, force)

	s.mu.Lock()
	s.loading = false

	if gen != s.generation {
		// A newer region/period change owns the state now; drop this result
		// and fetch again for the current selection.
		log.Infof("Discarding superseded analytics fetch for region %q period %q", region, period)
		s.mu.Unlock()
		return s.fetch(ctx, force)
	}
	defer s.mu.Unlock()

	if err != nil {
		// Keep the last good aggregate on screen; only the error changes.
		s.err = err.Error()
		s.notifyLocked()
		return err
	}

	now := s.now()
	s.analytics = stats.Aggregate(filterPeriod(records, period, now), now, s.agencies)
	s.err = ""
	s.lastFetched = now
	s.fetched = true
	s.notifyLocked()
	return nil
}

// filterPeriod drops records created before the period cutoff. Records whose
// created_at does not parse are excluded from bounded periods, never guessed.
func filterPeriod(records []models.Complaint, period string, now time.Time) []models.Complaint {
	cutoff, bounded := periodCutoff(period, now)
	if !bounded {
		return records
	}

	out := make([]models.Complaint, 0, len(records))
	for _, c := range records {
		created, ok := dates.Parse(c.CreatedAt)
		if !ok || created.Before(cutoff) {
			continue
		}
		out = append(out, c)
	}
	return out
}
