package complaints

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publicpulse/models"
	"publicpulse/repository"
	"publicpulse/store"
)

func seeded(n int) *View {
	records := make([]models.Complaint, 0, n)
	for i := 0; i < n; i++ {
		status := models.StatusPending
		if i%2 == 0 {
			status = models.StatusResolved
		}
		records = append(records, models.Complaint{
			ID:        fmt.Sprintf("r%03d", i),
			CreatedAt: fmt.Sprintf("%02d.01.2024 10:00", i%28+1),
			Status:    status,
			Region:    "Bishkek",
		})
	}
	src := store.NewMemory(records...)
	return NewView(repository.New(src), map[string]string{}, "Bishkek")
}

func TestLoadAndPage(t *testing.T) {
	v := seeded(25)
	require.NoError(t, v.Load(context.Background()))

	snap := v.Snapshot()
	assert.Len(t, snap.Complaints, 10)
	assert.Equal(t, 1, snap.CurrentPage)
	assert.Equal(t, 3, snap.TotalPages)
	assert.Equal(t, 25, snap.TotalCount)
	assert.Equal(t, 25, snap.Stats.Total)

	v.NextPage()
	v.NextPage()
	snap = v.Snapshot()
	assert.Equal(t, 3, snap.CurrentPage)
	assert.Len(t, snap.Complaints, 5, "last page holds the remainder")

	v.NextPage()
	assert.Equal(t, 3, v.Snapshot().CurrentPage, "Next past the end is a no-op")
}

func TestFilterChangeResetsPage(t *testing.T) {
	v := seeded(30)
	require.NoError(t, v.Load(context.Background()))

	v.GoToPage(3)
	require.Equal(t, 3, v.Snapshot().CurrentPage)

	v.HandleFilterChange(models.Filters{Status: models.StatusPending})
	snap := v.Snapshot()
	assert.Equal(t, 1, snap.CurrentPage, "filter changes reset to page 1")
	assert.Equal(t, 15, snap.TotalCount)
	assert.Equal(t, 30, snap.Stats.Total, "headline stats cover the full fetched set")
}

func TestFilterDoesNotShrinkStats(t *testing.T) {
	src := store.NewMemory(
		models.Complaint{ID: "a", CreatedAt: "05.03.2024 10:00", Status: models.StatusPending, Region: "Bishkek"},
		models.Complaint{ID: "b", CreatedAt: "06.03.2024 10:00", Status: models.StatusResolved, Region: "Bishkek"},
	)
	v := NewView(repository.New(src), map[string]string{}, "Bishkek")
	require.NoError(t, v.Load(context.Background()))

	before := v.Snapshot().Stats
	require.Equal(t, 2, before.Total)

	v.HandleFilterChange(models.Filters{Status: models.StatusResolved})
	snap := v.Snapshot()
	assert.Equal(t, 1, snap.TotalCount, "the listing narrows")
	assert.Equal(t, 2, snap.Stats.Total, "the headline counters do not")
	assert.Equal(t, before.InProgress, snap.Stats.InProgress)
	assert.Equal(t, before.Resolved, snap.Stats.Resolved)
}

func TestFailedRefreshKeepsData(t *testing.T) {
	v := seeded(5)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))
	require.Equal(t, 5, v.Snapshot().TotalCount)

	// Swap in a dead source underneath the repository.
	v.repo = repository.New(deadSource{})
	err := v.RefreshData(ctx)
	require.Error(t, err)

	snap := v.Snapshot()
	assert.Equal(t, 5, snap.TotalCount, "a failed refresh must not blank the view")
	assert.NotEmpty(t, snap.Error)
	assert.False(t, snap.Loading)
}

type deadSource struct{}

func (deadSource) Query(context.Context, store.Query) ([]models.Complaint, error) {
	return nil, fmt.Errorf("store unreachable")
}
func (deadSource) Count(context.Context, store.Query) (int64, error) {
	return 0, fmt.Errorf("store unreachable")
}
func (deadSource) Insert(context.Context, *models.Complaint) error {
	return fmt.Errorf("store unreachable")
}
func (deadSource) Close(context.Context) error { return nil }

func TestEmptyViewHasOnePage(t *testing.T) {
	src := store.NewMemory()
	v := NewView(repository.New(src), nil, "")
	require.NoError(t, v.Load(context.Background()))

	snap := v.Snapshot()
	assert.Empty(t, snap.Complaints)
	assert.Equal(t, 1, snap.TotalPages)
	assert.Equal(t, 1, snap.CurrentPage)
}
