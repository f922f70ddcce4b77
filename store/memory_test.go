package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publicpulse/models"
)

func seeded() *Memory {
	return NewMemory(
		models.Complaint{ID: "a", CreatedAt: "05.03.2024 14:30", Status: models.StatusPending, Region: "Bishkek", Agency: "Tazalyk"},
		models.Complaint{ID: "b", CreatedAt: "06.03.2024 09:00", Status: models.StatusNew, Region: "Bishkek", Agency: "Bishkekvodokanal"},
		models.Complaint{ID: "c", CreatedAt: "06.03.2024 09:00", Status: models.StatusResolved, Region: "Osh", Agency: "Tazalyk"},
		models.Complaint{ID: "d", CreatedAt: "01.02.2024 11:00", Status: models.StatusPending, Region: "Osh", Agency: "Tazalyk"},
	)
}

func TestMemoryOrdering(t *testing.T) {
	m := seeded()

	got, err := m.Query(context.Background(), Query{Region: models.RegionAll})
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	// created_at descending, id breaking the 06.03 tie.
	assert.Equal(t, []string{"c", "b", "a", "d"}, ids)
}

func TestMemoryPredicates(t *testing.T) {
	m := seeded()

	got, err := m.Query(context.Background(), Query{Region: "Osh", Agency: "Tazalyk"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "d", got[1].ID)

	n, err := m.Count(context.Background(), Query{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryCursorWalk(t *testing.T) {
	m := seeded()
	ctx := context.Background()

	first, err := m.Query(ctx, Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)

	last := first[len(first)-1]
	second, err := m.Query(ctx, Query{
		StartAfter: &Cursor{CreatedAt: last.CreatedAt, ID: last.ID},
		Limit:      2,
	})
	require.NoError(t, err)
	require.Len(t, second, 2)

	// No overlap between consecutive pages.
	assert.Equal(t, "c", first[0].ID)
	assert.Equal(t, "b", first[1].ID)
	assert.Equal(t, "a", second[0].ID)
	assert.Equal(t, "d", second[1].ID)
}

func TestMemoryInsertKeepsOrder(t *testing.T) {
	m := seeded()
	ctx := context.Background()

	require.NoError(t, m.Insert(ctx, &models.Complaint{
		ID: "e", CreatedAt: "07.03.2024 08:00", Status: models.StatusNew, Region: "Bishkek",
	}))

	got, err := m.Query(ctx, Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e", got[0].ID)
}
