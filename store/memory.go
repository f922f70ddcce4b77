package store

import (
	"context"
	"sort"
	"sync"

	"publicpulse/models"
)

// Memory is an in-memory Source for tests and local development. It applies
// the same ordering and cursor rules as the real backends.
type Memory struct {
	mu      sync.RWMutex
	records []models.Complaint
}

// NewMemory returns a Memory seeded with the given records.
func NewMemory(records ...models.Complaint) *Memory {
	m := &Memory{}
	m.records = append(m.records, records...)
	m.sortLocked()
	return m
}

// sortLocked orders records by created_at descending, id descending.
func (m *Memory) sortLocked() {
	sort.SliceStable(m.records, func(i, j int) bool {
		a, b := m.records[i], m.records[j]
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt
		}
		return a.ID > b.ID
	})
}

func matches(c models.Complaint, q Query) bool {
	if regionConstrained(q) && c.Region != q.Region {
		return false
	}
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	if q.Agency != "" && c.Agency != q.Agency {
		return false
	}
	if q.Importance != "" && c.Importance != q.Importance {
		return false
	}
	return true
}

// beforeCursor reports whether c sorts strictly after the cursor position,
// i.e. would appear later in the descending walk.
func beforeCursor(c models.Complaint, cur *Cursor) bool {
	if c.CreatedAt != cur.CreatedAt {
		return c.CreatedAt < cur.CreatedAt
	}
	return c.ID < cur.ID
}

// Query returns matching complaints, newest first.
func (m *Memory) Query(_ context.Context, q Query) ([]models.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Complaint
	for _, c := range m.records {
		if !matches(c, q) {
			continue
		}
		if q.StartAfter != nil && !beforeCursor(c, q.StartAfter) {
			continue
		}
		out = append(out, c)
		if q.Limit > 0 && int64(len(out)) == q.Limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of records matching the equality predicates.
func (m *Memory) Count(_ context.Context, q Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, c := range m.records {
		if matches(c, q) {
			n++
		}
	}
	return n, nil
}

// Insert stores a newly submitted complaint.
func (m *Memory) Insert(_ context.Context, c *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *c)
	m.sortLocked()
	return nil
}

// Close is a no-op.
func (m *Memory) Close(context.Context) error { return nil }
