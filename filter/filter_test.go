package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publicpulse/models"
)

func sample() []models.Complaint {
	return []models.Complaint{
		{ID: "r1", CreatedAt: "05.03.2024 14:30", Status: models.StatusPending, Agency: "Tazalyk",
			Importance: models.ImportanceHigh, ReportText: "Overflowing trash container", Region: "Bishkek", City: "Bishkek"},
		{ID: "r2", CreatedAt: "06.03.2024 09:00", Status: models.StatusResolved, Agency: "Bishkekvodokanal",
			Importance: models.ImportanceLow, ReportText: "No water pressure", Address: "Chuy 120", Region: "Bishkek"},
		{ID: "r3", CreatedAt: "05.03.2024 08:00", Status: models.StatusPending, Agency: "Tazalyk",
			Importance: models.ImportanceHigh, Service: "Street cleaning", Region: "Osh", City: "Osh"},
	}
}

func ids(records []models.Complaint) []string {
	out := make([]string, 0, len(records))
	for _, c := range records {
		out = append(out, c.ID)
	}
	return out
}

func TestApplyEmptyFiltersIsIdentity(t *testing.T) {
	records := sample()
	got := Apply(records, models.Filters{})
	assert.Equal(t, records, got)

	// Whitespace-only search is the same as no search.
	got = Apply(records, models.Filters{SearchTerm: "   "})
	assert.Equal(t, records, got)
}

func TestApplyIsIdempotent(t *testing.T) {
	f := models.Filters{Status: models.StatusPending, SearchTerm: "osh"}
	once := Apply(sample(), f)
	twice := Apply(once, f)
	assert.Equal(t, once, twice)
}

func TestApplyExactMatchFields(t *testing.T) {
	records := sample()

	assert.Equal(t, []string{"r1", "r3"}, ids(Apply(records, models.Filters{Status: models.StatusPending})))
	assert.Equal(t, []string{"r2"}, ids(Apply(records, models.Filters{Agency: "Bishkekvodokanal"})))
	assert.Equal(t, []string{"r1", "r3"}, ids(Apply(records, models.Filters{Importance: models.ImportanceHigh})))

	// ANDed together.
	got := Apply(records, models.Filters{Status: models.StatusPending, Agency: "Tazalyk", Importance: models.ImportanceHigh})
	assert.Equal(t, []string{"r1", "r3"}, ids(got))
}

func TestApplySearchAcrossFields(t *testing.T) {
	records := sample()

	// report_text, case-insensitive.
	assert.Equal(t, []string{"r1"}, ids(Apply(records, models.Filters{SearchTerm: "TRASH"})))
	// address.
	assert.Equal(t, []string{"r2"}, ids(Apply(records, models.Filters{SearchTerm: "chuy"})))
	// service.
	assert.Equal(t, []string{"r3"}, ids(Apply(records, models.Filters{SearchTerm: "street clean"})))
	// id.
	assert.Equal(t, []string{"r2"}, ids(Apply(records, models.Filters{SearchTerm: "r2"})))
	// no match anywhere.
	assert.Empty(t, Apply(records, models.Filters{SearchTerm: "zzz"}))
}

func TestApplyDateSearch(t *testing.T) {
	records := sample()

	// Calendar-day match, time of day ignored, both records from 05.03 kept.
	got := Apply(records, models.Filters{SearchTerm: "05.03.2024"})
	assert.Equal(t, []string{"r1", "r3"}, ids(got))

	// Dashed day-first form matches the same day.
	got = Apply(records, models.Filters{SearchTerm: "05-03-2024"})
	assert.Equal(t, []string{"r1", "r3"}, ids(got))

	// A parsed date that matches nothing yields nothing, even though "2024"
	// appears in every created_at string.
	got = Apply(records, models.Filters{SearchTerm: "25.12.2024"})
	assert.Empty(t, got)
}

func TestApplyPreservesOrder(t *testing.T) {
	records := sample()
	got := Apply(records, models.Filters{Status: models.StatusPending})
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "r3", got[1].ID)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := sample()
	before := ids(records)
	_ = Apply(records, models.Filters{Status: models.StatusResolved})
	assert.Equal(t, before, ids(records))
}
