package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publicpulse/analytics"
	"publicpulse/models"
	"publicpulse/repository"
	"publicpulse/store"
)

func testRouter(records ...models.Complaint) (*gin.Engine, *repository.Repository) {
	gin.SetMode(gin.TestMode)

	repo := repository.New(store.NewMemory(records...))
	as := analytics.NewStore(repo, map[string]string{})
	h := NewPortalHandler(repo, as, map[string]string{}, nil)

	r := gin.New()
	api := r.Group("/api/v3")
	{
		api.GET("/get_complaints", h.GetComplaints)
		api.GET("/get_dashboard_stats", h.GetDashboardStats)
		api.GET("/get_analytics", h.GetAnalytics)
		api.POST("/refresh", h.Refresh)
		api.POST("/submit_report", h.SubmitReport)
	}
	r.GET("/health", h.HealthCheck)
	return r, repo
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seed(n int) []models.Complaint {
	out := make([]models.Complaint, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Complaint{
			ID:        fmt.Sprintf("r%03d", i),
			CreatedAt: fmt.Sprintf("%02d.01.2024 10:00", i%28+1),
			Status:    models.StatusPending,
			Region:    "Bishkek",
			Title:     "Streetlight out",
		})
	}
	return out
}

func TestHealth(t *testing.T) {
	r, _ := testRouter()
	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestGetComplaintsPaged(t *testing.T) {
	r, _ := testRouter(seed(25)...)

	w := get(r, "/api/v3/get_complaints?region=Bishkek&page=1")
	require.Equal(t, http.StatusOK, w.Code)

	var page models.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Items, 10)
	assert.Equal(t, int64(25), page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.Page)
}

func TestGetComplaintsPastEndBacksOff(t *testing.T) {
	r, _ := testRouter(seed(20)...)

	w := get(r, "/api/v3/get_complaints?region=Bishkek&page=3")
	require.Equal(t, http.StatusOK, w.Code)

	var page models.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Page, "empty pages past the end serve the previous page")
	assert.Len(t, page.Items, 10)
}

func TestGetComplaintsBadPage(t *testing.T) {
	r, _ := testRouter(seed(5)...)
	w := get(r, "/api/v3/get_complaints?page=zero")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetComplaintsSearch(t *testing.T) {
	records := seed(5)
	records = append(records, models.Complaint{
		ID: "special", CreatedAt: "15.02.2024 09:00", Status: models.StatusPending,
		Region: "Bishkek", ReportText: "Burst water pipe on Kievskaya",
	})
	r, _ := testRouter(records...)

	w := get(r, "/api/v3/get_complaints?region=Bishkek&search_term=kievskaya")
	require.Equal(t, http.StatusOK, w.Code)

	var page models.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "special", page.Items[0].ID)
}

func TestGetDashboardStats(t *testing.T) {
	r, _ := testRouter(seed(7)...)

	w := get(r, "/api/v3/get_dashboard_stats?region=Bishkek")
	require.Equal(t, http.StatusOK, w.Code)

	var s models.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, 7, s.Total)
	assert.Equal(t, 7, s.InProgress)
}

func TestGetAnalytics(t *testing.T) {
	r, _ := testRouter(seed(3)...)

	w := get(r, "/api/v3/get_analytics?region=Bishkek&period=all")
	require.Equal(t, http.StatusOK, w.Code)

	var snap analytics.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 3, snap.Analytics.Total)
	assert.Equal(t, "Bishkek", snap.SelectedRegion)
	assert.False(t, snap.Loading)
}

func TestSubmitReport(t *testing.T) {
	r, repo := testRouter()

	body := `{"title": "Pothole", "report_text": "Deep pothole on Manas ave", "region": "Bishkek"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v3/submit_report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, models.StatusPending, resp.Status)

	// Visible on the next read.
	records, err := repo.FetchAll(req.Context(), "Bishkek", false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, resp.ID, records[0].ID)
}

func TestSubmitReportRequiresText(t *testing.T) {
	r, _ := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v3/submit_report", strings.NewReader(`{"region": "Osh"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
