package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"publicpulse/analytics"
	"publicpulse/filter"
	"publicpulse/models"
	"publicpulse/paginate"
	"publicpulse/rabbitmq"
	"publicpulse/repository"
	"publicpulse/stats"
	"publicpulse/store"
)

// PortalHandler serves the complaint and analytics endpoints.
type PortalHandler struct {
	repo      *repository.Repository
	analytics *analytics.Store
	agencies  map[string]string
	publisher *rabbitmq.Publisher
}

// NewPortalHandler wires the handler to its data layers. publisher may be nil
// when no broker is configured.
func NewPortalHandler(repo *repository.Repository, as *analytics.Store, agencies map[string]string, publisher *rabbitmq.Publisher) *PortalHandler {
	return &PortalHandler{
		repo:      repo,
		analytics: as,
		agencies:  agencies,
		publisher: publisher,
	}
}

// HealthCheck returns a simple health status
func (h *PortalHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "publicpulse",
	})
}

// GetComplaints serves one filtered page of complaints. Region, status,
// agency and importance run as store predicates when possible; the search
// term is applied client-side over the region's full set.
func (h *PortalHandler) GetComplaints(c *gin.Context) {
	region := c.DefaultQuery("region", models.RegionAll)
	page := 1
	if pageStr, ok := c.GetQuery("page"); ok {
		var err error
		if page, err = strconv.Atoi(pageStr); err != nil || page < 1 {
			log.Errorf("Error in parsing page param %q", pageStr)
			c.String(http.StatusBadRequest, fmt.Sprintf("Parsing page: %q", pageStr))
			return
		}
	}
	force := c.Query("refresh") == "true"

	var filters models.Filters
	if err := c.ShouldBindQuery(&filters); err != nil {
		log.Errorf("Failed to bind filters in /get_complaints call: %v", err)
		c.String(http.StatusBadRequest, fmt.Sprint(err))
		return
	}

	// A search term needs the whole record set; plain predicate filters can
	// run server-side page by page.
	if filters.SearchTerm == "" {
		result, err := h.repo.FetchPage(c.Request.Context(), store.Query{
			Region:     region,
			Status:     filters.Status,
			Agency:     filters.Agency,
			Importance: filters.Importance,
		}, page, force)
		if err != nil {
			c.String(http.StatusInternalServerError, fmt.Sprint(err))
			return
		}
		c.JSON(http.StatusOK, models.Page{
			Items:      result.Items,
			Page:       result.Page,
			TotalPages: paginate.TotalPages(int(result.TotalCount)),
			TotalCount: result.TotalCount,
		})
		return
	}

	records, err := h.repo.FetchAll(c.Request.Context(), region, force)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}
	filtered := filter.Apply(records, filters)

	pager := paginate.NewPager(len(filtered))
	pager.GoTo(page)
	c.JSON(http.StatusOK, models.Page{
		Items:      paginate.Slice(filtered, pager.Current()),
		Page:       pager.Current(),
		TotalPages: pager.Total(),
		TotalCount: int64(len(filtered)),
	})
}

// GetDashboardStats serves the headline counters for a region.
func (h *PortalHandler) GetDashboardStats(c *gin.Context) {
	region := c.DefaultQuery("region", models.RegionAll)
	force := c.Query("refresh") == "true"

	records, err := h.repo.FetchAll(c.Request.Context(), region, force)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	agg := stats.Aggregate(records, time.Now(), h.agencies)
	c.JSON(http.StatusOK, agg.Stats)
}

// GetAnalytics serves the shared analytics snapshot, re-fetching when stale.
func (h *PortalHandler) GetAnalytics(c *gin.Context) {
	if region, ok := c.GetQuery("region"); ok {
		if err := h.analytics.SetRegion(c.Request.Context(), region); err != nil {
			c.String(http.StatusInternalServerError, fmt.Sprint(err))
			return
		}
	}
	if period, ok := c.GetQuery("period"); ok {
		if err := h.analytics.SetPeriod(c.Request.Context(), period); err != nil {
			c.String(http.StatusInternalServerError, fmt.Sprint(err))
			return
		}
	}

	if err := h.analytics.Ensure(c.Request.Context()); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}
	c.JSON(http.StatusOK, h.analytics.Snapshot())
}

// Refresh forces a cache-bypassing analytics re-fetch.
func (h *PortalHandler) Refresh(c *gin.Context) {
	if err := h.analytics.Refresh(c.Request.Context()); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}
	c.JSON(http.StatusOK, h.analytics.Snapshot())
}

// SubmitReport accepts a new complaint, stores it, and announces it on the
// broker so every instance refreshes.
func (h *PortalHandler) SubmitReport(c *gin.Context) {
	args := &models.Complaint{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /submit_report call: %v", err)
		return
	}
	if args.ReportText == "" && args.Title == "" {
		c.String(http.StatusBadRequest, "either title or report_text is required")
		return
	}

	args.ID = uuid.New().String()
	args.CreatedAt = time.Now().Format("02.01.2006 15:04")
	args.Status = models.StatusPending
	args.ResolvedAt = ""

	if err := h.repo.Submit(c.Request.Context(), args); err != nil {
		log.Errorf("Error saving report: %v", err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	if h.publisher != nil {
		event := rabbitmq.ReportEvent{
			ReportID:  args.ID,
			Region:    args.Region,
			Status:    args.Status,
			Timestamp: time.Now(),
		}
		if err := h.publisher.PublishEvent(rabbitmq.RoutingKeySubmitted, event); err != nil {
			// The record is stored; the event is best-effort.
			log.Errorf("Failed to publish report event: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"id": args.ID, "status": args.Status})
}
