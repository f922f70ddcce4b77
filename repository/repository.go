// Package repository is the read path between the portal and the reports
// store: full per-region fetches feeding the aggregation views, and
// server-side paginated fetches feeding the complaints list. Both paths are
// memoized for the cache TTL, and identical concurrent fetches collapse into
// one store query.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"

	"publicpulse/cache"
	"publicpulse/metrics"
	"publicpulse/models"
	"publicpulse/store"
)

// PageSize is the complaints-list page size.
const PageSize = 10

// PageResult is one server-side page plus the predicate-level total.
type PageResult struct {
	Items      []models.Complaint
	TotalCount int64
	// Page is the page actually served. It can be lower than the requested
	// page when the requested one turned out empty.
	Page int
}

// Repository serves complaint reads with TTL caching on top of a Source.
type Repository struct {
	src store.Source

	allCache  *cache.Cache[[]models.Complaint]
	pageCache *cache.Cache[PageResult]
}

// New returns a Repository over src.
func New(src store.Source) *Repository {
	return &Repository{
		src:       src,
		allCache:  cache.New[[]models.Complaint](),
		pageCache: cache.New[PageResult](),
	}
}

// allKey is the cache key for a full-region fetch.
func allKey(region string) string {
	if region == "" {
		region = models.RegionAll
	}
	return "all_complaints_" + region
}

// FetchAll returns every complaint for region (or all regions), newest first.
// The full set is loaded in one query because the aggregation views need it
// whole. force bypasses the cache but re-populates it.
func (r *Repository) FetchAll(ctx context.Context, region string, force bool) ([]models.Complaint, error) {
	key := allKey(region)
	if !force && r.allCache.IsValid(key) {
		metrics.CacheHitsTotal.Inc()
	}

	return r.allCache.Do(key, force, func() ([]models.Complaint, error) {
		metrics.CacheMissesTotal.Inc()
		started := time.Now()

		records, err := r.src.Query(ctx, store.Query{Region: region})
		metrics.StoreQueryDurationSeconds.Observe(time.Since(started).Seconds())
		if err != nil {
			metrics.StoreQueriesTotal.WithLabelValues("error").Inc()
			log.Errorf("Error fetching complaints for region %q: %v", region, err)
			return nil, fmt.Errorf("repository: fetch all: %w", err)
		}
		metrics.StoreQueriesTotal.WithLabelValues("ok").Inc()
		log.Infof("Fetched %d complaints for region %q", len(records), region)
		return records, nil
	})
}

// pageKey is the cache key for one filtered page.
func pageKey(q store.Query, page int) string {
	return fmt.Sprintf("page_%s_%s_%s_%s_%d", q.Region, q.Status, q.Agency, q.Importance, page)
}

// FetchPage returns one page of complaints under server-side predicates,
// walking cursor continuations up to the requested page. When the requested
// page comes back empty and is not the first, the previous page is served
// instead. A separate count query (predicates only) supplies TotalCount.
func (r *Repository) FetchPage(ctx context.Context, q store.Query, page int, force bool) (PageResult, error) {
	if page < 1 {
		page = 1
	}
	q.Limit = PageSize

	key := pageKey(q, page)
	return r.pageCache.Do(key, force, func() (PageResult, error) {
		items, servedPage, err := r.walkToPage(ctx, q, page)
		if err != nil {
			return PageResult{}, err
		}

		total, err := r.src.Count(ctx, q)
		if err != nil {
			log.Errorf("Error counting complaints: %v", err)
			return PageResult{}, fmt.Errorf("repository: count: %w", err)
		}

		return PageResult{Items: items, TotalCount: total, Page: servedPage}, nil
	})
}

// walkToPage advances page-by-page from the top of the result set. The
// cursor is the last record of the previous page; a page that comes back
// empty makes the walk fall back to the last non-empty page.
func (r *Repository) walkToPage(ctx context.Context, q store.Query, page int) ([]models.Complaint, int, error) {
	var prev []models.Complaint
	q.StartAfter = nil

	for n := 1; n <= page; n++ {
		items, err := r.src.Query(ctx, q)
		if err != nil {
			log.Errorf("Error fetching page %d: %v", n, err)
			return nil, 0, fmt.Errorf("repository: fetch page %d: %w", n, err)
		}
		if len(items) == 0 {
			if n == 1 {
				return nil, 1, nil
			}
			// Requested page ran past the end; serve the page before it.
			return prev, n - 1, nil
		}
		if n == page {
			return items, n, nil
		}

		prev = items
		last := items[len(items)-1]
		q.StartAfter = &store.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return nil, 1, nil
}

// Invalidate drops the cached full set for region and every cached page.
func (r *Repository) Invalidate(region string) {
	r.allCache.Invalidate(allKey(region))
	r.pageCache.InvalidateAll()
}

// InvalidateAll drops everything the repository has cached.
func (r *Repository) InvalidateAll() {
	r.allCache.InvalidateAll()
	r.pageCache.InvalidateAll()
}

// Submit stores a new complaint and invalidates the affected caches so the
// next read observes it.
func (r *Repository) Submit(ctx context.Context, c *models.Complaint) error {
	if err := r.src.Insert(ctx, c); err != nil {
		return err
	}
	metrics.SubmissionsTotal.Inc()

	r.Invalidate(c.Region)
	r.allCache.Invalidate(allKey(models.RegionAll))
	return nil
}
