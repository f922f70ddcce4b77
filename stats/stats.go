// Package stats turns a complaint set into the dashboard aggregates. The
// aggregation is a pure function of the record set and the reference time;
// records whose dates fail to parse are excluded from date-dependent numbers
// rather than counted as zero.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/apex/log"

	"publicpulse/dates"
	"publicpulse/models"
)

// ProblemThreshold is the complaint count above which a service is flagged.
const ProblemThreshold = 30

// topServices caps the service distribution chart.
const topServices = 10

// monthNames is the fixed month-label table for ByMonth keys.
var monthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// monthKey formats the ByMonth bucket key, e.g. "Mar 2024".
func monthKey(t time.Time) string {
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}

// MonthKeys returns the keys of byMonth in chronological order, year
// ascending then month ascending. Grouping alone guarantees no order.
func MonthKeys(byMonth map[string]models.MonthBucket) []string {
	type ym struct {
		key   string
		year  int
		month int
	}
	parsed := make([]ym, 0, len(byMonth))
	for key := range byMonth {
		var name string
		var year int
		if _, err := fmt.Sscanf(key, "%s %d", &name, &year); err != nil {
			continue
		}
		month := 0
		for i, m := range monthNames {
			if m == name {
				month = i + 1
				break
			}
		}
		parsed = append(parsed, ym{key: key, year: year, month: month})
	}
	sort.Slice(parsed, func(i, j int) bool {
		if parsed[i].year != parsed[j].year {
			return parsed[i].year < parsed[j].year
		}
		return parsed[i].month < parsed[j].month
	})

	keys := make([]string, 0, len(parsed))
	for _, p := range parsed {
		keys = append(keys, p.key)
	}
	return keys
}

// isOverdue reports whether c is unresolved and older than one calendar
// month. monthAgo is pre-computed by the caller from the reference time.
func isOverdue(c models.Complaint, monthAgo time.Time) bool {
	if c.Status == models.StatusResolved || c.Status == models.StatusCancelled {
		return false
	}
	created, ok := dates.Parse(c.CreatedAt)
	if !ok {
		return false
	}
	return !created.After(monthAgo)
}

// Aggregate computes the full analytics payload for records at reference time
// now. serviceAgencies maps service names to their owning agency for the
// problem-services view; a missing entry resolves to "Unknown".
func Aggregate(records []models.Complaint, now time.Time, serviceAgencies map[string]string) models.AggregateResult {
	res := models.AggregateResult{
		ByMonth:  make(map[string]models.MonthBucket),
		ByRegion: make(map[string]models.RegionStats),
	}

	todayStart := dates.StartOfDay(now)
	monthAgo := dates.StartOfDay(now.AddDate(0, -1, 0))

	agencyCounts := map[string]int{}
	serviceCounts := map[string]int{}

	var resolutionDaysSum, resolutionEligible int

	for _, c := range records {
		res.Total++

		created, createdOK := dates.Parse(c.CreatedAt)

		if createdOK && !created.Before(todayStart) && !created.After(now) {
			res.NewToday++
		}

		switch c.Status {
		case models.StatusPending:
			res.InProgress++
		case models.StatusResolved:
			res.Resolved++
		}

		if isOverdue(c, monthAgo) {
			res.Overdue++
			res.OverdueList = append(res.OverdueList, c)
		}

		// Resolution time counts only records where both dates parse and
		// the duration is non-negative; everything else stays out of the
		// denominator too. The sign check runs on the raw duration so a
		// sub-day negative does not truncate into a zero-day resolution.
		if c.Status == models.StatusResolved {
			if resolved, ok := dates.Parse(c.ResolvedAt); ok && createdOK {
				if d := resolved.Sub(created); d < 0 {
					log.Warnf("Skipping report %s: resolved_at precedes created_at", c.ID)
				} else {
					resolutionDaysSum += int(d.Hours() / 24)
					resolutionEligible++
				}
			}
		}

		if createdOK {
			key := monthKey(created)
			bucket, ok := res.ByMonth[key]
			if !ok {
				bucket = models.MonthBucket{ByAgency: make(map[string]int)}
			}
			bucket.Count++
			if c.Agency != "" {
				bucket.ByAgency[c.Agency]++
			}
			res.ByMonth[key] = bucket
		}

		if c.Agency != "" {
			agencyCounts[c.Agency]++
		}
		if c.Service != "" {
			serviceCounts[c.Service]++
		}

		region := c.Region
		rs := res.ByRegion[region]
		rs.Total++
		if c.Status == models.StatusResolved {
			rs.Resolved++
		}
		if isOverdue(c, monthAgo) {
			rs.Overdue++
		}
		res.ByRegion[region] = rs
	}

	if resolutionEligible > 0 {
		avg := float64(resolutionDaysSum) / float64(resolutionEligible)
		res.AvgResolutionDays = &avg
	}

	res.ByAgency = sortedCounts(agencyCounts, 0)
	res.ByService = sortedCounts(serviceCounts, topServices)
	res.ProblemServices = problemServices(serviceCounts, serviceAgencies)
	fillRegionProblemServices(res.ByRegion, records)
	res.MapClusters = clusterLocations(records)

	return res
}

// sortedCounts turns a frequency map into a descending list, capped at limit
// when limit > 0. Ties break by name so output is deterministic.
func sortedCounts(counts map[string]int, limit int) []models.NameCount {
	out := make([]models.NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, models.NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// problemServices surfaces services above the threshold with their owning
// agency, sorted by count descending.
func problemServices(serviceCounts map[string]int, serviceAgencies map[string]string) []models.ProblemService {
	var out []models.ProblemService
	for service, count := range serviceCounts {
		if count <= ProblemThreshold {
			continue
		}
		agency, ok := serviceAgencies[service]
		if !ok {
			agency = "Unknown"
		}
		out = append(out, models.ProblemService{Service: service, Count: count, Agency: agency})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Service < out[j].Service
	})
	return out
}

// fillRegionProblemServices counts per-region services above the threshold.
func fillRegionProblemServices(byRegion map[string]models.RegionStats, records []models.Complaint) {
	perRegion := map[string]map[string]int{}
	for _, c := range records {
		if c.Service == "" {
			continue
		}
		m, ok := perRegion[c.Region]
		if !ok {
			m = map[string]int{}
			perRegion[c.Region] = m
		}
		m[c.Service]++
	}
	for region, services := range perRegion {
		n := 0
		for _, count := range services {
			if count > ProblemThreshold {
				n++
			}
		}
		rs := byRegion[region]
		rs.ProblemServices = n
		byRegion[region] = rs
	}
}
