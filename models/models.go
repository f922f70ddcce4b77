package models

// Complaint statuses as stored in the reports collection.
const (
	StatusNew       = "new"
	StatusPending   = "pending"
	StatusResolved  = "resolved"
	StatusCancelled = "cancelled"
)

// Importance levels.
const (
	ImportanceCritical = "critical"
	ImportanceHigh     = "high"
	ImportanceMedium   = "medium"
	ImportanceLow      = "low"
)

// RegionAll selects records from every region.
const RegionAll = "all"

// Complaint represents a citizen-submitted report from the reports collection.
// created_at and resolved_at are stored as text in one of several portal
// formats; use the dates package to interpret them.
type Complaint struct {
	ID               string  `json:"id" bson:"_id"`
	CreatedAt        string  `json:"created_at" bson:"created_at"`
	ResolvedAt       string  `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	Status           string  `json:"status" bson:"status"`
	Importance       string  `json:"importance,omitempty" bson:"importance,omitempty"`
	Title            string  `json:"title,omitempty" bson:"title,omitempty"`
	ReportText       string  `json:"report_text,omitempty" bson:"report_text,omitempty"`
	ContactInfo      string  `json:"contact_info,omitempty" bson:"contact_info,omitempty"`
	Agency           string  `json:"agency,omitempty" bson:"agency,omitempty"`
	Service          string  `json:"service,omitempty" bson:"service,omitempty"`
	Region           string  `json:"region,omitempty" bson:"region,omitempty"`
	City             string  `json:"city,omitempty" bson:"city,omitempty"`
	Address          string  `json:"address,omitempty" bson:"address,omitempty"`
	Latitude         float64 `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude        float64 `json:"longitude,omitempty" bson:"longitude,omitempty"`
	Language         string  `json:"language,omitempty" bson:"language,omitempty"`
	SubmissionSource string  `json:"submission_source,omitempty" bson:"submission_source,omitempty"`
	LocationSource   string  `json:"location_source,omitempty" bson:"location_source,omitempty"`
}

// Filters holds the client-side list filters. Empty fields mean no constraint.
type Filters struct {
	Status     string `json:"status" form:"status"`
	Agency     string `json:"agency" form:"agency"`
	Importance string `json:"importance" form:"importance"`
	SearchTerm string `json:"search_term" form:"search_term"`
}

// Empty reports whether no filter field is set.
func (f Filters) Empty() bool {
	return f.Status == "" && f.Agency == "" && f.Importance == "" && f.SearchTerm == ""
}

// Stats are the headline dashboard counters for a complaint set.
type Stats struct {
	Total       int         `json:"total"`
	NewToday    int         `json:"new_today"`
	InProgress  int         `json:"in_progress"`
	Resolved    int         `json:"resolved"`
	Overdue     int         `json:"overdue"`
	OverdueList []Complaint `json:"overdue_list"`
}

// NameCount is a frequency entry for distribution charts.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ProblemService is a service whose complaint count exceeds the problem
// threshold, with its owning agency resolved from the agency table.
type ProblemService struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
	Agency  string `json:"agency"`
}

// MonthBucket groups complaints created within one calendar month.
type MonthBucket struct {
	Count    int            `json:"count"`
	ByAgency map[string]int `json:"by_agency"`
}

// RegionStats is the per-region aggregate used for cross-region comparison.
// It is always computed from the full record set, even when the UI is scoped
// to a single region.
type RegionStats struct {
	Total           int `json:"total"`
	Resolved        int `json:"resolved"`
	Overdue         int `json:"overdue"`
	ProblemServices int `json:"problem_services"`
}

// MapCluster is an aggregated complaint location for the analytics map.
type MapCluster struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
}

// AggregateResult is the full analytics payload. It is recomputed wholesale
// on every fetch and treated as immutable once produced.
type AggregateResult struct {
	Stats
	// AvgResolutionDays is nil when no resolved record has a usable pair of
	// dates; that is distinct from a true average of zero.
	AvgResolutionDays *float64               `json:"avg_resolution_days"`
	ByMonth           map[string]MonthBucket `json:"by_month"`
	ByAgency          []NameCount            `json:"by_agency"`
	ByService         []NameCount            `json:"by_service"`
	ProblemServices   []ProblemService       `json:"problem_services"`
	ByRegion          map[string]RegionStats `json:"by_region"`
	MapClusters       []MapCluster           `json:"map_clusters"`
}

// Page is one page of a filtered complaint listing.
type Page struct {
	Items      []Complaint `json:"items"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	TotalCount int64       `json:"total_count"`
}
