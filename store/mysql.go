package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/apex/log"

	"publicpulse/models"
)

// MySQL is the MySQL-backed Source, kept for deployments that already run the
// relational stack. created_at is stored as text so that ordering and cursor
// comparison behave the same as the document backend.
type MySQL struct {
	db *sql.DB
}

// NewMySQL wraps an open connection and ensures the schema.
func NewMySQL(ctx context.Context, db *sql.DB) (*MySQL, error) {
	s := &MySQL{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection pool.
func (s *MySQL) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *MySQL) initSchema(ctx context.Context) error {
	log.Info("Initializing reports schema...")

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reports (
			id VARCHAR(64) NOT NULL PRIMARY KEY,
			created_at VARCHAR(32) NOT NULL,
			resolved_at VARCHAR(32) NOT NULL DEFAULT '',
			status VARCHAR(32) NOT NULL DEFAULT 'new',
			importance VARCHAR(32) NOT NULL DEFAULT '',
			title TEXT,
			report_text TEXT,
			contact_info VARCHAR(255) NOT NULL DEFAULT '',
			agency VARCHAR(255) NOT NULL DEFAULT '',
			service VARCHAR(255) NOT NULL DEFAULT '',
			region VARCHAR(128) NOT NULL DEFAULT '',
			city VARCHAR(128) NOT NULL DEFAULT '',
			address VARCHAR(255) NOT NULL DEFAULT '',
			latitude FLOAT NOT NULL DEFAULT 0.0,
			longitude FLOAT NOT NULL DEFAULT 0.0,
			language VARCHAR(16) NOT NULL DEFAULT '',
			submission_source VARCHAR(64) NOT NULL DEFAULT '',
			location_source VARCHAR(64) NOT NULL DEFAULT '',
			INDEX created_idx (created_at DESC, id DESC),
			INDEX region_idx (region),
			INDEX status_idx (status)
		)`)
	if err != nil {
		return fmt.Errorf("store: create reports table: %w", err)
	}

	log.Info("Reports schema initialized successfully")
	return nil
}

const reportColumns = "id, created_at, resolved_at, status, importance, title, report_text, " +
	"contact_info, agency, service, region, city, address, latitude, longitude, " +
	"language, submission_source, location_source"

// whereClause builds the predicate SQL and its arguments. withCursor also
// appends the keyset continuation condition.
func whereClause(q Query, withCursor bool) (string, []any) {
	var conds []string
	var args []any

	if regionConstrained(q) {
		conds = append(conds, "region = ?")
		args = append(args, q.Region)
	}
	if q.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, q.Status)
	}
	if q.Agency != "" {
		conds = append(conds, "agency = ?")
		args = append(args, q.Agency)
	}
	if q.Importance != "" {
		conds = append(conds, "importance = ?")
		args = append(args, q.Importance)
	}
	if withCursor && q.StartAfter != nil {
		conds = append(conds, "(created_at < ? OR (created_at = ? AND id < ?))")
		args = append(args, q.StartAfter.CreatedAt, q.StartAfter.CreatedAt, q.StartAfter.ID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Query returns matching complaints, newest first.
func (s *MySQL) Query(ctx context.Context, q Query) ([]models.Complaint, error) {
	where, args := whereClause(q, true)
	query := "SELECT " + reportColumns + " FROM reports" + where +
		" ORDER BY created_at DESC, id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Errorf("Error querying reports: %v", err)
		return nil, fmt.Errorf("store: query reports: %w", err)
	}
	defer rows.Close()

	var out []models.Complaint
	for rows.Next() {
		var c models.Complaint
		if err := rows.Scan(
			&c.ID, &c.CreatedAt, &c.ResolvedAt, &c.Status, &c.Importance,
			&c.Title, &c.ReportText, &c.ContactInfo, &c.Agency, &c.Service,
			&c.Region, &c.City, &c.Address, &c.Latitude, &c.Longitude,
			&c.Language, &c.SubmissionSource, &c.LocationSource,
		); err != nil {
			return nil, fmt.Errorf("store: scan report: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the number of records matching the equality predicates.
func (s *MySQL) Count(ctx context.Context, q Query) (int64, error) {
	where, args := whereClause(q, false)

	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports"+where, args...).Scan(&n)
	if err != nil {
		log.Errorf("Error counting reports: %v", err)
		return 0, fmt.Errorf("store: count reports: %w", err)
	}
	return n, nil
}

// Insert stores a newly submitted complaint.
func (s *MySQL) Insert(ctx context.Context, c *models.Complaint) error {
	result, err := s.db.ExecContext(ctx, `INSERT
		INTO reports (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CreatedAt, c.ResolvedAt, c.Status, c.Importance,
		c.Title, c.ReportText, c.ContactInfo, c.Agency, c.Service,
		c.Region, c.City, c.Address, c.Latitude, c.Longitude,
		c.Language, c.SubmissionSource, c.LocationSource)
	if err != nil {
		log.Errorf("Error inserting report %s: %v", c.ID, err)
		return fmt.Errorf("store: insert report: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows != 1 {
		return fmt.Errorf("store: insert report: expected 1 row affected, got %d", rows)
	}
	return nil
}
