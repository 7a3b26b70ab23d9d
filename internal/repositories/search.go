package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotctl/internal/shared"
)

// SearchRecord is one entry in the search history.
type SearchRecord struct {
	Query       string
	ResultCount int
	CreatedAt   time.Time
}

// SearchRepository records playlist search history.
type SearchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new SearchRepository with the given database connection
func NewSearchRepository(db *sql.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Record appends a search to the history
func (r *SearchRepository) Record(query string, resultCount int) error {
	sequence, err := NextSequence(r.db, "searches")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	_, err = r.db.Exec(
		"INSERT INTO searches (id, sequence, query, result_count, created_at) VALUES (?, ?, ?, ?, ?)",
		shared.GenerateID(), sequence, query, resultCount, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}

	return nil
}

// Recent returns the most recent searches, newest first.
func (r *SearchRepository) Recent(limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(
		"SELECT query, result_count, created_at FROM searches ORDER BY sequence DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query searches: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		if err := rows.Scan(&rec.Query, &rec.ResultCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
