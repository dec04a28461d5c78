package storage

import (
	"database/sql"
	"time"

	"unblocker/src/models"
)

// Timestamps are stored as unix milliseconds in both backends.

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// -----------------------------------------------------------------------------

// attempt columns in select order
const attemptColumns = `request_id, target_url, mode, outcome, method_id, method_name, attempts, rounds, error, started_at, finished_at`

func scanAttempts(rows *sql.Rows) ([]models.MAttemptRecord, error) {
	defer rows.Close()

	var records []models.MAttemptRecord
	for rows.Next() {
		var (
			r                 models.MAttemptRecord
			started, finished int64
		)
		if err := rows.Scan(&r.RequestID, &r.TargetURL, &r.Mode, &r.Outcome, &r.MethodID, &r.MethodName,
			&r.Attempts, &r.Rounds, &r.Error, &started, &finished); err != nil {
			return nil, err
		}
		r.StartedAt = fromMillis(started)
		r.FinishedAt = fromMillis(finished)
		records = append(records, r)
	}
	return records, rows.Err()
}

// -----------------------------------------------------------------------------

func scanVisitorStats(row *sql.Row) (*models.MVisitorStats, error) {
	var (
		s       models.MVisitorStats
		updated int64
	)
	err := row.Scan(&s.Online, &s.Peak, &s.Total, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.LastUpdated = fromMillis(updated)
	return &s, nil
}
