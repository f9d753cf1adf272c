package logging

import (
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// #region log-decision
// LogDecision writes a provenance entry to the provenance_log table.
func LogDecision(db Execer, entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (prediction_id, name, trigger_type, input_json, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullIfEmpty(entry.PredictionID),
		nullIfEmpty(entry.Name),
		entry.TriggerType,
		nullIfEmpty(entry.InputJSON),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrap(err, "log decision")
	}
	return nil
}
// #endregion log-decision

// #region list-decisions
// ListDecisions returns the most recent provenance rows, newest first.
func ListDecisions(db *sql.DB, limit int) ([]ProvenanceEntry, error) {
	rows, err := db.Query(
		`SELECT id, prediction_id, name, trigger_type, input_json, decision, reason, created_at
		 FROM provenance_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list decisions")
	}
	defer rows.Close()

	var entries []ProvenanceEntry
	for rows.Next() {
		var e ProvenanceEntry
		var predictionID, name, inputJSON, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.ID, &predictionID, &name, &e.TriggerType, &inputJSON, &e.Decision, &reason, &createdStr); err != nil {
			return nil, errors.Wrap(err, "scan decision")
		}
		e.PredictionID = predictionID.String
		e.Name = name.String
		e.InputJSON = inputJSON.String
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion list-decisions

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
