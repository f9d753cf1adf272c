package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/laws"
	"github.com/danielpatrickdp/metalaw/internal/logging"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	id            TEXT NOT NULL UNIQUE,
	name          TEXT,
	s             REAL NOT NULL,
	d             REAL NOT NULL,
	m             REAL NOT NULL,
	capacity      REAL NOT NULL,
	class         TEXT NOT NULL,
	rule          TEXT NOT NULL,
	threshold     REAL NOT NULL,
	emergent      INTEGER NOT NULL,
	active_laws   TEXT NOT NULL,
	metadata_json TEXT,
	trigger_type  TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	prediction_id TEXT,
	name          TEXT,
	trigger_type  TEXT NOT NULL,
	input_json    TEXT,
	decision      TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (prediction_id) REFERENCES predictions(id)
);
`
// #endregion schema

const selectColumns = `id, name, s, d, m, capacity, class, rule, threshold, emergent, active_laws, metadata_json, trigger_type, created_at`

// #region store-struct
// Store keeps predictions and their provenance in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	// One connection serializes writers from concurrent observers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pragma")
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pragma fk")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.WithHint(errors.Wrap(err, "migrate"), "check that database.path points at a metalaw ledger")
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region save
// Save stores r with a fresh id and writes its provenance row in the same
// transaction.
func (s *Store) Save(r synthesis.Result, trigger string) (Record, error) {
	rec := Record{
		ID:          uuid.New().String(),
		TriggerType: trigger,
		CreatedAt:   time.Now().UTC(),
		Result:      r,
	}

	lawsJSON, err := json.Marshal(lawsOrEmpty(r.ActiveLaws))
	if err != nil {
		return Record{}, errors.Wrap(err, "marshal active laws")
	}
	metaJSON, err := marshalMetadata(r.Metadata)
	if err != nil {
		return Record{}, err
	}
	inputJSON, err := json.Marshal(logging.InputRecord{Name: r.Name, S: r.S, D: r.D, M: r.M, Metadata: r.Metadata})
	if err != nil {
		return Record{}, errors.Wrap(err, "marshal input")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Record{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO predictions (id, name, s, d, m, capacity, class, rule, threshold, emergent, active_laws, metadata_json, trigger_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, r.Name, r.S, r.D, r.M, r.Capacity, string(r.UniversalityClass), r.Rule, r.Threshold,
		r.Emergent, string(lawsJSON), metaJSON, trigger, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, errors.Wrap(err, "insert prediction")
	}

	decision := logging.DecisionInert
	if r.Emergent {
		decision = logging.DecisionEmergent
	}
	err = logging.LogDecision(tx, logging.ProvenanceEntry{
		PredictionID: rec.ID,
		Name:         r.Name,
		TriggerType:  trigger,
		InputJSON:    string(inputJSON),
		Decision:     decision,
		Reason:       decisionReason(r),
		CreatedAt:    rec.CreatedAt,
	})
	if err != nil {
		return Record{}, err
	}

	if err := tx.Commit(); err != nil {
		return Record{}, errors.Wrap(err, "commit")
	}
	return rec, nil
}
// #endregion save

// #region reject
// Reject records an input that failed validation. No prediction row is
// written.
func (s *Store) Reject(in synthesis.Input, cause error, trigger string) error {
	inputJSON, err := json.Marshal(logging.InputRecord{Name: in.Name, S: in.S, D: in.D, M: in.M, Metadata: in.Metadata})
	if err != nil {
		return errors.Wrap(err, "marshal input")
	}
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return logging.LogDecision(s.db, logging.ProvenanceEntry{
		Name:        in.Name,
		TriggerType: trigger,
		InputJSON:   string(inputJSON),
		Decision:    logging.DecisionRejected,
		Reason:      reason,
	})
}
// #endregion reject

// #region get
// Get retrieves a stored prediction by id.
func (s *Store) Get(id string) (Record, error) {
	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM predictions WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, errors.Wrapf(ErrNotFound, "prediction %s", id)
	}
	if err != nil {
		return Record{}, errors.Wrapf(err, "get prediction %s", id)
	}
	return rec, nil
}

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("not found")
// #endregion get

// #region list
// List returns the most recent predictions, newest first. limit <= 0 returns
// everything.
func (s *Store) List(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+selectColumns+` FROM predictions ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list predictions")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Results returns every stored result in insertion order.
func (s *Store) Results() ([]synthesis.Result, error) {
	records, err := s.List(0)
	if err != nil {
		return nil, err
	}
	results := make([]synthesis.Result, len(records))
	for i, rec := range records {
		results[len(records)-1-i] = rec.Result
	}
	return results, nil
}
// #endregion list

// #region counts
// Counts returns ledger totals.
func (s *Store) Counts() (Counts, error) {
	var c Counts
	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(emergent), 0) FROM predictions`).Scan(&c.Predictions, &c.Emergent)
	if err != nil {
		return Counts{}, errors.Wrap(err, "count predictions")
	}
	err = s.db.QueryRow(`SELECT COUNT(*) FROM provenance_log WHERE decision = ?`, logging.DecisionRejected).Scan(&c.Rejected)
	if err != nil {
		return Counts{}, errors.Wrap(err, "count rejected")
	}
	return c, nil
}
// #endregion counts

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	r := &rec.Result
	var name, metaJSON sql.NullString
	var classStr, lawsJSON, createdStr string

	err := row.Scan(&rec.ID, &name, &r.S, &r.D, &r.M, &r.Capacity, &classStr, &r.Rule, &r.Threshold,
		&r.Emergent, &lawsJSON, &metaJSON, &rec.TriggerType, &createdStr)
	if err != nil {
		return Record{}, err
	}
	r.Name = name.String
	r.UniversalityClass = class.Class(classStr)
	var active laws.Set
	if err := json.Unmarshal([]byte(lawsJSON), &active); err != nil {
		return Record{}, errors.Wrap(err, "unmarshal active laws")
	}
	if len(active) > 0 {
		r.ActiveLaws = active
	}
	if metaJSON.Valid {
		if err := json.Unmarshal([]byte(metaJSON.String), &r.Metadata); err != nil {
			return Record{}, errors.Wrap(err, "unmarshal metadata")
		}
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

func marshalMetadata(meta map[string]string) (any, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return nil, errors.Wrap(err, "marshal metadata")
	}
	return string(b), nil
}

func lawsOrEmpty(s laws.Set) laws.Set {
	if s == nil {
		return laws.Set{}
	}
	return s
}

func decisionReason(r synthesis.Result) string {
	op := "<"
	if r.Emergent {
		op = ">="
	}
	return fmt.Sprintf("%s via %s: capacity %.6g %s threshold %.6g",
		r.UniversalityClass, r.Rule, r.Capacity, op, r.Threshold)
}
// #endregion helpers
