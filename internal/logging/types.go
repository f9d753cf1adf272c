package logging

import "time"

// Decision values written to provenance_log.
const (
	DecisionEmergent = "emergent"
	DecisionInert    = "inert"
	DecisionRejected = "rejected"
)

// #region provenance-entry
// ProvenanceEntry is a single row in the provenance_log table. PredictionID
// is empty for rejected inputs, which never produce a prediction.
type ProvenanceEntry struct {
	ID           int64
	PredictionID string
	Name         string
	TriggerType  string // "cli" | "replay" | "grpc" | "http"
	InputJSON    string
	Decision     string // "emergent" | "inert" | "rejected"
	Reason       string
	CreatedAt    time.Time
}
// #endregion provenance-entry

// #region input-record
// InputRecord is the JSON stored in provenance_log.input_json so a decision
// can be replayed from the log alone.
type InputRecord struct {
	Name     string            `json:"name,omitempty"`
	S        float64           `json:"S"`
	D        float64           `json:"D"`
	M        float64           `json:"M"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
// #endregion input-record
