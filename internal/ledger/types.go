package ledger

import (
	"time"

	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

// #region record
// Record is a stored prediction.
type Record struct {
	ID          string
	TriggerType string
	CreatedAt   time.Time
	Result      synthesis.Result
}
// #endregion record

// #region counts
// Counts are aggregate ledger totals.
type Counts struct {
	Predictions int
	Emergent    int
	Rejected    int
}
// #endregion counts
