package fsm

import (
	"context"
	"database/sql"
	"errors"
)

// Status constants used by the consultation state machine.
const (
	StatusRequested = "requested"
	StatusQuoted    = "quoted"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

var transitions = map[string]map[string]struct{}{
	StatusRequested: {StatusQuoted: {}},
	StatusQuoted:    {StatusAccepted: {}, StatusRejected: {}},
	StatusAccepted:  {StatusCompleted: {}},
	// Reopening returns a closed consultation to the quoting path.
	StatusCompleted: {StatusQuoted: {}, StatusRequested: {}},
	StatusRejected:  {StatusQuoted: {}},
}

// CanTransition returns whether a consultation can move from the current
// status to the target status.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsTerminal reports whether the status has no outgoing transitions other
// than a reopen.
func IsTerminal(status string) bool {
	return status == StatusRejected || status == StatusCompleted
}

// Apply updates a consultation status using optimistic validation. The
// conditional WHERE keeps two concurrent transitions from both succeeding.
func Apply(ctx context.Context, tx *sql.Tx, consultationID int64, fromStatus, toStatus string) error {
	if !CanTransition(fromStatus, toStatus) {
		return errors.New("invalid status transition")
	}
	res, err := tx.ExecContext(ctx, `UPDATE consultations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`, toStatus, consultationID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
