package admission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RecordTransition appends a history entry when old and next differ and returns it.
// Nothing is written (nil, nil) when the status did not change.
// An append error must abort the enclosing transaction.
func RecordTransition(ctx context.Context, w HistoryAppender, studentID string, old, next Status, reason, changedBy string, at time.Time) (*HistoryEntry, error) {
	if old == next {
		return nil, nil
	}
	entry, err := w.InsertHistory(ctx, HistoryEntry{
		ID:        uuid.New().String(),
		StudentID: studentID,
		OldStatus: old,
		NewStatus: next,
		Reason:    reason,
		ChangedBy: changedBy,
		ChangedAt: at,
	})
	if err != nil {
		return nil, errors.Wrap(err, "appending status history")
	}
	return &entry, nil
}
