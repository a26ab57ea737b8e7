package sqlxrepos

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
)

func TestMapError(t *testing.T) {
	errOther := errors.New("connection refused")
	fkErr := &pq.Error{Code: "23503", Constraint: "payments_student_id_fkey"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "not a driver error", err: errOther, want: errOther},
		{name: "duplicate receipt", err: errors.Wrap(&pq.Error{Code: pgUniqueViolation, Constraint: receiptConstraint}, "inserting"), want: admission.ErrDuplicateReceipt},
		{name: "duplicate application", err: &pq.Error{Code: pgUniqueViolation, Constraint: applicationConstraint}, want: admission.ErrDuplicateApplication},
		{name: "serialization failure", err: &pq.Error{Code: pgSerializationFailure}, want: admission.ErrConcurrencyConflict},
		{name: "deadlock", err: &pq.Error{Code: pgDeadlockDetected}, want: admission.ErrConcurrencyConflict},
		{name: "lock timeout", err: &pq.Error{Code: pgLockNotAvailable}, want: admission.ErrConcurrencyConflict},
		{name: "other constraint", err: fkErr, want: fkErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.err); got != tt.want {
				t.Errorf("mapError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapError_ClosedPool(t *testing.T) {
	assert.True(t, core.IsShutdown(mapError(errors.Wrap(sql.ErrConnDone, "committing"))))

	// sql.Open does not connect; a closed pool fails before reaching the server
	db, err := sql.Open("postgres", "postgres://nobody@localhost:1/none?sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo := NewAdmissionRepository(db, time.Second)
	ctx := context.Background()
	id := uuid.New().String()

	_, err = repo.Begin(ctx, id)
	assert.True(t, core.IsShutdown(err), "Begin: %v", err)
	assert.Equal(t, admission.KindStorage, admission.KindOf(err))

	_, err = repo.GetOverview(ctx, id)
	assert.True(t, core.IsShutdown(err), "GetOverview: %v", err)

	_, err = repo.ListStudentIDs(ctx)
	assert.True(t, core.IsShutdown(err), "ListStudentIDs: %v", err)
}
