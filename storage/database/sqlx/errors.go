package sqlxrepos

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
)

// PostgreSQL error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"

	receiptConstraint     = "payments_receipt_number_key"
	applicationConstraint = "students_application_number_key"

	// returned by database/sql once the pool is closed (unexported there)
	dbClosedMessage = "sql: database is closed"
)

// mapError translates driver errors into admission errors and a closed connection pool into a
// shutdown error. Other errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if cause := errors.Cause(err); cause == sql.ErrConnDone || cause.Error() == dbClosedMessage {
		return core.NewShutdownError("database connection closed: " + cause.Error())
	}
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok {
		return err
	}
	switch pqErr.Code {
	case pgUniqueViolation:
		switch pqErr.Constraint {
		case receiptConstraint:
			return admission.ErrDuplicateReceipt
		case applicationConstraint:
			return admission.ErrDuplicateApplication
		}
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return admission.ErrConcurrencyConflict
	}
	return err
}
