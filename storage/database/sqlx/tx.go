package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
)

// pgTx holds the student row lock (SELECT ... FOR UPDATE) taken in Begin until Commit or Rollback.
type pgTx struct {
	tx      *sqlx.Tx
	student admission.Student
}

var _ admission.Tx = (*pgTx)(nil)

func (t *pgTx) Student() admission.Student {
	stu := t.student
	if stu.Offering != nil {
		o := *stu.Offering
		stu.Offering = &o
	}
	return stu
}

func (t *pgTx) SetStatus(ctx context.Context, status admission.Status, at time.Time) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE students SET status = $2, updated_at = $3 WHERE id = $1`,
		t.student.ID, string(status), at.UTC())
	if err != nil {
		return errors.Wrap(mapError(err), "updating student status")
	}
	t.student.Status = status
	t.student.UpdatedAt = at
	return nil
}

func (t *pgTx) SetOffering(ctx context.Context, offering admission.CourseOffering, at time.Time) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE students SET course_code = $2, academic_year = $3, updated_at = $4 WHERE id = $1`,
		t.student.ID, offering.CourseCode, offering.AcademicYear, at.UTC())
	if err != nil {
		return errors.Wrap(mapError(err), "updating student offering")
	}
	t.student.Offering = &offering
	t.student.UpdatedAt = at
	return nil
}

func (t *pgTx) FeeStructure(ctx context.Context, offering admission.CourseOffering) (admission.FeeStructure, error) {
	return feeStructure(ctx, t.tx, offering)
}

func (t *pgTx) InsertPayment(ctx context.Context, p admission.Payment) error {
	q := `INSERT INTO payments (` + paymentColumns + `) VALUES
		(:id, :student_id, :kind, :amount, :mode, :receipt_number, :payment_date, :recorded_by, :remarks, :created_at)`
	if _, err := t.tx.NamedExecContext(ctx, q, newPaymentRow(p)); err != nil {
		return errors.Wrap(mapError(err), "inserting payment")
	}
	return nil
}

func (t *pgTx) SumPayments(ctx context.Context) (int64, error) {
	var sum int64
	if err := t.tx.GetContext(ctx, &sum, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE student_id = $1`, t.student.ID); err != nil {
		return 0, errors.Wrap(mapError(err), "summing payments")
	}
	return sum, nil
}

func (t *pgTx) SaveFeeSummary(ctx context.Context, fee admission.FeeSummary) error {
	return saveFeeSummary(ctx, t.tx, t.student.ID, fee)
}

func (t *pgTx) DocumentTypes(ctx context.Context) ([]admission.DocumentType, error) {
	return documentTypes(ctx, t.tx)
}

func (t *pgTx) UpsertDocument(ctx context.Context, rec admission.DocumentRecord) error {
	q := `INSERT INTO student_documents (` + documentColumns + `) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, document_type_id) DO UPDATE SET
			declared = EXCLUDED.declared, notes = EXCLUDED.notes,
			updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	row := documentRow{
		StudentID:      rec.StudentID,
		DocumentTypeID: rec.DocumentTypeID,
		Declared:       rec.Declared,
		Notes:          null.NewString(rec.Notes, rec.Notes != ""),
		UpdatedBy:      rec.UpdatedBy,
		UpdatedAt:      rec.UpdatedAt.UTC(),
	}
	_, err := t.tx.ExecContext(ctx, q, row.StudentID, row.DocumentTypeID, row.Declared, row.Notes, row.UpdatedBy, row.UpdatedAt)
	if err != nil {
		return errors.Wrap(mapError(err), "upserting student document")
	}
	return nil
}

func (t *pgTx) CompletionCounts(ctx context.Context) (int, int, error) {
	return completionCounts(ctx, t.tx, t.student.ID)
}

func (t *pgTx) InsertHistory(ctx context.Context, entry admission.HistoryEntry) (admission.HistoryEntry, error) {
	return insertHistory(ctx, t.tx, entry)
}

// Commit maps serialization failures reported at commit time to admission.ErrConcurrencyConflict.
func (t *pgTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

func (t *pgTx) Rollback() error {
	return t.tx.Rollback()
}
