package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
)

const completionCountsQuery = `
SELECT
	(SELECT COUNT(*) FROM document_types WHERE is_required) AS required,
	(SELECT COUNT(*)
	   FROM student_documents sd
	   JOIN document_types dt ON dt.id = sd.document_type_id
	  WHERE sd.student_id = $1 AND sd.declared AND dt.is_required) AS declared`

var studentOrderColumns = map[string]string{
	"application_number": "application_number",
	"name":               "lower(name)",
	"status":             "status",
	"created_at":         "created_at",
	"updated_at":         "updated_at",
}

type admissionRepository struct {
	db          *sqlx.DB
	lockTimeout time.Duration
}

var _ admission.Repository = (*admissionRepository)(nil)

// NewAdmissionRepository returns the PostgreSQL repository.
// lockTimeout bounds how long Begin waits for a student locked by another transaction (0 = wait forever).
func NewAdmissionRepository(db *sql.DB, lockTimeout time.Duration) admission.Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(db, "db"),
	).CheckAndPanic()

	return &admissionRepository{
		db:          sqlx.NewDb(db, "postgres"),
		lockTimeout: lockTimeout,
	}
}

func (repo *admissionRepository) Begin(ctx context.Context, studentID string) (admission.Tx, error) {
	stx, err := repo.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, errors.Wrap(mapError(err), "beginning transaction")
	}

	if repo.lockTimeout > 0 {
		q := "SET LOCAL lock_timeout = " + strconv.FormatInt(repo.lockTimeout.Milliseconds(), 10)
		if _, err = stx.ExecContext(ctx, q); err != nil {
			_ = stx.Rollback()
			return nil, errors.Wrap(err, "setting lock timeout")
		}
	}

	var row studentRow
	err = stx.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM students WHERE id = $1 FOR UPDATE`, studentID)
	if err != nil {
		_ = stx.Rollback()
		if err == sql.ErrNoRows {
			return nil, admission.ErrStudentNotFound
		}
		return nil, errors.Wrap(mapError(err), "locking student")
	}
	return &pgTx{tx: stx, student: row.toStudent()}, nil
}

func (repo *admissionRepository) CreateStudent(
	ctx context.Context,
	stu admission.Student,
	fee admission.FeeSummary,
	entry admission.HistoryEntry,
) (admission.Student, admission.HistoryEntry, error) {
	stx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return admission.Student{}, admission.HistoryEntry{}, errors.Wrap(mapError(err), "beginning transaction")
	}
	defer func() { _ = stx.Rollback() }()

	q := `INSERT INTO students (` + studentColumns + `) VALUES
		(:id, :application_number, :name, :email, :course_code, :academic_year, :status, :created_at, :updated_at)`
	if _, err = stx.NamedExecContext(ctx, q, newStudentRow(stu)); err != nil {
		return admission.Student{}, admission.HistoryEntry{}, errors.Wrap(mapError(err), "inserting student")
	}
	if err = saveFeeSummary(ctx, stx, stu.ID, fee); err != nil {
		return admission.Student{}, admission.HistoryEntry{}, err
	}
	if entry, err = insertHistory(ctx, stx, entry); err != nil {
		return admission.Student{}, admission.HistoryEntry{}, err
	}

	if err = stx.Commit(); err != nil {
		return admission.Student{}, admission.HistoryEntry{}, errors.Wrap(mapError(err), "committing student")
	}
	return stu, entry, nil
}

func (repo *admissionRepository) GetStudent(ctx context.Context, id string) (admission.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return admission.Student{}, admission.ErrStudentNotFound
		}
		return admission.Student{}, errors.Wrap(mapError(err), "selecting student")
	}
	return row.toStudent(), nil
}

func (repo *admissionRepository) QueryStudents(ctx context.Context, filter admission.QueryFilter) ([]admission.Student, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "status = "+arg(string(filter.Status)))
	}
	if filter.CourseCode != "" {
		conds = append(conds, "course_code = "+arg(filter.CourseCode))
	}
	if filter.AcademicYear != "" {
		conds = append(conds, "academic_year = "+arg(filter.AcademicYear))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR application_number ILIKE %[1]s OR email ILIKE %[1]s)", p))
	}

	q := `SELECT ` + studentColumns + ` FROM students`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY " + core.OrderBy(filter.Orderings, studentOrderColumns, "created_at DESC, application_number ASC")
	if filter.Limit > 0 {
		q += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		q += " OFFSET " + arg(filter.Offset)
	}

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(mapError(err), "selecting students")
	}
	res := make([]admission.Student, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toStudent())
	}
	return res, nil
}

func (repo *admissionRepository) ListStudentIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := repo.db.SelectContext(ctx, &ids, `SELECT id FROM students ORDER BY id`); err != nil {
		return nil, errors.Wrap(mapError(err), "selecting student ids")
	}
	return ids, nil
}

func (repo *admissionRepository) CountByStatus(ctx context.Context) (map[admission.Status]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := repo.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM students GROUP BY status`); err != nil {
		return nil, errors.Wrap(mapError(err), "counting students")
	}
	counts := make(map[admission.Status]int, len(rows))
	for _, r := range rows {
		counts[admission.Status(r.Status)] = r.Count
	}
	return counts, nil
}

// GetOverview reads from one read-only REPEATABLE READ transaction so the three reads share a snapshot.
func (repo *admissionRepository) GetOverview(ctx context.Context, studentID string) (admission.Overview, error) {
	stx, err := repo.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return admission.Overview{}, errors.Wrap(mapError(err), "beginning transaction")
	}
	defer func() { _ = stx.Rollback() }()

	var stu studentRow
	if err = stx.GetContext(ctx, &stu, `SELECT `+studentColumns+` FROM students WHERE id = $1`, studentID); err != nil {
		if err == sql.ErrNoRows {
			return admission.Overview{}, admission.ErrStudentNotFound
		}
		return admission.Overview{}, errors.Wrap(mapError(err), "selecting student")
	}
	var fee summaryRow
	err = stx.GetContext(ctx, &fee, `SELECT student_id, `+summaryColumns+` FROM fee_summaries WHERE student_id = $1`, studentID)
	if err != nil {
		return admission.Overview{}, errors.Wrap(mapError(err), "selecting fee summary")
	}
	required, declared, err := completionCounts(ctx, stx, studentID)
	if err != nil {
		return admission.Overview{}, err
	}
	return admission.Overview{
		Student:    stu.toStudent(),
		Fee:        fee.toFeeSummary(),
		Completion: admission.Completion{Required: required, DeclaredRequired: declared},
	}, nil
}

func (repo *admissionRepository) CompletionCounts(ctx context.Context, studentID string) (int, int, error) {
	return completionCounts(ctx, repo.db, studentID)
}

func (repo *admissionRepository) ListPayments(ctx context.Context, studentID string) ([]admission.Payment, error) {
	var rows []paymentRow
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE student_id = $1 ORDER BY created_at, receipt_number`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(mapError(err), "selecting payments")
	}
	res := make([]admission.Payment, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toPayment())
	}
	return res, nil
}

func (repo *admissionRepository) ListDocuments(ctx context.Context, studentID string) ([]admission.DocumentRecord, error) {
	var rows []documentRow
	q := `SELECT ` + documentColumns + ` FROM student_documents WHERE student_id = $1 ORDER BY document_type_id`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(mapError(err), "selecting documents")
	}
	res := make([]admission.DocumentRecord, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toRecord())
	}
	return res, nil
}

func (repo *admissionRepository) ListHistory(ctx context.Context, studentID string) ([]admission.HistoryEntry, error) {
	var rows []historyRow
	q := `SELECT ` + historyColumns + ` FROM status_history WHERE student_id = $1 ORDER BY changed_at, seq`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(mapError(err), "selecting status history")
	}
	res := make([]admission.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toEntry())
	}
	return res, nil
}

func (repo *admissionRepository) ListDocumentTypes(ctx context.Context) ([]admission.DocumentType, error) {
	return documentTypes(ctx, repo.db)
}

func (repo *admissionRepository) SaveDocumentType(ctx context.Context, dt admission.DocumentType) (admission.DocumentType, error) {
	q := `INSERT INTO document_types (code, name, is_required) VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, is_required = EXCLUDED.is_required
		RETURNING id`
	if err := repo.db.GetContext(ctx, &dt.ID, q, dt.Code, dt.Name, dt.IsRequired); err != nil {
		return admission.DocumentType{}, errors.Wrap(mapError(err), "upserting document type")
	}
	return dt, nil
}

func (repo *admissionRepository) GetFeeStructure(ctx context.Context, offering admission.CourseOffering) (admission.FeeStructure, error) {
	return feeStructure(ctx, repo.db, offering)
}

func (repo *admissionRepository) SaveFeeStructure(ctx context.Context, fs admission.FeeStructure) (admission.FeeStructure, error) {
	q := `INSERT INTO fee_structures (` + feeColumns + `) VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_code, academic_year) DO UPDATE SET total_fee = EXCLUDED.total_fee, updated_at = EXCLUDED.updated_at`
	if _, err := repo.db.ExecContext(ctx, q, fs.CourseCode, fs.AcademicYear, fs.TotalFee, fs.UpdatedAt.UTC()); err != nil {
		return admission.FeeStructure{}, errors.Wrap(mapError(err), "upserting fee structure")
	}
	return fs, nil
}

// shared by the repository and pgTx

func completionCounts(ctx context.Context, q sqlx.QueryerContext, studentID string) (int, int, error) {
	var counts struct {
		Required int `db:"required"`
		Declared int `db:"declared"`
	}
	if err := sqlx.GetContext(ctx, q, &counts, completionCountsQuery, studentID); err != nil {
		return 0, 0, errors.Wrap(mapError(err), "counting documents")
	}
	return counts.Required, counts.Declared, nil
}

func documentTypes(ctx context.Context, q sqlx.QueryerContext) ([]admission.DocumentType, error) {
	var rows []struct {
		ID         int    `db:"id"`
		Code       string `db:"code"`
		Name       string `db:"name"`
		IsRequired bool   `db:"is_required"`
	}
	if err := sqlx.SelectContext(ctx, q, &rows, `SELECT id, code, name, is_required FROM document_types ORDER BY id`); err != nil {
		return nil, errors.Wrap(mapError(err), "selecting document types")
	}
	res := make([]admission.DocumentType, 0, len(rows))
	for _, r := range rows {
		res = append(res, admission.DocumentType{ID: r.ID, Code: r.Code, Name: r.Name, IsRequired: r.IsRequired})
	}
	return res, nil
}

func feeStructure(ctx context.Context, q sqlx.QueryerContext, offering admission.CourseOffering) (admission.FeeStructure, error) {
	var row feeRow
	err := sqlx.GetContext(ctx, q, &row,
		`SELECT `+feeColumns+` FROM fee_structures WHERE course_code = $1 AND academic_year = $2`,
		offering.CourseCode, offering.AcademicYear)
	if err != nil {
		if err == sql.ErrNoRows {
			return admission.FeeStructure{}, admission.ErrNoFeeStructureAssigned
		}
		return admission.FeeStructure{}, errors.Wrap(mapError(err), "selecting fee structure")
	}
	return row.toFeeStructure(), nil
}

func saveFeeSummary(ctx context.Context, e sqlx.ExtContext, studentID string, fee admission.FeeSummary) error {
	q := `INSERT INTO fee_summaries (student_id, ` + summaryColumns + `) VALUES
		(:student_id, :total_fee, :total_paid, :balance, :fee_status, :assigned, :updated_at)
		ON CONFLICT (student_id) DO UPDATE SET
			total_fee = EXCLUDED.total_fee, total_paid = EXCLUDED.total_paid, balance = EXCLUDED.balance,
			fee_status = EXCLUDED.fee_status, assigned = EXCLUDED.assigned, updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, e, q, newSummaryRow(studentID, fee)); err != nil {
		return errors.Wrap(mapError(err), "saving fee summary")
	}
	return nil
}

func insertHistory(ctx context.Context, q sqlx.QueryerContext, entry admission.HistoryEntry) (admission.HistoryEntry, error) {
	row := newHistoryRow(entry)
	err := sqlx.GetContext(ctx, q, &entry.Seq,
		`INSERT INTO status_history (id, student_id, old_status, new_status, reason, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING seq`,
		row.ID, row.StudentID, row.OldStatus, row.NewStatus, row.Reason, row.ChangedBy, row.ChangedAt)
	if err != nil {
		return admission.HistoryEntry{}, errors.Wrap(mapError(err), "inserting status history")
	}
	return entry, nil
}
