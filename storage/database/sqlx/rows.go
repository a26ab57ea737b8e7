package sqlxrepos

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
)

const (
	studentColumns  = `id, application_number, name, email, course_code, academic_year, status, created_at, updated_at`
	paymentColumns  = `id, student_id, kind, amount, mode, receipt_number, payment_date, recorded_by, remarks, created_at`
	summaryColumns  = `total_fee, total_paid, balance, fee_status, assigned, updated_at`
	documentColumns = `student_id, document_type_id, declared, notes, updated_by, updated_at`
	historyColumns  = `seq, id, student_id, old_status, new_status, reason, changed_by, changed_at`
	feeColumns      = `course_code, academic_year, total_fee, updated_at`
)

type studentRow struct {
	ID                string      `db:"id"`
	ApplicationNumber string      `db:"application_number"`
	Name              string      `db:"name"`
	Email             null.String `db:"email"`
	CourseCode        null.String `db:"course_code"`
	AcademicYear      null.String `db:"academic_year"`
	Status            string      `db:"status"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

func newStudentRow(stu admission.Student) studentRow {
	row := studentRow{
		ID:                stu.ID,
		ApplicationNumber: stu.ApplicationNumber,
		Name:              stu.Name,
		Email:             null.NewString(stu.Email, stu.Email != ""),
		Status:            string(stu.Status),
		CreatedAt:         stu.CreatedAt.UTC(),
		UpdatedAt:         stu.UpdatedAt.UTC(),
	}
	if stu.Offering != nil {
		row.CourseCode = null.StringFrom(stu.Offering.CourseCode)
		row.AcademicYear = null.StringFrom(stu.Offering.AcademicYear)
	}
	return row
}

func (row studentRow) toStudent() admission.Student {
	stu := admission.Student{
		ID:                row.ID,
		ApplicationNumber: row.ApplicationNumber,
		Name:              row.Name,
		Email:             row.Email.String,
		Status:            admission.Status(row.Status),
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}
	if row.CourseCode.Valid && row.AcademicYear.Valid {
		stu.Offering = &admission.CourseOffering{CourseCode: row.CourseCode.String, AcademicYear: row.AcademicYear.String}
	}
	return stu
}

type paymentRow struct {
	ID            string      `db:"id"`
	StudentID     string      `db:"student_id"`
	Kind          string      `db:"kind"`
	Amount        int64       `db:"amount"`
	Mode          null.String `db:"mode"`
	ReceiptNumber string      `db:"receipt_number"`
	PaymentDate   time.Time   `db:"payment_date"`
	RecordedBy    string      `db:"recorded_by"`
	Remarks       null.String `db:"remarks"`
	CreatedAt     time.Time   `db:"created_at"`
}

func newPaymentRow(p admission.Payment) paymentRow {
	return paymentRow{
		ID:            p.ID,
		StudentID:     p.StudentID,
		Kind:          string(p.Kind),
		Amount:        p.Amount,
		Mode:          null.NewString(string(p.Mode), p.Mode != ""),
		ReceiptNumber: p.ReceiptNumber,
		PaymentDate:   p.PaymentDate.UTC(),
		RecordedBy:    p.RecordedBy,
		Remarks:       null.NewString(p.Remarks, p.Remarks != ""),
		CreatedAt:     p.CreatedAt.UTC(),
	}
}

func (row paymentRow) toPayment() admission.Payment {
	return admission.Payment{
		ID:            row.ID,
		StudentID:     row.StudentID,
		Kind:          admission.PaymentKind(row.Kind),
		Amount:        row.Amount,
		Mode:          admission.PaymentMode(row.Mode.String),
		ReceiptNumber: row.ReceiptNumber,
		PaymentDate:   row.PaymentDate.UTC(),
		RecordedBy:    row.RecordedBy,
		Remarks:       row.Remarks.String,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

type summaryRow struct {
	StudentID string    `db:"student_id"`
	TotalFee  int64     `db:"total_fee"`
	TotalPaid int64     `db:"total_paid"`
	Balance   int64     `db:"balance"`
	FeeStatus string    `db:"fee_status"`
	Assigned  bool      `db:"assigned"`
	UpdatedAt time.Time `db:"updated_at"`
}

func newSummaryRow(studentID string, fee admission.FeeSummary) summaryRow {
	return summaryRow{
		StudentID: studentID,
		TotalFee:  fee.TotalFee,
		TotalPaid: fee.TotalPaid,
		Balance:   fee.Balance,
		FeeStatus: string(fee.Status),
		Assigned:  fee.Assigned,
		UpdatedAt: fee.UpdatedAt.UTC(),
	}
}

func (row summaryRow) toFeeSummary() admission.FeeSummary {
	return admission.FeeSummary{
		TotalFee:  row.TotalFee,
		TotalPaid: row.TotalPaid,
		Balance:   row.Balance,
		Status:    admission.FeeStatus(row.FeeStatus),
		Assigned:  row.Assigned,
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type documentRow struct {
	StudentID      string      `db:"student_id"`
	DocumentTypeID int         `db:"document_type_id"`
	Declared       bool        `db:"declared"`
	Notes          null.String `db:"notes"`
	UpdatedBy      string      `db:"updated_by"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func (row documentRow) toRecord() admission.DocumentRecord {
	return admission.DocumentRecord{
		StudentID:      row.StudentID,
		DocumentTypeID: row.DocumentTypeID,
		Declared:       row.Declared,
		Notes:          row.Notes.String,
		UpdatedBy:      row.UpdatedBy,
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

type historyRow struct {
	Seq       int64       `db:"seq"`
	ID        string      `db:"id"`
	StudentID string      `db:"student_id"`
	OldStatus null.String `db:"old_status"`
	NewStatus string      `db:"new_status"`
	Reason    string      `db:"reason"`
	ChangedBy string      `db:"changed_by"`
	ChangedAt time.Time   `db:"changed_at"`
}

func newHistoryRow(e admission.HistoryEntry) historyRow {
	return historyRow{
		ID:        e.ID,
		StudentID: e.StudentID,
		OldStatus: null.NewString(string(e.OldStatus), e.OldStatus != ""),
		NewStatus: string(e.NewStatus),
		Reason:    e.Reason,
		ChangedBy: e.ChangedBy,
		ChangedAt: e.ChangedAt.UTC(),
	}
}

func (row historyRow) toEntry() admission.HistoryEntry {
	return admission.HistoryEntry{
		ID:        row.ID,
		Seq:       row.Seq,
		StudentID: row.StudentID,
		OldStatus: admission.Status(row.OldStatus.String),
		NewStatus: admission.Status(row.NewStatus),
		Reason:    row.Reason,
		ChangedBy: row.ChangedBy,
		ChangedAt: row.ChangedAt.UTC(),
	}
}

type feeRow struct {
	CourseCode   string    `db:"course_code"`
	AcademicYear string    `db:"academic_year"`
	TotalFee     int64     `db:"total_fee"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row feeRow) toFeeStructure() admission.FeeStructure {
	return admission.FeeStructure{
		CourseOffering: admission.CourseOffering{CourseCode: row.CourseCode, AcademicYear: row.AcademicYear},
		TotalFee:       row.TotalFee,
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}
