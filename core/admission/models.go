package admission

import (
	"time"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

// Status is the overall state of a student's application.
type Status string

const (
	StatusApplicationEntered  Status = "APPLICATION_ENTERED"
	StatusDocumentsIncomplete Status = "DOCUMENTS_INCOMPLETE"
	StatusDocumentsDeclared   Status = "DOCUMENTS_DECLARED"
	StatusFeePending          Status = "FEE_PENDING"
	StatusFeePartial          Status = "FEE_PARTIAL"
	StatusFeeReceived         Status = "FEE_RECEIVED"
)

// Statuses lists every status in forward-path order.
var Statuses = []Status{
	StatusApplicationEntered,
	StatusDocumentsIncomplete,
	StatusDocumentsDeclared,
	StatusFeePending,
	StatusFeePartial,
	StatusFeeReceived,
}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

type FeeStatus string

const (
	FeePending  FeeStatus = "FEE_PENDING"
	FeePartial  FeeStatus = "FEE_PARTIAL"
	FeeReceived FeeStatus = "FEE_RECEIVED"
)

type CompletionState string

const (
	CompletionNoneDeclared CompletionState = "NONE_DECLARED"
	CompletionIncomplete   CompletionState = "INCOMPLETE"
	CompletionComplete     CompletionState = "COMPLETE"
)

type PaymentMode string

const (
	ModeCash   PaymentMode = "CASH"
	ModeCheque PaymentMode = "CHEQUE"
	ModeDD     PaymentMode = "DD"
	ModeOnline PaymentMode = "ONLINE"
	ModeCard   PaymentMode = "CARD"
	ModeUPI    PaymentMode = "UPI"
)

var PaymentModes = []PaymentMode{ModeCash, ModeCheque, ModeDD, ModeOnline, ModeCard, ModeUPI}

type PaymentKind string

const (
	KindPayment    PaymentKind = "PAYMENT"
	KindAdjustment PaymentKind = "ADJUSTMENT"
)

type (
	// CourseOffering is the (course, academic year) pair a student is admitted into.
	// It resolves the student's FeeStructure.
	CourseOffering struct {
		CourseCode   string `json:"course_code" validate:"required,max=32,code"`
		AcademicYear string `json:"academic_year" validate:"required,academicyear"`
	}

	Student struct {
		ID                string          `json:"id"`
		ApplicationNumber string          `json:"application_number"`
		Name              string          `json:"name"`
		Email             string          `json:"email,omitempty"`
		Offering          *CourseOffering `json:"offering,omitempty"`
		Status            Status          `json:"status"`
		CreatedAt         time.Time       `json:"created_at"`
		UpdatedAt         time.Time       `json:"updated_at"`
	}

	DocumentType struct {
		ID         int    `json:"id"`
		Code       string `json:"code" validate:"required,max=32,code"`
		Name       string `json:"name" validate:"required,notblank,max=128"`
		IsRequired bool   `json:"is_required"`
	}

	DocumentRecord struct {
		StudentID      string    `json:"student_id"`
		DocumentTypeID int       `json:"document_type_id"`
		Declared       bool      `json:"declared"`
		Notes          string    `json:"notes,omitempty"`
		UpdatedBy      string    `json:"updated_by"`
		UpdatedAt      time.Time `json:"updated_at"`
	}

	FeeStructure struct {
		CourseOffering
		TotalFee  int64     `json:"total_fee" validate:"gt=0"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	// Payment is an immutable ledger row. Amounts are in minor currency units (paise).
	// Only ADJUSTMENT rows may carry a negative amount.
	Payment struct {
		ID            string      `json:"id"`
		StudentID     string      `json:"student_id"`
		Kind          PaymentKind `json:"kind"`
		Amount        int64       `json:"amount"`
		Mode          PaymentMode `json:"mode,omitempty"`
		ReceiptNumber string      `json:"receipt_number"`
		PaymentDate   time.Time   `json:"payment_date"`
		RecordedBy    string      `json:"recorded_by"`
		Remarks       string      `json:"remarks,omitempty"`
		CreatedAt     time.Time   `json:"created_at"`
	}

	// FeeSummary is the per-student ledger projection, always recomputed from the payment rows.
	FeeSummary struct {
		TotalFee  int64     `json:"total_fee"`
		TotalPaid int64     `json:"total_paid"`
		Balance   int64     `json:"balance"`
		Status    FeeStatus `json:"fee_status"`
		Assigned  bool      `json:"assigned"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Completion struct {
		Required         int             `json:"required"`
		DeclaredRequired int             `json:"declared_required"`
		State            CompletionState `json:"state"`
	}

	// HistoryEntry records one status change. Entries are never updated.
	// OldStatus is empty for the entry written when the application is created.
	HistoryEntry struct {
		ID        string    `json:"id"`
		Seq       int64     `json:"seq"`
		StudentID string    `json:"student_id"`
		OldStatus Status    `json:"old_status,omitempty"`
		NewStatus Status    `json:"new_status"`
		Reason    string    `json:"reason"`
		ChangedBy string    `json:"changed_by"`
		ChangedAt time.Time `json:"changed_at"`
	}

	// Overview is what the reporting layer shows for one student.
	Overview struct {
		Student    Student    `json:"student"`
		Fee        FeeSummary `json:"fee"`
		Completion Completion `json:"completion"`
	}

	// Result is returned by every engine write.
	// Transition is nil when the write did not change the student's status.
	Result struct {
		Student    Student       `json:"student"`
		Fee        FeeSummary    `json:"fee"`
		Completion Completion    `json:"completion"`
		Transition *HistoryEntry `json:"transition,omitempty"`
	}
)

// Engine inputs

type (
	NewStudent struct {
		ApplicationNumber string          `json:"application_number" validate:"required,max=32,code"`
		Name              string          `json:"name" validate:"required,notblank,max=128"`
		Email             string          `json:"email" validate:"omitempty,email,max=254"`
		Offering          *CourseOffering `json:"offering"`
		CreatedBy         string          `json:"-"`
	}

	NewPayment struct {
		StudentID     string      `json:"-"`
		Amount        int64       `json:"amount" validate:"gt=0"`
		Mode          PaymentMode `json:"mode" validate:"required,paymentmode"`
		ReceiptNumber string      `json:"receipt_number" validate:"required,receiptno"`
		PaymentDate   time.Time   `json:"payment_date"` // defaults to today
		Remarks       string      `json:"remarks" validate:"max=255"`
		RecordedBy    string      `json:"-"`
	}

	// NewAdjustment corrects the ledger with a signed row; existing payments are never edited.
	NewAdjustment struct {
		StudentID     string    `json:"-"`
		Amount        int64     `json:"amount" validate:"ne=0"`
		ReceiptNumber string    `json:"reference_number" validate:"required,receiptno"`
		PaymentDate   time.Time `json:"payment_date"`
		Remarks       string    `json:"remarks" validate:"required,notblank,max=255"`
		RecordedBy    string    `json:"-"`
	}

	DocumentDeclaration struct {
		DocumentTypeID int    `json:"document_type_id" validate:"required,gt=0"`
		Declared       bool   `json:"declared"`
		Notes          string `json:"notes" validate:"max=255"`
	}

	DocumentDeclarations struct {
		Documents []DocumentDeclaration `json:"documents" validate:"required,min=1,dive"`
	}

	QueryFilter struct {
		Status       Status
		CourseCode   string
		AcademicYear string
		// Search does a case-insensitive match on one of Student.Name, Student.ApplicationNumber or Student.Email.
		Search    string
		Orderings []core.DBOrdering
		Limit     int
		Offset    int
	}
)
