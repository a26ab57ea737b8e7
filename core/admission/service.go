package admission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

var errActorRequired = errors.New("the acting officer is required")

// writeFunc applies the triggering write inside the engine transaction.
type writeFunc func(ctx context.Context, tx Tx, at time.Time) error

// Service is the admission workflow engine. Every write runs as one transaction:
// apply the write, recompute the ledger and the document completion from source rows,
// derive the status and append history when it changed.
// Errors are returned as is (see KindOf); the engine never retries.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   core.Logger
	notifier Notifier
}

// NewService panics when a required dependency is missing. notifier may be nil.
func NewService(repo Repository, validate *validator.Validate, logger core.Logger, notifier Notifier) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	if notifier == nil {
		notifier = nopNotifier{}
	}
	registerValidations(validate)
	return &Service{
		repo:     repo,
		validate: validate,
		logger:   logger,
		notifier: notifier,
	}
}

// Writes

// RegisterApplicant creates a student in APPLICATION_ENTERED together with its first history entry.
// When an offering is given it must resolve to a fee structure.
func (svc *Service) RegisterApplicant(ctx context.Context, ns NewStudent) (Result, error) {
	ns.ApplicationNumber = strings.ToUpper(core.CleanString(ns.ApplicationNumber))
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	if ns.Offering != nil {
		ns.Offering = &CourseOffering{
			CourseCode:   strings.ToUpper(core.CleanString(ns.Offering.CourseCode)),
			AcademicYear: core.CleanString(ns.Offering.AcademicYear),
		}
	}
	if err := svc.validate.Struct(ns); err != nil {
		return Result{}, err
	}
	if err := requireActor(ns.CreatedBy); err != nil {
		return Result{}, err
	}

	now := core.NowFunc().UTC()
	fee := Summarize(0, 0, false, now)
	if ns.Offering != nil {
		fs, err := svc.repo.GetFeeStructure(ctx, *ns.Offering)
		if err != nil {
			return Result{}, errors.Wrap(err, "resolving fee structure")
		}
		fee = Summarize(fs.TotalFee, 0, true, now)
	}

	stu := Student{
		ID:                uuid.New().String(),
		ApplicationNumber: ns.ApplicationNumber,
		Name:              ns.Name,
		Email:             ns.Email,
		Offering:          ns.Offering,
		Status:            StatusApplicationEntered,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	entry := HistoryEntry{
		ID:        uuid.New().String(),
		StudentID: stu.ID,
		NewStatus: StatusApplicationEntered,
		Reason:    "application entered",
		ChangedBy: ns.CreatedBy,
		ChangedAt: now,
	}

	stu, entry, err := svc.repo.CreateStudent(ctx, stu, fee, entry)
	if err != nil {
		if errors.Cause(err) == ErrDuplicateApplication {
			return Result{}, core.NewValidationError(err, core.FieldError{Field: "application_number", Error: err.Error()})
		}
		return Result{}, errors.Wrap(err, "creating student")
	}

	required, declared, err := svc.repo.CompletionCounts(ctx, stu.ID)
	if err != nil {
		return Result{}, errors.Wrap(err, "counting documents")
	}
	return Result{
		Student:    stu,
		Fee:        fee,
		Completion: Completion{Required: required, DeclaredRequired: declared, State: ClassifyCompletion(required, declared)},
		Transition: &entry,
	}, nil
}

// RecordPayment appends a payment to the student's ledger.
// Fails with ErrDuplicateReceipt or ErrNoFeeStructureAssigned without side effects.
func (svc *Service) RecordPayment(ctx context.Context, np NewPayment) (Result, error) {
	np.ReceiptNumber = core.CleanString(np.ReceiptNumber)
	np.Mode = PaymentMode(strings.ToUpper(core.CleanString(string(np.Mode))))
	np.Remarks = core.CleanString(np.Remarks)
	if err := svc.validate.Struct(np); err != nil {
		return Result{}, err
	}
	if err := requireActor(np.RecordedBy); err != nil {
		return Result{}, err
	}
	if err := checkPaymentDate(np.PaymentDate); err != nil {
		return Result{}, err
	}

	reason := fmt.Sprintf("payment of %s recorded (receipt %s)", FormatAmount(np.Amount), np.ReceiptNumber)
	return svc.execute(ctx, np.StudentID, reason, np.RecordedBy, func(ctx context.Context, tx Tx, at time.Time) error {
		if _, err := resolveFeeStructure(ctx, tx, tx.Student()); err != nil {
			return errors.Wrap(err, "resolving fee structure")
		}
		p := newPaymentRow(uuid.New().String(), np.StudentID, KindPayment, np.Amount, np.Mode,
			np.ReceiptNumber, np.PaymentDate, np.RecordedBy, np.Remarks, at)
		return errors.Wrap(tx.InsertPayment(ctx, p), "inserting payment")
	})
}

// RecordAdjustment appends a signed correction row. The total paid may never drop below zero.
func (svc *Service) RecordAdjustment(ctx context.Context, na NewAdjustment) (Result, error) {
	na.ReceiptNumber = core.CleanString(na.ReceiptNumber)
	na.Remarks = core.CleanString(na.Remarks)
	if err := svc.validate.Struct(na); err != nil {
		return Result{}, err
	}
	if err := requireActor(na.RecordedBy); err != nil {
		return Result{}, err
	}
	if err := checkPaymentDate(na.PaymentDate); err != nil {
		return Result{}, err
	}

	reason := fmt.Sprintf("ledger adjusted by %s (ref %s): %s", FormatAmount(na.Amount), na.ReceiptNumber, na.Remarks)
	return svc.execute(ctx, na.StudentID, reason, na.RecordedBy, func(ctx context.Context, tx Tx, at time.Time) error {
		if _, err := resolveFeeStructure(ctx, tx, tx.Student()); err != nil {
			return errors.Wrap(err, "resolving fee structure")
		}
		paid, err := tx.SumPayments(ctx)
		if err != nil {
			return errors.Wrap(err, "summing payments")
		}
		if paid+na.Amount < 0 {
			return core.NewValidationError(ErrNegativeLedger, core.FieldError{Field: "amount", Error: ErrNegativeLedger.Error()})
		}
		p := newPaymentRow(uuid.New().String(), na.StudentID, KindAdjustment, na.Amount, "",
			na.ReceiptNumber, na.PaymentDate, na.RecordedBy, na.Remarks, at)
		return errors.Wrap(tx.InsertPayment(ctx, p), "inserting adjustment")
	})
}

// DeclareDocuments upserts the student's document records. It does not need a fee structure.
func (svc *Service) DeclareDocuments(ctx context.Context, studentID string, dd DocumentDeclarations, changedBy string) (Result, error) {
	if err := svc.validate.Struct(dd); err != nil {
		return Result{}, err
	}
	if err := requireActor(changedBy); err != nil {
		return Result{}, err
	}

	return svc.execute(ctx, studentID, "documents declared", changedBy, func(ctx context.Context, tx Tx, at time.Time) error {
		catalog, err := tx.DocumentTypes(ctx)
		if err != nil {
			return errors.Wrap(err, "listing document types")
		}
		if err = checkDeclarations(dd.Documents, catalog); err != nil {
			return err
		}
		return upsertDeclarations(ctx, tx, studentID, dd.Documents, changedBy, at)
	})
}

// AssignCourseOffering sets the student's course offering; its fee structure becomes the ledger's total.
func (svc *Service) AssignCourseOffering(ctx context.Context, studentID string, offering CourseOffering, changedBy string) (Result, error) {
	offering.CourseCode = strings.ToUpper(core.CleanString(offering.CourseCode))
	offering.AcademicYear = core.CleanString(offering.AcademicYear)
	if err := svc.validate.Struct(offering); err != nil {
		return Result{}, err
	}
	if err := requireActor(changedBy); err != nil {
		return Result{}, err
	}

	reason := fmt.Sprintf("course offering %s %s assigned", offering.CourseCode, offering.AcademicYear)
	return svc.execute(ctx, studentID, reason, changedBy, func(ctx context.Context, tx Tx, at time.Time) error {
		if _, err := tx.FeeStructure(ctx, offering); err != nil {
			return errors.Wrap(err, "resolving fee structure")
		}
		return errors.Wrap(tx.SetOffering(ctx, offering, at), "setting course offering")
	})
}

// Recompute re-derives the ledger, the completion and the status of a student without writing anything else.
// Used after master data changed (new required document type, new fee).
func (svc *Service) Recompute(ctx context.Context, studentID, changedBy string) (Result, error) {
	if err := requireActor(changedBy); err != nil {
		return Result{}, err
	}
	return svc.execute(ctx, studentID, "recomputed", changedBy, nil)
}

// RecomputeAll runs Recompute for every student and returns how many changed status.
// It stops at the first error.
func (svc *Service) RecomputeAll(ctx context.Context, changedBy string) (int, error) {
	ids, err := svc.repo.ListStudentIDs(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "listing students")
	}
	var changed int
	for _, id := range ids {
		res, err := svc.Recompute(ctx, id, changedBy)
		if err != nil {
			return changed, errors.Wrapf(err, "recomputing student %s", id)
		}
		if res.Transition != nil {
			changed++
		}
	}
	return changed, nil
}

func (svc *Service) execute(ctx context.Context, studentID, reason, changedBy string, write writeFunc) (Result, error) {
	if _, err := uuid.Parse(studentID); err != nil {
		return Result{}, ErrStudentNotFound
	}

	tx, err := svc.repo.Begin(ctx, studentID)
	if err != nil {
		return Result{}, errors.Wrap(err, "beginning transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	at := core.NowFunc().UTC()
	if write != nil {
		if err = write(ctx, tx, at); err != nil {
			return Result{}, err
		}
	}

	fee, err := recomputeLedger(ctx, tx, at)
	if err != nil {
		return Result{}, errors.Wrap(err, "recomputing ledger")
	}
	completion, err := recomputeCompletion(ctx, tx)
	if err != nil {
		return Result{}, errors.Wrap(err, "recomputing completion")
	}

	stu := tx.Student()
	next := DeriveStatus(completion.State, fee)

	var entry *HistoryEntry
	if next != stu.Status {
		if err = tx.SetStatus(ctx, next, at); err != nil {
			return Result{}, errors.Wrap(err, "updating status")
		}
		if entry, err = RecordTransition(ctx, tx, stu.ID, stu.Status, next, reason, changedBy, at); err != nil {
			return Result{}, err
		}
		stu = tx.Student()
	}

	if err = tx.Commit(); err != nil {
		return Result{}, errors.Wrap(err, "committing transaction")
	}
	committed = true

	if entry != nil {
		svc.logger.Info(
			fmt.Sprintf("application %s: %s -> %s", stu.ApplicationNumber, entry.OldStatus, entry.NewStatus),
			map[string]interface{}{"student_id": stu.ID, "reason": reason, "changed_by": changedBy},
		)
		svc.notifier.StatusChanged(stu, *entry)
	}
	return Result{Student: stu, Fee: fee, Completion: completion, Transition: entry}, nil
}

// Reads

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Student{}, ErrStudentNotFound
	}
	return svc.repo.GetStudent(ctx, id)
}

// GetOverview reads the student, the fee summary and the document counts from one snapshot.
func (svc *Service) GetOverview(ctx context.Context, id string) (Overview, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Overview{}, ErrStudentNotFound
	}
	ov, err := svc.repo.GetOverview(ctx, id)
	if err != nil {
		return Overview{}, errors.Wrap(err, "getting overview")
	}
	ov.Completion.State = ClassifyCompletion(ov.Completion.Required, ov.Completion.DeclaredRequired)
	return ov, nil
}

func (svc *Service) QueryStudents(ctx context.Context, filter QueryFilter) ([]Student, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "unknown status"})
	}
	filter.Search = core.CleanString(filter.Search, true /* lower */)
	filter.CourseCode = strings.ToUpper(core.CleanString(filter.CourseCode))
	return svc.repo.QueryStudents(ctx, filter)
}

func (svc *Service) ListPayments(ctx context.Context, studentID string) ([]Payment, error) {
	if _, err := svc.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.ListPayments(ctx, studentID)
}

func (svc *Service) ListDocuments(ctx context.Context, studentID string) ([]DocumentRecord, error) {
	if _, err := svc.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.ListDocuments(ctx, studentID)
}

func (svc *Service) ListHistory(ctx context.Context, studentID string) ([]HistoryEntry, error) {
	if _, err := svc.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.ListHistory(ctx, studentID)
}

func (svc *Service) ListDocumentTypes(ctx context.Context) ([]DocumentType, error) {
	return svc.repo.ListDocumentTypes(ctx)
}

// CountByStatus returns the number of students per status, including zero counts.
func (svc *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	counts, err := svc.repo.CountByStatus(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting students")
	}
	res := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		res[st] = counts[st]
	}
	return res, nil
}

// Master data

// SaveDocumentType creates or updates (by Code) a document type.
// Students are not recomputed; run Recompute / RecomputeAll afterwards.
func (svc *Service) SaveDocumentType(ctx context.Context, dt DocumentType) (DocumentType, error) {
	dt.Code = strings.ToUpper(core.CleanString(dt.Code))
	dt.Name = core.CleanString(dt.Name)
	if err := svc.validate.Struct(dt); err != nil {
		return DocumentType{}, err
	}
	return svc.repo.SaveDocumentType(ctx, dt)
}

// SaveFeeStructure creates or updates the fee of an offering. Existing summaries keep the old
// total until the student's next recomputation.
func (svc *Service) SaveFeeStructure(ctx context.Context, fs FeeStructure) (FeeStructure, error) {
	fs.CourseCode = strings.ToUpper(core.CleanString(fs.CourseCode))
	fs.AcademicYear = core.CleanString(fs.AcademicYear)
	if err := svc.validate.Struct(fs); err != nil {
		return FeeStructure{}, err
	}
	fs.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.SaveFeeStructure(ctx, fs)
}

// helpers

func requireActor(by string) error {
	if core.CleanString(by) == "" {
		return core.NewValidationError(errActorRequired, core.FieldError{Field: "changed_by", Error: errActorRequired.Error()})
	}
	return nil
}

func checkPaymentDate(d time.Time) error {
	if d.IsZero() {
		return nil
	}
	if d.After(core.NowFunc().UTC().Add(24 * time.Hour)) {
		return core.NewValidationError(nil, core.FieldError{Field: "payment_date", Error: "payment date cannot be in the future"})
	}
	return nil
}

// FormatAmount renders minor units (paise) as rupees, e.g. 2000050 -> "20000.50".
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
