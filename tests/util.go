package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
	logsvc "github.com/shoyeabaslam/kcet-cams-sub000/services/logger"
	"github.com/shoyeabaslam/kcet-cams-sub000/storage/database"
	inmemdb "github.com/shoyeabaslam/kcet-cams-sub000/storage/database/inmem"
)

const (
	Officer = "officer-1"

	CourseCSE    = "CSE"
	CourseECE    = "ECE"
	AcademicYear = "2024-25"
	FeeCSE       = int64(10000000) // 100000.00
	FeeECE       = int64(8000000)
)

var Conf = &core.Config{
	AppName:   "KCET Admissions",
	Env:       "TEST",
	TestMode:  true,
	SecretKey: "test-secret",
	Mail:      core.MailConfig{DefaultFrom: "KCET Admissions <noreply@example.com>"},
	Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
	Log:       core.LogConfig{Level: "debug", Format: "console"},
}

// Catalog is the master data created by SeedCatalog.
type Catalog struct {
	MarksCard    admission.DocumentType // required
	TransferCert admission.DocumentType // required
	Photo        admission.DocumentType // optional
	CSE          admission.CourseOffering
	ECE          admission.CourseOffering
}

func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func NewValidate() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := NewTranslator()
	core.InitValidators(validate, translator)
	admission.InitValidators(validate, translator)
	return validate, translator
}

func NewLogger() core.Logger {
	return logsvc.NewRollbarLogger(zap.NewNop(), Conf)
}

// NewService returns an engine over a fresh in-memory store.
func NewService(t *testing.T, notifier admission.Notifier) (*admission.Service, admission.Repository) {
	t.Helper()
	validate, _ := NewValidate()
	return NewServiceWith(t, validate, notifier)
}

// NewServiceWith is NewService with the caller's validator, e.g. one whose translator is shared with the API.
func NewServiceWith(t *testing.T, validate *validator.Validate, notifier admission.Notifier) (*admission.Service, admission.Repository) {
	t.Helper()
	repo := inmemdb.NewAdmissionRepository(inmemdb.Open())
	return admission.NewService(repo, validate, NewLogger(), notifier), repo
}

// SeedCatalog creates two required document types, one optional type and the CSE / ECE fee structures.
func SeedCatalog(t *testing.T, svc *admission.Service) Catalog {
	t.Helper()
	ctx := context.Background()

	saveType := func(code, name string, required bool) admission.DocumentType {
		dt, err := svc.SaveDocumentType(ctx, admission.DocumentType{Code: code, Name: name, IsRequired: required})
		if err != nil {
			t.Fatalf("SaveDocumentType(%s): %v", code, err)
		}
		return dt
	}
	saveFee := func(course string, total int64) admission.CourseOffering {
		fs, err := svc.SaveFeeStructure(ctx, admission.FeeStructure{
			CourseOffering: admission.CourseOffering{CourseCode: course, AcademicYear: AcademicYear},
			TotalFee:       total,
		})
		if err != nil {
			t.Fatalf("SaveFeeStructure(%s): %v", course, err)
		}
		return fs.CourseOffering
	}

	return Catalog{
		MarksCard:    saveType("MARKS_CARD", "Qualifying exam marks card", true),
		TransferCert: saveType("TRANSFER_CERT", "Transfer certificate", true),
		Photo:        saveType("PHOTO", "Passport photo", false),
		CSE:          saveFee(CourseCSE, FeeCSE),
		ECE:          saveFee(CourseECE, FeeECE),
	}
}

// RegisterStudent registers an applicant, optionally with an offering.
func RegisterStudent(t *testing.T, svc *admission.Service, appNo, email string, offering *admission.CourseOffering) admission.Student {
	t.Helper()
	res, err := svc.RegisterApplicant(context.Background(), admission.NewStudent{
		ApplicationNumber: appNo,
		Name:              "Applicant " + appNo,
		Email:             email,
		Offering:          offering,
		CreatedBy:         Officer,
	})
	if err != nil {
		t.Fatalf("RegisterApplicant(%s): %v", appNo, err)
	}
	return res.Student
}

// Declare marks the given document types as declared.
func Declare(t *testing.T, svc *admission.Service, studentID string, types ...admission.DocumentType) admission.Result {
	t.Helper()
	dd := admission.DocumentDeclarations{}
	for _, dt := range types {
		dd.Documents = append(dd.Documents, admission.DocumentDeclaration{DocumentTypeID: dt.ID, Declared: true})
	}
	res, err := svc.DeclareDocuments(context.Background(), studentID, dd, Officer)
	if err != nil {
		t.Fatalf("DeclareDocuments(): %v", err)
	}
	return res
}

// Pay records a cash payment.
func Pay(t *testing.T, svc *admission.Service, studentID, receipt string, amount int64) admission.Result {
	t.Helper()
	res, err := svc.RecordPayment(context.Background(), admission.NewPayment{
		StudentID:     studentID,
		Amount:        amount,
		Mode:          admission.ModeCash,
		ReceiptNumber: receipt,
		RecordedBy:    Officer,
	})
	if err != nil {
		t.Fatalf("RecordPayment(%s): %v", receipt, err)
	}
	return res
}

// PrepareDB opens the database named by TEST_DATABASE_DSN, migrates and empties it.
// The test is skipped when the variable is not set.
func PrepareDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err = database.Ping(ctx, db); err != nil {
		t.Fatalf("pinging database: %v", err)
	}
	if err = database.Migrate(db); err != nil {
		t.Fatalf("migrating database: %v", err)
	}
	if err = database.Reset(ctx, db); err != nil {
		t.Fatalf("resetting database: %v", err)
	}
	return db
}
