package admission

import (
	"context"
	"time"
)

type (
	// Repository is the storage port of the engine.
	// Implementations: storage/database/sqlx (PostgreSQL) and storage/database/inmem.
	Repository interface {
		// Begin opens a transaction holding an exclusive lock on the student's aggregate
		// (student row, documents, payments, fee summary, history) until Commit or Rollback.
		// Returns ErrStudentNotFound when the student does not exist.
		Begin(ctx context.Context, studentID string) (Tx, error)

		// CreateStudent stores a new student with its initial fee summary and history entry, atomically.
		// Returns ErrDuplicateApplication when the application number is taken.
		CreateStudent(ctx context.Context, stu Student, fee FeeSummary, entry HistoryEntry) (Student, HistoryEntry, error)

		GetStudent(ctx context.Context, id string) (Student, error)
		QueryStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		ListStudentIDs(ctx context.Context) ([]string, error)
		CountByStatus(ctx context.Context) (map[Status]int, error)

		// GetOverview reads the student, its fee summary and its completion counts from one consistent
		// snapshot. Completion.State is left to the caller.
		GetOverview(ctx context.Context, studentID string) (Overview, error)
		CompletionCounts(ctx context.Context, studentID string) (required, declaredRequired int, err error)
		ListPayments(ctx context.Context, studentID string) ([]Payment, error)
		ListDocuments(ctx context.Context, studentID string) ([]DocumentRecord, error)
		// ListHistory returns entries oldest first.
		ListHistory(ctx context.Context, studentID string) ([]HistoryEntry, error)

		// master data
		ListDocumentTypes(ctx context.Context) ([]DocumentType, error)
		SaveDocumentType(ctx context.Context, dt DocumentType) (DocumentType, error)
		GetFeeStructure(ctx context.Context, offering CourseOffering) (FeeStructure, error)
		SaveFeeStructure(ctx context.Context, fs FeeStructure) (FeeStructure, error)
	}

	// Tx is a unit of work scoped to one locked student.
	Tx interface {
		HistoryAppender

		// Student returns the locked student, including changes staged in this transaction.
		Student() Student
		SetStatus(ctx context.Context, status Status, at time.Time) error
		SetOffering(ctx context.Context, offering CourseOffering, at time.Time) error

		// FeeStructure returns ErrNoFeeStructureAssigned when the offering has no fee structure.
		FeeStructure(ctx context.Context, offering CourseOffering) (FeeStructure, error)
		// InsertPayment returns ErrDuplicateReceipt when the receipt number is used by any student.
		InsertPayment(ctx context.Context, p Payment) error
		SumPayments(ctx context.Context) (int64, error)
		SaveFeeSummary(ctx context.Context, fee FeeSummary) error

		DocumentTypes(ctx context.Context) ([]DocumentType, error)
		UpsertDocument(ctx context.Context, rec DocumentRecord) error
		CompletionCounts(ctx context.Context) (required, declaredRequired int, err error)

		Commit() error
		Rollback() error
	}

	// HistoryAppender appends status history entries and assigns their Seq.
	HistoryAppender interface {
		InsertHistory(ctx context.Context, entry HistoryEntry) (HistoryEntry, error)
	}
)
