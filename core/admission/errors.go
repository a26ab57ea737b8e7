package admission

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

var (
	ErrStudentNotFound          = errors.New("student not found")
	ErrDocumentTypeNotFound     = errors.New("document type not found")
	ErrDuplicateApplication     = errors.New("a student with this application number already exists")
	ErrDuplicateReceipt         = errors.New("receipt number already used")
	ErrNoFeeStructureAssigned   = errors.New("no fee structure assigned to the student's course offering")
	ErrConcurrencyConflict      = errors.New("the application was modified concurrently, retry the operation")
	ErrNegativeLedger           = errors.New("adjustment would make the total paid negative")
	ErrDuplicateDocumentRequest = errors.New("document type declared more than once")
)

// Kind classifies an error returned by the Service.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindDuplicateReceipt Kind = "duplicate_receipt"
	KindNoFeeStructure   Kind = "no_fee_structure"
	KindConflict         Kind = "concurrency_conflict"
	KindNotFound         Kind = "not_found"
	KindStorage          Kind = "storage"
)

// KindOf maps any error returned by the Service to its Kind. Unknown errors are storage failures.
func KindOf(err error) Kind {
	switch cause := errors.Cause(err); cause {
	case ErrDuplicateReceipt:
		return KindDuplicateReceipt
	case ErrNoFeeStructureAssigned:
		return KindNoFeeStructure
	case ErrConcurrencyConflict:
		return KindConflict
	case ErrStudentNotFound, ErrDocumentTypeNotFound:
		return KindNotFound
	default:
		switch cause.(type) {
		case *core.ValidationError, validator.ValidationErrors:
			return KindValidation
		}
	}
	return KindStorage
}
