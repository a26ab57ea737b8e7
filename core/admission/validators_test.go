package admission

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

func newValidate() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func TestValidators(t *testing.T) {
	validate, translator := newValidate()

	tests := []struct {
		name    string
		obj     interface{}
		wantErr map[string]string
	}{
		{name: "valid offering", obj: CourseOffering{CourseCode: "CSE", AcademicYear: "2024-25"}},
		{name: "century rollover", obj: CourseOffering{CourseCode: "CSE", AcademicYear: "2099-00"}},
		{
			name:    "academic year not consecutive",
			obj:     CourseOffering{CourseCode: "CSE", AcademicYear: "2024-26"},
			wantErr: map[string]string{"academic_year": "academic_year must look like 2024-25"},
		},
		{
			name:    "missing course",
			obj:     CourseOffering{AcademicYear: "2024-25"},
			wantErr: map[string]string{"course_code": "this field is required"},
		},
		{
			name: "valid payment",
			obj:  NewPayment{Amount: 100, Mode: ModeUPI, ReceiptNumber: "KCET/2024/0001"},
		},
		{
			name: "invalid payment",
			obj:  NewPayment{Amount: 0, Mode: "BITCOIN", ReceiptNumber: "no spaces"},
			wantErr: map[string]string{
				"amount":         "amount must be greater than 0",
				"mode":           "mode must be one of CASH, CHEQUE, DD, ONLINE, CARD or UPI",
				"receipt_number": "receipt_number may only contain letters, digits, '/', '-' and '_' (max 40 characters)",
			},
		},
		{
			name:    "zero adjustment",
			obj:     NewAdjustment{Amount: 0, ReceiptNumber: "ADJ-1", Remarks: "x"},
			wantErr: map[string]string{"amount": "amount should not be equal to 0"},
		},
		{
			name:    "blank remarks",
			obj:     NewAdjustment{Amount: -5, ReceiptNumber: "ADJ-1", Remarks: "   "},
			wantErr: map[string]string{"remarks": "this field cannot be blank"},
		},
		{
			name:    "no declarations",
			obj:     DocumentDeclarations{},
			wantErr: map[string]string{"documents": "this field is required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.obj)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			got := make(map[string]string)
			for _, fe := range err.(validator.ValidationErrors) {
				got[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.wantErr, got)
		})
	}
}

func TestCheckDeclarations(t *testing.T) {
	catalog := []DocumentType{{ID: 1, Code: "MARKS_CARD"}, {ID: 2, Code: "PHOTO"}}

	assert.NoError(t, checkDeclarations([]DocumentDeclaration{{DocumentTypeID: 1}, {DocumentTypeID: 2}}, catalog))

	err := checkDeclarations([]DocumentDeclaration{{DocumentTypeID: 1}, {DocumentTypeID: 3}, {DocumentTypeID: 1}}, catalog)
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, []core.FieldError{
		{Field: "documents[1].document_type_id", Error: ErrDocumentTypeNotFound.Error()},
		{Field: "documents[2].document_type_id", Error: ErrDuplicateDocumentRequest.Error()},
	}, vErr.Fields)
}
