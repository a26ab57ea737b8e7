package admission

import (
	"regexp"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

var (
	paymentModeTag  = "paymentmode"
	paymentModeText = "{0} must be one of CASH, CHEQUE, DD, ONLINE, CARD or UPI"

	receiptNoTag   = "receiptno"
	receiptNoText  = "{0} may only contain letters, digits, '/', '-' and '_' (max 40 characters)"
	receiptNoRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9/_-]{0,39}$`)

	academicYearTag   = "academicyear"
	academicYearText  = "{0} must look like 2024-25"
	academicYearRegex = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

// InitValidators registers the admission validators and their English translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	registerValidations(validate)
	registerTranslation(validate, translator, paymentModeTag, paymentModeText)
	registerTranslation(validate, translator, receiptNoTag, receiptNoText)
	registerTranslation(validate, translator, academicYearTag, academicYearText)
}

func registerValidations(validate *validator.Validate) {
	core.RegisterValidations(validate)
	_ = validate.RegisterValidation(paymentModeTag, paymentModeValidation)
	_ = validate.RegisterValidation(receiptNoTag, receiptNoValidation)
	_ = validate.RegisterValidation(academicYearTag, academicYearValidation)
}

// registerTranslation is like core.RegisterCustomTranslation but passes the field name as {0}.
func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func paymentModeValidation(fl validator.FieldLevel) bool {
	mode := PaymentMode(fl.Field().String())
	for _, m := range PaymentModes {
		if m == mode {
			return true
		}
	}
	return false
}

func receiptNoValidation(fl validator.FieldLevel) bool {
	return receiptNoRegex.MatchString(fl.Field().String())
}

// academicYearValidation accepts "YYYY-YY" where the second year follows the first (2024-25).
func academicYearValidation(fl validator.FieldLevel) bool {
	m := academicYearRegex.FindStringSubmatch(fl.Field().String())
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return (start+1)%100 == end
}
