package render

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var dueTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}$`)

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("password", validatePasswordStrength)
	_ = validate.RegisterValidation("duetime", validateDueTime)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// Password must contain a lowercase letter, an uppercase letter,
// a digit and a symbol. Length limits are separate min/max tags.
func validatePasswordStrength(fl validator.FieldLevel) bool {
	var hasLower, hasUpper, hasDigit, hasSymbol bool

	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	return hasLower && hasUpper && hasDigit && hasSymbol
}

// Due time is an ISO local timestamp with minute precision
func validateDueTime(fl validator.FieldLevel) bool {
	return dueTimeRe.MatchString(fl.Field().String())
}
