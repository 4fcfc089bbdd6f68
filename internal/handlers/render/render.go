package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	configureValidator(validate)
}

type Struct any

// Envelope is the uniform response wrapper every endpoint returns
// success mirrors the status code so clients can branch on one field
type Envelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Data       any      `json:"data,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Success    bool     `json:"success"`
}

// JSON sends a success envelope with the given status code and data
func JSON(w http.ResponseWriter, code int, message string, data any) {
	writeEnvelope(w, Envelope{
		StatusCode: code,
		Message:    message,
		Data:       data,
		Success:    code < http.StatusBadRequest,
	})
}

// Error sends a failure envelope, errs carries optional sub-messages
func Error(w http.ResponseWriter, code int, message string, errs ...string) {
	writeEnvelope(w, Envelope{
		StatusCode: code,
		Message:    message,
		Errors:     errs,
		Success:    false,
	})
}

// DecodeError reports a request body that could not be parsed
func DecodeError(w http.ResponseWriter, err error) {
	message := ""

	// Try to provide more specific error message based on error type
	switch err := err.(type) {
	case *json.UnmarshalTypeError:
		message = fmt.Sprintf("Invalid data type for field '%s'", err.Field)
	default:
		message = fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}

	Error(w, http.StatusBadRequest, message)
}

// ValidationErrors reports every failed field in the errors list
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	messages := make([]string, 0, len(errs))

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		case "email":
			message = "Must be a valid email address"
		case "password":
			message = "Must include at least one lowercase letter, one uppercase letter, one number, and one special character"
		case "duetime":
			message = "Must be in the format YYYY-MM-DDTHH:MM"
		default:
			message = "Invalid value"
		}

		messages = append(messages, fmt.Sprintf("%s: %s", fieldError.Field(), message))
	}

	Error(w, http.StatusBadRequest, "Request validation failed", messages...)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		// pretty sure cast will be ok cause expecting T is valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

// writeEnvelope sends the envelope as json and enforces its status code
func writeEnvelope(w http.ResponseWriter, e Envelope) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(e); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.StatusCode)
	_, _ = w.Write(buf.Bytes())
}
