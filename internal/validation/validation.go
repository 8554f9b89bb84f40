package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	FieldName  = "name"
	FieldPhone = "phone"
	FieldEmail = "email"
)

const (
	MsgNameRequired  = "Name is required"
	MsgNameTooShort  = "Name must be at least 2 characters"
	MsgPhoneTooShort = "Phone number must be at least 10 digits"
	MsgPhoneTooLong  = "Phone number must not exceed 15 digits"
	MsgEmailInvalid  = "Please enter a valid email address"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
var nonDigits = regexp.MustCompile(`\D`)

// FieldError is a single inline form error.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Email accepts blank input (the field is optional).
func Email(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if !emailPattern.MatchString(s) {
		return &FieldError{Field: FieldEmail, Message: MsgEmailInvalid}
	}
	return nil
}

// Phone accepts blank input; otherwise 10-15 digits once separators are
// stripped.
func Phone(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	digits := len(nonDigits.ReplaceAllString(s, ""))
	if digits < 10 {
		return &FieldError{Field: FieldPhone, Message: MsgPhoneTooShort}
	}
	if digits > 15 {
		return &FieldError{Field: FieldPhone, Message: MsgPhoneTooLong}
	}
	return nil
}

func Name(s string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return &FieldError{Field: FieldName, Message: MsgNameRequired}
	}
	if len([]rune(trimmed)) < 2 {
		return &FieldError{Field: FieldName, Message: MsgNameTooShort}
	}
	return nil
}

// Field runs the validator registered for field. Unknown fields are valid.
func Field(field, value string) error {
	switch field {
	case FieldName:
		return Name(value)
	case FieldPhone:
		return Phone(value)
	case FieldEmail:
		return Email(value)
	}
	return nil
}

// Form validates the customer contact fields and returns field → message for
// every failing field. An empty map means the form is valid.
func Form(name, phone, email string) map[string]string {
	errs := make(map[string]string)
	for field, value := range map[string]string{FieldName: name, FieldPhone: phone, FieldEmail: email} {
		var fe *FieldError
		if err := Field(field, value); errors.As(err, &fe) {
			errs[field] = fe.Message
		}
	}
	return errs
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator used on DTOs.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates DTO tags and flattens failures into field → message.
func Struct(v any) (map[string]string, error) {
	err := Validator().Struct(v)
	if err == nil {
		return nil, nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, err
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Namespace()] = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
	return out, err
}
