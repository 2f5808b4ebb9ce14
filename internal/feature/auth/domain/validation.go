package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// MinPasswordLength is the minimum number of characters accepted for a password.
const MinPasswordLength = 6

var passwordLengthMessage = fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)

// NormalizeEmail trims and lower-cases an email so lookups and storage agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// ValidateRegistration checks the shape of a sign-up request.
// It expects an already normalized email and trimmed name.
func ValidateRegistration(email, password, name string) error {
	r := registration{Email: email, Password: password, Name: name}
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("Please provide a valid email"),
			is.Email.Error("Please provide a valid email"),
		),
		validation.Field(&r.Password,
			validation.Required.Error(passwordLengthMessage),
			validation.Length(MinPasswordLength, 0).Error(passwordLengthMessage),
		),
		validation.Field(&r.Name, validation.Required.Error("Name is required")),
	)
	return toValidationError(err)
}

// ValidateNewPassword applies the password rules to a replacement password.
func ValidateNewPassword(password string) error {
	err := validation.Validate(password,
		validation.Required.Error(passwordLengthMessage),
		validation.Length(MinPasswordLength, 0).Error(passwordLengthMessage),
	)
	if err != nil {
		return NewValidationError("newPassword", err.Error())
	}
	return nil
}

// toValidationError converts ozzo errors into a ValidationError with a stable field order.
func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &ValidationError{Fields: make([]FieldError, 0, len(keys))}
	for _, k := range keys {
		out.Fields = append(out.Fields, FieldError{Field: k, Message: errs[k].Error()})
	}
	return out
}
