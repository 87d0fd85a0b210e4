// AngelaMos | 2026
// validation.go

package user

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/usermgmt/internal/core"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 255
	emailMaxLen    = 255
	nameMaxLen     = 255
	phoneMaxLen    = 64
)

// Validator checks request shape. Every failure is a core validation
// error carrying a client-facing message.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	//nolint:errcheck // tag names are static and valid
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	//nolint:errcheck // tag names are static and valid
	_ = v.RegisterValidation("nowhitespace", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
	})

	return &Validator{validate: v}
}

func (v *Validator) ValidateCreate(req CreateUserRequest) error {
	if err := v.username(req.Username); err != nil {
		return err
	}
	if err := v.email(req.Email); err != nil {
		return err
	}
	return v.optional(req.FirstName, req.LastName, req.Phone)
}

// ValidateUpdate applies the create rules to the fields present in req.
func (v *Validator) ValidateUpdate(req UpdateUserRequest) error {
	if req.Username != nil {
		if err := v.username(*req.Username); err != nil {
			return err
		}
	}
	if req.Email != nil {
		if err := v.email(*req.Email); err != nil {
			return err
		}
	}
	return v.optional(req.FirstName, req.LastName, req.Phone)
}

func (v *Validator) username(s string) error {
	switch {
	case v.fails(s, "notblank"):
		return core.ValidationError("Username cannot be empty")
	case v.fails(s, fmt.Sprintf("min=%d", usernameMinLen)):
		return core.ValidationError(fmt.Sprintf(
			"Username must be at least %d characters", usernameMinLen))
	case v.fails(s, "nowhitespace"):
		return core.ValidationError("Username cannot contain spaces")
	case v.fails(s, fmt.Sprintf("max=%d", usernameMaxLen)):
		return core.ValidationError(fmt.Sprintf(
			"Username must be at most %d characters", usernameMaxLen))
	}
	return nil
}

func (v *Validator) email(s string) error {
	switch {
	case v.fails(s, "notblank"):
		return core.ValidationError("Email cannot be empty")
	case v.fails(s, "email"):
		return core.ValidationError("Invalid email format")
	case v.fails(s, fmt.Sprintf("max=%d", emailMaxLen)):
		return core.ValidationError(fmt.Sprintf(
			"Email must be at most %d characters", emailMaxLen))
	}
	return nil
}

func (v *Validator) optional(firstName, lastName, phone *string) error {
	fields := []struct {
		label string
		value *string
		max   int
	}{
		{"First name", firstName, nameMaxLen},
		{"Last name", lastName, nameMaxLen},
		{"Phone", phone, phoneMaxLen},
	}

	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if v.fails(*f.value, fmt.Sprintf("max=%d", f.max)) {
			return core.ValidationError(fmt.Sprintf(
				"%s must be at most %d characters", f.label, f.max))
		}
	}
	return nil
}

func (v *Validator) fails(value, tag string) bool {
	return v.validate.Var(value, tag) != nil
}
