package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var credValidate *validator.Validate

func init() {
	credValidate = validator.New(validator.WithRequiredStructEnabled())
}

type credentialsInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// validateCredentials checks presence of both fields and, when minLen > 0,
// the password length. No I/O happens before it.
func validateCredentials(email, password string, minLen int) error {
	err := credValidate.Struct(credentialsInput{Email: email, Password: password})
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ValidationError{
				Field:  strings.ToLower(verrs[0].Field()),
				Reason: "email and password are required",
			}
		}
		return &ValidationError{Field: "input", Reason: err.Error()}
	}

	if minLen > 0 {
		if err := credValidate.Var(password, "min="+strconv.Itoa(minLen)); err != nil {
			return &ValidationError{
				Field:  "password",
				Reason: fmt.Sprintf("password must be at least %d characters long", minLen),
			}
		}
	}
	return nil
}
