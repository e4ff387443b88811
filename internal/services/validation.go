package services

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/taskquest-api/internal/constants"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var (
	usernameRules = fmt.Sprintf("required,min=%d,max=%d,username", constants.MinUsernameLength, constants.MaxUsernameLength)
	emailRules    = fmt.Sprintf("required,email,max=%d", constants.MaxEmailLength)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

func validUsername(username string) bool {
	return validate.Var(username, usernameRules) == nil
}

// validEmail accepts a bare address only; display-name forms are rejected.
func validEmail(email string) bool {
	return validate.Var(email, emailRules) == nil
}
