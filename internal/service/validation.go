package service

import (
	"fmt"

	"order-sla-bot/pkg/workhours"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// hh:mm wall-clock time, 00:00-23:59
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := workhours.TimeToMinutes(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// validateInput runs struct validation and wraps failures in ErrInvalidInput.
func validateInput(in any) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
