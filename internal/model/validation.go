package model

import (
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the custom binding validators on gin's
// validator engine.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("timeofday", validTimeOfDay)
}

func validTimeOfDay(fl validator.FieldLevel) bool {
	_, err := ParseTimeOfDay(fl.Field().String())
	return err == nil
}
