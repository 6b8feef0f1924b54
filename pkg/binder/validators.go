package binder

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var hhmmRE = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// dateValidator ensures the value is a real calendar date in the format
// YYYY-MM-DD, or the empty string. A full parse rather than a shape check, so
// impossible dates like 2026-02-30 are rejected. The reason the empty string
// is allowed is that this validator can be used to clear out values. However,
// this is only useful in that case, so if you're using this validator but want
// the value to be required, add a `ne=` to the validate tag so that the empty
// string is disallowed.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// timeValidator ensures the value is a 24-hour HH:MM time. The empty string is
// allowed for the same clearing reason as dateValidator.
func timeValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return hhmmRE.MatchString(value)
}
