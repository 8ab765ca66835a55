package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	enumTokenRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,31}$`)
	zipRegex       = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
	phoneRegex     = regexp.MustCompile(`^\+?[0-9() .-]{7,20}$`)
)

const maxTagLength = 64

// enumTokenValidator accepts anything shaped like a table key. Whether the
// key exists is decided by the estimator, which falls back and flags the
// quote instead of rejecting it.
func enumTokenValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return enumTokenRegex.MatchString(strings.TrimSpace(val))
}

func siteTagValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	tag := strings.TrimSpace(val)
	return tag != "" && len(tag) <= maxTagLength
}

func zipValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return zipRegex.MatchString(val)
}

func phoneValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	digits := 0
	for _, r := range val {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return phoneRegex.MatchString(val) && digits >= 7
}
