package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var contentTypeRegex = regexp.MustCompile(`^[a-z]+/[a-z0-9.+-]+(;.*)?$`)

// filenameValidator rejects names that could escape the upload directory or
// exceed common filesystem limits. Empty is allowed; a default is applied
// upstream.
func filenameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if val == "" {
		return true
	}
	if len(val) > 255 {
		return false
	}
	if strings.ContainsAny(val, "/\\") {
		return false
	}
	if val == "." || val == ".." {
		return false
	}
	return true
}

func contentTypeValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if val == "" {
		return true
	}
	return contentTypeRegex.MatchString(strings.ToLower(val))
}
