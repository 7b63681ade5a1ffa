package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Usernames across LeetCode, HackerRank and Codecademy stay within this set.
// Anything else would end up unescaped in a third-party URL or query.
var platformUsernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// New returns a validator with the custom rules registered and JSON field names
// reported in errors.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("platform_username", PlatformUsername)
}

// PlatformUsername validates an external platform handle
func PlatformUsername(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // use required if needed
	}
	return platformUsernameRegex.MatchString(val)
}
