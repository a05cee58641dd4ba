// Package validation provides custom validation rules for the application.
package validation

import (
	"sort"
	"strings"

	validation "github.com/jellydator/validation"
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// FieldNames returns the sorted names of the fields that failed validation.
// Names are the json tag names reported by validation.ValidateStruct.
// Returns nil when err is nil or not a validation.Errors value.
func FieldNames(err error) []string {
	errs, ok := err.(validation.Errors)
	if !ok || len(errs) == 0 {
		return nil
	}

	names := make([]string, 0, len(errs))
	for name, fieldErr := range errs {
		if fieldErr != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
