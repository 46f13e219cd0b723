package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Required fails for an empty or whitespace-only string.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Code:    "required",
			Message: "field is required",
		},
	}
}

// MaxLen limits a string to max characters.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Code:    "max_length",
			Message: fmt.Sprintf("must be at most %d characters long", max),
		},
	}
}
