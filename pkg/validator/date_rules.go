package validator

import (
	"fmt"
	"time"
)

// DateAfter fails unless value is strictly after after.
func DateAfter(field string, value, after time.Time) Rule {
	return Rule{
		Check: func() bool {
			return value.After(after)
		},
		Error: ValidationError{
			Field:   field,
			Code:    "date_after",
			Message: fmt.Sprintf("must be after %s", after.UTC().Format(time.RFC3339)),
		},
	}
}
