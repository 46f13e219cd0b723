package validator

import "fmt"

// OneOf fails unless value equals one of options.
func OneOf[T comparable](field string, value T, options []T) Rule {
	return Rule{
		Check: func() bool {
			for _, o := range options {
				if value == o {
					return true
				}
			}
			return false
		},
		Error: ValidationError{
			Field:   field,
			Code:    "one_of",
			Message: fmt.Sprintf("must be one of: %v", options),
		},
	}
}
