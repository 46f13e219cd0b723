package validator

import "fmt"

func RequiredSlice[T any](field string, value []T) Rule {
	return Rule{
		Check: func() bool {
			return len(value) > 0
		},
		Error: ValidationError{
			Field:   field,
			Code:    "required",
			Message: "at least one item is required",
		},
	}
}

// EachOneOf fails when any element of values is not among options.
func EachOneOf[T comparable](field string, values []T, options []T) Rule {
	return Rule{
		Check: func() bool {
			for _, v := range values {
				found := false
				for _, o := range options {
					if v == o {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:   field,
			Code:    "each_one_of",
			Message: fmt.Sprintf("every item must be one of: %v", options),
		},
	}
}
