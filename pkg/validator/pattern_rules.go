package validator

import (
	"fmt"
	"regexp"
)

// MatchesRegex fails when value does not match pattern. description names
// the expected format in the error message. An invalid pattern never matches.
func MatchesRegex(field, value, pattern, description string) Rule {
	return Rule{
		Check: func() bool {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return false
			}
			return re.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Code:    "format",
			Message: fmt.Sprintf("must be %s", description),
		},
	}
}
