package validator_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/modernmen/notifier/pkg/validator"
)

func TestRules(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := `^([01]\d|2[0-3]):[0-5]\d$`

	tests := []struct {
		name string
		rule validator.Rule
		want bool
	}{
		{"required ok", validator.Required("f", "x"), true},
		{"required blank", validator.Required("f", " \t"), false},
		{"max len ok", validator.MaxLen("f", "héllo", 5), true},
		{"max len over", validator.MaxLen("f", strings.Repeat("a", 6), 5), false},
		{"one of ok", validator.OneOf("f", 2, []int{1, 2}), true},
		{"one of miss", validator.OneOf("f", "c", []string{"a", "b"}), false},
		{"slice required ok", validator.RequiredSlice("f", []int{1}), true},
		{"slice required empty", validator.RequiredSlice("f", []int{}), false},
		{"each one of ok", validator.EachOneOf("f", []string{"a", "b"}, []string{"a", "b", "c"}), true},
		{"each one of empty", validator.EachOneOf("f", nil, []string{"a"}), true},
		{"each one of miss", validator.EachOneOf("f", []string{"a", "z"}, []string{"a"}), false},
		{"date after ok", validator.DateAfter("f", now.Add(time.Second), now), true},
		{"date after equal", validator.DateAfter("f", now, now), false},
		{"regex ok", validator.MatchesRegex("f", "22:30", clock, "a time as HH:MM"), true},
		{"regex miss", validator.MatchesRegex("f", "24:00", clock, "a time as HH:MM"), false},
		{"regex invalid pattern", validator.MatchesRegex("f", "x", "(", "anything"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.rule.Check())
			assert.Equal(t, "f", tt.rule.Error.Field)
			assert.NotEmpty(t, tt.rule.Error.Code)
		})
	}
}
