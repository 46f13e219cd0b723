package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernmen/notifier/pkg/validator"
)

func TestValidationErrors_Error(t *testing.T) {
	t.Run("returns default message when no errors", func(t *testing.T) {
		var errs validator.ValidationErrors
		assert.Equal(t, "validation failed", errs.Error())
	})

	t.Run("joins every field message", func(t *testing.T) {
		var errs validator.ValidationErrors
		errs.Add(validator.ValidationError{Field: "title", Message: "field is required"})
		errs.Add(validator.ValidationError{Field: "kind", Message: "must be one of: [a b]"})
		assert.Equal(t, "validation failed: title: field is required; kind: must be one of: [a b]", errs.Error())
	})
}

func TestValidationErrors_Lookup(t *testing.T) {
	errs := validator.ValidationErrors{
		{Field: "title", Code: "required", Message: "field is required"},
		{Field: "title", Code: "max_length", Message: "too long"},
		{Field: "channels", Code: "required", Message: "at least one item is required"},
	}

	assert.True(t, errs.Has("title"))
	assert.False(t, errs.Has("body"))
	assert.Equal(t, []string{"field is required", "too long"}, errs.Get("title"))
	assert.Equal(t, []string{"title", "channels"}, errs.Fields())
	assert.False(t, errs.IsEmpty())
}

func TestApply(t *testing.T) {
	t.Run("returns nil when every rule passes", func(t *testing.T) {
		err := validator.Apply(
			validator.Required("title", "Hello"),
			validator.OneOf("kind", "system", []string{"system", "urgent"}),
		)
		assert.NoError(t, err)
	})

	t.Run("aggregates every failure in order", func(t *testing.T) {
		err := validator.Apply(
			validator.Required("title", "  "),
			validator.OneOf("kind", "party", []string{"system"}),
			validator.RequiredSlice("channels", []string(nil)),
		)
		require.Error(t, err)

		verrs := validator.ExtractValidationErrors(err)
		require.Len(t, verrs, 3)
		assert.Equal(t, []string{"title", "kind", "channels"}, verrs.Fields())
		assert.Equal(t, "one_of", verrs[1].Code)
	})

	t.Run("when skips rules for absent values", func(t *testing.T) {
		err := validator.Apply(
			validator.When(false, validator.Required("priority", "")),
			validator.When(true, validator.Required("title", "")),
		)
		verrs := validator.ExtractValidationErrors(err)
		require.Len(t, verrs, 1)
		assert.Equal(t, "title", verrs[0].Field)
	})
}

func TestExtractValidationErrors(t *testing.T) {
	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.Nil(t, validator.ExtractValidationErrors(errors.New("plain")))

	base := validator.Apply(validator.Required("title", ""))
	wrapped := fmt.Errorf("invalid input: %w", base)
	assert.True(t, validator.IsValidationError(wrapped))
	assert.Equal(t, []string{"title"}, validator.ExtractValidationErrors(wrapped).Fields())
	assert.False(t, validator.IsValidationError(errors.New("plain")))
}
