package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("nil when every rule passes", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("name", "Netflix"),
			validator.MinNum("count", 3, 1),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("name", "  "),
			validator.MinNum("count", 0, 1),
			validator.ValidEmail("email", "nope"),
		)
		require.Error(t, err)

		verrs := validator.ExtractValidationErrors(err)
		require.Len(t, verrs, 3)
		assert.Equal(t, []string{"name", "count", "email"}, verrs.Fields())
		assert.Contains(t, err.Error(), "validation failed: name: field is required")
	})
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	var errs validator.ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs.Add(validator.ValidationError{Field: "password", Message: "too short"})
	errs.Add(validator.ValidationError{Field: "password", Message: "too common"})
	errs.Add(validator.ValidationError{Field: "email", Message: "is required"})

	assert.True(t, errs.Has("password"))
	assert.False(t, errs.Has("name"))
	assert.Equal(t, []string{"too short", "too common"}, errs.Get("password"))
	assert.Equal(t, map[string][]string{
		"password": {"too short", "too common"},
		"email":    {"is required"},
	}, errs.Map())
}

func TestExtractAfterWrap(t *testing.T) {
	t.Parallel()

	base := validator.Apply(validator.RequiredString("name", ""))
	wrapped := fmt.Errorf("create subscription: %w", base)

	assert.True(t, validator.IsValidationError(wrapped))
	assert.True(t, validator.ExtractValidationErrors(wrapped).Has("name"))
	assert.False(t, validator.IsValidationError(errors.New("plain")))
	assert.Nil(t, validator.ExtractValidationErrors(nil))
}

func TestMerge(t *testing.T) {
	t.Parallel()

	a := validator.Apply(validator.RequiredString("a", ""))
	b := validator.Apply(validator.RequiredString("b", ""))

	merged := validator.Merge(a, nil, errors.New("ignored"), b)
	assert.Equal(t, []string{"a", "b"}, validator.ExtractValidationErrors(merged).Fields())
	assert.NoError(t, validator.Merge(nil, errors.New("ignored")))
}
