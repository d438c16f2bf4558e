package validator

import (
	"fmt"
	"time"
)

// NotFutureDate fails when value is after now.
func NotFutureDate(field string, value, now time.Time) Rule {
	return Rule{
		Check: func() bool { return !value.After(now) },
		Error: ValidationError{
			Field:          field,
			Message:        "date must not be in the future",
			TranslationKey: "validation.date_not_future",
		},
	}
}

// DateAfter requires value to be strictly after the given time.
func DateAfter(field string, value, after time.Time) Rule {
	return Rule{
		Check: func() bool { return value.After(after) },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("date must be after %s", after.Format(time.DateOnly)),
			TranslationKey: "validation.date_after",
		},
	}
}

// RequiredTime fails for the zero time.
func RequiredTime(field string, value time.Time) Rule {
	return Rule{
		Check: func() bool { return !value.IsZero() },
		Error: ValidationError{
			Field:          field,
			Message:        "field is required",
			TranslationKey: "validation.required",
		},
	}
}
