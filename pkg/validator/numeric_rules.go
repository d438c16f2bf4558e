package validator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinNum validates that value >= min.
func MinNum[T Numeric](field string, value T, min T) Rule {
	return Rule{
		Check: func() bool { return value >= min },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at least %v", min),
			TranslationKey: "validation.min",
		},
	}
}

// NonNegativeDecimal validates a money amount is zero or more.
func NonNegativeDecimal(field string, value decimal.Decimal) Rule {
	return Rule{
		Check: func() bool { return !value.IsNegative() },
		Error: ValidationError{
			Field:          field,
			Message:        "must be zero or greater",
			TranslationKey: "validation.non_negative",
		},
	}
}

// DecimalFits validates that value is storable as NUMERIC(precision, scale)
// without rounding: at most scale fractional digits and precision-scale
// integer digits.
func DecimalFits(field string, value decimal.Decimal, precision, scale int32) Rule {
	limit := decimal.New(1, precision-scale)
	return Rule{
		Check: func() bool {
			return value.Equal(value.Truncate(scale)) && value.Abs().LessThan(limit)
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must have at most %d integer digits and %d decimal places", precision-scale, scale),
			TranslationKey: "validation.decimal_precision",
		},
	}
}
