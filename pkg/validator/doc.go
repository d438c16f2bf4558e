// Package validator provides small declarative validation rules.
//
// Every helper returns a Rule: a Check closure plus the ValidationError to
// report when the check fails. Apply evaluates all rules and collects every
// failure into ValidationErrors, so callers get the complete list of invalid
// fields in one error instead of stopping at the first problem:
//
//	err := validator.Apply(
//		validator.LengthBetween("name", p.Name, 3, 100),
//		validator.NonNegativeDecimal("price", p.Price),
//		validator.InList("currency", p.Currency, Currencies),
//	)
//
// ValidationErrors implements error; use IsValidationError or
// ExtractValidationErrors to detect it after wrapping.
package validator
