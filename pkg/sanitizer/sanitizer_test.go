package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/subreminder/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"  Jane.Doe@Example.COM ", "jane.doe@example.com"},
		{"jane..doe.@example.com", "jane.doe@example.com"},
		{"not-an-email", "not-an-email"},
		{"a@b@c", "a@b@c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizer.NormalizeEmail(tt.in), tt.in)
	}
}

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "j***@example.com", sanitizer.MaskEmail("jane@example.com"))
	assert.Equal(t, "*@example.com", sanitizer.MaskEmail("j@example.com"))
	assert.Equal(t, "nope", sanitizer.MaskEmail("nope"))
}

func TestName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Netflix Premium", sanitizer.Name("  Netflix\t\x00 Premium \n"))
	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.ToLower)
	assert.Equal(t, "mixed", clean("  MiXeD "))
}
