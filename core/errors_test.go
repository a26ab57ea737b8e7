package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	errBase := errors.New("application number taken")

	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "wrapped error", err: NewValidationError(errBase, FieldError{Field: "application_number", Error: "taken"}), wantMsg: "application number taken"},
		{name: "fields only", err: NewValidationError(nil, FieldError{Field: "amount", Error: "negative"}, FieldError{Field: "mode", Error: "unknown"}), wantMsg: "amount: negative; mode: unknown"},
		{name: "no fields", err: NewValidationError(nil), wantMsg: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.True(t, IsValidationError(tt.err))
			assert.True(t, IsValidationError(errors.Wrap(tt.err, "recording payment")))
		})
	}

	assert.False(t, IsValidationError(errBase))
	assert.False(t, IsValidationError(nil))
}

func TestShutdownError(t *testing.T) {
	err := NewShutdownError("database unreachable")
	assert.Equal(t, "database unreachable", err.Error())
	assert.True(t, IsShutdown(err))
	assert.True(t, IsShutdown(errors.Wrap(err, "querying students")))
	assert.False(t, IsShutdown(errors.New("database unreachable")))
}
