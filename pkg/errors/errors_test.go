// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "usage_error",
			code:    errors.ErrUsage,
			message: "You must specify at least one recipe",
			wantStr: "[USAGE] You must specify at least one recipe",
		},
		{
			name:    "action_not_found",
			code:    errors.ErrActionNotFound,
			message: "no such action",
			wantStr: "[ACTION_NOT_FOUND] no such action",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrRecipeNotFound, "recipe %q not found", "deploy.toml")
	assert.Equal(t, `recipe "deploy.toml" not found`, err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrTransport, "dial failed")

		assert.Equal(t, errors.ErrTransport, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[TRANSPORT] dial failed: base error", err.Error())
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "internal error"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"))
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrRecipeLoad, "cannot load").
		WithDetail("recipe", "deploy.toml").
		WithDetail("format", "toml")

	assert.Equal(t, "deploy.toml", err.Details["recipe"])
	assert.Equal(t, "toml", err.Details["format"])
	assert.Equal(t, "deploy.toml", errors.GetErrorDetails(err)["recipe"])
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrNotFound, "error 1")
	err2 := errors.New(errors.ErrNotFound, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	assert.True(t, err1.Is(err2), "same code should match")
	assert.False(t, err1.Is(err3), "different codes should not match")
	assert.True(t, stderrors.Is(err1, err2), "errors.Is should work with SwitchTowerError")
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrUsage, "bad flag"),
			code:     errors.ErrUsage,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrUsage, "bad flag"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "wrapped_error",
			err:      fmt.Errorf("outer: %w", errors.New(errors.ErrActionFailed, "boom")),
			code:     errors.ErrActionFailed,
			expected: true,
		},
		{
			name:     "plain_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrRecipeInvalid, errors.GetErrorCode(errors.New(errors.ErrRecipeInvalid, "x")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("standard error")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	parseErr := errors.Wrap(rootCause, errors.ErrRecipeInvalid, "cannot decode recipe")
	loadErr := errors.Wrap(parseErr, errors.ErrRecipeLoad, "failed to load recipe deploy.toml")

	assert.True(t, errors.IsErrorCode(loadErr, errors.ErrRecipeLoad))

	var inner *errors.SwitchTowerError
	require.True(t, stderrors.As(loadErr.Unwrap(), &inner))
	assert.Equal(t, errors.ErrRecipeInvalid, inner.Code)

	assert.True(t, stderrors.Is(loadErr, rootCause))
}

func TestDescribe(t *testing.T) {
	rootCause := stderrors.New("no such file or directory")
	err := errors.Wrap(
		errors.Wrap(rootCause, errors.ErrRecipeNotFound, "recipe not found"),
		errors.ErrRecipeLoad, "failed to load recipe deploy.toml")

	assert.Equal(t, "failed to load recipe deploy.toml: recipe not found: no such file or directory", errors.Describe(err))
	assert.Equal(t, "plain", errors.Describe(stderrors.New("plain")))
	assert.Equal(t, "", errors.Describe(nil))
	assert.Equal(t, "leaf", errors.Describe(errors.New(errors.ErrUsage, "leaf")))
}

func TestHasErrorCode(t *testing.T) {
	interrupted := errors.New(errors.ErrInterrupted, "interrupted")
	err := errors.Wrap(fmt.Errorf("ssh: handshake failed: %w", interrupted), errors.ErrActionFailed, "action 'deploy' failed")

	assert.False(t, errors.IsErrorCode(err, errors.ErrInterrupted), "IsErrorCode stops at the outermost code")
	assert.True(t, errors.HasErrorCode(err, errors.ErrInterrupted))
	assert.True(t, errors.HasErrorCode(err, errors.ErrActionFailed))
	assert.False(t, errors.HasErrorCode(err, errors.ErrUsage))
	assert.False(t, errors.HasErrorCode(nil, errors.ErrUsage))
}
