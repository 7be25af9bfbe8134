package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrProvider,
		ErrGPU,
		ErrRender,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Interval too short",
			suggestion: "Use --interval 50 or higher",
		},
		{
			name:       "provider error",
			code:       ErrProvider,
			message:    "Couldn't read CPU counters",
			suggestion: "Check that /proc is mounted",
		},
		{
			name:       "gpu error",
			code:       ErrGPU,
			message:    "nvidia-smi not found",
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check config.yaml syntax"),
			expectedParts: []string{"✗", "Invalid configuration", "Check config.yaml syntax"},
		},
		{
			name:          "with cause",
			err:           WrapWithCode(errors.New("permission denied"), ErrProvider, "Refresh failed", ""),
			expectedParts: []string{"Refresh failed", "permission denied"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrRender, "Render failed", ""),
			expectedParts: []string{"Render failed"},
			notExpected:   []string{"\n\n  \n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("open /proc/stat: no such file")
	wrapped := Wrap(cause, "Couldn't refresh system counters")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrProvider, wrapped.Code, "Wrap should default to ErrProvider code")
	assert.Equal(t, cause, wrapped.Cause)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestErrorsAs(t *testing.T) {
	wrapped := New(ErrConfig, "Config error", "Fix config")

	var nxErr *Error
	ok := errors.As(wrapped, &nxErr)

	assert.True(t, ok)
	assert.Equal(t, ErrConfig, nxErr.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrGPU, "GPU unavailable", "")

	assert.True(t, IsCode(err, ErrGPU))
	assert.False(t, IsCode(err, ErrProvider))
	assert.False(t, IsCode(errors.New("standard error"), ErrGPU))
	assert.False(t, IsCode(nil, ErrGPU))
}

func TestShortAndOneLine(t *testing.T) {
	withCause := WrapWithCode(errors.New("timeout"), ErrProvider, "Refresh failed", "retrying")
	assert.Equal(t, "Refresh failed: timeout", withCause.Short())
	assert.Equal(t, "Refresh failed", New(ErrConfig, "Refresh failed", "x").Short())

	assert.Equal(t, "Refresh failed: timeout", OneLine(withCause))
	assert.Equal(t, "first", OneLine(errors.New("first\nsecond")))
	assert.Equal(t, "", OneLine(nil))

	assert.False(t, strings.Contains(OneLine(withCause), "\n"))
}
