package cli

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/rileyhilliard/nexmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONSuccess(&buf, map[string]string{"key": "value"}))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "value", data["key"])
}

func TestWriteJSONFromError(t *testing.T) {
	var buf bytes.Buffer
	err := errors.New(errors.ErrConfig, "Interval too short", "Use at least 50ms")
	require.NoError(t, WriteJSONFromError(&buf, err))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeConfigInvalid, env.Error.Code)
	assert.Equal(t, "Interval too short", env.Error.Message)
	assert.Equal(t, "Use at least 50ms", env.Error.Suggestion)
	assert.NotContains(t, buf.String(), `"data"`)
}

func TestErrorToJSON(t *testing.T) {
	cause := stderrors.New("exit status 9")

	tests := []struct {
		name      string
		err       error
		wantCode  string
		wantCause string
	}{
		{name: "config not found", err: errors.New(errors.ErrConfig, "Specified config file not found: x.yaml", ""), wantCode: ErrCodeConfigNotFound},
		{name: "config invalid", err: errors.New(errors.ErrConfig, "Invalid config format", ""), wantCode: ErrCodeConfigInvalid},
		{name: "provider", err: errors.Wrap(cause, "Couldn't list processes"), wantCode: ErrCodeProviderFailed, wantCause: "exit status 9"},
		{name: "gpu", err: errors.WrapWithCode(cause, errors.ErrGPU, "nvidia-smi failed", ""), wantCode: ErrCodeGPUUnavailable, wantCause: "exit status 9"},
		{name: "render", err: errors.New(errors.ErrRender, "Terminal too small", ""), wantCode: ErrCodeRenderFailed},
		{name: "wrapped structured error", err: fmt.Errorf("tick: %w", errors.New(errors.ErrGPU, "gone", "")), wantCode: ErrCodeGPUUnavailable},
		{name: "plain error", err: stderrors.New("boom"), wantCode: ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			je := ErrorToJSON(tt.err)
			require.NotNil(t, je)
			assert.Equal(t, tt.wantCode, je.Code)
			assert.Equal(t, tt.wantCause, je.Cause)
		})
	}

	assert.Nil(t, ErrorToJSON(nil))
}
