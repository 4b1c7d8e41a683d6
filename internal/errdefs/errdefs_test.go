package errdefs

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "generic", err: errors.New("boom"), want: ExitError},
		{name: "usage", err: Usage(errors.New("unknown flag")), want: ExitUsage},
		{name: "config", err: Configf("unknown profile %q", "prod"), want: ExitConfig},
		{name: "credential", err: Credentialf("unresolved keyring reference"), want: ExitConfig},
		{name: "api", err: API(404, `{"error":"not found"}`), want: ExitAPI},
		{name: "timeout", err: Timeout("task-1", 30*time.Second), want: ExitTimeout},
		{name: "validation", err: Validationf("conflicting flags"), want: ExitValidation},
		{name: "query", err: Query("foo[", errors.New("unbalanced bracket")), want: ExitValidation},
		{name: "io", err: IOWrap(errors.New("permission denied"), "writing bundle"), want: ExitError},
		{name: "transport", err: Transportf("connection refused"), want: ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitCodeWrappedChain(t *testing.T) {
	// Kinds survive fmt.Errorf wrapping.
	err := fmt.Errorf("running workflow: %w", Timeout("t1", time.Minute))
	assert.Equal(t, ExitTimeout, ExitCode(err))

	err = fmt.Errorf("listing subscriptions: %w", API(500, "server error"))
	assert.Equal(t, ExitAPI, ExitCode(err))
	assert.True(t, IsAPI(err))

	apiErr, ok := AsAPI(err)
	require.True(t, ok)
	assert.Equal(t, 500, apiErr.StatusCode)
}

func TestAPIErrorMessage(t *testing.T) {
	t.Run("raw body", func(t *testing.T) {
		err := API(400, `{"message":"bad region"}`)
		assert.Contains(t, err.Error(), "status 400")
		assert.Contains(t, err.Error(), "bad region")
	})

	t.Run("detail preferred over body", func(t *testing.T) {
		err := &APIError{StatusCode: 400, Body: "raw", Detail: "Validation: 400: bad region", TaskID: "t1"}
		assert.Contains(t, err.Error(), "Validation: 400: bad region")
		assert.Contains(t, err.Error(), "task t1")
		assert.NotContains(t, err.Error(), "raw")
	})

	t.Run("json body decode", func(t *testing.T) {
		apiErr, _ := AsAPI(API(409, `{"error":"conflict","code":409}`))
		body, ok := apiErr.JSONBody()
		require.True(t, ok)
		assert.Equal(t, "conflict", body["error"])
	})

	t.Run("non-json body", func(t *testing.T) {
		apiErr, _ := AsAPI(API(502, "Bad Gateway"))
		_, ok := apiErr.JSONBody()
		assert.False(t, ok)
	})
}

func TestTimeoutErrorMessage(t *testing.T) {
	err := Timeout("abc123", 300*time.Second)
	assert.Contains(t, err.Error(), "abc123")
	assert.Contains(t, err.Error(), "5m0s")
}

func TestUsageNil(t *testing.T) {
	assert.NoError(t, Usage(nil))
}
