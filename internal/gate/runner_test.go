package gate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_CapturesStreamsSeparately(t *testing.T) {
	result, err := ExecRunner{}.Run(context.Background(), []string{"ls", "/tars-missing-dir", "."})
	require.NoError(t, err)

	assert.NotZero(t, result.ExitCode)
	assert.Contains(t, result.Stderr, "tars-missing-dir")
	assert.NotContains(t, result.Stdout, "tars-missing-dir")
}

func TestExecRunner_ZeroExit(t *testing.T) {
	result, err := ExecRunner{}.Run(context.Background(), []string{"echo", "-n", "hi"})
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hi", result.Stdout)
	assert.Empty(t, result.Stderr)
}

func TestExecRunner_EmptyArgv(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestExecRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecRunner{}.Run(ctx, []string{"echo", "never"})
	assert.Error(t, err)
}

func TestExecRunner_CancelKillsGrandchildren(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ExecRunner{}.Run(ctx, []string{"sh", "-c", "sleep 3; echo done"})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
