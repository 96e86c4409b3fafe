package gate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait keeps reading output after a cancelled
// command was killed, in case something outside its process group still
// holds the pipes.
const waitDelay = 500 * time.Millisecond

// RunResult is what a Runner captured from a child process that started.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs an argv vector as a child process and waits for it to exit.
// A non-zero exit is reported through RunResult.ExitCode; the error return is
// reserved for processes that could not be started or were interrupted.
type Runner interface {
	Run(ctx context.Context, argv []string) (*RunResult, error)
}

// ExecRunner runs commands directly with os/exec. No shell is involved, so
// every argv element reaches the child verbatim.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, argv []string) (*RunResult, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// A child in its own process group cannot read the terminal, so only
	// runs that can be cancelled get one.
	if ctx.Done() != nil {
		killProcessGroupOnCancel(cmd)
		cmd.WaitDelay = waitDelay
	}

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("command interrupted: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		return &RunResult{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: exitErr.ExitCode(),
		}, nil
	}

	return &RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}, nil
}
