// Package gate validates model-requested commands against an allow-list and
// runs the accepted ones as direct child processes.
//
// The allow-list is the only security boundary and it is name-based: it does
// not inspect flags or arguments, so an allowed command such as rm can still
// be asked to do something destructive.
package gate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"mvdan.cc/sh/v3/syntax"
)

const (
	// NoOutputMessage is returned when an allowed command succeeds without printing anything.
	NoOutputMessage = "Command executed successfully (no output)"

	DefaultSudoCommand = "sudo"

	maxSuggestions = 3
)

// timeNow is a variable that can be overridden for testing.
var timeNow = time.Now

// Request is a single command invocation asked for by the model.
type Request struct {
	Command      string
	Flags        []string
	Args         []string
	RequiresSudo bool
}

// Outcome describes what happened to one Request. It is handed to the
// Observer and never returned to Execute callers.
type Outcome struct {
	Request  Request
	Argv     []string
	Refused  bool
	ExitCode int
	Err      error
	Duration time.Duration
	Result   string
}

// Succeeded reports whether the command ran and exited with status zero.
func (o Outcome) Succeeded() bool {
	return !o.Refused && o.Err == nil && o.ExitCode == 0
}

// Observer is notified after every Execute call, including refusals.
type Observer func(ctx context.Context, outcome Outcome)

type Options struct {
	AllowList AllowList
	Runner    Runner
	Logger    *zap.Logger

	// SudoCommand is prepended to argv for privileged requests. Defaults to "sudo".
	SudoCommand string

	// Timeout bounds each child process. Zero means wait forever.
	Timeout time.Duration

	Observer Observer
}

// Gate is stateless across calls; a single Gate may serve any number of sessions.
type Gate struct {
	allow    AllowList
	runner   Runner
	logger   *zap.Logger
	sudo     string
	timeout  time.Duration
	observer Observer
}

func New(opts Options) *Gate {
	g := &Gate{
		allow:    opts.AllowList,
		runner:   opts.Runner,
		logger:   opts.Logger,
		sudo:     opts.SudoCommand,
		timeout:  opts.Timeout,
		observer: opts.Observer,
	}
	if g.runner == nil {
		g.runner = ExecRunner{}
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.sudo == "" {
		g.sudo = DefaultSudoCommand
	}
	return g
}

// AllowList returns the names this gate accepts.
func (g *Gate) AllowList() AllowList {
	return g.allow
}

// Argv assembles the argument vector for req: the command, then flags, then
// args, each in the order given, with the sudo prefix in front when requested.
func (g *Gate) Argv(req Request) []string {
	argv := make([]string, 0, 2+len(req.Flags)+len(req.Args))
	if req.RequiresSudo {
		argv = append(argv, g.sudo)
	}
	argv = append(argv, req.Command)
	argv = append(argv, req.Flags...)
	argv = append(argv, req.Args...)
	return argv
}

// Execute validates and runs req, always returning text suitable for the user.
func (g *Gate) Execute(ctx context.Context, req Request) string {
	outcome := g.execute(ctx, req)
	if g.observer != nil {
		g.observer(ctx, outcome)
	}
	return outcome.Result
}

func (g *Gate) execute(ctx context.Context, req Request) Outcome {
	if !g.allow.Contains(req.Command) {
		g.logger.Info("refused command", zap.String("command", req.Command))
		return Outcome{
			Request: req,
			Refused: true,
			Result:  g.refusal(req.Command),
		}
	}

	argv := g.Argv(req)
	outcome := Outcome{Request: req, Argv: argv}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	g.logger.Debug("running command", zap.Strings("argv", argv))
	start := timeNow()
	result, err := g.runner.Run(ctx, argv)
	outcome.Duration = timeNow().Sub(start)

	switch {
	case err != nil:
		outcome.Err = err
		outcome.ExitCode = -1
		outcome.Result = fmt.Sprintf("Error: %v", err)
		g.logger.Warn("command failed to start", zap.Strings("argv", argv), zap.Error(err))
	case result.ExitCode != 0:
		outcome.ExitCode = result.ExitCode
		outcome.Result = "Error executing command: " + failureDetail(result)
		g.logger.Info("command exited non-zero",
			zap.Strings("argv", argv),
			zap.Int("exitCode", result.ExitCode),
			zap.Duration("duration", outcome.Duration),
		)
	default:
		output := strings.TrimSpace(result.Stdout)
		if output == "" {
			output = NoOutputMessage
		}
		outcome.Result = output
		g.logger.Info("command succeeded",
			zap.Strings("argv", argv),
			zap.Duration("duration", outcome.Duration),
		)
	}

	return outcome
}

func (g *Gate) refusal(command string) string {
	msg := fmt.Sprintf("Error: Command '%s' is not allowed.", command)
	if suggestions := g.allow.Suggest(command, maxSuggestions); len(suggestions) > 0 {
		msg += " Did you mean: " + strings.Join(suggestions, ", ") + "?"
	}
	return msg
}

func failureDetail(result *RunResult) string {
	if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
		return stderr
	}
	return fmt.Sprintf("exit status %d", result.ExitCode)
}

// DisplayCommand renders argv the way a user would type it into bash.
func DisplayCommand(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", arg)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}
