// Package repl provides the interactive prompt: it reads one line at a time,
// hands it to the agent session and prints whatever comes back.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/atinylittleshell/tars/internal/provider"
	"github.com/atinylittleshell/tars/internal/repl/render"
)

const maxLineSize = 1024 * 1024

// clearCommand starts a new conversation instead of being sent to the model.
const clearCommand = "/clear"

// Sender is the part of agent.Session the REPL depends on.
type Sender interface {
	Send(ctx context.Context, message string) (string, error)
	History() []provider.ChatMessage
	Reset()
}

type Options struct {
	Session  Sender
	Input    io.Reader
	Renderer *render.Renderer
	Logger   *zap.Logger
	Prompt   string
	Version  string
}

type REPL struct {
	session  Sender
	input    io.Reader
	renderer *render.Renderer
	logger   *zap.Logger
	prompt   string
	version  string
}

func NewREPL(opts Options) *REPL {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prompt := opts.Prompt
	if prompt == "" {
		prompt = "> "
	}

	return &REPL{
		session:  opts.Session,
		input:    opts.Input,
		renderer: opts.Renderer,
		logger:   logger,
		prompt:   prompt,
		version:  opts.Version,
	}
}

// Run loops until the user types exit or input ends. Turn errors are shown
// and logged but never end the loop; only a failure to read input does.
func (r *REPL) Run(ctx context.Context) error {
	r.renderer.Banner(r.version)

	scanner := bufio.NewScanner(r.input)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	for {
		r.renderer.Prompt(r.prompt)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			r.renderer.Output("")
			r.renderer.Farewell()
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, "exit") {
			r.renderer.Farewell()
			return nil
		}
		if line == "" {
			continue
		}
		if line == clearCommand {
			r.clearConversation()
			continue
		}

		r.handleLine(ctx, line)
	}
}

func (r *REPL) handleLine(ctx context.Context, line string) {
	r.logger.Debug("processing input", zap.String("input", line))

	stopSpinner := r.renderer.StartThinkingSpinner(ctx)
	output, err := r.session.Send(ctx, line)
	stopSpinner()

	if err != nil {
		r.logger.Error("failed to process input", zap.String("input", line), zap.Error(err))
		r.renderer.Error(fmt.Sprintf("Error processing input: %v", err))
		return
	}

	r.renderer.Output(output)
}

func (r *REPL) clearConversation() {
	r.logger.Info("clearing conversation", zap.Int("messages", len(r.session.History())))
	r.session.Reset()
	r.renderer.Success("Conversation cleared.")
}
