package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinylittleshell/tars/internal/agent"
	"github.com/atinylittleshell/tars/internal/config"
	"github.com/atinylittleshell/tars/internal/core"
	"github.com/atinylittleshell/tars/internal/gate"
	"github.com/atinylittleshell/tars/internal/journal"
	"github.com/atinylittleshell/tars/internal/provider"
	"github.com/atinylittleshell/tars/internal/repl"
	"github.com/atinylittleshell/tars/internal/repl/render"
)

var BUILD_VERSION = "dev"

var configPath = flag.String("config", "", "path to the config file (default ~/.tars/config.yaml)")
var journalFlag = flag.Bool("journal", false, "print recently executed commands and exit")
var journalClearFlag = flag.Bool("journal-clear", false, "delete all recorded commands and exit")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

const journalLimit = 20

const helpText = `tars - a conversational Linux assistant

USAGE:
  tars [options]

Type what you want done in plain language. The model picks one command from
the allowed list and tars runs it directly, without a shell. Type '/clear' to
start a new conversation and 'exit' to quit.

ENVIRONMENT:
  GEMINI_API_KEY    API key for the gemini provider (default)
  OPENAI_API_KEY    API key for the openai provider
  TARS_PROVIDER     override the configured provider
  TARS_MODEL        override the configured model
  TARS_LOG_LEVEL    override the configured log level
  TARS_HOME         data directory (default ~/.tars)

OPTIONS:
`

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Print(helpText)
		flag.PrintDefaults()
		return
	}

	path := *configPath
	if path == "" {
		path = core.ConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new tars session --------", zap.Any("args", os.Args))

	if *journalFlag {
		if err := printJournal(os.Stdout, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *journalClearFlag {
		if err := clearJournal(os.Stdout, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if code := launch(context.Background(), cfg, os.Stderr, logger); code != 0 {
		_ = logger.Sync()
		os.Exit(code)
	}
}

// launch checks the model credential before anything interactive starts and
// then runs the session. It returns the process exit code.
func launch(ctx context.Context, cfg *config.Config, stderr io.Writer, logger *zap.Logger) int {
	modelConfig, err := cfg.ModelConfig()
	if err != nil {
		logger.Error("cannot start session", zap.Error(err))
		fmt.Fprintln(stderr, startupMessage(err))
		return 1
	}

	if err := run(ctx, cfg, modelConfig, logger); err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, modelConfig provider.ModelConfig, logger *zap.Logger) error {
	p, err := provider.New(ctx, modelConfig)
	if err != nil {
		return err
	}

	var observer gate.Observer
	if cfg.Journal {
		j, err := journal.Open(core.JournalFile(), logger)
		if err != nil {
			logger.Warn("journal disabled", zap.Error(err))
		} else {
			defer j.Close()
			observer = j.Record
		}
	}

	session := newSession(cfg, p, observer, logger)
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))

	return runInteractive(ctx, cfg, session, os.Stdin, render.New(os.Stdout, interactive), logger)
}

func newSession(cfg *config.Config, p provider.ModelProvider, observer gate.Observer, logger *zap.Logger) *agent.Session {
	g := gate.New(gate.Options{
		AllowList:   cfg.AllowList(),
		Logger:      logger.Named("gate"),
		SudoCommand: cfg.SudoCommand,
		Timeout:     time.Duration(cfg.CommandTimeout),
		Observer:    observer,
	})

	return agent.NewSession(agent.Options{
		Provider:     p,
		Gate:         g,
		Logger:       logger.Named("agent"),
		SystemPrompt: cfg.SystemPrompt,
	})
}

func runInteractive(ctx context.Context, cfg *config.Config, session repl.Sender, input io.Reader, renderer *render.Renderer, logger *zap.Logger) error {
	r := repl.NewREPL(repl.Options{
		Session:  session,
		Input:    input,
		Renderer: renderer,
		Logger:   logger.Named("repl"),
		Prompt:   cfg.Prompt,
		Version:  BUILD_VERSION,
	})
	return r.Run(ctx)
}

// startupMessage renders a startup failure the way it is shown on stderr.
func startupMessage(err error) string {
	if errors.Is(err, config.ErrMissingCredential) {
		return fmt.Sprintf("Error: %v.", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

func printJournal(w io.Writer, logger *zap.Logger) error {
	j, err := journal.Open(core.JournalFile(), logger)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(journalLimit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	journal.Print(w, entries)
	return nil
}

func clearJournal(w io.Writer, logger *zap.Logger) error {
	j, err := journal.Open(core.JournalFile(), logger)
	if err != nil {
		return err
	}
	defer j.Close()

	if err := j.Reset(); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	fmt.Fprintln(w, "Journal cleared.")
	return nil
}

func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	logLevel := cfg.ZapLevel()
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// Logs only go to file so they never interleave with command output.
	// Use `tail -f ~/.tars/tars.log` to monitor logs in real-time
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	return loggerConfig.Build()
}
