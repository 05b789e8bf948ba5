// Package cli holds the cobra plumbing every lfkit binary shares: the
// --config/--verbose flags, config and logger setup, and exit codes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lfkit/lfkit/internal/config"
	"github.com/lfkit/lfkit/internal/dirs"
	"github.com/lfkit/lfkit/internal/logging"
	"github.com/lfkit/lfkit/internal/shell"
	"github.com/lfkit/lfkit/internal/tui"
)

// ExitError asks Execute to exit with Code. A nil Err exits silently.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Exit returns an ExitError with no message.
func Exit(code int) error {
	return &ExitError{Code: code}
}

// App is the state a command sees once PersistentPreRunE has run.
type App struct {
	Dirs   dirs.Dirs
	Config *config.Config
	Logger *zap.Logger
	Runner shell.Runner

	verbose    bool
	configPath string
}

// New wires the shared flags and setup into root and returns the App
// its RunE functions read from.
func New(root *cobra.Command) *App {
	app := &App{Logger: zap.NewNop(), Runner: shell.Exec{}}

	root.SilenceUsage = true
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lfkit/config.yaml)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup()
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.Logger != nil {
			_ = app.Logger.Sync()
		}
	}
	return app
}

func (a *App) setup() error {
	a.Dirs = dirs.Current()
	path := a.configPath
	if path == "" {
		path = config.DefaultPath(a.Dirs)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a.Config = cfg

	logger, err := logging.New(cfg.Logging, cfg.LogFile(), a.verbose)
	if err != nil {
		// A broken log destination must not break previews.
		fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
		logger = zap.NewNop()
	}
	a.Logger = logger
	return nil
}

// Execute runs root with SIGINT/SIGTERM cancellation and returns the
// process exit code.
func Execute(root *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	return exitCode(root.Name(), err, ctx.Err() != nil)
}

func exitCode(name string, err error, interrupted bool) int {
	if err == nil {
		return 0
	}
	// User cancellation exits quietly.
	if interrupted || errors.Is(err, tui.ErrCancelled) || errors.Is(err, context.Canceled) {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		if ee.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, ee.Err)
		}
		return ee.Code
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
	return 1
}
