package cmd

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tierdev/tier-cli/internal/auth"
	"github.com/tierdev/tier-cli/internal/browser"
	clierrors "github.com/tierdev/tier-cli/internal/errors"
)

const topUsage = "usage: tier [push|pull|whoami|fetch|login|logout|projectDir|dumpconf]"

// App owns CLI wiring and execution configuration.
type App struct {
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Environ []string

	WorkingDir func() (string, error)
	HomeDir    func() (string, error)

	// HTTPClient, when set, is copied into every API client.
	HTTPClient *http.Client
	// OpenStore opens the credential store; defaults to auth.Open.
	OpenStore func(backend string, getenv func(string) string) (*auth.Store, error)
	// OpenBrowser defaults to browser.Open.
	OpenBrowser func(url string) error
	// Sleep paces login polling; nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error

	Version   string
	Commit    string
	BuildTime string
}

// NewApp constructs an App bound to the process environment.
func NewApp() *App {
	return &App{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Environ:     os.Environ(),
		WorkingDir:  os.Getwd,
		HomeDir:     os.UserHomeDir,
		OpenStore:   auth.Open,
		OpenBrowser: browser.Open,
		Version:     "dev",
		Commit:      "unknown",
		BuildTime:   "unknown",
	}
}

// Execute runs the CLI with the provided args. Errors are printed to Stderr
// before being returned.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := newRootCmd(a)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		err = asUsageError(err)
		printCommandError(a.stderr(), err)
		return err
	}
	return nil
}

func (a *App) stdout() io.Writer {
	if a.Stdout == nil {
		return os.Stdout
	}
	return a.Stdout
}

func (a *App) stderr() io.Writer {
	if a.Stderr == nil {
		return os.Stderr
	}
	return a.Stderr
}

func (a *App) environ() []string {
	if a.Environ == nil {
		return os.Environ()
	}
	return a.Environ
}

// asUsageError turns cobra's argument and flag errors into usage errors.
func asUsageError(err error) error {
	if clierrors.IsUsageError(err) {
		return err
	}
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "flag needs an argument", "invalid argument", "accepts ", "if any flags in the group"} {
		if strings.HasPrefix(msg, prefix) {
			return &clierrors.UsageError{Message: msg, Usage: topUsage}
		}
	}
	return err
}
