// Package command runs external commands for deez: package manager
// queries and installs, remote fetches and the start/pre/post/end
// hooks declared in the config. Commands are parsed into argument
// vectors and executed directly, never through a shell.
package command

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/arthur-debert/deez/pkg/errors"
	"github.com/arthur-debert/deez/pkg/logging"
	"github.com/mattn/go-shellwords"
	"github.com/rs/zerolog"
)

// Result captures the outcome of one external invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands.
type Runner interface {
	// Run executes argv[0] with argv[1:] as arguments. A non-zero exit
	// or a failure to start returns a non-nil error alongside whatever
	// output was captured.
	Run(ctx context.Context, argv []string) (Result, error)

	// RunLine splits line into an argument vector and runs it.
	RunLine(ctx context.Context, line string) (Result, error)
}

// Options contains configuration for the exec runner.
type Options struct {
	// Timeout bounds each invocation; zero means no timeout. External
	// commands otherwise block indefinitely.
	Timeout time.Duration

	Logger zerolog.Logger
}

// ExecRunner is the production Runner built on os/exec.
type ExecRunner struct {
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates a new exec runner.
func New(opts Options) *ExecRunner {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("command")
	}
	return &ExecRunner{timeout: opts.Timeout, logger: logger}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New(errors.ErrInvalidInput, "empty command")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logging.LogCommand(argv[0], argv[1:])

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	} else {
		// The command never started.
		result.ExitCode = -1
	}

	if err != nil {
		r.logger.Debug().
			Str("command", argv[0]).
			Int("exit_code", result.ExitCode).
			Str("stderr", result.Stderr).
			Msg("Command failed")
		return result, errors.Wrapf(err, errors.ErrCommandFailed, "command %q failed", argv[0])
	}

	return result, nil
}

// RunLine implements Runner.
func (r *ExecRunner) RunLine(ctx context.Context, line string) (Result, error) {
	argv, err := shellwords.Parse(line)
	if err != nil {
		return Result{}, errors.Wrapf(err, errors.ErrInvalidInput, "cannot parse command %q", line)
	}
	if len(argv) == 0 {
		return Result{}, errors.Newf(errors.ErrInvalidInput, "empty command %q", line)
	}
	return r.Run(ctx, argv)
}
