package command

import (
	"context"

	"github.com/arthur-debert/deez/pkg/errors"
	"github.com/arthur-debert/deez/pkg/logging"
	"github.com/pterm/pterm"
)

// FailurePolicy decides whether a run continues after a hook command
// fails. It replaces the original interactive-prompt-inside-exec
// coupling so execution is deterministic under test.
type FailurePolicy interface {
	// Continue is consulted once per failed command. Returning false
	// aborts the run.
	Continue(cmdLine string, err error) bool
}

// FailFast aborts on the first failed command.
type FailFast struct{}

// Continue implements FailurePolicy.
func (FailFast) Continue(string, error) bool { return false }

// AlwaysContinue ignores command failures.
type AlwaysContinue struct{}

// Continue implements FailurePolicy.
func (AlwaysContinue) Continue(string, error) bool { return true }

// Interactive asks the operator whether to keep going after a failed
// command. Declining aborts the run.
type Interactive struct{}

// Continue implements FailurePolicy.
func (Interactive) Continue(cmdLine string, err error) bool {
	pterm.Error.Printfln("command failed: %s\n  %v", cmdLine, err)
	ok, _ := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		Show("Continue anyway?")
	return ok
}

// RunHooks executes each command line in order through the runner. A
// failed command is routed through the policy; declining to continue
// returns a USER_ABORT error that terminates the run.
func RunHooks(ctx context.Context, runner Runner, policy FailurePolicy, cmdLines []string) error {
	logger := logging.GetLogger("hooks")

	for _, line := range cmdLines {
		if line == "" {
			continue
		}
		result, err := runner.RunLine(ctx, line)
		if err == nil {
			if result.Stdout != "" {
				logger.Info().Str("command", line).Msg(result.Stdout)
			}
			continue
		}

		logger.Error().Err(err).Str("command", line).Msg("Hook command failed")
		if !policy.Continue(line, err) {
			return errors.Wrapf(err, errors.ErrUserAbort, "aborted after failed command %q", line)
		}
	}

	return nil
}
