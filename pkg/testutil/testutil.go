// Package testutil provides isolated filesystem environments and a
// scriptable command runner for tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/deez/pkg/command"
	"github.com/arthur-debert/deez/pkg/errors"
	"github.com/stretchr/testify/require"
)

// Env is an isolated deployment environment under a temp directory:
// a source tree, a target tree and a backup session root.
type Env struct {
	Dir         string
	SourceRoot  string
	TargetRoot  string
	SessionRoot string

	t *testing.T
}

// NewEnv creates the environment with source and target directories
// already present.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	dir := t.TempDir()

	env := &Env{
		Dir:         dir,
		SourceRoot:  filepath.Join(dir, "dots"),
		TargetRoot:  filepath.Join(dir, "home"),
		SessionRoot: filepath.Join(dir, "session"),
		t:           t,
	}
	require.NoError(t, os.MkdirAll(env.SourceRoot, 0755))
	require.NoError(t, os.MkdirAll(env.TargetRoot, 0755))
	return env
}

// WriteSource writes a file below the source root.
func (e *Env) WriteSource(rel, content string) {
	e.t.Helper()
	e.write(filepath.Join(e.SourceRoot, rel), content)
}

// WriteTarget writes a file below the target root.
func (e *Env) WriteTarget(rel, content string) {
	e.t.Helper()
	e.write(filepath.Join(e.TargetRoot, rel), content)
}

func (e *Env) write(path, content string) {
	e.t.Helper()
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0644))
}

// ReadTarget reads a file below the target root.
func (e *Env) ReadTarget(rel string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.TargetRoot, rel))
	require.NoError(e.t, err)
	return string(data)
}

// TargetExists reports whether a path below the target root exists.
func (e *Env) TargetExists(rel string) bool {
	_, err := os.Lstat(filepath.Join(e.TargetRoot, rel))
	return err == nil
}

// FakeRunner is a scriptable command.Runner. Commands succeed unless
// Script says otherwise; every invocation is recorded.
type FakeRunner struct {
	// Script, if set, decides the outcome of each invocation.
	Script func(argv []string) error

	// Calls records every argv in order.
	Calls [][]string
}

// Run implements command.Runner.
func (f *FakeRunner) Run(_ context.Context, argv []string) (command.Result, error) {
	f.Calls = append(f.Calls, argv)
	if f.Script != nil {
		if err := f.Script(argv); err != nil {
			return command.Result{ExitCode: 1}, err
		}
	}
	return command.Result{}, nil
}

// RunLine implements command.Runner.
func (f *FakeRunner) RunLine(ctx context.Context, line string) (command.Result, error) {
	return f.Run(ctx, strings.Fields(line))
}

// Lines returns every recorded invocation re-joined as a single
// string, convenient for order assertions.
func (f *FakeRunner) Lines() []string {
	out := make([]string, 0, len(f.Calls))
	for _, argv := range f.Calls {
		out = append(out, strings.Join(argv, " "))
	}
	return out
}

// FailingCommand returns a Script that fails exactly the given
// command lines.
func FailingCommand(lines ...string) func(argv []string) error {
	failing := make(map[string]bool, len(lines))
	for _, l := range lines {
		failing[l] = true
	}
	return func(argv []string) error {
		line := strings.Join(argv, " ")
		if failing[line] {
			return errors.Newf(errors.ErrCommandFailed, "command %q failed", line)
		}
		return nil
	}
}
