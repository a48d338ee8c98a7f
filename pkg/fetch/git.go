// Package fetch retrieves a remote dotfiles source into the local
// clone cache so the deployment engine can read from it like any
// local tree.
package fetch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deez/pkg/command"
	"github.com/arthur-debert/deez/pkg/errors"
	"github.com/arthur-debert/deez/pkg/logging"
	"github.com/arthur-debert/deez/pkg/types"
	"github.com/rs/zerolog"
)

// Options contains configuration for the fetcher.
type Options struct {
	Runner command.Runner

	// CloneRoot is the directory clones are cached under.
	CloneRoot string

	Logger zerolog.Logger
}

// Fetcher clones or updates remote sources through git.
type Fetcher struct {
	runner    command.Runner
	cloneRoot string
	logger    zerolog.Logger
}

// New creates a new fetcher.
func New(opts Options) *Fetcher {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("fetch")
	}
	return &Fetcher{
		runner:    opts.Runner,
		cloneRoot: opts.CloneRoot,
		logger:    logger,
	}
}

// Ensure makes the remote source available locally and returns the
// resolved source root: a fresh clone on first use, a fast-forward
// pull afterwards. Any git failure is fatal for the run.
func (f *Fetcher) Ensure(ctx context.Context, src *types.GitSource) (string, error) {
	if src == nil || src.URL == "" {
		return "", errors.New(errors.ErrFetchFailed, "git source has no url")
	}

	dest := filepath.Join(f.cloneRoot, RepoName(src.URL))

	if _, err := os.Stat(filepath.Join(dest, ".git")); err == nil {
		f.logger.Info().Str("clone", dest).Msg("Updating existing clone")
		if _, err := f.runner.Run(ctx, []string{"git", "-C", dest, "pull", "--ff-only"}); err != nil {
			return "", errors.Wrapf(err, errors.ErrFetchFailed, "cannot update clone of %s", src.URL)
		}
		return dest, nil
	}

	if err := os.MkdirAll(f.cloneRoot, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrFetchFailed, "cannot create clone cache %s", f.cloneRoot)
	}

	argv := []string{"git", "clone"}
	if src.Branch != "" {
		argv = append(argv, "--branch", src.Branch)
	}
	argv = append(argv, src.URL, dest)

	f.logger.Info().Str("url", src.URL).Str("clone", dest).Msg("Cloning remote source")
	if _, err := f.runner.Run(ctx, argv); err != nil {
		return "", errors.Wrapf(err, errors.ErrFetchFailed, "cannot clone %s", src.URL)
	}

	return dest, nil
}

// RepoName derives the cache directory name from a git URL.
func RepoName(url string) string {
	name := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = "source"
	}
	return name
}
