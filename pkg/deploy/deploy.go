// Package deploy applies file-synchronization policies to declared
// file units. Every apply backs up existing targets first, whatever
// the action; individual path failures are logged and never abort the
// rest of the unit.
package deploy

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/deez/pkg/backup"
	"github.com/arthur-debert/deez/pkg/filesystem"
	"github.com/arthur-debert/deez/pkg/logging"
	"github.com/arthur-debert/deez/pkg/types"
	"github.com/rs/zerolog"
)

// Result summarizes one unit application.
type Result struct {
	Deployed int
	Skipped  int
	Failed   int
}

// Options contains configuration for the engine.
type Options struct {
	FS      types.FS
	Backups *backup.Session
	Logger  zerolog.Logger
}

// Engine applies deployment actions. It is stateless per call; the
// per-group context arrives as an explicit parameter.
type Engine struct {
	fs      types.FS
	backups *backup.Session
	logger  zerolog.Logger
}

// New creates a new deployment engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("deploy")
	}
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	return &Engine{fs: fs, backups: opts.Backups, logger: logger}
}

// Apply deploys one file unit. An incomplete unit (missing source
// root, target root or paths) is skipped with a warning and zero
// mutation. Existing targets are backed up before any action runs,
// including actions that end up writing nothing.
func (e *Engine) Apply(rc types.RunContext, unit types.FileUnit) Result {
	if unit.SourceRoot == "" || unit.TargetRoot == "" || len(unit.Paths) == 0 {
		e.logger.Warn().
			Str("group", rc.Group).
			Str("source_root", unit.SourceRoot).
			Str("target_root", unit.TargetRoot).
			Strs("paths", unit.Paths).
			Msg("Skipping incomplete file unit")
		return Result{Skipped: len(unit.Paths)}
	}

	action := rc.ResolveAction(unit)
	sourceID := filepath.Base(unit.SourceRoot)

	e.backups.Backup(rc, sourceID, unit.TargetRoot, unit.Paths)

	switch action {
	case types.ActionPreserve:
		return e.preserve(unit)
	case types.ActionOverwrite, types.ActionSync:
		// Sync is a one-directional mirror with the same mechanics as
		// overwrite; stale target entries are not removed.
		return e.overwrite(unit)
	default:
		e.logger.Warn().
			Str("group", rc.Group).
			Str("action", string(action)).
			Msg("Skipping unit with unknown action")
		return Result{Skipped: len(unit.Paths)}
	}
}

// preserve copies only paths whose target does not exist yet.
func (e *Engine) preserve(unit types.FileUnit) Result {
	var res Result
	e.logger.Info().Str("target_root", unit.TargetRoot).Msg("Preserving")

	for _, rel := range unit.Paths {
		source := filepath.Join(unit.SourceRoot, rel)
		target := filepath.Join(unit.TargetRoot, rel)

		if _, err := e.fs.Lstat(target); err == nil {
			e.logger.Info().Str("target", target).Msg("Target path already exists, leaving untouched")
			res.Skipped++
			continue
		}

		if _, err := e.fs.Lstat(source); err != nil {
			e.logger.Warn().Str("source", source).Msg("Source path does not exist, skipping")
			res.Skipped++
			continue
		}

		e.logger.Info().Str("target", target).Msg("Populating")
		if err := filesystem.CopyPath(e.fs, source, target); err != nil {
			e.logger.Error().Err(err).Str("target", target).Msg("Copy failed")
			res.Failed++
			continue
		}
		res.Deployed++
	}

	return res
}

// overwrite unconditionally replaces each target with its source. A
// directory target is removed before the copy; a file target is
// copied over in place.
func (e *Engine) overwrite(unit types.FileUnit) Result {
	var res Result
	e.logger.Info().Str("target_root", unit.TargetRoot).Msg("Overwriting")

	for _, rel := range unit.Paths {
		source := filepath.Join(unit.SourceRoot, rel)
		target := filepath.Join(unit.TargetRoot, rel)

		srcInfo, err := e.fs.Lstat(source)
		if err != nil {
			e.logger.Warn().Str("source", source).Msg("Source path does not exist, skipping")
			res.Skipped++
			continue
		}

		if tgtInfo, err := e.fs.Lstat(target); err == nil {
			// A directory target cannot be copied over in place, and
			// neither can a file target when the source is a tree.
			if tgtInfo.IsDir() || srcInfo.IsDir() || tgtInfo.Mode()&os.ModeSymlink != 0 {
				if err := e.fs.RemoveAll(target); err != nil {
					e.logger.Error().Err(err).Str("target", target).Msg("Cannot remove existing target")
					res.Failed++
					continue
				}
			}
		}

		if err := e.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			e.logger.Error().Err(err).Str("target", target).Msg("Cannot create target parent")
			res.Failed++
			continue
		}

		e.logger.Info().Str("source", source).Str("target", target).Msg("Writing")
		if err := filesystem.CopyPath(e.fs, source, target); err != nil {
			e.logger.Error().Err(err).Str("target", target).Msg("Copy failed")
			res.Failed++
			continue
		}
		res.Deployed++
	}

	return res
}
