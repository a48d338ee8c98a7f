// Package backup snapshots existing target paths before the
// deployment engine mutates them. Backups are a best-effort
// historical record: a failed backup is logged and never blocks the
// write that follows.
package backup

import (
	"path/filepath"

	"github.com/arthur-debert/deez/pkg/filesystem"
	"github.com/arthur-debert/deez/pkg/logging"
	"github.com/arthur-debert/deez/pkg/types"
	"github.com/rs/zerolog"
)

// Session is the per-run backup root, named by the run's start time.
// The directory is created lazily, on the first path that actually
// gets backed up. Backups land under
// {session}/{group}/{sourceID}/{relative path}.
type Session struct {
	root    string
	fs      types.FS
	logger  zerolog.Logger
	created bool
}

// NewSession creates a backup session rooted at root. Nothing is
// written until the first backup.
func NewSession(root string, fsys types.FS) *Session {
	return &Session{
		root:   root,
		fs:     fsys,
		logger: logging.GetLogger("backup"),
	}
}

// Root returns the session directory.
func (s *Session) Root() string {
	return s.root
}

// Backup snapshots every relative path whose target exists. Missing
// targets and copy failures are warnings only.
func (s *Session) Backup(rc types.RunContext, sourceID, targetRoot string, relPaths []string) {
	for _, rel := range relPaths {
		target := filepath.Join(targetRoot, rel)

		if _, err := s.fs.Lstat(target); err != nil {
			s.logger.Warn().Str("target", target).Msg("Target does not exist, nothing to back up")
			continue
		}

		dest := filepath.Join(s.root, rc.Group, sourceID, rel)
		if samePath(target, dest) {
			s.logger.Warn().
				Str("target", target).
				Msg("Backup destination equals target, skipping backup for this path")
			continue
		}

		if err := s.ensure(); err != nil {
			s.logger.Warn().Err(err).Str("session", s.root).Msg("Cannot create backup session directory")
			return
		}

		s.logger.Info().Str("target", target).Str("backup", dest).Msg("Backing up target path")
		if err := filesystem.CopyPath(s.fs, target, dest); err != nil {
			s.logger.Warn().Err(err).Str("target", target).Msg("Backup failed, continuing")
		}
	}
}

func (s *Session) ensure() error {
	if s.created {
		return nil
	}
	if err := s.fs.MkdirAll(s.root, 0755); err != nil {
		return err
	}
	s.created = true
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
