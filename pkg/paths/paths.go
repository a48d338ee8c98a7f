// Package paths provides centralized path handling for deez.
// It anchors the backup session, remote clone cache and log file in
// XDG base directories and provides a consistent API for all path
// operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvCacheDir overrides the XDG cache directory for deez
	EnvCacheDir = "DEEZ_CACHE_DIR"

	// EnvStateDir overrides the XDG state directory for deez
	EnvStateDir = "DEEZ_STATE_DIR"
)

// Directory and file names under the cache/state roots.
// These define deez's on-disk layout and are not user-configurable.
const (
	// AppDirName is the directory name for deez-specific files
	AppDirName = "deez"

	// BackupDir is the subdirectory collecting backup sessions
	BackupDir = "backup"

	// ClonesDir is the subdirectory caching remote source clones
	ClonesDir = "clones"

	// LogFileName is the name of the log file
	LogFileName = "deez.log"

	// SessionTimeFormat names a backup session by its run start time
	SessionTimeFormat = "20060102150405"
)

// CacheDir returns the deez cache directory, honoring DEEZ_CACHE_DIR
func CacheDir() string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.CacheHome, AppDirName)
}

// BackupRoot returns the directory collecting all backup sessions
func BackupRoot() string {
	return filepath.Join(CacheDir(), BackupDir)
}

// BackupSessionDir returns the session directory for a run started at t
func BackupSessionDir(t time.Time) string {
	return filepath.Join(BackupRoot(), t.Format(SessionTimeFormat))
}

// CloneRoot returns the directory caching remote source clones
func CloneRoot() string {
	return filepath.Join(CacheDir(), ClonesDir)
}

// StateDir returns the deez state directory, honoring DEEZ_STATE_DIR
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// LogFilePath returns the path to the log file
func LogFilePath() string {
	return filepath.Join(StateDir(), LogFileName)
}
