package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/deez/pkg/filesystem"
	"github.com/arthur-debert/deez/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupCopiesExistingTargets(t *testing.T) {
	dir := t.TempDir()
	targetRoot := filepath.Join(dir, "home")
	require.NoError(t, os.MkdirAll(targetRoot, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(targetRoot, ".zshrc"), []byte("export A=1\n"), 0644))

	session := NewSession(filepath.Join(dir, "session"), filesystem.NewOS())
	rc := types.RunContext{Group: "shell"}

	session.Backup(rc, "zsh", targetRoot, []string{".zshrc", ".missingrc"})

	data, err := os.ReadFile(filepath.Join(dir, "session", "shell", "zsh", ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "export A=1\n", string(data))

	_, err = os.Stat(filepath.Join(dir, "session", "shell", "zsh", ".missingrc"))
	assert.True(t, os.IsNotExist(err), "missing target must not produce a backup entry")
}

func TestBackupDirectoryTarget(t *testing.T) {
	dir := t.TempDir()
	targetRoot := filepath.Join(dir, "home")
	require.NoError(t, os.MkdirAll(filepath.Join(targetRoot, ".config", "nvim"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(targetRoot, ".config", "nvim", "init.vim"), []byte("set nu\n"), 0644))

	session := NewSession(filepath.Join(dir, "session"), filesystem.NewOS())
	session.Backup(types.RunContext{Group: "nvim"}, "nvim", targetRoot, []string{".config/nvim"})

	data, err := os.ReadFile(filepath.Join(dir, "session", "nvim", "nvim", ".config", "nvim", "init.vim"))
	require.NoError(t, err)
	assert.Equal(t, "set nu\n", string(data))
}

func TestSessionDirectoryCreatedLazily(t *testing.T) {
	dir := t.TempDir()
	sessionRoot := filepath.Join(dir, "session")
	session := NewSession(sessionRoot, filesystem.NewOS())

	// A backup with no existing targets must not create the session dir.
	session.Backup(types.RunContext{Group: "shell"}, "zsh", filepath.Join(dir, "home"), []string{".zshrc"})
	_, err := os.Stat(sessionRoot)
	assert.True(t, os.IsNotExist(err))

	targetRoot := filepath.Join(dir, "home")
	require.NoError(t, os.MkdirAll(targetRoot, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(targetRoot, ".zshrc"), []byte("x"), 0644))

	session.Backup(types.RunContext{Group: "shell"}, "zsh", targetRoot, []string{".zshrc"})
	_, err = os.Stat(sessionRoot)
	assert.NoError(t, err)
}

func TestBackupSelfCopyGuard(t *testing.T) {
	dir := t.TempDir()
	session := NewSession(dir, filesystem.NewOS())

	// Target inside the session at exactly the computed backup path.
	rc := types.RunContext{Group: "shell"}
	targetRoot := filepath.Join(dir, "shell", "zsh")
	require.NoError(t, os.MkdirAll(targetRoot, 0755))
	conf := filepath.Join(targetRoot, ".zshrc")
	require.NoError(t, os.WriteFile(conf, []byte("orig"), 0644))

	session.Backup(rc, "zsh", targetRoot, []string{".zshrc"})

	data, err := os.ReadFile(conf)
	require.NoError(t, err)
	assert.Equal(t, "orig", string(data), "self-copy must be skipped, target untouched")
}

func TestBackupPreservesSymlinks(t *testing.T) {
	dir := t.TempDir()
	targetRoot := filepath.Join(dir, "home")
	require.NoError(t, os.MkdirAll(targetRoot, 0755))
	require.NoError(t, os.Symlink("/etc/hostname", filepath.Join(targetRoot, ".hostlink")))

	session := NewSession(filepath.Join(dir, "session"), filesystem.NewOS())
	session.Backup(types.RunContext{Group: "misc"}, "misc", targetRoot, []string{".hostlink"})

	target, err := os.Readlink(filepath.Join(dir, "session", "misc", "misc", ".hostlink"))
	require.NoError(t, err)
	assert.Equal(t, "/etc/hostname", target)
}
