package deploy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/deez/pkg/backup"
	"github.com/arthur-debert/deez/pkg/filesystem"
	"github.com/arthur-debert/deez/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	sourceRoot  string
	targetRoot  string
	sessionRoot string
	engine      *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	f := &fixture{
		sourceRoot:  filepath.Join(dir, "dots"),
		targetRoot:  filepath.Join(dir, "home"),
		sessionRoot: filepath.Join(dir, "session"),
	}
	require.NoError(t, os.MkdirAll(f.sourceRoot, 0755))
	require.NoError(t, os.MkdirAll(f.targetRoot, 0755))

	fsys := filesystem.NewOS()
	f.engine = New(Options{
		FS:      fsys,
		Backups: backup.NewSession(f.sessionRoot, fsys),
	})
	return f
}

func (f *fixture) writeSource(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(f.sourceRoot, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (f *fixture) writeTarget(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(f.targetRoot, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (f *fixture) readTarget(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.targetRoot, rel))
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) unit(action types.Action, paths ...string) types.FileUnit {
	return types.FileUnit{
		Action:     action,
		SourceRoot: f.sourceRoot,
		TargetRoot: f.targetRoot,
		Paths:      paths,
	}
}

var rc = types.RunContext{Group: "shell", DefaultAction: types.ActionPreserve}

func TestPreserveKeepsExistingTarget(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".zshrc", "B")
	f.writeTarget(t, ".zshrc", "A")

	res := f.engine.Apply(rc, f.unit(types.ActionPreserve, ".zshrc"))

	assert.Equal(t, "A", f.readTarget(t, ".zshrc"))
	assert.Equal(t, Result{Skipped: 1}, res)
}

func TestPreservePopulatesMissingTarget(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".zshrc", "B")

	res := f.engine.Apply(rc, f.unit(types.ActionPreserve, ".zshrc"))

	assert.Equal(t, "B", f.readTarget(t, ".zshrc"))
	assert.Equal(t, Result{Deployed: 1}, res)
}

func TestPreserveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".zshrc", "B")

	f.engine.Apply(rc, f.unit(types.ActionPreserve, ".zshrc"))
	first := f.readTarget(t, ".zshrc")

	res := f.engine.Apply(rc, f.unit(types.ActionPreserve, ".zshrc"))
	assert.Equal(t, first, f.readTarget(t, ".zshrc"))
	assert.Equal(t, Result{Skipped: 1}, res)
}

func TestPreserveMissingSourceSkipsSinglePath(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".vimrc", "vim")

	res := f.engine.Apply(rc, f.unit(types.ActionPreserve, ".missing", ".vimrc"))

	assert.Equal(t, "vim", f.readTarget(t, ".vimrc"))
	assert.Equal(t, Result{Deployed: 1, Skipped: 1}, res)
}

func TestOverwriteReplacesTarget(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".zshrc", "new")
	f.writeTarget(t, ".zshrc", "old")

	res := f.engine.Apply(rc, f.unit(types.ActionOverwrite, ".zshrc"))

	assert.Equal(t, "new", f.readTarget(t, ".zshrc"))
	assert.Equal(t, Result{Deployed: 1}, res)
}

func TestOverwriteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".zshrc", "stable")

	f.engine.Apply(rc, f.unit(types.ActionOverwrite, ".zshrc"))
	f.engine.Apply(rc, f.unit(types.ActionOverwrite, ".zshrc"))

	assert.Equal(t, "stable", f.readTarget(t, ".zshrc"))
}

func TestOverwriteDirectoryTargetReplacedByFile(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".config/starship.toml", "format = ''\n")
	require.NoError(t, os.MkdirAll(filepath.Join(f.targetRoot, ".config", "starship.toml"), 0755))

	res := f.engine.Apply(rc, f.unit(types.ActionOverwrite, ".config/starship.toml"))

	info, err := os.Stat(filepath.Join(f.targetRoot, ".config", "starship.toml"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, "format = ''\n", f.readTarget(t, ".config/starship.toml"))
	assert.Equal(t, Result{Deployed: 1}, res)
}

func TestOverwriteFileTargetReplacedByDirectory(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".config/nvim/init.vim", "set nu\n")
	f.writeTarget(t, ".config/nvim", "i used to be a file")

	res := f.engine.Apply(rc, f.unit(types.ActionOverwrite, ".config/nvim"))

	assert.Equal(t, "set nu\n", f.readTarget(t, ".config/nvim/init.vim"))
	assert.Equal(t, Result{Deployed: 1}, res)
}

func TestOverwriteMissingSourceSkips(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, ".zshrc", "keep")

	res := f.engine.Apply(rc, f.unit(types.ActionOverwrite, ".missing"))

	assert.Equal(t, "keep", f.readTarget(t, ".zshrc"))
	assert.Equal(t, Result{Skipped: 1}, res)
}

func TestSyncMirrorsLikeOverwrite(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".gitconfig", "[user]\n")
	f.writeTarget(t, ".gitconfig", "old")

	res := f.engine.Apply(rc, f.unit(types.ActionSync, ".gitconfig"))

	assert.Equal(t, "[user]\n", f.readTarget(t, ".gitconfig"))
	assert.Equal(t, Result{Deployed: 1}, res)
}

func TestUnknownActionNoMutation(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".zshrc", "new")
	f.writeTarget(t, ".zshrc", "old")

	res := f.engine.Apply(rc, f.unit(types.Action("merge"), ".zshrc"))

	assert.Equal(t, "old", f.readTarget(t, ".zshrc"))
	assert.Equal(t, Result{Skipped: 1}, res)
}

func TestIncompleteUnitSkippedWithoutMutation(t *testing.T) {
	f := newFixture(t)
	f.writeTarget(t, ".zshrc", "untouched")

	units := []types.FileUnit{
		{Action: types.ActionOverwrite, TargetRoot: f.targetRoot, Paths: []string{".zshrc"}},
		{Action: types.ActionOverwrite, SourceRoot: f.sourceRoot, Paths: []string{".zshrc"}},
		{Action: types.ActionOverwrite, SourceRoot: f.sourceRoot, TargetRoot: f.targetRoot},
	}
	for _, unit := range units {
		f.engine.Apply(rc, unit)
	}

	assert.Equal(t, "untouched", f.readTarget(t, ".zshrc"))
	_, err := os.Stat(f.sessionRoot)
	assert.True(t, os.IsNotExist(err), "invalid units must not even create a backup session")
}

func TestBackupRunsBeforeMutationForEveryAction(t *testing.T) {
	for _, action := range []types.Action{types.ActionPreserve, types.ActionOverwrite, types.ActionSync} {
		t.Run(string(action), func(t *testing.T) {
			f := newFixture(t)
			f.writeSource(t, ".zshrc", "new")
			f.writeTarget(t, ".zshrc", "pre-existing")

			f.engine.Apply(rc, f.unit(action, ".zshrc"))

			backupFile := filepath.Join(f.sessionRoot, rc.Group, "dots", ".zshrc")
			data, err := os.ReadFile(backupFile)
			require.NoError(t, err)
			assert.Equal(t, "pre-existing", string(data))
		})
	}
}

func TestApplyDefaultsToContextAction(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".zshrc", "new")
	f.writeTarget(t, ".zshrc", "old")

	// rc default is preserve, unit declares nothing.
	f.engine.Apply(rc, f.unit("", ".zshrc"))

	assert.Equal(t, "old", f.readTarget(t, ".zshrc"))
}

func TestOverwriteRecursiveDirectory(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, ".config/nvim/init.vim", "set nu\n")
	f.writeSource(t, ".config/nvim/colors/dark.vim", "hi\n")
	f.writeTarget(t, ".config/nvim/init.vim", "old")

	f.engine.Apply(rc, f.unit(types.ActionOverwrite, ".config/nvim"))

	assert.Equal(t, "set nu\n", f.readTarget(t, ".config/nvim/init.vim"))
	assert.Equal(t, "hi\n", f.readTarget(t, ".config/nvim/colors/dark.vim"))
}
