package config

import (
	"path/filepath"

	"github.com/arthur-debert/deez/pkg/types"
)

// AnchorSources rewrites every relative source root in the config to
// be absolute under root — the config file's directory, or the fetched
// clone when a remote source is configured. Target roots are left
// alone: they are always absolute paths into the user's home.
func AnchorSources(cfg *types.Config, root string) {
	for gi := range cfg.Groups {
		for fi := range cfg.Groups[gi].Files {
			unit := &cfg.Groups[gi].Files[fi]
			if unit.SourceRoot == "" || filepath.IsAbs(unit.SourceRoot) {
				continue
			}
			unit.SourceRoot = filepath.Join(root, unit.SourceRoot)
		}
	}
}
