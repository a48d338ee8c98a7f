// Package config loads and normalizes the deez run document. The
// engine never sees raw TOML: string-or-list fields are normalized to
// lists, environment references in roots and paths are expanded, and
// dot groups are materialized in declared order before anything
// reaches the orchestrator.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/deez/pkg/errors"
	"github.com/arthur-debert/deez/pkg/logging"
	"github.com/arthur-debert/deez/pkg/types"
	ktoml "github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Reserved top-level keys that are not dot-group tables.
const (
	keyDefaultAction  = "default_action"
	keyPackageManager = "package_manager"
	keyStartCommand   = "start_command"
	keyEndCommand     = "end_command"
	keyDependency     = "dependency"
	keyDots           = "dots"
	keyGit            = "git"
)

// Load reads the TOML document at path and materializes the run
// configuration. A missing or unparseable file is fatal, as is an
// empty dots list.
func Load(path string) (*types.Config, error) {
	logger := logging.GetLogger("config")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot resolve config path %q", path)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %q does not exist", abs)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(abs), ktoml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "cannot parse config file %q", abs)
	}

	cfg := &types.Config{
		Root:            filepath.Dir(abs),
		DefaultAction:   types.Action(k.String(keyDefaultAction)),
		PackageManagers: toStringSlice(k.Get(keyPackageManager)),
		StartCommands:   toStringSlice(k.Get(keyStartCommand)),
		EndCommands:     toStringSlice(k.Get(keyEndCommand)),
		Dependencies:    toDependencySet(k.Get(keyDependency)),
	}

	if k.Exists(keyGit) {
		cfg.Git = &types.GitSource{
			URL:    k.String(keyGit + ".url"),
			Branch: k.String(keyGit + ".branch"),
		}
	}

	dots := k.Strings(keyDots)
	if len(dots) == 0 {
		return nil, errors.New(errors.ErrConfigValid, "no dots declared in the config file")
	}

	for _, name := range dots {
		if !k.Exists(name) {
			logger.Warn().Str("dot", name).Msg("Dot is declared but has no table, skipping")
			continue
		}
		cfg.Groups = append(cfg.Groups, parseGroup(k, name))
	}

	logger.Info().Str("config", abs).Int("dots", len(cfg.Groups)).Msg("Configuration loaded")
	return cfg, nil
}

func parseGroup(k *koanf.Koanf, name string) types.DotGroup {
	logger := logging.GetLogger("config")

	group := types.DotGroup{
		Name:         name,
		Action:       types.Action(k.String(name + ".action")),
		Dependencies: toDependencySet(k.Get(name + ".dependency")),
		PreCommands:  toStringSlice(k.Get(name + ".pre_command")),
		PostCommands: toStringSlice(k.Get(name + ".post_command")),
	}

	rawFiles, ok := k.Get(name + ".files").([]interface{})
	if !ok && k.Exists(name+".files") {
		logger.Warn().Str("dot", name).Msg("files is not a list of tables, ignoring")
	}
	for _, raw := range rawFiles {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			logger.Warn().Str("dot", name).Msg("Malformed files entry, skipping")
			continue
		}
		group.Files = append(group.Files, types.FileUnit{
			Action:     types.Action(stringValue(entry["action"])),
			SourceRoot: expandVars(stringValue(entry["source_root"])),
			TargetRoot: expandVars(stringValue(entry["target_root"])),
			Paths:      expandAll(toStringSlice(entry["paths"])),
		})
	}

	return group
}

// toStringSlice normalizes a string-or-list config value.
func toStringSlice(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []interface{}:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// toDependencySet builds a dependency set from a raw TOML table. The
// parser hands tables back as Go maps, which have no order, so keys
// are normalized to lexical order to keep first-claim-wins resolution
// deterministic across runs.
func toDependencySet(v interface{}) types.DependencySet {
	set := types.NewDependencySet()
	table, ok := v.(map[string]interface{})
	if !ok {
		return set
	}

	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		set.Add(key, toStringSlice(table[key])...)
	}
	return set
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

// expandVars expands $VAR references; values without a marker pass
// through untouched.
func expandVars(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	return os.ExpandEnv(s)
}

func expandAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, expandVars(p))
	}
	return out
}
