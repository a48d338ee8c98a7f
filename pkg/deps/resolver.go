// Package deps resolves declared dependencies against the package
// managers present on the system, decides what is already satisfied
// and drives installation of what is not.
package deps

import (
	"context"
	"os/exec"
	"strings"

	"github.com/arthur-debert/deez/pkg/command"
	"github.com/arthur-debert/deez/pkg/errors"
	"github.com/arthur-debert/deez/pkg/logging"
	"github.com/arthur-debert/deez/pkg/managers"
	"github.com/arthur-debert/deez/pkg/types"
	"github.com/rs/zerolog"
)

// KeyDelimiter separates manager names inside a manager-group key,
// e.g. "pacman,yay" means either manager may satisfy the packages.
const KeyDelimiter = ","

// AutoSentinel in the package_manager config field means "use
// whatever is available".
const AutoSentinel = "auto"

// Missing identifies one unsatisfied (manager, package) pair.
type Missing struct {
	Manager string
	Package string
}

// Options contains configuration for the resolver.
type Options struct {
	Registry managers.Registry
	Runner   command.Runner

	// LookPath resolves a package's command name on the search path.
	// Defaults to exec.LookPath.
	LookPath managers.LookPathFunc

	Logger zerolog.Logger
}

// Resolver maps declared dependencies onto selected managers and
// checks or installs them.
type Resolver struct {
	registry managers.Registry
	runner   command.Runner
	lookPath managers.LookPathFunc
	logger   zerolog.Logger
}

// New creates a new resolver.
func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("deps")
	}
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	return &Resolver{
		registry: opts.Registry,
		runner:   opts.Runner,
		lookPath: lookPath,
		logger:   logger,
	}
}

// ResolveManagers picks the managers a run will use. An empty or
// "auto" request selects everything available. The run cannot proceed
// without at least one usable manager.
func (r *Resolver) ResolveManagers(requested, available []string) ([]string, error) {
	if len(available) == 0 {
		return nil, errors.New(errors.ErrNoManagers, "no package managers available on this system")
	}

	if isAuto(requested) {
		return available, nil
	}

	availSet := make(map[string]bool, len(available))
	for _, m := range available {
		availSet[m] = true
	}

	var selected []string
	for _, m := range requested {
		if availSet[m] {
			selected = append(selected, m)
		} else {
			r.logger.Warn().Str("manager", m).Msg("Requested package manager is not available")
		}
	}

	if len(selected) == 0 {
		return nil, errors.Newf(errors.ErrNoManagers,
			"none of the requested package managers %v are available", requested)
	}

	return selected, nil
}

func isAuto(requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	for _, m := range requested {
		if m != "" && m != AutoSentinel {
			return false
		}
	}
	return true
}

// Filter assigns each declared package to the first selected manager
// whose manager-group key names it. Deduplication is global: once any
// bucket claims a package identifier, later occurrences are dropped,
// not merged. Only managers with a non-empty bucket appear in the
// result.
func (r *Resolver) Filter(selected []string, depSet types.DependencySet) types.DependencySet {
	resolved := types.NewDependencySet()
	claimed := make(map[string]bool)

	for _, manager := range selected {
		for _, key := range depSet.Keys() {
			if !keyMatches(key, manager) {
				continue
			}
			for _, pkg := range depSet.Packages(key) {
				if claimed[pkg] {
					continue
				}
				resolved.Add(manager, pkg)
				claimed[pkg] = true
			}
		}
	}

	return resolved
}

func keyMatches(key, manager string) bool {
	for _, candidate := range strings.Split(key, KeyDelimiter) {
		if strings.TrimSpace(candidate) == manager {
			return true
		}
	}
	return false
}

// Check reports which (manager, package) pairs are unsatisfied. A
// package is satisfied when its command name is on the search path or
// the manager's query command reports it installed.
func (r *Resolver) Check(ctx context.Context, resolved types.DependencySet) []Missing {
	var missing []Missing

	for _, manager := range resolved.Keys() {
		spec, ok := r.registry.Spec(manager)
		if !ok {
			r.logger.Error().Str("manager", manager).Msg("No query command known for manager")
			for _, pkg := range resolved.Packages(manager) {
				missing = append(missing, Missing{Manager: manager, Package: pkg})
			}
			continue
		}

		for _, pkg := range resolved.Packages(manager) {
			if r.installed(ctx, spec, pkg) {
				continue
			}
			r.logger.Warn().Str("manager", manager).Str("package", pkg).Msg("Package is not installed")
			missing = append(missing, Missing{Manager: manager, Package: pkg})
		}
	}

	return missing
}

func (r *Resolver) installed(ctx context.Context, spec managers.Spec, pkg string) bool {
	if _, err := r.lookPath(pkg); err == nil {
		r.logger.Debug().Str("package", pkg).Msg("Package command is on the search path")
		return true
	}

	argv := append(append([]string{}, spec.Query...), pkg)
	if _, err := r.runner.Run(ctx, argv); err == nil {
		return true
	}
	return false
}

// InstallMissing re-checks each resolved package and runs one batched
// install command per manager for the not-yet-installed subset. A
// failed install is fatal for the run.
func (r *Resolver) InstallMissing(ctx context.Context, resolved types.DependencySet) error {
	for _, manager := range resolved.Keys() {
		spec, ok := r.registry.Spec(manager)
		if !ok {
			r.logger.Error().Str("manager", manager).Msg("No install command known for manager")
			continue
		}

		var toInstall []string
		for _, pkg := range resolved.Packages(manager) {
			if !r.installed(ctx, spec, pkg) {
				toInstall = append(toInstall, pkg)
			}
		}
		if len(toInstall) == 0 {
			continue
		}

		r.logger.Info().Str("manager", manager).Strs("packages", toInstall).Msg("Installing packages")
		argv := append(append([]string{}, spec.Install...), toInstall...)
		if _, err := r.runner.Run(ctx, argv); err != nil {
			return errors.Wrapf(err, errors.ErrInstallFailed,
				"install command for %s failed", manager).
				WithDetail("packages", toInstall)
		}
	}

	return nil
}

// MergeDependencies folds the run-level dependency table and every
// group's table into one set for the top-of-run hard gate.
func MergeDependencies(global types.DependencySet, groups []types.DotGroup) types.DependencySet {
	merged := types.NewDependencySet()
	merged.Merge(global)
	for _, g := range groups {
		merged.Merge(g.Dependencies)
	}
	return merged
}
