// Package types defines the core data model for deez: actions, file
// units, dot groups, dependency sets and the run context threaded
// through the deployment pipeline.
package types

// Action is a file-synchronization policy applied to a file unit.
type Action string

const (
	// ActionPreserve copies only paths whose target does not exist yet
	ActionPreserve Action = "preserve"

	// ActionOverwrite unconditionally replaces the target with the source
	ActionOverwrite Action = "overwrite"

	// ActionSync mirrors source to target. Behaviorally identical to
	// overwrite; the distinct kind is kept so stale-entry removal can
	// be added without a config format change.
	ActionSync Action = "sync"
)

// Valid reports whether a is one of the known action kinds.
func (a Action) Valid() bool {
	switch a {
	case ActionPreserve, ActionOverwrite, ActionSync:
		return true
	}
	return false
}

// FileUnit is one deployment instruction: apply Action to every
// relative path under SourceRoot, writing below TargetRoot.
type FileUnit struct {
	Action     Action
	SourceRoot string
	TargetRoot string
	Paths      []string
}

// DotGroup is a named unit of configuration deployment bundling file
// units, dependencies and pre/post commands. An empty Action inherits
// the run-wide default.
type DotGroup struct {
	Name         string
	Action       Action
	Dependencies DependencySet
	Files        []FileUnit
	PreCommands  []string
	PostCommands []string
}

// GitSource describes a remote dotfiles source to fetch before
// deployment.
type GitSource struct {
	URL    string
	Branch string
}

// Config is the parsed run document.
type Config struct {
	// Root is the directory the config file lives in; it anchors
	// relative source roots when no remote source is configured.
	Root string

	DefaultAction Action

	// PackageManagers is the requested manager selection. Empty means
	// "auto": use whatever is available on the system.
	PackageManagers []string

	StartCommands []string
	EndCommands   []string

	// Dependencies is the run-level dependency table.
	Dependencies DependencySet

	// Groups holds the dot groups in declared order.
	Groups []DotGroup

	Git *GitSource
}

// RunContext carries the per-group ambient state that the backup and
// deployment layers need: which group is being processed and what the
// effective default action is. It is constructed once per group by the
// orchestrator and passed explicitly instead of being read from shared
// state.
type RunContext struct {
	Group         string
	DefaultAction Action
}

// ResolveAction returns the action for a unit, falling back to the
// group/run default when the unit declares none.
func (rc RunContext) ResolveAction(unit FileUnit) Action {
	if unit.Action != "" {
		return unit.Action
	}
	return rc.DefaultAction
}
