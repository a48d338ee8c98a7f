// Package managers is the static catalog of supported package
// managers. The registry is an immutable value built once at startup;
// resolution and installation live in pkg/deps.
package managers

import (
	"os/exec"

	"github.com/arthur-debert/deez/pkg/logging"
)

// Spec describes one package manager: how to ask whether a package is
// installed and how to install a batch of packages. Both commands are
// argument-vector prefixes; package names are appended as separate
// arguments, never interpolated into a shell string. A query exiting
// zero means the package is installed.
type Spec struct {
	Name    string
	Query   []string
	Install []string
}

// Registry is an immutable catalog of manager specs in probe-priority
// order.
type Registry struct {
	specs []Spec
	index map[string]Spec
}

// LookPathFunc resolves an executable on the search path. It is a
// seam for tests; production code uses exec.LookPath.
type LookPathFunc func(file string) (string, error)

// Default returns the registry of supported package managers. Probe
// order is fixed so Available is deterministic.
func Default() Registry {
	return NewRegistry([]Spec{
		{
			Name:    "flatpak",
			Query:   []string{"flatpak", "info"},
			Install: []string{"flatpak", "install", "--assumeyes"},
		},
		{
			Name:    "pacman",
			Query:   []string{"pacman", "-Qi"},
			Install: []string{"sudo", "pacman", "-S", "--noconfirm"},
		},
		{
			Name:    "yay",
			Query:   []string{"yay", "-Qi"},
			Install: []string{"yay", "-S", "--noconfirm"},
		},
		{
			Name:    "paru",
			Query:   []string{"paru", "-Qi"},
			Install: []string{"paru", "-S", "--noconfirm"},
		},
		{
			Name:    "dnf",
			Query:   []string{"dnf", "list", "--installed"},
			Install: []string{"sudo", "dnf", "install", "-y"},
		},
		{
			Name:    "apt",
			Query:   []string{"dpkg", "-s"},
			Install: []string{"sudo", "apt", "install", "-y"},
		},
	})
}

// NewRegistry builds a registry from the given specs, preserving
// their order for availability probing.
func NewRegistry(specs []Spec) Registry {
	index := make(map[string]Spec, len(specs))
	for _, s := range specs {
		index[s.Name] = s
	}
	return Registry{specs: specs, index: index}
}

// Spec returns the spec for a manager name.
func (r Registry) Spec(name string) (Spec, bool) {
	s, ok := r.index[name]
	return s, ok
}

// Names returns all manager names in probe-priority order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for _, s := range r.specs {
		names = append(names, s.Name)
	}
	return names
}

// Available probes the candidate list in priority order and returns
// the managers whose executable is on the search path.
func (r Registry) Available(lookPath LookPathFunc) []string {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	logger := logging.GetLogger("managers")

	var available []string
	for _, s := range r.specs {
		if _, err := lookPath(s.Name); err == nil {
			available = append(available, s.Name)
		}
	}

	logger.Debug().Strs("available", available).Msg("Probed package managers")
	return available
}
