package types

// DependencySet maps a manager-group key (one or more package manager
// names joined by commas, meaning "any of these") to an ordered list
// of package identifiers. Key order is preserved: resolution is
// first-claim-wins by declaration order, so iteration must be
// deterministic, which a bare Go map cannot give.
type DependencySet struct {
	keys []string
	pkgs map[string][]string
}

// NewDependencySet returns an empty dependency set.
func NewDependencySet() DependencySet {
	return DependencySet{pkgs: make(map[string][]string)}
}

// Add appends packages under the given manager-group key, keeping the
// key's first-seen position. Duplicate packages under the same key are
// dropped.
func (d *DependencySet) Add(key string, packages ...string) {
	if d.pkgs == nil {
		d.pkgs = make(map[string][]string)
	}
	existing, ok := d.pkgs[key]
	if !ok {
		d.keys = append(d.keys, key)
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p] = true
	}
	for _, p := range packages {
		if p == "" || seen[p] {
			continue
		}
		existing = append(existing, p)
		seen[p] = true
	}
	d.pkgs[key] = existing
}

// Keys returns the manager-group keys in declaration order.
func (d DependencySet) Keys() []string {
	return d.keys
}

// Packages returns the package list declared under key.
func (d DependencySet) Packages(key string) []string {
	return d.pkgs[key]
}

// IsEmpty reports whether the set declares no packages at all.
func (d DependencySet) IsEmpty() bool {
	for _, key := range d.keys {
		if len(d.pkgs[key]) > 0 {
			return false
		}
	}
	return true
}

// Merge folds other's entries into d, preserving d's key order first.
func (d *DependencySet) Merge(other DependencySet) {
	for _, key := range other.Keys() {
		d.Add(key, other.Packages(key)...)
	}
}
