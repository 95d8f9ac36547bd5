package override

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// ConfigurationError reports an invalid override declaration.
type ConfigurationError struct {
	Path string
	Msg  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("override for %s: %s", e.Path, e.Msg)
}

// Archive replaces a module's source archive with explicit URLs.
type Archive struct {
	Path        string
	URLs        []string
	StripPrefix string
	SHA256      string
	Patches     []string
}

// Directives attaches build-file generation directives to a module.
type Directives struct {
	Path                string
	Directives          []string
	BuildFileGeneration string
}

// Patch applies patch files on top of a module's fetched source.
type Patch struct {
	Path       string
	Patches    []string
	PatchStrip int
}

// Registry collects the three override kinds, each keyed by module path.
// Archive and Patch are mutually exclusive per path since both redefine where
// a module's source comes from.
type Registry struct {
	archives   map[string]Archive
	directives map[string]Directives
	patches    map[string]Patch
}

// NewRegistry creates an empty override registry.
func NewRegistry() *Registry {
	return &Registry{
		archives:   make(map[string]Archive),
		directives: make(map[string]Directives),
		patches:    make(map[string]Patch),
	}
}

func checkPrivileged(path string, privileged bool) error {
	if !privileged {
		return &ConfigurationError{
			Path: path,
			Msg:  "only the root unit may declare overrides; move the declaration to the root unit or evaluate the declaring unit on its own",
		}
	}
	return nil
}

// AddArchive records an archive override for a path.
func (r *Registry) AddArchive(o Archive, privileged bool) error {
	if err := checkPrivileged(o.Path, privileged); err != nil {
		return err
	}
	if _, ok := r.archives[o.Path]; ok {
		return &ConfigurationError{Path: o.Path, Msg: "duplicate archive override"}
	}
	if _, ok := r.patches[o.Path]; ok {
		return &ConfigurationError{Path: o.Path, Msg: "archive and patch overrides are mutually exclusive"}
	}
	r.archives[o.Path] = o
	return nil
}

// AddDirectives records a build-directive override for a path.
func (r *Registry) AddDirectives(o Directives, privileged bool) error {
	if err := checkPrivileged(o.Path, privileged); err != nil {
		return err
	}
	if _, ok := r.directives[o.Path]; ok {
		return &ConfigurationError{Path: o.Path, Msg: "duplicate directive override"}
	}
	r.directives[o.Path] = o
	return nil
}

// AddPatch records a patch override for a path.
func (r *Registry) AddPatch(o Patch, privileged bool) error {
	if err := checkPrivileged(o.Path, privileged); err != nil {
		return err
	}
	if _, ok := r.patches[o.Path]; ok {
		return &ConfigurationError{Path: o.Path, Msg: "duplicate patch override"}
	}
	if _, ok := r.archives[o.Path]; ok {
		return &ConfigurationError{Path: o.Path, Msg: "archive and patch overrides are mutually exclusive"}
	}
	r.patches[o.Path] = o
	return nil
}

// Overridden reports whether any override kind targets the path.
func (r *Registry) Overridden(path string) bool {
	if _, ok := r.archives[path]; ok {
		return true
	}
	if _, ok := r.directives[path]; ok {
		return true
	}
	_, ok := r.patches[path]
	return ok
}

// Archive returns the archive override for a path, if any.
func (r *Registry) Archive(path string) (Archive, bool) {
	o, ok := r.archives[path]
	return o, ok
}

// Directives returns the directive override for a path, if any.
func (r *Registry) Directives(path string) (Directives, bool) {
	o, ok := r.directives[path]
	return o, ok
}

// Patch returns the patch override for a path, if any.
func (r *Registry) Patch(path string) (Patch, bool) {
	o, ok := r.patches[path]
	return o, ok
}

// CheckResolved verifies every override key names a resolved module path.
// All dangling keys are reported in one batch so a single run surfaces the
// complete set.
func (r *Registry) CheckResolved(resolved map[string]bool) error {
	var dangling []string
	seen := make(map[string]bool)
	for _, m := range []map[string]bool{pathSet(r.archives), pathSet(r.directives), pathSet(r.patches)} {
		for p := range m {
			if !resolved[p] && !seen[p] {
				seen[p] = true
				dangling = append(dangling, p)
			}
		}
	}
	if len(dangling) == 0 {
		return nil
	}
	sort.Strings(dangling)

	var errs *multierror.Error
	for _, p := range dangling {
		errs = multierror.Append(errs, &ConfigurationError{
			Path: p,
			Msg:  "no unit requires this module; remove the override or add the requirement",
		})
	}
	return errs.ErrorOrNil()
}

func pathSet[T any](m map[string]T) map[string]bool {
	set := make(map[string]bool, len(m))
	for p := range m {
		set[p] = true
	}
	return set
}
