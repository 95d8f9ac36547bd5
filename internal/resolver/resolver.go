package resolver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/frederic-klein/modresolve/internal/modfile"
	"github.com/frederic-klein/modresolve/internal/module"
	"github.com/frederic-klein/modresolve/internal/override"
	"github.com/frederic-klein/modresolve/internal/sumfile"
	"github.com/frederic-klein/modresolve/internal/version"
)

// Context accumulates one evaluation's requirements, replaces, checksums and
// overrides, and is discarded once Resolve returns. Nothing survives across
// evaluations.
type Context struct {
	Sums      *sumfile.Store
	Overrides *override.Registry

	strictness module.Strictness
	log        hclog.Logger
	units      []*Unit
	root       *Unit
	replaces   map[string]module.Replace
	external   map[string]version.Version
}

// Unit is one configuration unit's requirement set. Requirements merge
// first-write-with-conflict-check: a second declaration for a path already
// seen in the same unit triggers the conflict policy.
type Unit struct {
	Name string
	Root bool

	ctx  *Context
	reqs map[string]module.Requirement
}

// Result is the final resolution table handed to the external fetch/emit
// stage, plus the root unit's direct dependency name sets.
type Result struct {
	Modules   map[string]module.ResolvedModule
	Direct    []string
	DevDirect []string
}

// NewContext creates a fresh resolution context. A nil logger disables
// logging.
func NewContext(strictness module.Strictness, log hclog.Logger) *Context {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Context{
		Sums:       sumfile.NewStore(),
		Overrides:  override.NewRegistry(),
		strictness: strictness,
		log:        log,
		replaces:   make(map[string]module.Replace),
		external:   make(map[string]version.Version),
	}
}

// AddUnit registers a configuration unit. At most one unit may be the
// privileged root.
func (c *Context) AddUnit(name string, root bool) (*Unit, error) {
	if root && c.root != nil {
		return nil, fmt.Errorf("unit %s: root unit already declared as %s", name, c.root.Name)
	}
	u := &Unit{
		Name: name,
		Root: root,
		ctx:  c,
		reqs: make(map[string]module.Requirement),
	}
	c.units = append(c.units, u)
	if root {
		c.root = u
	}
	return u, nil
}

// AddRequirement records one declared dependency version for the unit.
// A clash with an earlier declaration for the same path is fatal unless
// strictness is off, which demotes it to a warning and keeps the higher
// version.
func (u *Unit) AddRequirement(req module.Requirement) error {
	prev, ok := u.reqs[req.Path]
	if !ok {
		u.reqs[req.Path] = req
		return nil
	}

	if version.Compare(prev.Version, req.Version) == 0 {
		// Same version declared twice is not a conflict; a direct
		// declaration wins over an indirect one.
		if prev.Indirect && !req.Indirect {
			u.reqs[req.Path] = req
		}
		return nil
	}

	conflict := newConflict(req.Path, prev, req)
	if u.ctx.strictness == module.StrictnessOff {
		u.ctx.log.Warn("requirement conflict ignored by strictness setting",
			"unit", u.Name, "detail", conflict.Error())
		if version.Compare(req.Version, prev.Version) > 0 {
			u.reqs[req.Path] = req
		}
		return nil
	}
	return conflict
}

// AddManifest merges a parsed manifest's requirements into the unit.
// fromWorkspace marks requirements whose provenance traces to a workspace's
// member manifest. Replace directives are honored for the root unit only.
func (c *Context) AddManifest(u *Unit, m *modfile.Manifest, fromWorkspace bool) error {
	for _, req := range m.Require {
		req.FromWorkspace = fromWorkspace
		if err := u.AddRequirement(req); err != nil {
			return err
		}
	}
	c.AddReplaces(u, m.Replace)
	return nil
}

// AddReplaces merges replace entries into the evaluation, last write per
// source path winning. Entries from non-root units are ignored: only the
// privileged unit may redirect modules for the whole build.
func (c *Context) AddReplaces(u *Unit, replaces map[string]module.Replace) {
	if len(replaces) == 0 {
		return
	}
	if !u.Root {
		c.log.Debug("ignoring replace directives from non-root unit", "unit", u.Name, "count", len(replaces))
		return
	}
	for path, rep := range replaces {
		c.replaces[path] = rep
	}
}

// SetExternal records a module version already provided by another build
// dependency, which resolution prefers over fetching when high enough.
func (c *Context) SetExternal(path string, v version.Version) {
	c.external[path] = v
}

// Resolve merges every unit's requirements, selects the maximum version per
// path, applies replaces and overrides, and runs the staleness and integrity
// checks. Fatal findings from the checks are collected and reported together
// after the full traversal.
func (c *Context) Resolve() (*Result, error) {
	merged := make(map[string]module.Requirement)
	for _, u := range c.units {
		for path, req := range u.reqs {
			prev, ok := merged[path]
			if !ok || version.Compare(req.Version, prev.Version) > 0 {
				merged[path] = req
			}
		}
	}

	paths := make([]string, 0, len(merged))
	for path := range merged {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	// Requested versions of the root unit's direct requirements, kept for
	// the staleness comparison, plus the direct name sets for the output.
	rootDirect := make(map[string]version.Version)
	var direct, devDirect []string
	if c.root != nil {
		for path, req := range c.root.reqs {
			if req.Indirect {
				continue
			}
			rootDirect[path] = req.Version
			if req.Dev {
				devDirect = append(devDirect, module.RepoName(path))
			} else {
				direct = append(direct, module.RepoName(path))
			}
		}
	}
	sort.Strings(direct)
	sort.Strings(devDirect)

	var deferred *multierror.Error
	modules := make(map[string]module.ResolvedModule, len(merged))

	for _, path := range paths {
		req := merged[path]
		res := module.ResolvedModule{
			Path:     path,
			Version:  req.Version,
			RepoName: module.RepoName(path),
			Source:   module.SourceFetch,
		}

		var applied *module.Replace
		if rep, ok := c.replaces[path]; ok {
			if rep.FromVersion == "" || version.Compare(rep.FromVersion, req.Version) == 0 {
				rep := rep
				applied = &rep
			} else {
				c.log.Debug("replace ignored: version guard does not match resolution",
					"module", path, "guard", rep.FromVersion.String(), "resolved", req.Version.String())
			}
		}

		switch {
		case applied != nil:
			res.Source = module.SourceReplace
			res.Replace = applied
			res.Version = applied.ToVersion
			if applied.ToPath != path {
				// The original request no longer describes what ships, so
				// the staleness comparison is meaningless for this path.
				delete(rootDirect, path)
			}

		default:
			ext, ok := c.external[path]
			if ok && c.Overrides.Overridden(path) {
				c.log.Debug("ignoring externally provided module: an override targets it", "module", path)
				ok = false
			}
			if ok {
				if version.Compare(ext, req.Version) >= 0 {
					res.Source = module.SourceExternal
					res.Version = ext
				} else {
					c.diag(&deferred, fmt.Sprintf(
						"externally provided module %s is at %s, below the required %s; falling back to fetching it",
						path, ext, req.Version))
				}
			}
		}

		modules[path] = res
	}

	c.checkStaleness(rootDirect, modules, &deferred)
	c.resolveChecksums(paths, modules, &deferred)

	resolvedSet := make(map[string]bool, len(modules))
	for path := range modules {
		resolvedSet[path] = true
	}
	if err := c.Overrides.CheckResolved(resolvedSet); err != nil {
		deferred = multierror.Append(deferred, err)
	}

	if err := deferred.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &Result{Modules: modules, Direct: direct, DevDirect: devDirect}, nil
}

// checkStaleness surfaces every root direct requirement whose resolution came
// out strictly higher than requested: a silent transitive upgrade. The
// finding is always reported; strictness only decides whether it aborts.
func (c *Context) checkStaleness(rootDirect map[string]version.Version, modules map[string]module.ResolvedModule, deferred **multierror.Error) {
	paths := make([]string, 0, len(rootDirect))
	for path := range rootDirect {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		requested := rootDirect[path]
		res, ok := modules[path]
		if !ok {
			continue
		}
		if version.Compare(res.Version, requested) > 0 {
			msg := fmt.Sprintf(
				"%s resolves to %s, higher than the directly required %s; update the root manifest to match",
				path, res.Version, requested)
			if c.strictness == module.StrictnessError {
				*deferred = multierror.Append(*deferred, errors.New(msg))
			} else {
				c.log.Warn(msg)
			}
		}
	}
}

// resolveChecksums attaches the recorded checksum to every module slated for
// fetching. Externally provided modules, local-directory replaces and
// archive-overridden modules need none; everything else without one is stale
// lock data.
func (c *Context) resolveChecksums(paths []string, modules map[string]module.ResolvedModule, deferred **multierror.Error) {
	for _, path := range paths {
		res := modules[path]
		if res.Source == module.SourceExternal {
			continue
		}
		if res.Replace != nil && res.Replace.IsLocal() {
			continue
		}
		if _, ok := c.Overrides.Archive(path); ok {
			continue
		}

		fetchPath, fetchVersion := path, res.Version
		if res.Replace != nil {
			fetchPath = res.Replace.ToPath
		}
		sum, ok := c.Sums.Sum(fetchPath, fetchVersion.Trimmed())
		if !ok {
			*deferred = multierror.Append(*deferred, &sumfile.IntegrityError{
				Path:    fetchPath,
				Version: fetchVersion.Trimmed(),
				Msg:     "missing checksum; the lock data is stale, refresh it and re-evaluate",
			})
			continue
		}
		res.Sum = sum
		modules[path] = res
	}
}

// diag routes a finding according to the configured strictness: fatal under
// error, logged under warning, dropped under off.
func (c *Context) diag(deferred **multierror.Error, msg string) {
	switch c.strictness {
	case module.StrictnessError:
		*deferred = multierror.Append(*deferred, errors.New(msg))
	case module.StrictnessWarning:
		c.log.Warn(msg)
	}
}
