package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/frederic-klein/modresolve/internal/modfile"
	"github.com/frederic-klein/modresolve/internal/module"
	"github.com/frederic-klein/modresolve/internal/override"
	"github.com/frederic-klein/modresolve/internal/resolver"
	"github.com/frederic-klein/modresolve/internal/version"
)

// parseWorkers bounds how many manifest files are parsed concurrently.
// Parsing has no shared state; only merging must stay in declaration order.
const parseWorkers = 4

// manifestJob names one manifest file to load, keeping its position so the
// results can be merged in declaration order.
type manifestJob struct {
	idx           int
	path          string
	fromWorkspace bool
}

type manifestResult struct {
	manifest *modfile.Manifest
	err      error
}

// BuildContext reads every file the config references and accumulates a
// fresh resolution context from it. Parse errors abort immediately.
func BuildContext(cfg *Config, log hclog.Logger) (*resolver.Context, error) {
	strictness, err := module.ParseStrictness(cfg.Strictness)
	if err != nil {
		return nil, err
	}
	ctx := resolver.NewContext(strictness, log)

	rootIdx := cfg.rootIndex()
	for i, uc := range cfg.Units {
		isRoot := i == rootIdx
		u, err := ctx.AddUnit(uc.Name, isRoot)
		if err != nil {
			return nil, err
		}
		if err := loadUnit(ctx, u, &uc, isRoot || len(cfg.Units) == 1); err != nil {
			return nil, err
		}
	}

	for _, e := range cfg.External {
		ctx.SetExternal(e.Path, version.Version(e.Version))
	}
	return ctx, nil
}

func loadUnit(ctx *resolver.Context, u *resolver.Unit, uc *Unit, privileged bool) error {
	var jobs []manifestJob
	var workspace *modfile.Workspace

	if uc.GoMod != "" {
		jobs = append(jobs, manifestJob{idx: len(jobs), path: uc.GoMod})
	}
	if uc.GoWork != "" {
		data, err := os.ReadFile(uc.GoWork)
		if err != nil {
			return fmt.Errorf("unit %s: %w", uc.Name, err)
		}
		w, err := modfile.ParseWorkspace(uc.GoWork, data)
		if err != nil {
			return err
		}
		workspace = w
		for _, path := range w.Manifests {
			jobs = append(jobs, manifestJob{idx: len(jobs), path: path, fromWorkspace: true})
		}
	}

	manifests := parseManifests(jobs)

	// Merge in declaration order: requirement conflicts and replace
	// last-write-wins outcomes must not depend on parse scheduling.
	for i, job := range jobs {
		if manifests[i].err != nil {
			return manifests[i].err
		}
		if err := ctx.AddManifest(u, manifests[i].manifest, job.fromWorkspace); err != nil {
			return err
		}
		if err := loadSums(ctx, sumPathFor(job.path)); err != nil {
			return err
		}
	}

	if workspace != nil {
		// Workspace replaces land after the member manifests so they win.
		ctx.AddReplaces(u, workspace.Replace)
		if err := loadSums(ctx, workspace.File+".sum"); err != nil {
			return err
		}
	}

	// Sum files named in the config are read unconditionally; unlike the
	// discovered siblings, a missing one is a config mistake.
	for _, path := range uc.GoSum {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unit %s: %w", uc.Name, err)
		}
		if err := ctx.Sums.ParseInto(path, data); err != nil {
			return err
		}
	}

	for _, m := range uc.Modules {
		req := module.Requirement{
			Path:     m.Path,
			Version:  version.Version(m.Version),
			Sum:      m.Sum,
			Indirect: m.Indirect,
			Dev:      m.Dev,
			From:     uc.Name,
		}
		if err := u.AddRequirement(req); err != nil {
			return err
		}
		if m.Sum != "" {
			if err := ctx.Sums.Add(m.Path, m.Version, m.Sum); err != nil {
				return err
			}
		}
	}

	return addOverrides(ctx, uc, privileged)
}

func addOverrides(ctx *resolver.Context, uc *Unit, privileged bool) error {
	for _, o := range uc.ArchiveOverrides {
		err := ctx.Overrides.AddArchive(override.Archive{
			Path:        o.Path,
			URLs:        o.URLs,
			StripPrefix: o.StripPrefix,
			SHA256:      o.SHA256,
			Patches:     o.Patches,
		}, privileged)
		if err != nil {
			return err
		}
	}
	for _, o := range uc.DirectiveOverrides {
		err := ctx.Overrides.AddDirectives(override.Directives{
			Path:                o.Path,
			Directives:          o.Directives,
			BuildFileGeneration: o.BuildFileGeneration,
		}, privileged)
		if err != nil {
			return err
		}
	}
	for _, o := range uc.PatchOverrides {
		err := ctx.Overrides.AddPatch(override.Patch{
			Path:       o.Path,
			Patches:    o.Patches,
			PatchStrip: o.PatchStrip,
		}, privileged)
		if err != nil {
			return err
		}
	}
	return nil
}

// parseManifests reads and parses manifest files concurrently with a small
// worker pool. Each result lands at its job's index.
func parseManifests(jobs []manifestJob) []manifestResult {
	results := make([]manifestResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	jobChan := make(chan manifestJob, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < parseWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				data, err := os.ReadFile(job.path)
				if err != nil {
					results[job.idx] = manifestResult{err: err}
					continue
				}
				m, err := modfile.ParseManifest(job.path, data)
				results[job.idx] = manifestResult{manifest: m, err: err}
			}
		}()
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)
	wg.Wait()

	return results
}

// sumPathFor returns the checksum file location next to a manifest.
func sumPathFor(manifestPath string) string {
	return filepath.Join(filepath.Dir(manifestPath), "go.sum")
}

// loadSums merges a checksum file into the store if it exists. A missing
// file is fine; individual modules without checksums are caught later.
func loadSums(ctx *resolver.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return ctx.Sums.ParseInto(path, data)
}
