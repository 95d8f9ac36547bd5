package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/frederic-klein/modresolve/internal/resolver"
	"github.com/frederic-klein/modresolve/internal/version"
)

const header = "# modresolve lock format: version 1.0\n"

// Emitter writes a resolution result for the downstream fetch stage.
type Emitter struct {
	w io.Writer
}

// NewEmitter creates an emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes the result in the text lock format, modules sorted by path.
func (e *Emitter) Emit(r *resolver.Result) error {
	if _, err := fmt.Fprint(e.w, header); err != nil {
		return err
	}
	if _, err := fmt.Fprint(e.w, "MODULES\n"); err != nil {
		return err
	}

	paths := make([]string, 0, len(r.Modules))
	for path := range r.Modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		m := r.Modules[path]
		if _, err := fmt.Fprintf(e.w, "  %s %s\n", m.Path, m.Version); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(e.w, "    repo: %s\n", m.RepoName); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(e.w, "    source: %s\n", m.Source); err != nil {
			return err
		}
		if m.Sum != "" {
			if _, err := fmt.Fprintf(e.w, "    sum: %s\n", m.Sum); err != nil {
				return err
			}
		}
		if m.Replace != nil {
			target := m.Replace.ToPath
			if m.Replace.ToVersion != version.Highest {
				target += " " + m.Replace.ToVersion.String()
			}
			if _, err := fmt.Fprintf(e.w, "    replace: %s\n", target); err != nil {
				return err
			}
		}
	}

	if err := emitNames(e.w, "DIRECT", r.Direct); err != nil {
		return err
	}
	return emitNames(e.w, "DEV", r.DevDirect)
}

func emitNames(w io.Writer, section string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s\n", section); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
			return err
		}
	}
	return nil
}

type jsonReplace struct {
	Path    string `json:"path"`
	Version string `json:"version,omitempty"`
}

type jsonModule struct {
	Path    string       `json:"path"`
	Version string       `json:"version"`
	Repo    string       `json:"repo"`
	Source  string       `json:"source"`
	Sum     string       `json:"sum,omitempty"`
	Replace *jsonReplace `json:"replace,omitempty"`
}

type jsonResult struct {
	Modules   []jsonModule `json:"modules"`
	Direct    []string     `json:"direct"`
	DevDirect []string     `json:"dev_direct"`
}

// EmitJSON writes the result as JSON, modules sorted by path.
func (e *Emitter) EmitJSON(r *resolver.Result) error {
	paths := make([]string, 0, len(r.Modules))
	for path := range r.Modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	out := jsonResult{
		Modules:   make([]jsonModule, 0, len(paths)),
		Direct:    r.Direct,
		DevDirect: r.DevDirect,
	}
	for _, path := range paths {
		m := r.Modules[path]
		jm := jsonModule{
			Path:    m.Path,
			Version: m.Version.String(),
			Repo:    m.RepoName,
			Source:  string(m.Source),
			Sum:     m.Sum,
		}
		if m.Replace != nil {
			jm.Replace = &jsonReplace{Path: m.Replace.ToPath}
			if m.Replace.ToVersion != version.Highest {
				jm.Replace.Version = m.Replace.ToVersion.String()
			}
		}
		out.Modules = append(out.Modules, jm)
	}

	enc := json.NewEncoder(e.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
