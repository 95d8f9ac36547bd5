package modfile

import (
	"fmt"

	"github.com/frederic-klein/modresolve/internal/module"
	"github.com/frederic-klein/modresolve/internal/version"
)

// defaultGoVersion is assumed when a file carries no go directive.
const defaultGoVersion = "1.16"

// minGoVersion is the lowest language version whose manifests record every
// transitive requirement, which the flat resolution model depends on.
const minGoVersion = "1.17"

// Manifest is the parsed content of a go.mod-style file.
type Manifest struct {
	File    string
	Path    string // module path
	Go      string // language version
	Require []module.Requirement
	Replace map[string]module.Replace
}

var manifestDirectives = map[string]bool{
	"module":    true,
	"go":        true,
	"require":   true,
	"replace":   true,
	"exclude":   true,
	"retract":   true,
	"toolchain": true,
}

// ParseManifest parses go.mod-style text. It is a pure function of the input
// bytes. The declared language version must be at least 1.17; below that the
// requirement list cannot be trusted to be complete.
func ParseManifest(file string, data []byte) (*Manifest, error) {
	m := &Manifest{
		File:    file,
		Go:      defaultGoVersion,
		Replace: make(map[string]module.Replace),
	}

	var goLine int
	seenGo := false
	seenModule := false

	handle := func(dir string, args []string, comment string, num int) error {
		switch dir {
		case "module":
			if len(args) != 1 {
				return parseErrf(file, num, "usage: module path")
			}
			if seenModule {
				return parseErrf(file, num, "repeated module statement")
			}
			seenModule = true
			m.Path = args[0]

		case "go":
			if len(args) != 1 {
				return parseErrf(file, num, "usage: go version")
			}
			if seenGo {
				return parseErrf(file, num, "repeated go statement")
			}
			seenGo = true
			m.Go = args[0]
			goLine = num

		case "require":
			if len(args) != 2 {
				return parseErrf(file, num, "usage: require module version")
			}
			m.Require = append(m.Require, module.Requirement{
				Path:     args[0],
				Version:  version.Version(args[1]),
				Indirect: comment == "indirect",
				From:     file,
			})

		case "replace":
			rep, err := parseReplace(file, num, args)
			if err != nil {
				return err
			}
			setReplace(m.Replace, rep)

		case "exclude":
			if len(args) != 2 {
				return parseErrf(file, num, "usage: exclude module version")
			}
			// Recognized but not used by resolution.

		case "retract":
			if len(args) == 0 {
				return parseErrf(file, num, "usage: retract version or [low, high]")
			}
			// Recognized but not used by resolution.

		case "toolchain":
			if len(args) != 1 {
				return parseErrf(file, num, "usage: toolchain name")
			}
			// Recognized but not used by resolution.
		}
		return nil
	}

	if err := parseFile(file, data, manifestDirectives, handle); err != nil {
		return nil, err
	}

	if version.Compare(version.Version(m.Go), minGoVersion) < 0 {
		return nil, &ParseError{
			File: file,
			Line: goLine,
			Msg: fmt.Sprintf("declares go %s, but go %s or higher is required so that all transitive requirements are recorded; run 'go mod tidy' with a newer toolchain and retry",
				m.Go, minGoVersion),
		}
	}
	return m, nil
}

// parseReplace accepts the three replace shapes:
//
//	from => ../local/dir
//	from => to version
//	from fromVersion => to version
//
// A local directory target records the Highest version sentinel.
func parseReplace(file string, num int, args []string) (module.Replace, error) {
	switch {
	case len(args) == 3 && args[1] == "=>":
		return module.Replace{
			FromPath:  args[0],
			ToPath:    args[2],
			ToVersion: version.Highest,
		}, nil
	case len(args) == 4 && args[1] == "=>":
		return module.Replace{
			FromPath:  args[0],
			ToPath:    args[2],
			ToVersion: version.Version(args[3]),
		}, nil
	case len(args) == 5 && args[2] == "=>":
		return module.Replace{
			FromPath:    args[0],
			FromVersion: version.Version(args[1]),
			ToPath:      args[3],
			ToVersion:   version.Version(args[4]),
		}, nil
	}
	return module.Replace{}, parseErrf(file, num, "usage: replace module [version] => target [version]")
}

// setReplace records a replace entry, a later entry for the same source path
// overwriting an earlier one.
func setReplace(replaces map[string]module.Replace, rep module.Replace) {
	replaces[rep.FromPath] = rep
}
