package modfile

import (
	"path/filepath"
	"strings"

	"github.com/frederic-klein/modresolve/internal/module"
)

// Workspace is the parsed content of a go.work-style file. Manifests holds
// the go.mod locations its use directives point at, resolved relative to the
// workspace file, in declaration order.
type Workspace struct {
	File      string
	Go        string
	Manifests []string
	Replace   map[string]module.Replace
}

var workspaceDirectives = map[string]bool{
	"go":      true,
	"use":     true,
	"replace": true,
}

// ParseWorkspace parses go.work-style text, sharing the manifest tokenizer
// and replace grammar.
func ParseWorkspace(file string, data []byte) (*Workspace, error) {
	w := &Workspace{
		File:    file,
		Go:      defaultGoVersion,
		Replace: make(map[string]module.Replace),
	}
	dir := filepath.Dir(file)

	seenGo := false

	handle := func(directive string, args []string, comment string, num int) error {
		switch directive {
		case "go":
			if len(args) != 1 {
				return parseErrf(file, num, "usage: go version")
			}
			if seenGo {
				return parseErrf(file, num, "repeated go statement")
			}
			seenGo = true
			w.Go = args[0]

		case "use":
			if len(args) != 1 {
				return parseErrf(file, num, "usage: use path")
			}
			p, err := cleanUsePath(file, num, args[0])
			if err != nil {
				return err
			}
			w.Manifests = append(w.Manifests, filepath.Join(dir, filepath.FromSlash(p), "go.mod"))

		case "replace":
			rep, err := parseReplace(file, num, args)
			if err != nil {
				return err
			}
			setReplace(w.Replace, rep)
		}
		return nil
	}

	if err := parseFile(file, data, workspaceDirectives, handle); err != nil {
		return nil, err
	}
	return w, nil
}

// cleanUsePath validates a use directive path and normalizes it: absolute
// paths and parent-directory segments are rejected, a leading "./" and a
// trailing "/" are stripped.
func cleanUsePath(file string, num int, p string) (string, error) {
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return "", parseErrf(file, num, "use path %q must be relative to the workspace", p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", parseErrf(file, num, "use path %q may not point above the workspace", p)
		}
	}
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimSuffix(p, "/")
	return p, nil
}
