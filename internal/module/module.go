package module

import (
	"fmt"
	"strings"

	"github.com/frederic-klein/modresolve/internal/version"
)

// Source classifies how a resolved module is satisfied.
type Source string

const (
	SourceFetch    Source = "fetch"    // downloaded by the external fetch stage
	SourceReplace  Source = "replace"  // substituted by a replace directive
	SourceExternal Source = "external" // already provided by another build dependency
)

// Requirement is one declared dependency version. Immutable once created.
type Requirement struct {
	Path          string
	Version       version.Version
	Sum           string
	Indirect      bool
	Dev           bool
	From          string // file or unit label that declared it
	FromWorkspace bool
}

// Replace substitutes one module path (optionally version-qualified) with
// another path and version, or with a local directory.
type Replace struct {
	FromPath    string
	FromVersion version.Version // empty: applies to any resolved version
	ToPath      string
	ToVersion   version.Version // version.Highest for local directory targets
}

// IsLocal reports whether the replacement points at a local directory rather
// than a fetchable module.
func (r Replace) IsLocal() bool {
	return r.ToVersion == version.Highest
}

// ResolvedModule is one row of the final resolution table. Path keeps the
// originally required module path even when a replace redirects the fetch.
type ResolvedModule struct {
	Path     string
	Version  version.Version
	Sum      string
	RepoName string
	Source   Source
	Replace  *Replace
}

// Strictness governs how conflict and staleness findings are reported.
type Strictness int

const (
	StrictnessOff Strictness = iota
	StrictnessWarning
	StrictnessError
)

// ParseStrictness maps config text to a Strictness. The empty string selects
// the default, warning.
func ParseStrictness(s string) (Strictness, error) {
	switch s {
	case "":
		return StrictnessWarning, nil
	case "off":
		return StrictnessOff, nil
	case "warning":
		return StrictnessWarning, nil
	case "error":
		return StrictnessError, nil
	default:
		return 0, fmt.Errorf("invalid strictness %q (want off, warning or error)", s)
	}
}

func (s Strictness) String() string {
	switch s {
	case StrictnessOff:
		return "off"
	case StrictnessWarning:
		return "warning"
	case StrictnessError:
		return "error"
	}
	return fmt.Sprintf("Strictness(%d)", int(s))
}

// RepoName derives the external repository name the fetch stage uses for a
// module path: the host segments reversed, everything lowercased, and every
// character outside [a-z0-9] mapped to an underscore.
// "github.com/stretchr/testify" becomes "com_github_stretchr_testify".
func RepoName(path string) string {
	segments := strings.Split(strings.ToLower(path), "/")

	host := strings.Split(segments[0], ".")
	for i, j := 0, len(host)-1; i < j; i, j = i+1, j-1 {
		host[i], host[j] = host[j], host[i]
	}

	parts := make([]string, 0, len(segments))
	parts = append(parts, strings.Join(host, "_"))
	parts = append(parts, segments[1:]...)

	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteByte('_')
		}
		for _, r := range part {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
	}
	return b.String()
}
