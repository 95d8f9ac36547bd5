package resolver

import (
	"fmt"

	"github.com/frederic-klein/modresolve/internal/module"
)

// ConflictError reports two irreconcilable requirement versions for one
// module path declared within the same unit.
type ConflictError struct {
	Path   string
	First  module.Requirement
	Second module.Requirement
	Hint   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting versions for %s: %s (from %s) and %s (from %s); %s",
		e.Path, e.First.Version, e.First.From, e.Second.Version, e.Second.From, e.Hint)
}

// newConflict builds the error for two clashing requirements, choosing the
// remediation hint. Workspace provenance and major-epoch mismatches need a
// manual fix; otherwise an indirect side means a stale source manifest, and
// two direct declarations mean an unsynchronized workspace.
func newConflict(path string, first, second module.Requirement) *ConflictError {
	var hint string
	switch {
	case first.FromWorkspace || second.FromWorkspace || first.Version.Epoch() != second.Version.Epoch():
		hint = "resolve the clash manually before re-evaluating"
	case first.Indirect || second.Indirect:
		hint = "run 'go mod tidy' in the declaring module to refresh its manifest"
	default:
		hint = "run 'go work sync' to synchronize the workspace"
	}
	return &ConflictError{Path: path, First: first, Second: second, Hint: hint}
}
