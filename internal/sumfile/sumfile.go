package sumfile

import (
	"fmt"
	"strings"

	"github.com/frederic-klein/modresolve/internal/modfile"
)

// manifestSumSuffix marks checksum lines that cover a module's manifest
// rather than its source archive. Those never enter the store.
const manifestSumSuffix = "/go.mod"

// IntegrityError reports tampered or stale checksum data for one module
// version.
type IntegrityError struct {
	Path    string
	Version string
	Msg     string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s@%s: %s", e.Path, e.Version, e.Msg)
}

type key struct {
	path    string
	version string
}

// Store accumulates checksum entries from every checksum file seen during an
// evaluation, keyed by module path and version (leading "v" stripped).
type Store struct {
	sums map[key]string
}

// NewStore creates an empty checksum store.
func NewStore() *Store {
	return &Store{sums: make(map[key]string)}
}

// Add records a checksum. Re-adding an identical entry is a no-op; a
// differing checksum for an existing key is an integrity violation.
func (s *Store) Add(path, version, sum string) error {
	k := key{path: path, version: strings.TrimPrefix(version, "v")}
	if have, ok := s.sums[k]; ok {
		if have == sum {
			return nil
		}
		return &IntegrityError{
			Path:    path,
			Version: k.version,
			Msg:     fmt.Sprintf("checksum mismatch: have %s, found %s; the lock data is inconsistent or has been tampered with", have, sum),
		}
	}
	s.sums[k] = sum
	return nil
}

// Sum looks up the checksum recorded for a module version.
func (s *Store) Sum(path, version string) (string, bool) {
	sum, ok := s.sums[key{path: path, version: strings.TrimPrefix(version, "v")}]
	return sum, ok
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	return len(s.sums)
}

// ParseInto reads go.sum-style text into the store: one "path version hash"
// triple per line, blank lines skipped. Manifest-checksum lines are
// discarded.
func (s *Store) ParseInto(file string, data []byte) error {
	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return &modfile.ParseError{
				File: file,
				Line: i + 1,
				Msg:  fmt.Sprintf("invalid checksum line: want 3 fields, got %d", len(fields)),
			}
		}
		path, version, sum := fields[0], fields[1], fields[2]
		if strings.HasSuffix(version, manifestSumSuffix) {
			continue
		}
		if err := s.Add(path, version, sum); err != nil {
			return err
		}
	}
	return nil
}
