package sumfile

import (
	"strings"
	"testing"
)

func TestParseInto(t *testing.T) {
	s := NewStore()
	content := "mod v1.2.3 h1:abc=\nmod v1.2.3/go.mod h1:def=\nother v2.0.0 h1:ghi=\n"
	if err := s.ParseInto("go.sum", []byte(content)); err != nil {
		t.Fatalf("ParseInto() error = %v", err)
	}

	if got, ok := s.Sum("mod", "1.2.3"); !ok || got != "h1:abc=" {
		t.Errorf("Sum(mod, 1.2.3) = %q, %v; want h1:abc=, true", got, ok)
	}
	// The leading "v" is stripped for keying, so both spellings hit.
	if got, ok := s.Sum("mod", "v1.2.3"); !ok || got != "h1:abc=" {
		t.Errorf("Sum(mod, v1.2.3) = %q, %v; want h1:abc=, true", got, ok)
	}
	if _, ok := s.Sum("missing", "1.0.0"); ok {
		t.Error("Sum(missing, 1.0.0) found an entry, want none")
	}
	// Manifest-checksum lines must not be inserted; two modules remain.
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestParseIntoBadLine(t *testing.T) {
	s := NewStore()
	err := s.ParseInto("go.sum", []byte("mod v1.2.3 h1:abc=\nmod v1.2.3\n"))
	if err == nil {
		t.Fatal("ParseInto() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "go.sum:2") {
		t.Errorf("error = %q, want file and line go.sum:2", err)
	}
}

func TestAddDuplicate(t *testing.T) {
	s := NewStore()
	if err := s.Add("mod", "v1.2.3", "h1:abc="); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Identical re-insertion is a no-op.
	if err := s.Add("mod", "1.2.3", "h1:abc="); err != nil {
		t.Errorf("identical Add() error = %v, want nil", err)
	}

	// A differing checksum for the same key is an integrity violation.
	err := s.Add("mod", "v1.2.3", "h1:EVIL=")
	ierr, ok := err.(*IntegrityError)
	if !ok {
		t.Fatalf("conflicting Add() error = %T (%v), want *IntegrityError", err, err)
	}
	if ierr.Path != "mod" || ierr.Version != "1.2.3" {
		t.Errorf("IntegrityError for %s@%s, want mod@1.2.3", ierr.Path, ierr.Version)
	}
}

func TestStoreAccumulatesAcrossFiles(t *testing.T) {
	s := NewStore()
	if err := s.ParseInto("a/go.sum", []byte("mod v1.2.3 h1:abc=\n")); err != nil {
		t.Fatalf("ParseInto() error = %v", err)
	}
	if err := s.ParseInto("b/go.sum", []byte("mod v1.2.3 h1:abc=\nextra v0.1.0 h1:xyz=\n")); err != nil {
		t.Fatalf("second ParseInto() error = %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	// A second file disagreeing about a known checksum is fatal.
	if err := s.ParseInto("c/go.sum", []byte("mod v1.2.3 h1:EVIL=\n")); err == nil {
		t.Error("ParseInto() with conflicting checksum succeeded, want error")
	}
}
