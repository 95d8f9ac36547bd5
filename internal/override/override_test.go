package override

import (
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
)

func TestAddRejectsNonPrivileged(t *testing.T) {
	r := NewRegistry()
	err := r.AddArchive(Archive{Path: "example.com/a"}, false)
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("AddArchive() error = %T (%v), want *ConfigurationError", err, err)
	}
	if !strings.Contains(cerr.Msg, "root unit") {
		t.Errorf("error msg = %q, want a root-unit hint", cerr.Msg)
	}
}

func TestAddDuplicateKind(t *testing.T) {
	r := NewRegistry()
	if err := r.AddDirectives(Directives{Path: "example.com/a"}, true); err != nil {
		t.Fatalf("AddDirectives() error = %v", err)
	}
	if err := r.AddDirectives(Directives{Path: "example.com/a"}, true); err == nil {
		t.Error("duplicate AddDirectives() succeeded, want error")
	}
}

func TestArchiveAndPatchExclusive(t *testing.T) {
	r := NewRegistry()
	if err := r.AddArchive(Archive{Path: "example.com/a"}, true); err != nil {
		t.Fatalf("AddArchive() error = %v", err)
	}
	if err := r.AddPatch(Patch{Path: "example.com/a"}, true); err == nil {
		t.Error("AddPatch() on archive-overridden path succeeded, want error")
	}

	// The same exclusivity holds in the other declaration order.
	r = NewRegistry()
	if err := r.AddPatch(Patch{Path: "example.com/b"}, true); err != nil {
		t.Fatalf("AddPatch() error = %v", err)
	}
	if err := r.AddArchive(Archive{Path: "example.com/b"}, true); err == nil {
		t.Error("AddArchive() on patch-overridden path succeeded, want error")
	}

	// Directives may coexist with either source-level kind.
	if err := r.AddDirectives(Directives{Path: "example.com/b"}, true); err != nil {
		t.Errorf("AddDirectives() alongside patch error = %v, want nil", err)
	}
}

func TestOverridden(t *testing.T) {
	r := NewRegistry()
	if err := r.AddPatch(Patch{Path: "example.com/a"}, true); err != nil {
		t.Fatal(err)
	}
	if !r.Overridden("example.com/a") {
		t.Error("Overridden(example.com/a) = false, want true")
	}
	if r.Overridden("example.com/b") {
		t.Error("Overridden(example.com/b) = true, want false")
	}
}

func TestCheckResolved(t *testing.T) {
	r := NewRegistry()
	for _, path := range []string{"example.com/known"} {
		if err := r.AddArchive(Archive{Path: path}, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.AddDirectives(Directives{Path: "example.com/dangling2"}, true); err != nil {
		t.Fatal(err)
	}
	if err := r.AddPatch(Patch{Path: "example.com/dangling1"}, true); err != nil {
		t.Fatal(err)
	}

	resolved := map[string]bool{"example.com/known": true}
	err := r.CheckResolved(resolved)
	if err == nil {
		t.Fatal("CheckResolved() succeeded, want batched error")
	}

	// Both dangling keys come back in one batch.
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("error = %T, want *multierror.Error", err)
	}
	if len(merr.Errors) != 2 {
		t.Fatalf("got %d batched errors, want 2: %v", len(merr.Errors), merr)
	}
	for _, want := range []string{"example.com/dangling1", "example.com/dangling2"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("batch error does not name %s: %v", want, err)
		}
	}

	resolved["example.com/dangling1"] = true
	resolved["example.com/dangling2"] = true
	if err := r.CheckResolved(resolved); err != nil {
		t.Errorf("CheckResolved() with all keys resolved error = %v, want nil", err)
	}
}
