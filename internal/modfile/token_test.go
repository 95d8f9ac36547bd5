package modfile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenizeLine(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantTokens  []string
		wantComment string
		wantErr     bool
	}{
		{
			name:       "bare tokens",
			raw:        "require example.com/a v1.0.0",
			wantTokens: []string{"require", "example.com/a", "v1.0.0"},
		},
		{
			name:       "tabs already normalized to spaces by tokenize",
			raw:        "go  1.21",
			wantTokens: []string{"go", "1.21"},
		},
		{
			name:        "trailing comment",
			raw:         "require example.com/a v1.0.0 // indirect",
			wantTokens:  []string{"require", "example.com/a", "v1.0.0"},
			wantComment: "indirect",
		},
		{
			name:        "comment only",
			raw:         "// just a note",
			wantComment: "just a note",
		},
		{
			name:       "double quoted with escape",
			raw:        `module "odd \"name\" here"`,
			wantTokens: []string{"module", `odd "name" here`},
		},
		{
			name:       "backquoted verbatim keeps backslashes",
			raw:        "module `odd\\path`",
			wantTokens: []string{"module", `odd\path`},
		},
		{
			name:       "raw string may contain slashes",
			raw:        "module `with//slashes`",
			wantTokens: []string{"module", "with//slashes"},
		},
		{
			name:    "unterminated raw string",
			raw:     "module `oops",
			wantErr: true,
		},
		{
			name:    "unterminated quoted string",
			raw:     `module "oops`,
			wantErr: true,
		},
		{
			name:    "trailing backslash",
			raw:     `module "oops\`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ln, err := tokenizeLine("test.mod", 1, tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("tokenizeLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(tt.wantTokens, ln.tokens); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
			if ln.comment != tt.wantComment {
				t.Errorf("comment = %q, want %q", ln.comment, tt.wantComment)
			}
		})
	}
}

func TestTokenizeNormalizesTabsAndCR(t *testing.T) {
	lines, err := tokenize("test.mod", []byte("go\t1.21\r\nrequire\ta\tv1.0.0\n"))
	if err != nil {
		t.Fatalf("tokenize() error = %v", err)
	}
	want := [][]string{
		{"go", "1.21"},
		{"require", "a", "v1.0.0"},
		nil,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i, w := range want {
		if diff := cmp.Diff(w, lines[i].tokens); diff != "" {
			t.Errorf("line %d tokens mismatch (-want +got):\n%s", i+1, diff)
		}
	}
}

func TestTokenizeReportsLineNumbers(t *testing.T) {
	_, err := tokenize("test.mod", []byte("go 1.21\nmodule `oops\n"))
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("tokenize() error = %v, want *ParseError", err)
	}
	if perr.File != "test.mod" || perr.Line != 2 {
		t.Errorf("ParseError at %s:%d, want test.mod:2", perr.File, perr.Line)
	}
}
