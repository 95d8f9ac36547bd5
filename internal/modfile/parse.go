package modfile

import "fmt"

// ParseError describes a syntax problem at a specific file and line. Any
// parse error aborts the whole evaluation: a partially parsed manifest is
// never trusted.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func parseErrf(file string, num int, format string, args ...interface{}) error {
	return &ParseError{File: file, Line: num, Msg: fmt.Sprintf(format, args...)}
}

// handler parses the arguments of one directive occurrence. For a block
// directive it is called once per block line with the enclosing directive's
// name.
type handler func(dir string, args []string, comment string, num int) error

// parseFile walks tokenized lines and dispatches both single-line directives
// and parenthesized blocks (a line ending in "(", closed by a line holding
// only ")") to handle. known limits the accepted leading tokens.
func parseFile(file string, data []byte, known map[string]bool, handle handler) error {
	lines, err := tokenize(file, data)
	if err != nil {
		return err
	}

	for idx := 0; idx < len(lines); idx++ {
		ln := lines[idx]
		if len(ln.tokens) == 0 {
			continue
		}

		dir := ln.tokens[0]
		if dir == ")" {
			return parseErrf(file, ln.num, "unexpected )")
		}
		if !known[dir] {
			return parseErrf(file, ln.num, "unknown directive %q", dir)
		}

		args := ln.tokens[1:]
		if len(args) > 0 && args[len(args)-1] == "(" {
			if len(args) != 1 {
				return parseErrf(file, ln.num, "malformed %s block", dir)
			}
			closed := false
			for idx++; idx < len(lines); idx++ {
				inner := lines[idx]
				if len(inner.tokens) == 0 {
					continue
				}
				if len(inner.tokens) == 1 && inner.tokens[0] == ")" {
					closed = true
					break
				}
				if err := handle(dir, inner.tokens, inner.comment, inner.num); err != nil {
					return err
				}
			}
			if !closed {
				return parseErrf(file, ln.num, "unterminated %s block", dir)
			}
			continue
		}

		if err := handle(dir, args, ln.comment, ln.num); err != nil {
			return err
		}
	}
	return nil
}
