package modfile

import "strings"

// line is one tokenized source line: its tokens plus any trailing comment,
// which the grammar keeps separate so "// indirect" annotations survive.
type line struct {
	num     int
	tokens  []string
	comment string
}

// tokenize splits file text into per-line tokens. Tabs and carriage returns
// are treated as spaces. Three token forms are recognized: backquoted
// verbatim strings, double-quoted strings with backslash escapes, and bare
// whitespace-separated words. A token starting with "//" begins a comment
// running to the end of the line.
func tokenize(file string, data []byte) ([]line, error) {
	text := strings.NewReplacer("\t", " ", "\r", " ").Replace(string(data))

	var lines []line
	for i, raw := range strings.Split(text, "\n") {
		ln, err := tokenizeLine(file, i+1, raw)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ln)
	}
	return lines, nil
}

func tokenizeLine(file string, num int, raw string) (line, error) {
	ln := line{num: num}

	i := 0
	for i < len(raw) {
		switch c := raw[i]; {
		case c == ' ':
			i++

		case c == '`':
			end := strings.IndexByte(raw[i+1:], '`')
			if end < 0 {
				return line{}, &ParseError{File: file, Line: num, Msg: "unterminated raw string"}
			}
			ln.tokens = append(ln.tokens, raw[i+1:i+1+end])
			i += end + 2

		case c == '"':
			tok, next, err := scanQuoted(file, num, raw, i)
			if err != nil {
				return line{}, err
			}
			ln.tokens = append(ln.tokens, tok)
			i = next

		case c == '/' && i+1 < len(raw) && raw[i+1] == '/':
			ln.comment = strings.TrimSpace(raw[i+2:])
			i = len(raw)

		default:
			end := strings.IndexByte(raw[i:], ' ')
			if end < 0 {
				end = len(raw) - i
			}
			ln.tokens = append(ln.tokens, raw[i:i+end])
			i += end
		}
	}
	return ln, nil
}

// scanQuoted reads a double-quoted token starting at raw[start] == '"'.
// A backslash escapes the character after it, whatever it is.
func scanQuoted(file string, num int, raw string, start int) (string, int, error) {
	var b strings.Builder
	for i := start + 1; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			if i+1 >= len(raw) {
				return "", 0, &ParseError{File: file, Line: num, Msg: "trailing backslash in quoted string"}
			}
			b.WriteByte(raw[i+1])
			i++
		case '"':
			return b.String(), i + 1, nil
		default:
			b.WriteByte(raw[i])
		}
	}
	return "", 0, &ParseError{File: file, Line: num, Msg: "unterminated quoted string"}
}
