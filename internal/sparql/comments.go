package sparql

import "strings"

// StripComments removes trailing #-comments from every line of the
// given statement text. A '#' inside an IRI reference (between '<' and
// '>', typically the fragment delimiter as in <http://x/y#>) or inside
// a quoted literal does not start a comment and is kept.
func StripComments(text string) string {
	var b strings.Builder
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		b.WriteString(strings.TrimRight(stripLineComment(line), " \t"))
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func stripLineComment(line string) string {
	inIRI := false
	inString := false
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == quote {
				inString = false
			}
		case inIRI:
			if c == '>' {
				inIRI = false
			}
		case c == '"' || c == '\'':
			inString = true
			quote = c
		case c == '<':
			inIRI = true
		case c == '#':
			return line[:i]
		}
	}
	return line
}
