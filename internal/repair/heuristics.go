package repair

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// latexCommands are backslash commands whose first letter is also a JSON
// escape (\b \f \n \r \t). Inside a string they are almost always LaTeX.
var latexCommands = map[string]bool{
	"bar": true, "beta": true, "begin": true, "bigcap": true, "bigcup": true,
	"binom": true, "bmod": true, "boldsymbol": true, "bot": true, "boxed": true,
	"bullet": true,
	"frac": true, "forall": true, "frown": true,
	"nabla": true, "neq": true, "neg": true,
	"nmid": true, "not": true, "notin": true, "newline": true,
	"rangle": true, "rceil": true, "rfloor": true, "rho": true, "right": true,
	"rightarrow": true,
	"tan": true, "tau": true, "text": true, "textbf": true, "textrm": true,
	"therefore": true, "theta": true, "tilde": true, "times": true,
	"top": true, "triangle": true, "tfrac": true,
}

// shortLatexCommands read just as well as an escape followed by a short
// word ("\n" then "e^{x}"). They are escaped after a math-mode character
// ("x \to 0", "$\ne$"), or anywhere once the text has failed to parse.
var shortLatexCommands = map[string]bool{
	"ne": true, "ni": true, "nu": true, "rm": true, "to": true,
}

// escapeLatex doubles the backslash of known LaTeX commands inside strings.
func escapeLatex(s string) string {
	return escapeCommands(s, false)
}

func escapeCommands(s string, short bool) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			inString = false
			b.WriteByte(c)
		case '\\':
			if i+1 >= len(s) {
				b.WriteByte(c)
				continue
			}
			if strings.IndexByte("bfnrt", s[i+1]) >= 0 {
				j := i + 1
				for j < len(s) && isASCIILetter(s[j]) {
					j++
				}
				cmd := s[i+1 : j]
				mathMode := strings.IndexByte(" $({[_^=", s[i-1]) >= 0
				if latexCommands[cmd] || (shortLatexCommands[cmd] && (short || mathMode)) {
					b.WriteString(`\\`)
					b.WriteString(s[i+1 : j])
					i = j - 1
					continue
				}
			}
			// Keep the escape pair intact.
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func stripComments(s string) string {
	var b strings.Builder
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}
		switch {
		case c == '"':
			inString = true
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// singleQuotes rewrites single-quoted strings as double-quoted ones. An
// apostrophe is only treated as the closing quote when it is followed by
// a structural character.
func singleQuotes(s string) string {
	var b strings.Builder
	const (
		outside = iota
		double
		single
	)
	state := outside
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case double:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				state = outside
			}
			b.WriteByte(c)
		case single:
			switch {
			case c == '\\' && i+1 < len(s) && s[i+1] == '\'':
				b.WriteByte('\'')
				i++
			case c == '\\' && i+1 < len(s):
				b.WriteByte(c)
				b.WriteByte(s[i+1])
				i++
			case c == '"':
				b.WriteString(`\"`)
			case c == '\'' && closesString(s, i+1):
				b.WriteByte('"')
				state = outside
			default:
				b.WriteByte(c)
			}
		default:
			switch c {
			case '"':
				state = double
				b.WriteByte(c)
			case '\'':
				state = single
				b.WriteByte('"')
			default:
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

func trailingCommas(s string) string {
	var b strings.Builder
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' {
			j := skipSpace(s, i+1)
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// quoteKeys wraps bare object keys in double quotes.
func quoteKeys(s string) string {
	var b strings.Builder
	inString, escaped := false, false
	var prev byte // last significant byte outside strings
	for i := 0; i < len(s); {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				prev = '"'
			}
			b.WriteByte(c)
			i++
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			i++
			continue
		}
		if prev == '{' || prev == ',' {
			if end := identEnd(s, i); end > i {
				if j := skipSpace(s, end); j < len(s) && s[j] == ':' {
					b.WriteByte('"')
					b.WriteString(s[i:end])
					b.WriteByte('"')
					prev = '"'
					i = end
					continue
				}
			}
		}
		if !isSpace(c) {
			prev = c
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// interiorQuotes escapes double quotes that appear inside a string value,
// as in "the "x" value". A quote closes the string only when what follows
// it is structural.
func interiorQuotes(s string) string {
	var b strings.Builder
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			if closesString(s, i+1) {
				inString = false
			} else {
				b.WriteString(`\"`)
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// closesString reports whether a quote ending just before s[i] plausibly
// terminates a string.
func closesString(s string, i int) bool {
	j := skipSpace(s, i)
	if j >= len(s) {
		return true
	}
	switch s[j] {
	case '}', ']', ':':
		return true
	case ',':
		k := skipSpace(s, j+1)
		if k >= len(s) {
			return true
		}
		// Bare keys are ASCII; prose in the stem usually is not.
		return strings.IndexByte("\"'{[}]-0123456789_", s[k]) >= 0 || isASCIILetter(s[k])
	}
	return false
}

// fixEscapes doubles backslashes that do not start a valid JSON escape and
// escapes raw control characters inside strings. Strings that only became
// double-quoted in an earlier step get the LaTeX pass here, short commands
// included.
func fixEscapes(s string) string {
	s = escapeCommands(s, true)
	var b strings.Builder
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}
		switch {
		case c == '"':
			inString = false
			b.WriteByte(c)
		case c == '\\':
			if i+1 < len(s) && validEscape(s, i+1) {
				b.WriteByte(c)
				b.WriteByte(s[i+1])
				i++
				continue
			}
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xf])
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

const hexDigits = "0123456789abcdef"

func validEscape(s string, i int) bool {
	switch s[i] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case 'u':
		if i+5 > len(s) {
			return false
		}
		for _, h := range []byte(s[i+1 : i+5]) {
			if strings.IndexByte("0123456789abcdefABCDEF", h) < 0 {
				return false
			}
		}
		return true
	}
	return false
}

var literalReplacements = map[string]string{
	"NaN":       "null",
	"Infinity":  "null",
	"undefined": "null",
	"None":      "null",
	"True":      "true",
	"False":     "false",
	"Null":      "null",
	"NULL":      "null",
}

// literals maps non-JSON literals outside strings to their JSON form.
func literals(s string) string {
	var b strings.Builder
	inString, escaped := false, false
	for i := 0; i < len(s); {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			i++
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			i++
			continue
		}
		if end := identEnd(s, i); end > i {
			word := s[i:end]
			if rep, ok := literalReplacements[word]; ok {
				out := b.String()
				// -Infinity becomes null, not -null.
				if word == "Infinity" && strings.HasSuffix(out, "-") {
					b.Reset()
					b.WriteString(out[:len(out)-1])
				}
				b.WriteString(rep)
			} else {
				b.WriteString(word)
			}
			i = end
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

type frame struct {
	object    bool
	expectKey bool // at a key position in an object
	afterKey  bool // a key was read but no colon yet
}

// closeTruncated terminates an unfinished string and closes every open
// object and array. Dangling keys get a null value.
func closeTruncated(s string) string {
	var stack []frame
	inString, escaped, stringIsKey := false, false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				if stringIsKey {
					top := &stack[len(stack)-1]
					top.expectKey, top.afterKey = false, true
				}
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			stringIsKey = len(stack) > 0 && stack[len(stack)-1].object && stack[len(stack)-1].expectKey
		case '{':
			stack = append(stack, frame{object: true, expectKey: true})
		case '[':
			stack = append(stack, frame{})
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ':':
			if len(stack) > 0 {
				stack[len(stack)-1].afterKey = false
			}
		case ',':
			if len(stack) > 0 && stack[len(stack)-1].object {
				stack[len(stack)-1].expectKey = true
			}
		}
	}

	if !inString && len(stack) == 0 {
		return s
	}

	out := s
	if inString {
		if escaped {
			out = out[:len(out)-1]
		}
		out += `"`
		if stringIsKey {
			top := &stack[len(stack)-1]
			top.expectKey, top.afterKey = false, true
		}
	}
	out = strings.TrimRightFunc(out, unicode.IsSpace)
	out = strings.TrimSuffix(out, ",")

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		switch {
		case strings.HasSuffix(out, ":"):
			out += "null"
		case top.object && top.afterKey:
			out += ":null"
		}
	}
	var b strings.Builder
	b.WriteString(out)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].object {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// identEnd returns the end of the identifier starting at s[i], or i when
// none starts there. Identifiers may contain any Unicode letter.
func identEnd(s string, i int) int {
	j := i
	for j < len(s) {
		r, size := utf8.DecodeRuneInString(s[j:])
		if r == '_' || r == '$' || unicode.IsLetter(r) || (j > i && unicode.IsDigit(r)) {
			j += size
			continue
		}
		break
	}
	return j
}
