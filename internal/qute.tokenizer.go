package internal

import (
	"strings"
)

// literalScanner tracks the literal-aware regions shared by every splitter:
// quoted strings, [...] list literals and (...) call arguments.
// A region suppresses the delimiter meaning of separators and spaces.
type literalScanner struct {
	quote  byte // opening quote of the current string literal, 0 when outside
	lists  int
	parens int
}

// observe updates the region state for c and reports whether c is
// structural (i.e. outside of any string literal).
func (s *literalScanner) observe(c byte) bool {
	if s.quote != 0 {
		if c == s.quote {
			s.quote = 0
		}
		return false
	}
	switch c {
	case CharDoubleQuote, CharSingleQuote:
		s.quote = c
		return false
	case CharListStart:
		s.lists++
	case CharListEnd:
		if s.lists > 0 {
			s.lists--
		}
	case CharCallStart:
		s.parens++
	case CharCallEnd:
		if s.parens > 0 {
			s.parens--
		}
	}
	return true
}

// inString reports whether the scanner is inside a string literal.
func (s *literalScanner) inString() bool {
	return s.quote != 0
}

// protected reports whether the scanner is inside any non-splitting region.
func (s *literalScanner) protected() bool {
	return s.quote != 0 || s.lists > 0 || s.parens > 0
}

// IsStringLiteralSeparator reports whether c opens or closes a string literal.
func IsStringLiteralSeparator(c byte) bool {
	return c == CharDoubleQuote || c == CharSingleQuote
}

// SplitSectionParams splits the content of a section tag into
// whitespace-separated tokens. String, list and call regions never split.
func SplitSectionParams(content string) ([]string, error) {
	var (
		scanner literalScanner
		parts   []string
		buf     strings.Builder
	)

	for i := 0; i < len(content); i++ {
		c := content[i]
		if isSpace(c) && !scanner.protected() {
			if buf.Len() > 0 {
				parts = append(parts, buf.String())
				buf.Reset()
			}
			continue
		}
		scanner.observe(c)
		buf.WriteByte(c)
	}

	if scanner.inString() || scanner.lists > 0 {
		return nil, &TokenizeError{Message: ErrMsgUnterminatedLiteral, Content: content}
	}
	if buf.Len() > 0 {
		parts = append(parts, buf.String())
	}
	return parts, nil
}

// SplitExpression splits an expression value into its parts.
//
// Separators are '.', '[' and ']'; adjacent separators collapse. The first
// unquoted space outside of a call starts an infix call: "a op b" yields the
// parts "a" and "op(b)". Every further space opens one more call level and
// all levels are closed at the end, e.g. "a op b c" yields "op(b(c))".
func SplitExpression(value string) []string {
	if value == StringValueEmpty {
		return nil
	}

	var (
		scanner   literalScanner
		parts     []string
		buf       strings.Builder
		separator bool
		infix     int
	)

	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, buf.String())
			buf.Reset()
		}
	}

	for i := 0; i < len(value); i++ {
		c := value[i]

		if scanner.inString() {
			scanner.observe(c)
			buf.WriteByte(c)
			separator = false
			continue
		}

		if isExpressionSeparator(c) && infix == 0 && scanner.parens == 0 {
			if !separator {
				flush()
				separator = true
			}
			continue
		}
		separator = false

		if c == CharSpace && scanner.parens == 0 {
			if infix == 0 {
				flush()
			} else {
				buf.WriteByte(CharCallStart)
			}
			infix++
			continue
		}

		scanner.observe(c)
		buf.WriteByte(c)
	}

	if infix > 1 {
		// the first space only marks the boundary; each later one opened a level
		buf.WriteString(strings.Repeat(string(CharCallEnd), infix-1))
	}
	flush()
	return parts
}

// SplitCallParams splits the argument list of a call-shaped part, e.g. the
// "0, 'a,b'" of "get(0, 'a,b')", on commas outside of any literal region.
// Every argument is trimmed.
func SplitCallParams(args string) []string {
	if strings.TrimSpace(args) == StringValueEmpty {
		return nil
	}

	var (
		scanner literalScanner
		params  []string
		buf     strings.Builder
	)
	for i := 0; i < len(args); i++ {
		c := args[i]
		if c == CharComma && !scanner.protected() {
			params = append(params, strings.TrimSpace(buf.String()))
			buf.Reset()
			continue
		}
		scanner.observe(c)
		buf.WriteByte(c)
	}
	params = append(params, strings.TrimSpace(buf.String()))
	return params
}

// SplitCall separates a call-shaped part into its name and raw argument
// list. Parts without a trailing argument list are returned unchanged.
func SplitCall(part string) (string, []string) {
	start := strings.IndexByte(part, CharCallStart)
	if start == -1 || !strings.HasSuffix(part, string(CharCallEnd)) {
		return part, nil
	}
	return part[:start], SplitCallParams(part[start+1 : len(part)-1])
}

// FirstDeterminingEquals returns the index of the '=' that separates a named
// parameter from its value, or -1 if the token is positional. An equals sign
// inside a string literal, at the first or at the last position never counts.
func FirstDeterminingEquals(part string) int {
	inString := false
	for i := 0; i < len(part); i++ {
		c := part[i]
		if IsStringLiteralSeparator(c) {
			if i == 0 {
				return -1
			}
			inString = !inString
			continue
		}
		if !inString && c == CharEquals && i != 0 && i < len(part)-1 {
			return i
		}
	}
	return -1
}

func isExpressionSeparator(c byte) bool {
	return c == CharDot || c == CharListStart || c == CharListEnd
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// TokenizeError is returned when a tag cannot be split into tokens.
type TokenizeError struct {
	Message string
	Content string
}

// Error implements the error interface.
func (e *TokenizeError) Error() string {
	return e.Message + ": " + e.Content
}
