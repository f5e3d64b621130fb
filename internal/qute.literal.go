package internal

import (
	"strconv"
	"strings"
)

// ParseLiteral attempts to interpret value as a literal.
// Supported forms: true/false, null, integers (an "L" suffix forces int64),
// decimals (an optional d/D/f/F suffix is accepted) and single or double
// quoted strings. The second result reports whether value was a literal;
// a null literal yields (nil, true).
func ParseLiteral(value string) (any, bool) {
	if value == StringValueEmpty {
		return nil, false
	}

	switch value {
	case LiteralTrue:
		return true, true
	case LiteralFalse:
		return false, true
	case LiteralNull:
		return nil, true
	}

	first := value[0]
	if IsStringLiteralSeparator(first) {
		if len(value) > 1 && value[len(value)-1] == first {
			return value[1 : len(value)-1], true
		}
		return nil, false
	}

	if !isNumberStart(first) {
		return nil, false
	}
	return parseNumber(value)
}

func parseNumber(value string) (any, bool) {
	last := value[len(value)-1]

	if last == SuffixLong {
		n, err := strconv.ParseInt(value[:len(value)-1], 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	}

	if strings.ContainsRune(value, CharDot) || isDecimalSuffix(last) {
		if isDecimalSuffix(last) {
			value = value[:len(value)-1]
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	}

	if n, err := strconv.Atoi(value); err == nil {
		return n, true
	}
	// too large for int
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, true
	}
	return nil, false
}

func isNumberStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+'
}

func isDecimalSuffix(c byte) bool {
	return c == SuffixDouble || c == SuffixDoubleU || c == SuffixFloat || c == SuffixFloatU
}
