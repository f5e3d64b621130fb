package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		expected  any
		isLiteral bool
	}{
		{name: "empty", value: "", expected: nil, isLiteral: false},
		{name: "true", value: "true", expected: true, isLiteral: true},
		{name: "false", value: "false", expected: false, isLiteral: true},
		{name: "null", value: "null", expected: nil, isLiteral: true},
		{name: "single quoted", value: "'foo'", expected: "foo", isLiteral: true},
		{name: "double quoted", value: `"foo bar"`, expected: "foo bar", isLiteral: true},
		{name: "empty string", value: "''", expected: "", isLiteral: true},
		{name: "unterminated string", value: "'foo", expected: nil, isLiteral: false},
		{name: "int", value: "42", expected: 42, isLiteral: true},
		{name: "negative int", value: "-3", expected: -3, isLiteral: true},
		{name: "long", value: "10L", expected: int64(10), isLiteral: true},
		{name: "decimal", value: "1.5", expected: 1.5, isLiteral: true},
		{name: "double suffix", value: "2d", expected: 2.0, isLiteral: true},
		{name: "float suffix", value: "2.5F", expected: 2.5, isLiteral: true},
		{name: "identifier", value: "name", expected: nil, isLiteral: false},
		{name: "number-like identifier", value: "1abc", expected: nil, isLiteral: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ParseLiteral(tt.value)
			assert.Equal(t, tt.isLiteral, ok)
			assert.Equal(t, tt.expected, value)
		})
	}
}
