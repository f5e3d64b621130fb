package internal

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zeebo/xxh3"
)

// Expression is an immutable parsed value reference such as "item.name",
// "data:user", "list.get(0)" or a literal like 'foo' or 42.
type Expression struct {
	namespace  string
	parts      []string
	literal    any
	hasLiteral bool
}

// emptyExpression is the canonical empty expression.
var emptyExpression = &Expression{}

// EmptyExpression returns the canonical empty expression.
func EmptyExpression() *Expression {
	return emptyExpression
}

// ParseExpression parses raw expression text.
func ParseExpression(value string) *Expression {
	if value == StringValueEmpty {
		return emptyExpression
	}

	nsIdx := strings.IndexByte(value, CharNamespaceSep)
	spaceIdx := strings.IndexByte(value, CharSpace)
	callIdx := strings.IndexByte(value, CharCallStart)

	if nsIdx != -1 && !IsStringLiteralSeparator(value[0]) && (spaceIdx == -1 || nsIdx < spaceIdx) && (callIdx == -1 || nsIdx < callIdx) {
		return &Expression{
			namespace: value[:nsIdx],
			parts:     SplitExpression(value[nsIdx+1:]),
		}
	}

	expr := &Expression{parts: SplitExpression(value)}
	if len(expr.parts) == 1 {
		expr.literal, expr.hasLiteral = ParseLiteral(expr.parts[0])
	}
	return expr
}

// SingleExpression builds an expression of exactly one part without a namespace.
func SingleExpression(value string) *Expression {
	if value == StringValueEmpty {
		return emptyExpression
	}
	expr := &Expression{parts: []string{value}}
	expr.literal, expr.hasLiteral = ParseLiteral(value)
	return expr
}

// Namespace returns the namespace, or "" if there is none.
func (e *Expression) Namespace() string {
	return e.namespace
}

// HasNamespace reports whether the expression starts with a namespace.
func (e *Expression) HasNamespace() bool {
	return e.namespace != StringValueEmpty
}

// Parts returns a copy of the reference chain.
func (e *Expression) Parts() []string {
	out := make([]string, len(e.parts))
	copy(out, e.parts)
	return out
}

// PartCount returns the number of parts.
func (e *Expression) PartCount() int {
	return len(e.parts)
}

// Part returns the i-th part.
func (e *Expression) Part(i int) string {
	return e.parts[i]
}

// Literal returns the literal value and whether the expression is a literal.
func (e *Expression) Literal() (any, bool) {
	return e.literal, e.hasLiteral
}

// IsLiteral reports whether the expression is a compile-time constant.
func (e *Expression) IsLiteral() bool {
	return e.hasLiteral
}

// IsEmpty reports whether this is the empty expression.
func (e *Expression) IsEmpty() bool {
	return e.namespace == StringValueEmpty && len(e.parts) == 0 && !e.hasLiteral
}

// Equal reports structural equality over namespace, parts and literal value.
func (e *Expression) Equal(other *Expression) bool {
	if e == other {
		return true
	}
	if other == nil {
		return false
	}
	if e.namespace != other.namespace || e.hasLiteral != other.hasLiteral {
		return false
	}
	if len(e.parts) != len(other.parts) {
		return false
	}
	for i := range e.parts {
		if e.parts[i] != other.parts[i] {
			return false
		}
	}
	return reflect.DeepEqual(e.literal, other.literal)
}

// Hash returns a hash consistent with Equal.
func (e *Expression) Hash() uint64 {
	var sb strings.Builder
	sb.WriteString(e.namespace)
	sb.WriteByte(0)
	for _, p := range e.parts {
		sb.WriteString(p)
		sb.WriteByte(0)
	}
	if e.hasLiteral {
		fmt.Fprintf(&sb, "%T:%v", e.literal, e.literal)
	}
	return xxh3.HashString(sb.String())
}

// Original renders the expression back into tag form, e.g. "{data:user.name}".
func (e *Expression) Original() string {
	var sb strings.Builder
	sb.WriteByte(CharStartDelim)
	if e.HasNamespace() {
		sb.WriteString(e.namespace)
		sb.WriteByte(CharNamespaceSep)
	}
	sb.WriteString(strings.Join(e.parts, string(CharDot)))
	sb.WriteByte(CharEndDelim)
	return sb.String()
}

// String returns a debug representation.
func (e *Expression) String() string {
	return fmt.Sprintf("Expression[namespace=%s, parts=%v, literal=%v]", e.namespace, e.parts, e.literal)
}
