package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExpression(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		namespace string
		parts     []string
		literal   any
		isLiteral bool
	}{
		{name: "simple", value: "name", parts: []string{"name"}},
		{name: "dotted", value: "item.name", parts: []string{"item", "name"}},
		{name: "namespace", value: "data:user.name", namespace: "data", parts: []string{"user", "name"}},
		{name: "iter namespace", value: "iter:count", namespace: "iter", parts: []string{"count"}},
		{name: "colon after space is no namespace", value: "a eq 'b:c'", parts: []string{"a", "eq('b:c')"}},
		{name: "colon in call is no namespace", value: "map.get(a:b)", parts: []string{"map", "get(a:b)"}},
		{name: "quoted colon is a literal", value: "'a:b'", parts: []string{"'a:b'"}, literal: "a:b", isLiteral: true},
		{name: "int literal", value: "42", parts: []string{"42"}, literal: 42, isLiteral: true},
		{name: "bool literal", value: "true", parts: []string{"true"}, literal: true, isLiteral: true},
		{name: "namespaced literal-like part", value: "ns:true", namespace: "ns", parts: []string{"true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := ParseExpression(tt.value)
			assert.Equal(t, tt.namespace, expr.Namespace())
			assert.Equal(t, tt.namespace != "", expr.HasNamespace())
			assert.Equal(t, tt.parts, expr.Parts())
			literal, ok := expr.Literal()
			assert.Equal(t, tt.isLiteral, ok)
			assert.Equal(t, tt.literal, literal)
		})
	}
}

func TestParseExpression_Empty(t *testing.T) {
	expr := ParseExpression("")
	assert.Same(t, EmptyExpression(), expr)
	assert.True(t, expr.IsEmpty())
	assert.Equal(t, 0, expr.PartCount())
	assert.False(t, ParseExpression("null").IsEmpty())
}

func TestExpression_EqualAndHash(t *testing.T) {
	a := ParseExpression("item.name")
	b := ParseExpression("item.name")
	c := ParseExpression("data:item.name")
	d := ParseExpression("item[name]")

	assert.NotSame(t, a, b)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Hash(), c.Hash())

	// bracket and dot notation produce the same parts
	assert.True(t, a.Equal(d))
	assert.False(t, a.Equal(nil))

	assert.True(t, ParseExpression("'x'").Equal(SingleExpression("'x'")))
	assert.False(t, ParseExpression("1").Equal(ParseExpression("1L")))
}

func TestExpression_Original(t *testing.T) {
	assert.Equal(t, "{data:user.name}", ParseExpression("data:user.name").Original())
	assert.Equal(t, "{item.name}", ParseExpression("item[name]").Original())
	assert.Contains(t, ParseExpression("ns:a").String(), "namespace=ns")
}

func TestExpression_PartsIsACopy(t *testing.T) {
	expr := ParseExpression("a.b")
	parts := expr.Parts()
	parts[0] = "changed"
	assert.Equal(t, "a", expr.Part(0))
}

func TestSingleExpression(t *testing.T) {
	expr := SingleExpression("item")
	assert.Equal(t, []string{"item"}, expr.Parts())
	assert.False(t, expr.IsLiteral())
	assert.True(t, SingleExpression("").IsEmpty())
}
