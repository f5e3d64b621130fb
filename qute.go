// Package qute provides an embeddable text template engine with concurrent,
// resolver-driven evaluation.
//
// Templates use single curly braces for markup:
//
//	Hello {name}!
//	{#for item in items}{iter:count}. {item.name}{#if iter:hasNext}, {/if}{/for}
//
// # Basic Usage
//
// Create an engine, parse a template and render it against any data value:
//
//	engine := qute.MustNew()
//	tmpl, err := engine.Parse("Hello {name}!")
//	out, err := tmpl.Render(ctx, map[string]any{"name": "Lu"})
//	// out: "Hello Lu!"
//
// # Template Syntax
//
// Expression tags reference data through a chain of parts, optionally
// prefixed by a namespace:
//
//	{item.name}   {list[0]}   {map.get('key')}   {data:user.email}   {name or 'anonymous'}
//
// Sections drive control flow:
//
//	{#if user.active}...{:else if user.invited}...{:else}...{/if}
//	{#if count gt 10}many{/if}
//	{#each items}{it.name}{/each}
//	{#with user}{name}{/with}
//	{#set greeting='Hi'}{greeting}{/set}
//	{#skip}never evaluated: {nothing}{/skip}
//
// Comments are dropped with {! text}. A doubled brace escapes markup:
// {{name}} renders as {name}.
//
// # Resolvers
//
// Values are looked up by an ordered chain of ValueResolvers. The engine ships
// resolvers for maps, slices, structs (exported fields and methods) and the
// Mapper interface; custom resolvers are registered with WithValueResolver:
//
//	upper := qute.Match[string]().AndName("upper").
//	    Resolve(func(ctx context.Context, ec *qute.EvalContext) (any, error) {
//	        return strings.ToUpper(ec.Base.(string)), nil
//	    }).Build()
//	engine := qute.MustNew(qute.WithValueResolver(upper))
//
// Namespaces are served by NamespaceResolvers:
//
//	cfg := qute.NewNamespaceResolver("cfg", func(ctx context.Context, ec *qute.EvalContext) (any, error) {
//	    return settings[ec.Name], nil
//	})
//
// # Concurrency
//
// Sibling nodes of a block, loop iterations, set parameters and if operands are
// resolved concurrently. Output always follows document and element order.
// Parsed templates are immutable and safe for concurrent renders.
package qute

import "github.com/itsatony/go-qute/internal"

// Expression is an immutable parsed value reference such as "item.name" or "data:user".
type Expression = internal.Expression

// Parameter describes one declared section parameter.
type Parameter = internal.Parameter

// ParamSchema holds the declared parameters of a section per block label.
type ParamSchema = internal.ParamSchema

// Position represents a location in the template source.
type Position = internal.Position

// ParseExpression parses raw expression text.
func ParseExpression(value string) *Expression {
	return internal.ParseExpression(value)
}

// NewParamSchema creates an empty parameter schema.
func NewParamSchema() *ParamSchema {
	return internal.NewParamSchema()
}
