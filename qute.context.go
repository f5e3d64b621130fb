package qute

import (
	"context"
)

// ResolutionContext is a scope of a single render: the current data object,
// the namespace resolvers introduced by the scope and a link to the parent
// scope. Contexts form a chain toward the root and are never shared between
// renders.
type ResolutionContext struct {
	data      any
	resolvers []NamespaceResolver
	parent    *ResolutionContext
	evaluator *Evaluator
}

func newRootContext(data any, resolvers []NamespaceResolver, evaluator *Evaluator) *ResolutionContext {
	return &ResolutionContext{
		data:      data,
		resolvers: resolvers,
		evaluator: evaluator,
	}
}

// Data returns the current data object.
func (c *ResolutionContext) Data() any {
	return c.data
}

// Parent returns the enclosing scope, or nil for the root context.
func (c *ResolutionContext) Parent() *ResolutionContext {
	return c.parent
}

// Root returns the outermost scope of the chain.
func (c *ResolutionContext) Root() *ResolutionContext {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// CreateChild creates a nested scope with its own data and namespace resolvers.
func (c *ResolutionContext) CreateChild(data any, resolvers []NamespaceResolver) *ResolutionContext {
	return &ResolutionContext{
		data:      data,
		resolvers: resolvers,
		parent:    c,
		evaluator: c.evaluator,
	}
}

// Evaluate resolves expr in this scope.
func (c *ResolutionContext) Evaluate(ctx context.Context, expr *Expression) (any, error) {
	return c.evaluator.Evaluate(ctx, expr, c)
}

// EvaluateString parses raw as an expression and resolves it in this scope.
func (c *ResolutionContext) EvaluateString(ctx context.Context, raw string) (any, error) {
	return c.evaluator.Evaluate(ctx, ParseExpression(raw), c)
}

// namespaceResolver searches the chain root-ward for a resolver of namespace.
func (c *ResolutionContext) namespaceResolver(namespace string) NamespaceResolver {
	for scope := c; scope != nil; scope = scope.parent {
		for _, r := range scope.resolvers {
			if r.Namespace() == namespace {
				return r
			}
		}
	}
	return nil
}
