package qute

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

type notFound struct{}

// String renders the sentinel as empty text.
func (notFound) String() string { return "" }

// NotFound is the value a resolver returns when it has nothing for a request.
// It is not an error: the evaluator tries the next resolver, and a NotFound
// that reaches the output renders as empty text.
var NotFound any = notFound{}

// IsNotFound reports whether v is the NotFound sentinel.
func IsNotFound(v any) bool {
	_, ok := v.(notFound)
	return ok
}

// EvalContext is one resolution request: a part Name, with its raw call
// Params, to be resolved against Base.
type EvalContext struct {
	// Base is the value the part is resolved against. It is nil for the first
	// part of a namespaced expression.
	Base any
	// Name is the part name without its argument list.
	Name string
	// Params holds the raw call arguments, e.g. ["0"] for get(0).
	Params []string

	rc *ResolutionContext
}

// Context returns the resolution context the expression is evaluated in.
func (ec *EvalContext) Context() *ResolutionContext {
	return ec.rc
}

// Evaluate evaluates raw expression text against the enclosing context.
func (ec *EvalContext) Evaluate(ctx context.Context, raw string) (any, error) {
	return ec.rc.EvaluateString(ctx, raw)
}

// EvaluateParam evaluates the i-th call parameter against the enclosing context.
func (ec *EvalContext) EvaluateParam(ctx context.Context, i int) (any, error) {
	if i < 0 || i >= len(ec.Params) {
		return nil, NewParamIndexError(ec.Name, i)
	}
	return ec.rc.EvaluateString(ctx, ec.Params[i])
}

// EvaluateParams evaluates all call parameters concurrently.
func (ec *EvalContext) EvaluateParams(ctx context.Context) ([]any, error) {
	values := make([]any, len(ec.Params))
	g, gctx := errgroup.WithContext(ctx)
	for i, raw := range ec.Params {
		g.Go(func() error {
			v, err := ec.rc.EvaluateString(gctx, raw)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

// ResolveFunc resolves one request.
type ResolveFunc func(ctx context.Context, ec *EvalContext) (any, error)

// ValueResolver resolves one part of a property chain against a base value.
// Resolvers are tried in priority order; a resolver is skipped unless
// AppliesTo holds, and returning NotFound passes the request on.
type ValueResolver interface {
	Priority() int
	AppliesTo(ec *EvalContext) bool
	Resolve(ctx context.Context, ec *EvalContext) (any, error)
}

// NamespaceResolver resolves the first part of a namespaced expression.
type NamespaceResolver interface {
	Namespace() string
	Resolve(ctx context.Context, ec *EvalContext) (any, error)
}

// Named is implemented by resolvers that report a name in logs and errors.
type Named interface {
	Name() string
}

func resolverName(r any) string {
	if n, ok := r.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", r)
}

// sortResolvers orders by priority, highest first. Equal priorities keep
// registration order.
func sortResolvers(resolvers []ValueResolver) []ValueResolver {
	sorted := slices.Clone(resolvers)
	slices.SortStableFunc(sorted, func(a, b ValueResolver) int {
		return b.Priority() - a.Priority()
	})
	return sorted
}

// ResolverBuilder builds a ValueResolver from predicates and a function.
type ResolverBuilder struct {
	name      string
	priority  int
	appliesTo []func(*EvalContext) bool
	resolve   ResolveFunc
}

// NewResolver starts a resolver that applies to every request.
func NewResolver() *ResolverBuilder {
	return &ResolverBuilder{name: ResolverNameCustom, priority: DefaultResolverPriority}
}

// Match starts a resolver that applies when the base value is a T.
func Match[T any]() *ResolverBuilder {
	return NewResolver().AndAppliesTo(func(ec *EvalContext) bool {
		_, ok := ec.Base.(T)
		return ok
	})
}

// AndName restricts the resolver to requests for one of names.
func (b *ResolverBuilder) AndName(names ...string) *ResolverBuilder {
	return b.AndAppliesTo(func(ec *EvalContext) bool {
		return slices.Contains(names, ec.Name)
	})
}

// AndParamCount restricts the resolver to requests with exactly n call parameters.
func (b *ResolverBuilder) AndParamCount(n int) *ResolverBuilder {
	return b.AndAppliesTo(func(ec *EvalContext) bool {
		return len(ec.Params) == n
	})
}

// AndAppliesTo adds a custom predicate.
func (b *ResolverBuilder) AndAppliesTo(fn func(*EvalContext) bool) *ResolverBuilder {
	b.appliesTo = append(b.appliesTo, fn)
	return b
}

// Named sets the name reported in logs and errors.
func (b *ResolverBuilder) Named(name string) *ResolverBuilder {
	b.name = name
	return b
}

// Priority sets the priority. Higher priorities are tried first.
func (b *ResolverBuilder) Priority(priority int) *ResolverBuilder {
	b.priority = priority
	return b
}

// Resolve sets the resolve function.
func (b *ResolverBuilder) Resolve(fn ResolveFunc) *ResolverBuilder {
	b.resolve = fn
	return b
}

// Build returns the resolver. A resolver built without a resolve function
// always yields NotFound.
func (b *ResolverBuilder) Build() ValueResolver {
	return &builtResolver{
		name:      b.name,
		priority:  b.priority,
		appliesTo: slices.Clone(b.appliesTo),
		resolve:   b.resolve,
	}
}

type builtResolver struct {
	name      string
	priority  int
	appliesTo []func(*EvalContext) bool
	resolve   ResolveFunc
}

func (r *builtResolver) Name() string  { return r.name }
func (r *builtResolver) Priority() int { return r.priority }

func (r *builtResolver) AppliesTo(ec *EvalContext) bool {
	for _, fn := range r.appliesTo {
		if !fn(ec) {
			return false
		}
	}
	return true
}

func (r *builtResolver) Resolve(ctx context.Context, ec *EvalContext) (any, error) {
	if r.resolve == nil {
		return NotFound, nil
	}
	return r.resolve(ctx, ec)
}

// NewNamespaceResolver creates a namespace resolver from a function.
func NewNamespaceResolver(namespace string, fn ResolveFunc) NamespaceResolver {
	return &namespaceFunc{namespace: namespace, fn: fn}
}

type namespaceFunc struct {
	namespace string
	fn        ResolveFunc
}

func (r *namespaceFunc) Namespace() string { return r.namespace }
func (r *namespaceFunc) Name() string      { return r.namespace }

func (r *namespaceFunc) Resolve(ctx context.Context, ec *EvalContext) (any, error) {
	return r.fn(ctx, ec)
}
