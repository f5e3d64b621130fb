package qute

import (
	"context"

	"go.uber.org/zap"

	"github.com/itsatony/go-qute/internal"
)

// Evaluator resolves expressions against a resolution context through an
// ordered chain of value resolvers.
type Evaluator struct {
	resolvers []ValueResolver
	logger    *zap.Logger
}

// NewEvaluator creates an evaluator. Resolvers are ordered by priority,
// highest first; equal priorities keep the given order.
func NewEvaluator(resolvers []ValueResolver, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		resolvers: sortResolvers(resolvers),
		logger:    logger,
	}
}

// Resolvers returns the ordered resolver chain.
func (e *Evaluator) Resolvers() []ValueResolver {
	out := make([]ValueResolver, len(e.resolvers))
	copy(out, e.resolvers)
	return out
}

// Evaluate resolves expr in rc.
//
// Literals are returned as is. A namespaced expression resolves its first
// part through the nearest namespace resolver and fails when there is none.
// Otherwise the first part is looked up in the current data and, while the
// chain yields NotFound, in the data of each enclosing scope. The remaining
// parts are resolved left to right against the previous value.
func (e *Evaluator) Evaluate(ctx context.Context, expr *Expression, rc *ResolutionContext) (any, error) {
	if v, ok := expr.Literal(); ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if expr.PartCount() == 0 {
		return NotFound, nil
	}

	if expr.HasNamespace() {
		return e.evaluateNamespaced(ctx, expr, rc)
	}

	first := expr.Part(0)
	base := NotFound
	for scope := rc; scope != nil; scope = scope.parent {
		v, err := e.resolvePart(ctx, scope.data, first, rc)
		if err != nil {
			return nil, err
		}
		if !IsNotFound(v) {
			base = v
			break
		}
	}
	return e.resolveParts(ctx, base, expr, 1, rc)
}

func (e *Evaluator) evaluateNamespaced(ctx context.Context, expr *Expression, rc *ResolutionContext) (any, error) {
	namespace := expr.Namespace()
	resolver := rc.namespaceResolver(namespace)
	if resolver == nil {
		e.logger.Error(LogMsgNamespaceMissing,
			zap.String(LogFieldNamespace, namespace),
			zap.String(LogFieldPart, expr.Original()))
		return nil, NewNamespaceNotFoundError(namespace, expr)
	}
	e.logger.Debug(LogMsgNamespaceFound,
		zap.String(LogFieldNamespace, namespace),
		zap.String(LogFieldResolver, resolverName(resolver)))

	part := expr.Part(0)
	name, params := internal.SplitCall(part)
	base, err := resolver.Resolve(ctx, &EvalContext{Name: name, Params: params, rc: rc})
	if err != nil {
		return nil, NewResolverError(resolverName(resolver), part, err)
	}
	return e.resolveParts(ctx, base, expr, 1, rc)
}

func (e *Evaluator) resolveParts(ctx context.Context, base any, expr *Expression, from int, rc *ResolutionContext) (any, error) {
	for i := from; i < expr.PartCount(); i++ {
		v, err := e.resolvePart(ctx, base, expr.Part(i), rc)
		if err != nil {
			return nil, err
		}
		base = v
	}
	return base, nil
}

func (e *Evaluator) resolvePart(ctx context.Context, base any, part string, rc *ResolutionContext) (any, error) {
	name, params := internal.SplitCall(part)
	return e.resolve(ctx, &EvalContext{Base: base, Name: name, Params: params, rc: rc}, part)
}

// resolve runs the resolver chain for one request.
func (e *Evaluator) resolve(ctx context.Context, ec *EvalContext, part string) (any, error) {
	for _, r := range e.resolvers {
		if !r.AppliesTo(ec) {
			continue
		}
		v, err := r.Resolve(ctx, ec)
		if err != nil {
			return nil, NewResolverError(resolverName(r), part, err)
		}
		if IsNotFound(v) {
			continue
		}
		e.logger.Debug(LogMsgResolverSelected,
			zap.String(LogFieldResolver, resolverName(r)),
			zap.String(LogFieldPart, part))
		return v, nil
	}
	return NotFound, nil
}
