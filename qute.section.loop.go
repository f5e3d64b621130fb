package qute

import (
	"context"
	"iter"
	"reflect"

	"golang.org/x/sync/errgroup"
)

// LoopSectionFactory creates the for/each section:
//
//	{#for item in items}{iter:count}. {item.name}{/for}
//	{#each items}{it.name}{:else}nothing{/each}
//
// Slices, arrays, maps (as MapEntry values in key order), receive channels
// and iter.Seq[any] sequences can be iterated. The optional else block is
// rendered when there is no element.
type LoopSectionFactory struct{}

// DefaultAliases implements SectionHelperFactory.
func (LoopSectionFactory) DefaultAliases() []string {
	return []string{SectionFor, SectionEach}
}

// Parameters implements SectionHelperFactory.
func (LoopSectionFactory) Parameters() *ParamSchema {
	return NewParamSchema().
		Add(BlockMain, Parameter{Name: ParamAlias, HasDefault: true}).
		Add(BlockMain, Parameter{Name: ParamIn, HasDefault: true}).
		Add(BlockMain, Parameter{Name: ParamIterable, Optional: true})
}

// Initialize implements SectionHelperFactory.
func (LoopSectionFactory) Initialize(ic *SectionInitContext) (SectionHelper, error) {
	alias, _ := ic.Param(ParamAlias)
	if alias == "" {
		alias = DefaultLoopAlias
	}
	if !isSimpleName(alias) {
		return nil, NewInvalidAliasError(alias)
	}

	iterable, ok := ic.Param(ParamIterable)
	if !ok || iterable == "" {
		iterable = NameThis
	}

	s := &loopSection{
		alias:    alias,
		iterable: ic.ParseExpression(iterable),
		body:     ic.MainBlock(),
	}
	for _, b := range ic.Blocks()[1:] {
		if b.Label == BlockElse {
			s.elseBlock = b
		}
	}
	return s, nil
}

type loopSection struct {
	alias     string
	iterable  *Expression
	body      *SectionBlock
	elseBlock *SectionBlock
}

func (s *loopSection) Resolve(ctx context.Context, sc *SectionResolutionContext) (ResultNode, error) {
	v, err := sc.Context().Evaluate(ctx, s.iterable)
	if err != nil {
		return nil, err
	}
	elements, err := collectElements(ctx, v)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		if s.elseBlock != nil {
			return sc.Execute(ctx, s.elseBlock, nil)
		}
		return Noop, nil
	}

	results := make(MultiResult, len(elements))
	g, gctx := errgroup.WithContext(ctx)
	for i, element := range elements {
		meta := &iterationResolver{index: i, hasNext: i < len(elements)-1}
		child := sc.Context().CreateChild(&aliasData{alias: s.alias, value: element, iter: meta}, []NamespaceResolver{
			meta,
			&aliasResolver{alias: s.alias, value: element},
		})
		g.Go(func() error {
			r, err := sc.Execute(gctx, s.body, child)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// collectElements drains an iterable value. Nil and NotFound have no elements.
func collectElements(ctx context.Context, v any) ([]any, error) {
	if v == nil || IsNotFound(v) {
		return nil, nil
	}
	if seq, ok := v.(iter.Seq[any]); ok {
		var out []any
		for e := range seq {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	}

	rv := indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Map:
		keys := sortedMapKeys(rv)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = MapEntry{Key: k.Interface(), Value: rv.MapIndex(k).Interface()}
		}
		return out, nil
	case reflect.Chan:
		if rv.Type().ChanDir()&reflect.RecvDir == 0 {
			break
		}
		return drainChannel(ctx, rv)
	case reflect.Invalid:
		return nil, nil
	}
	return nil, NewNotIterableError(v)
}

func drainChannel(ctx context.Context, ch reflect.Value) ([]any, error) {
	cases := []reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
		{Dir: reflect.SelectRecv, Chan: ch},
	}
	var out []any
	for {
		chosen, v, ok := reflect.Select(cases)
		if chosen == 0 {
			return nil, ctx.Err()
		}
		if !ok {
			return out, nil
		}
		out = append(out, v.Interface())
	}
}

func isSimpleName(name string) bool {
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return name != ""
}

// iterationResolver serves the iter namespace of one loop iteration.
type iterationResolver struct {
	index   int
	hasNext bool
}

func (r *iterationResolver) Namespace() string { return NamespaceIter }
func (r *iterationResolver) Name() string      { return NamespaceIter }

func (r *iterationResolver) Resolve(_ context.Context, ec *EvalContext) (any, error) {
	return r.metadata(ec.Name), nil
}

func (r *iterationResolver) metadata(name string) any {
	switch name {
	case IterCount:
		return r.index + 1
	case IterIndex:
		return r.index
	case IterIndexParity:
		if r.index%2 != 0 {
			return ParityEven
		}
		return ParityOdd
	case IterHasNext:
		return r.hasNext
	case IterIsLast, IterLast:
		return !r.hasNext
	case IterIsOdd, IterOdd:
		return r.index%2 == 0
	case IterIsEven, IterEven:
		return r.index%2 != 0
	}
	return NotFound
}

// aliasResolver exposes a loop element or with object under its alias as a
// namespace, e.g. {item:name}. The part is resolved against the value.
type aliasResolver struct {
	alias string
	value any
}

func (r *aliasResolver) Namespace() string { return r.alias }
func (r *aliasResolver) Name() string      { return r.alias }

func (r *aliasResolver) Resolve(ctx context.Context, ec *EvalContext) (any, error) {
	inner := &EvalContext{Base: r.value, Name: ec.Name, Params: ec.Params, rc: ec.rc}
	return ec.rc.evaluator.resolve(ctx, inner, partString(ec))
}
