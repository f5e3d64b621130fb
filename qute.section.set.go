package qute

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// SetSectionFactory creates the set section, which binds names for its body:
//
//	{#set greeting='Hello' who=user.name}{greeting} {who}{/set}
//
// All values are evaluated concurrently before the body is resolved.
type SetSectionFactory struct{}

// DefaultAliases implements SectionHelperFactory.
func (SetSectionFactory) DefaultAliases() []string {
	return []string{SectionSet}
}

// Parameters implements SectionHelperFactory.
func (SetSectionFactory) Parameters() *ParamSchema {
	return NewParamSchema()
}

// Initialize implements SectionHelperFactory.
func (SetSectionFactory) Initialize(ic *SectionInitContext) (SectionHelper, error) {
	params := ic.MainBlock().Params
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)

	s := &setSection{body: ic.MainBlock()}
	for _, name := range names {
		s.names = append(s.names, name)
		s.values = append(s.values, ic.ParseExpression(params[name]))
	}
	return s, nil
}

type setSection struct {
	names  []string
	values []*Expression
	body   *SectionBlock
}

func (s *setSection) Resolve(ctx context.Context, sc *SectionResolutionContext) (ResultNode, error) {
	values, err := evaluateAll(ctx, sc.Context(), s.values)
	if err != nil {
		return nil, err
	}
	data := make(map[string]any, len(s.names))
	for i, name := range s.names {
		data[name] = values[i]
	}
	return sc.Execute(ctx, s.body, sc.Context().CreateChild(data, nil))
}

// evaluateAll evaluates expressions concurrently, keeping their order.
func evaluateAll(ctx context.Context, rc *ResolutionContext, exprs []*Expression) ([]any, error) {
	values := make([]any, len(exprs))
	g, gctx := errgroup.WithContext(ctx)
	for i, expr := range exprs {
		g.Go(func() error {
			v, err := rc.Evaluate(gctx, expr)
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
