package qute

import (
	"context"
)

// WithSectionFactory creates the with section, which resolves an object once
// and makes it the current data of its body:
//
//	{#with item.parent}{name}{/with}
//	{#with item.parent as p}{p.name}{/with}
type WithSectionFactory struct{}

// DefaultAliases implements SectionHelperFactory.
func (WithSectionFactory) DefaultAliases() []string {
	return []string{SectionWith}
}

// Parameters implements SectionHelperFactory.
func (WithSectionFactory) Parameters() *ParamSchema {
	return NewParamSchema().
		Add(BlockMain, Parameter{Name: ParamObject}).
		Add(BlockMain, Parameter{Name: ParamAs, HasDefault: true}).
		Add(BlockMain, Parameter{Name: ParamAlias, Optional: true})
}

// Initialize implements SectionHelperFactory.
func (WithSectionFactory) Initialize(ic *SectionInitContext) (SectionHelper, error) {
	object, _ := ic.Param(ParamObject)
	alias, _ := ic.Param(ParamAlias)
	if alias != "" && !isSimpleName(alias) {
		return nil, NewInvalidAliasError(alias)
	}
	return &withSection{
		object: ic.ParseExpression(object),
		alias:  alias,
		body:   ic.MainBlock(),
	}, nil
}

type withSection struct {
	object *Expression
	alias  string
	body   *SectionBlock
}

func (s *withSection) Resolve(ctx context.Context, sc *SectionResolutionContext) (ResultNode, error) {
	v, err := sc.Context().Evaluate(ctx, s.object)
	if err != nil {
		return nil, err
	}
	if s.alias == "" {
		return sc.Execute(ctx, s.body, sc.Context().CreateChild(v, nil))
	}
	child := sc.Context().CreateChild(map[string]any{s.alias: v}, []NamespaceResolver{
		&aliasResolver{alias: s.alias, value: v},
	})
	return sc.Execute(ctx, s.body, child)
}
