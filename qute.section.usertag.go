package qute

import (
	"context"
	"slices"
)

// UserTagSectionFactory renders another template as a tag. Tag parameters
// are evaluated and become the data of the tag template; a lone positional
// parameter is bound to "it":
//
//	{#card title=item.name /}
//	{#card item /}
type UserTagSectionFactory struct {
	name       string
	templateID string
}

// NewUserTagSectionFactory creates a tag named name rendering templateID.
func NewUserTagSectionFactory(name, templateID string) *UserTagSectionFactory {
	return &UserTagSectionFactory{name: name, templateID: templateID}
}

// DefaultAliases implements SectionHelperFactory.
func (f *UserTagSectionFactory) DefaultAliases() []string {
	return []string{f.name}
}

// Parameters implements SectionHelperFactory.
func (f *UserTagSectionFactory) Parameters() *ParamSchema {
	return NewParamSchema().Add(BlockMain, Parameter{Name: ParamIt, Optional: true})
}

// Initialize implements SectionHelperFactory.
func (f *UserTagSectionFactory) Initialize(ic *SectionInitContext) (SectionHelper, error) {
	params := ic.MainBlock().Params
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)

	tag := &userTagSection{engine: ic.Engine(), templateID: f.templateID}
	for _, name := range names {
		tag.names = append(tag.names, name)
		tag.values = append(tag.values, ic.ParseExpression(params[name]))
	}
	return tag, nil
}

type userTagSection struct {
	engine     *Engine
	templateID string
	names      []string
	values     []*Expression
}

func (s *userTagSection) Resolve(ctx context.Context, sc *SectionResolutionContext) (ResultNode, error) {
	values, err := evaluateAll(ctx, sc.Context(), s.values)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.engine.GetTemplate(ctx, s.templateID)
	if err != nil {
		return nil, err
	}

	data := make(map[string]any, len(s.names))
	for i, name := range s.names {
		data[name] = values[i]
	}
	return executeNodes(ctx, tmpl.root.nodes, sc.Context().CreateChild(data, nil))
}
