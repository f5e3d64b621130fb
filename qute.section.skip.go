package qute

import "context"

// SkipSectionFactory creates the skip section. Its body is parsed but never
// resolved.
type SkipSectionFactory struct{}

// DefaultAliases implements SectionHelperFactory.
func (SkipSectionFactory) DefaultAliases() []string {
	return []string{SectionSkip}
}

// Parameters implements SectionHelperFactory.
func (SkipSectionFactory) Parameters() *ParamSchema {
	return NewParamSchema()
}

// Initialize implements SectionHelperFactory.
func (SkipSectionFactory) Initialize(*SectionInitContext) (SectionHelper, error) {
	return skipSection{}, nil
}

type skipSection struct{}

func (skipSection) Resolve(context.Context, *SectionResolutionContext) (ResultNode, error) {
	return Noop, nil
}
