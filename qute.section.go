package qute

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// SectionHelperFactory creates the helper of one section occurrence. The
// engine calls Initialize exactly once per occurrence when a template is
// parsed.
type SectionHelperFactory interface {
	// DefaultAliases returns the names the helper is registered under.
	DefaultAliases() []string
	// Parameters declares the parameters per block label.
	Parameters() *ParamSchema
	// Initialize validates the section and prepares its helper.
	Initialize(ic *SectionInitContext) (SectionHelper, error)
}

// SectionHelper resolves one section occurrence during a render.
type SectionHelper interface {
	Resolve(ctx context.Context, sc *SectionResolutionContext) (ResultNode, error)
}

// SectionBlock is a compiled block of a section: the main block or one of
// its {:label} blocks.
type SectionBlock struct {
	ID       string
	Label    string
	Params   map[string]string
	Position Position

	nodes []templateNode
}

// Param returns the raw value of a block parameter.
func (b *SectionBlock) Param(name string) (string, bool) {
	v, ok := b.Params[name]
	return v, ok
}

// IsEmpty reports whether the block has no content.
func (b *SectionBlock) IsEmpty() bool {
	return len(b.nodes) == 0
}

// templateNode is a compiled node of a block.
type templateNode interface {
	resolve(ctx context.Context, rc *ResolutionContext) (ResultNode, error)
}

type textNode struct {
	text TextResult
}

func (n *textNode) resolve(context.Context, *ResolutionContext) (ResultNode, error) {
	return n.text, nil
}

type expressionNode struct {
	expr *Expression
}

func (n *expressionNode) resolve(ctx context.Context, rc *ResolutionContext) (ResultNode, error) {
	v, err := rc.Evaluate(ctx, n.expr)
	if err != nil {
		return nil, err
	}
	return SingleResult{Value: v}, nil
}

type sectionNode struct {
	name     string
	helper   SectionHelper
	blocks   []*SectionBlock
	position Position
}

func (n *sectionNode) resolve(ctx context.Context, rc *ResolutionContext) (ResultNode, error) {
	return n.helper.Resolve(ctx, &SectionResolutionContext{rc: rc, section: n})
}

// executeNodes resolves sibling nodes concurrently. Results are stored in
// document order regardless of completion order.
func executeNodes(ctx context.Context, nodes []templateNode, rc *ResolutionContext) (ResultNode, error) {
	switch len(nodes) {
	case 0:
		return Noop, nil
	case 1:
		return nodes[0].resolve(ctx, rc)
	}

	results := make(MultiResult, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	for i, node := range nodes {
		if text, ok := node.(*textNode); ok {
			results[i] = text.text
			continue
		}
		g.Go(func() error {
			r, err := node.resolve(gctx, rc)
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

// SectionInitContext gives a factory access to a parsed section.
type SectionInitContext struct {
	name     string
	blocks   []*SectionBlock
	position Position
	engine   *Engine
	exprs    *expressionSet
}

// Name returns the name the section was opened with.
func (ic *SectionInitContext) Name() string {
	return ic.name
}

// Blocks returns the blocks in document order. The first one is the main block.
func (ic *SectionInitContext) Blocks() []*SectionBlock {
	return ic.blocks
}

// MainBlock returns the first block.
func (ic *SectionInitContext) MainBlock() *SectionBlock {
	return ic.blocks[0]
}

// Param returns a raw parameter of the main block.
func (ic *SectionInitContext) Param(name string) (string, bool) {
	return ic.MainBlock().Param(name)
}

// Position returns the location of the section start tag.
func (ic *SectionInitContext) Position() Position {
	return ic.position
}

// Engine returns the engine parsing the template.
func (ic *SectionInitContext) Engine() *Engine {
	return ic.engine
}

// ParseExpression parses raw and records it in the expression set of the template.
func (ic *SectionInitContext) ParseExpression(raw string) *Expression {
	expr := ParseExpression(raw)
	ic.exprs.add(expr)
	return expr
}

// SectionResolutionContext is handed to a helper for one resolution of its section.
type SectionResolutionContext struct {
	rc      *ResolutionContext
	section *sectionNode
}

// Context returns the resolution context the section is resolved in.
func (sc *SectionResolutionContext) Context() *ResolutionContext {
	return sc.rc
}

// Blocks returns the blocks of the section.
func (sc *SectionResolutionContext) Blocks() []*SectionBlock {
	return sc.section.blocks
}

// Execute resolves the nodes of block in rc, or in the section's own
// context when rc is nil.
func (sc *SectionResolutionContext) Execute(ctx context.Context, block *SectionBlock, rc *ResolutionContext) (ResultNode, error) {
	if rc == nil {
		rc = sc.rc
	}
	return executeNodes(ctx, block.nodes, rc)
}
