package qute

import (
	"go.uber.org/zap"

	"github.com/itsatony/go-qute/internal"
)

// expressionSet collects the distinct expressions of a template in order of
// first occurrence.
type expressionSet struct {
	byHash map[uint64][]*Expression
	list   []*Expression
}

func newExpressionSet() *expressionSet {
	return &expressionSet{byHash: make(map[uint64][]*Expression)}
}

func (s *expressionSet) add(expr *Expression) {
	if expr == nil || expr.IsEmpty() {
		return
	}
	h := expr.Hash()
	for _, known := range s.byHash[h] {
		if known.Equal(expr) {
			return
		}
	}
	s.byHash[h] = append(s.byHash[h], expr)
	s.list = append(s.list, expr)
}

// compiler turns the raw section tree into resolvable nodes, initializing
// every section helper once.
type compiler struct {
	engine *Engine
	exprs  *expressionSet
	logger *zap.Logger
}

func (c *compiler) compileRoot(root *internal.SectionNode) (*SectionBlock, error) {
	return c.compileBlock(root.Blocks[0])
}

func (c *compiler) compileBlock(raw *internal.SectionBlock) (*SectionBlock, error) {
	block := &SectionBlock{
		ID:       raw.ID,
		Label:    raw.Label,
		Params:   raw.Params,
		Position: raw.Position,
		nodes:    make([]templateNode, 0, len(raw.Nodes)),
	}
	for _, n := range raw.Nodes {
		node, err := c.compileNode(n)
		if err != nil {
			return nil, err
		}
		block.nodes = append(block.nodes, node)
	}
	return block, nil
}

func (c *compiler) compileNode(n internal.Node) (templateNode, error) {
	switch node := n.(type) {
	case *internal.TextNode:
		return &textNode{text: TextResult(node.Content)}, nil
	case *internal.ExpressionNode:
		c.exprs.add(node.Expr)
		return &expressionNode{expr: node.Expr}, nil
	case *internal.SectionNode:
		return c.compileSection(node)
	}
	return &textNode{}, nil
}

func (c *compiler) compileSection(raw *internal.SectionNode) (templateNode, error) {
	factory, ok := c.engine.sectionFactory(raw.HelperName)
	if !ok {
		// the parser only accepts registered helpers
		return nil, NewSectionInitError(raw.HelperName, raw.Position, NewUnknownSectionError(raw.HelperName))
	}

	blocks := make([]*SectionBlock, 0, len(raw.Blocks))
	for _, b := range raw.Blocks {
		block, err := c.compileBlock(b)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	ic := &SectionInitContext{
		name:     raw.HelperName,
		blocks:   blocks,
		position: raw.Position,
		engine:   c.engine,
		exprs:    c.exprs,
	}
	helper, err := factory.Initialize(ic)
	if err != nil {
		return nil, NewSectionInitError(raw.HelperName, raw.Position, err)
	}

	c.logger.Debug(LogMsgSectionInit,
		zap.String(LogFieldHelper, raw.HelperName),
		zap.Int(LogFieldBlocks, len(blocks)))

	return &sectionNode{
		name:     raw.HelperName,
		helper:   helper,
		blocks:   blocks,
		position: raw.Position,
	}, nil
}
