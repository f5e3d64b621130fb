package qute

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Operator names accepted by the if section
const (
	OpEq      = "eq"
	OpEqSym   = "=="
	OpIs      = "is"
	OpNe      = "ne"
	OpNeSym   = "!="
	OpGt      = "gt"
	OpGtSym   = ">"
	OpGe      = "ge"
	OpGeSym   = ">="
	OpLt      = "lt"
	OpLtSym   = "<"
	OpLe      = "le"
	OpLeSym   = "<="
	KeywordIf = "if"
)

type operator struct {
	name    string
	compare func(a, b any) (bool, error)
}

var operators = map[string]*operator{}

func init() {
	register := func(op *operator, aliases ...string) {
		for _, alias := range aliases {
			operators[alias] = op
		}
	}
	register(&operator{name: OpEq, compare: func(a, b any) (bool, error) {
		return valueEquals(a, b), nil
	}}, OpEq, OpEqSym, OpIs)
	register(&operator{name: OpNe, compare: func(a, b any) (bool, error) {
		return !valueEquals(a, b), nil
	}}, OpNe, OpNeSym)
	register(relational(OpGt, func(c int) bool { return c > 0 }), OpGt, OpGtSym)
	register(relational(OpGe, func(c int) bool { return c >= 0 }), OpGe, OpGeSym)
	register(relational(OpLt, func(c int) bool { return c < 0 }), OpLt, OpLtSym)
	register(relational(OpLe, func(c int) bool { return c <= 0 }), OpLe, OpLeSym)
}

func relational(name string, test func(int) bool) *operator {
	return &operator{name: name, compare: func(a, b any) (bool, error) {
		da, ok := toDecimal(a)
		if !ok {
			return false, NewNotNumberError(name, a)
		}
		db, ok := toDecimal(b)
		if !ok {
			return false, NewNotNumberError(name, b)
		}
		return test(da.Cmp(db)), nil
	}}
}

// IfSectionFactory creates the if section:
//
//	{#if item.active}...{:else if item.count gt 10}...{:else}...{/if}
type IfSectionFactory struct{}

// DefaultAliases implements SectionHelperFactory.
func (IfSectionFactory) DefaultAliases() []string {
	return []string{SectionIf}
}

// Parameters implements SectionHelperFactory.
func (IfSectionFactory) Parameters() *ParamSchema {
	return NewParamSchema().
		Add(BlockMain, Parameter{Name: ParamCondition}).
		Add(BlockMain, Parameter{Name: ParamOperator, Optional: true}).
		Add(BlockMain, Parameter{Name: ParamOperand, Optional: true}).
		Add(BlockElse, Parameter{Name: ParamIf, Optional: true}).
		Add(BlockElse, Parameter{Name: ParamCondition, Optional: true}).
		Add(BlockElse, Parameter{Name: ParamOperator, Optional: true}).
		Add(BlockElse, Parameter{Name: ParamOperand, Optional: true})
}

// Initialize implements SectionHelperFactory.
func (f IfSectionFactory) Initialize(ic *SectionInitContext) (SectionHelper, error) {
	schema := f.Parameters()
	helper := &ifSection{}
	for _, block := range ic.Blocks() {
		var values []string
		for _, p := range schema.Get(block.Label) {
			if v, ok := block.Params[p.Name]; ok {
				values = append(values, v)
			}
		}
		if block.Label == BlockElse && len(values) > 0 && values[0] == KeywordIf {
			values = values[1:]
		}

		b, err := newIfBlock(ic, block, values)
		if err != nil {
			return nil, err
		}
		helper.blocks = append(helper.blocks, b)
	}
	return helper, nil
}

func newIfBlock(ic *SectionInitContext, block *SectionBlock, values []string) (*ifBlock, error) {
	b := &ifBlock{block: block}
	if len(values) == 0 {
		return b, nil
	}
	b.condition = ic.ParseExpression(values[0])
	if len(values) == 1 {
		return b, nil
	}
	op, ok := operators[values[1]]
	if !ok {
		return nil, NewUnknownOperatorError(values[1])
	}
	if len(values) < 3 {
		return nil, NewMissingOperandError(values[1])
	}
	b.operator = op
	b.operand = ic.ParseExpression(values[2])
	return b, nil
}

type ifBlock struct {
	// condition is nil for a plain else block
	condition *Expression
	operator  *operator
	operand   *Expression
	block     *SectionBlock
}

type ifSection struct {
	blocks []*ifBlock
}

func (s *ifSection) Resolve(ctx context.Context, sc *SectionResolutionContext) (ResultNode, error) {
	for _, b := range s.blocks {
		ok, err := b.test(ctx, sc.Context())
		if err != nil {
			return nil, err
		}
		if ok {
			return sc.Execute(ctx, b.block, nil)
		}
	}
	return Noop, nil
}

func (b *ifBlock) test(ctx context.Context, rc *ResolutionContext) (bool, error) {
	if b.condition == nil {
		return true, nil
	}
	if b.operator == nil {
		v, err := rc.Evaluate(ctx, b.condition)
		if err != nil {
			return false, err
		}
		pass, _ := v.(bool)
		return pass, nil
	}

	var left, right any
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := rc.Evaluate(gctx, b.condition)
		left = v
		return err
	})
	g.Go(func() error {
		v, err := rc.Evaluate(gctx, b.operand)
		right = v
		return err
	})
	if err := g.Wait(); err != nil {
		return false, err
	}
	return b.operator.compare(left, right)
}
