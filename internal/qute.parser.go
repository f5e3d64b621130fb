package internal

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// SchemaLookup returns the parameter schema of the section helper registered
// under name, or false if no helper is registered.
type SchemaLookup func(name string) (*ParamSchema, bool)

type parserState int

const (
	stateText parserState = iota
	stateTagCandidate
	stateTagInside
)

func (s parserState) String() string {
	switch s {
	case stateTagCandidate:
		return StateNameTagCandidate
	case stateTagInside:
		return StateNameTagInside
	default:
		return StateNameText
	}
}

type sectionFrame struct {
	node   *SectionNode
	schema *ParamSchema
	// ignored sections were opened in ignored content; they are parsed and
	// then discarded
	ignored bool
}

// Parser turns template text into a section tree in a single pass over the
// source. A Parser is not reusable.
type Parser struct {
	lookup SchemaLookup
	logger *zap.Logger

	state         parserState
	buf           strings.Builder
	sections      []*sectionFrame
	blocks        []*SectionBlock
	blockIdx      int
	ignoreContent bool
	// escapes counts "{{" sequences still waiting for their "}}"
	escapes int

	line     int
	column   int
	textPos  Position
	tagPos   Position
	position Position
}

// NewParser creates a parser resolving section helper names through lookup.
func NewParser(lookup SchemaLookup, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgParserCreated)

	root := &SectionNode{HelperName: RootHelperName, Position: Position{Line: 1, Column: 1}}
	return &Parser{
		lookup:   lookup,
		logger:   logger,
		state:    stateText,
		sections: []*sectionFrame{{node: root, schema: NewParamSchema()}},
		blocks:   []*SectionBlock{{ID: BlockMain, Label: BlockMain, Params: map[string]string{}}},
		line:     1,
		column:   1,
		textPos:  Position{Line: 1, Column: 1},
	}
}

// Parse processes the whole source and returns the synthetic root section.
func (p *Parser) Parse(source string) (*SectionNode, error) {
	p.logger.Debug(LogMsgParserStart, zap.Int(LogFieldSource, len(source)))

	for i := 0; i < len(source); i++ {
		c := source[i]
		p.position = Position{Offset: i, Line: p.line, Column: p.column}

		var err error
		switch p.state {
		case stateText:
			if c == CharEndDelim && p.escapes > 0 && i+1 < len(source) && source[i+1] == CharEndDelim {
				p.buf.WriteByte(CharEndDelim)
				p.escapes--
				p.advance(c)
				i++
				c = source[i]
			} else {
				p.text(c)
			}
		case stateTagCandidate:
			p.tagCandidate(c)
		case stateTagInside:
			err = p.tag(c)
		}
		if err != nil {
			return nil, err
		}
		p.advance(c)
	}

	if p.state != stateText {
		return nil, newParseError(ErrMsgUnterminatedTag, p.buf.String(), p.tagPos)
	}
	p.flushText()

	if len(p.sections) > 1 {
		open := p.sections[len(p.sections)-1].node
		return nil, newParseError(ErrMsgUnclosedSection, open.HelperName, open.Position)
	}

	root := p.sections[0].node
	root.Blocks = append(root.Blocks, p.blocks[0])

	p.logger.Debug(LogMsgParserEnd, zap.Int(LogFieldNodes, len(p.blocks[0].Nodes)))
	return root, nil
}

func (p *Parser) advance(c byte) {
	if c == CharNewline {
		p.line++
		p.column = 1
		return
	}
	// count runes, not bytes
	if c&0xC0 != 0x80 {
		p.column++
	}
}

func (p *Parser) text(c byte) {
	if c == CharStartDelim {
		p.state = stateTagCandidate
		p.tagPos = p.position
		return
	}
	if p.buf.Len() == 0 {
		p.textPos = p.position
	}
	p.buf.WriteByte(c)
}

func (p *Parser) tagCandidate(c byte) {
	if p.buf.Len() == 0 {
		p.textPos = p.tagPos
	}
	switch {
	case isSpace(c):
		p.buf.WriteByte(CharStartDelim)
		p.buf.WriteByte(c)
		p.state = stateText
	case c == CharStartDelim:
		p.buf.WriteByte(CharStartDelim)
		p.escapes++
		p.state = stateText
	case c == CharEndDelim:
		// "{}" is not a tag
		p.buf.WriteByte(CharStartDelim)
		p.buf.WriteByte(CharEndDelim)
		p.state = stateText
	default:
		p.flushText()
		p.state = stateTagInside
		p.buf.WriteByte(c)
	}
}

func (p *Parser) tag(c byte) error {
	if c == CharEndDelim {
		return p.flushTag()
	}
	p.buf.WriteByte(c)
	return nil
}

func (p *Parser) flushText() {
	if p.buf.Len() > 0 && !p.ignoreContent {
		block := p.currentBlock()
		block.Nodes = append(block.Nodes, &TextNode{Content: p.buf.String(), Position: p.textPos})
	}
	p.buf.Reset()
}

func (p *Parser) flushTag() error {
	p.state = stateText
	content := p.buf.String()
	p.buf.Reset()

	var err error
	switch content[0] {
	case CharSection:
		err = p.sectionStart(content)
	case CharSectionBlock:
		err = p.sectionBlock(content)
	case CharSectionEnd:
		err = p.sectionEnd(content[1:])
	case CharComment:
		p.logger.Debug(LogMsgCommentSkipped, zap.Int(LogFieldLine, p.tagPos.Line))
	default:
		if p.ignoreContent {
			break
		}
		block := p.currentBlock()
		block.Nodes = append(block.Nodes, &ExpressionNode{
			Raw:      content,
			Expr:     ParseExpression(content),
			Position: p.tagPos,
		})
	}
	return err
}

func (p *Parser) sectionStart(content string) error {
	selfClosing := false
	if content[len(content)-1] == CharSectionEnd {
		content = content[:len(content)-1]
		selfClosing = true
	}

	tokens, err := SplitSectionParams(content)
	if err != nil {
		return newParseError(ErrMsgUnterminatedLiteral, content, p.tagPos)
	}
	if len(tokens) == 0 || len(tokens[0]) < 2 {
		return newParseError(ErrMsgNoHelperName, content, p.tagPos)
	}

	name := tokens[0][1:]
	schema, ok := p.lookup(name)
	if !ok {
		return newParseError(ErrMsgUnknownHelper, name, p.tagPos)
	}

	params, err := ProcessParams(BlockMain, tokens[1:], schema, p.logger)
	if err != nil {
		return p.paramsError(err, name)
	}

	main := &SectionBlock{ID: BlockMain, Label: BlockMain, Params: params, Position: p.tagPos}
	section := &SectionNode{HelperName: name, Position: p.tagPos}

	if selfClosing {
		if p.ignoreContent {
			p.logger.Debug(LogMsgSectionIgnored, zap.String(LogFieldHelper, name))
			return nil
		}
		section.Blocks = []*SectionBlock{main}
		parent := p.currentBlock()
		parent.Nodes = append(parent.Nodes, section)
		return nil
	}

	p.sections = append(p.sections, &sectionFrame{node: section, schema: schema, ignored: p.ignoreContent})
	p.blocks = append(p.blocks, main)
	p.ignoreContent = false
	p.logger.Debug(LogMsgSectionPushed,
		zap.String(LogFieldHelper, name),
		zap.Int(LogFieldLine, p.tagPos.Line),
		zap.Int(LogFieldColumn, p.tagPos.Column))
	return nil
}

func (p *Parser) sectionBlock(content string) error {
	if len(p.sections) < 2 {
		return newParseError(ErrMsgBlockOutsideSection, content, p.tagPos)
	}
	frame := p.currentSection()

	if !p.ignoreContent {
		frame.node.Blocks = append(frame.node.Blocks, p.popBlock())
	}

	tokens, err := SplitSectionParams(content)
	if err != nil {
		return newParseError(ErrMsgUnterminatedLiteral, content, p.tagPos)
	}
	if len(tokens) == 0 || len(tokens[0]) < 2 {
		return newParseError(ErrMsgNoBlockLabel, content, p.tagPos)
	}
	label := tokens[0][1:]

	params, err := ProcessParams(label, tokens[1:], frame.schema, p.logger)
	if err != nil {
		return p.paramsError(err, frame.node.HelperName)
	}

	block := &SectionBlock{
		ID:       strconv.Itoa(p.blockIdx),
		Label:    label,
		Params:   params,
		Position: p.tagPos,
	}
	p.blockIdx++
	p.blocks = append(p.blocks, block)
	p.ignoreContent = false

	p.logger.Debug(LogMsgBlockStarted,
		zap.String(LogFieldHelper, frame.node.HelperName),
		zap.String(LogFieldLabel, label))
	return nil
}

func (p *Parser) sectionEnd(name string) error {
	if len(p.sections) < 2 {
		return newParseError(ErrMsgUnexpectedEnd, name, p.tagPos)
	}
	frame := p.currentSection()

	if !p.ignoreContent && name != StringValueEmpty && name != frame.node.HelperName &&
		len(p.blocks) > 1 && p.currentBlock().Label == name {
		// end of a continuation block, the section goes on
		frame.node.Blocks = append(frame.node.Blocks, p.popBlock())
		p.ignoreContent = true
		return nil
	}

	if name != StringValueEmpty && name != frame.node.HelperName {
		return newParseError(ErrMsgMismatchedEnd,
			fmt.Sprintf(ErrFmtMismatched, frame.node.HelperName, name), p.tagPos)
	}

	p.sections = p.sections[:len(p.sections)-1]
	if !p.ignoreContent {
		frame.node.Blocks = append(frame.node.Blocks, p.popBlock())
	}
	p.ignoreContent = frame.ignored
	if frame.ignored {
		p.logger.Debug(LogMsgSectionIgnored, zap.String(LogFieldHelper, frame.node.HelperName))
		return nil
	}

	parent := p.currentBlock()
	parent.Nodes = append(parent.Nodes, frame.node)

	p.logger.Debug(LogMsgSectionPopped, zap.String(LogFieldHelper, frame.node.HelperName))
	return nil
}

func (p *Parser) paramsError(err error, helper string) error {
	if te, ok := err.(*TokenizeError); ok {
		return newParseError(te.Message, helper+": "+te.Content, p.tagPos)
	}
	return newParseError(err.Error(), helper, p.tagPos)
}

func (p *Parser) currentBlock() *SectionBlock {
	return p.blocks[len(p.blocks)-1]
}

func (p *Parser) popBlock() *SectionBlock {
	block := p.blocks[len(p.blocks)-1]
	p.blocks = p.blocks[:len(p.blocks)-1]
	return block
}

func (p *Parser) currentSection() *sectionFrame {
	return p.sections[len(p.sections)-1]
}
