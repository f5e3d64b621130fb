package internal

import "fmt"

// Position represents a location in the template source.
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string.
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Node is a node of the parsed section tree.
type Node interface {
	Pos() Position
}

// TextNode holds static text.
type TextNode struct {
	Content  string
	Position Position
}

// Pos returns the node position.
func (n *TextNode) Pos() Position { return n.Position }

// ExpressionNode holds a single value expression tag such as {item.name}.
type ExpressionNode struct {
	Raw      string
	Expr     *Expression
	Position Position
}

// Pos returns the node position.
func (n *ExpressionNode) Pos() Position { return n.Position }

// SectionNode is one parsed {#helper ...}...{/helper} construct.
type SectionNode struct {
	HelperName string
	Blocks     []*SectionBlock
	Position   Position
}

// Pos returns the node position.
func (n *SectionNode) Pos() Position { return n.Position }

// SectionBlock is a named fragment of a section: the main block or a
// {:label} continuation block.
type SectionBlock struct {
	ID       string
	Label    string
	Params   map[string]string
	Nodes    []Node
	Position Position
}

// ParseError describes malformed template markup.
type ParseError struct {
	Message  string
	Detail   string
	Position Position
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Message
	if e.Detail != StringValueEmpty {
		msg = fmt.Sprintf(ErrFmtWithDetail, e.Message, e.Detail)
	}
	if e.Position.Line > 0 {
		return fmt.Sprintf(ErrFmtPosition, msg, e.Position.Line, e.Position.Column)
	}
	return msg
}

func newParseError(msg, detail string, pos Position) *ParseError {
	return &ParseError{Message: msg, Detail: detail, Position: pos}
}
