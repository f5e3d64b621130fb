package internal

// Delimiter and tag command characters
const (
	CharStartDelim   = '{'
	CharEndDelim     = '}'
	CharSection      = '#'
	CharSectionBlock = ':'
	CharSectionEnd   = '/'
	CharComment      = '!'
)

// Tokenizer characters
const (
	CharDoubleQuote  = '"'
	CharSingleQuote  = '\''
	CharListStart    = '['
	CharListEnd      = ']'
	CharCallStart    = '('
	CharCallEnd      = ')'
	CharDot          = '.'
	CharSpace        = ' '
	CharEquals       = '='
	CharComma        = ','
	CharNamespaceSep = ':'
	CharNewline      = '\n'
)

// Block and section names
const (
	// BlockMain is the label and id of the first block of every section.
	BlockMain = "main"
	// RootHelperName is the helper name of the synthetic section wrapping a whole template.
	RootHelperName = "$root"
)

// Literal keywords and suffixes
const (
	LiteralTrue   = "true"
	LiteralFalse  = "false"
	LiteralNull   = "null"
	SuffixLong    = 'L'
	SuffixDouble  = 'd'
	SuffixDoubleU = 'D'
	SuffixFloat   = 'f'
	SuffixFloatU  = 'F'
)

// Parser state names
const (
	StateNameText         = "TEXT"
	StateNameTagCandidate = "TAG_CANDIDATE"
	StateNameTagInside    = "TAG_INSIDE"
)

// Log message constants
const (
	LogMsgParserCreated  = "parser created"
	LogMsgParserStart    = "starting parse"
	LogMsgParserEnd      = "parse complete"
	LogMsgSectionPushed  = "section opened"
	LogMsgSectionPopped  = "section closed"
	LogMsgSectionIgnored = "section in ignored content dropped"
	LogMsgBlockStarted   = "section block started"
	LogMsgTooManyParams  = "too many section params, extra tokens dropped"
	LogMsgCommentSkipped = "comment tag skipped"
)

// Log field names
const (
	LogFieldSource     = "source_length"
	LogFieldHelper     = "helper"
	LogFieldLabel      = "label"
	LogFieldLine       = "line"
	LogFieldColumn     = "column"
	LogFieldParams     = "params"
	LogFieldSchema     = "schema"
	LogFieldNodes      = "node_count"
	LogFieldExpression = "expression"
)

// Parse error messages
const (
	ErrMsgUnterminatedTag     = "unexpected non-text buffer at end of input (probably unterminated tag)"
	ErrMsgUnclosedSection     = "unclosed section"
	ErrMsgNoHelperName        = "no section helper name"
	ErrMsgUnknownHelper       = "no section helper registered for"
	ErrMsgNoBlockLabel        = "no label for section block"
	ErrMsgMismatchedEnd       = "section end tag does not match the start tag"
	ErrMsgUnterminatedLiteral = "unterminated string or list literal"
	ErrMsgMissingParams       = "missing required section params"
	ErrMsgBlockOutsideSection = "section block outside of a section"
	ErrMsgUnexpectedEnd       = "section end tag without an open section"
)

// Error format strings
const (
	ErrFmtWithDetail = "%s: %s"
	ErrFmtMismatched = "start: %s, end: %s"
	ErrFmtPosition   = "%s at line %d, column %d"
)

// StringValueEmpty is the empty string constant used for comparisons.
const StringValueEmpty = ""
