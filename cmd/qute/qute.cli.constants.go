package main

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameVersion  = "version"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Data file extensions decoded as YAML; everything else is JSON
const (
	ExtYAML = ".yaml"
	ExtYML  = ".yml"
)

// Error messages - ALL must be constants
const (
	ErrMsgUsage               = "invalid usage"
	ErrMsgReadFileFailed      = "failed to read file"
	ErrMsgReadStdinFailed     = "failed to read from stdin"
	ErrMsgInvalidData         = "invalid data"
	ErrMsgConfigFailed        = "invalid configuration"
	ErrMsgSetupFailed         = "failed to set up engine"
	ErrMsgParseTemplateFailed = "template parsing failed"
	ErrMsgRenderFailed        = "template rendering failed"
	ErrMsgWriteOutputFailed   = "failed to write output"
	ErrMsgInvalidTag          = "user tag must be name=template"
	ErrMsgDataConflict        = "--data and --data-file are mutually exclusive"
)

// Output text
const (
	ValidationTextSuccess = "OK"
	VersionTextTemplate   = "qute version %s\nGo: %s\n"
)

// DefaultLogLevel applies when neither flag nor configuration set a level.
const DefaultLogLevel = "warn"

// CLI metadata
const (
	CLIName        = "qute"
	CLIDescription = "Render and validate qute templates"
)

// File permission constant
const (
	FilePermissions = 0o644
)

// Format string constants
const (
	FmtErrorWithCause = "%s: %v\n"
	FmtLine           = "%s\n"
	TagSeparator      = "="
)
