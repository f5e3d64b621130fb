package qute

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/itsatony/go-cuserr"

	"github.com/itsatony/go-qute/internal"
)

// Error message constants
const (
	// Parse errors
	ErrMsgParseFailed       = "template parsing failed"
	ErrMsgSectionInitFailed = "section helper initialization failed"
	ErrMsgUnknownOperator   = "unknown operator"
	ErrMsgMissingOperand    = "operator requires an operand"
	ErrMsgInvalidAlias      = "invalid alias"

	// Resolution errors
	ErrMsgNamespaceNotFound = "no resolver for namespace"
	ErrMsgResolverFailed    = "value resolver failed"
	ErrMsgNotNumber         = "value is not a number"
	ErrMsgNotIterable       = "cannot iterate over value"
	ErrMsgParamIndex        = "call parameter index out of range"

	// Render errors
	ErrMsgRenderFailed  = "template rendering failed"
	ErrMsgRenderTimeout = "template rendering timed out"

	// Engine errors
	ErrMsgTemplateNotFound = "template not found"
	ErrMsgEmptyTemplateID  = "template id cannot be empty"
	ErrMsgLocatorFailed    = "template locator failed"
	ErrMsgNilFactory       = "section helper factory is nil"
	ErrMsgUnknownSection   = "no section helper registered for"

	// Config errors
	ErrMsgConfigRead    = "failed to read configuration file"
	ErrMsgConfigParse   = "failed to parse configuration"
	ErrMsgConfigInvalid = "invalid configuration"
	ErrMsgStorageOpen   = "failed to open template storage"
)

// Configuration validation reasons
const (
	ErrReasonNegative      = "must not be negative"
	ErrReasonRequired      = "is required"
	ErrReasonUnknownDriver = "unknown storage driver"
	ErrReasonSuffixDot     = "suffix must start with a dot"
)

// Error format strings
const (
	ErrFmtDetail = "%s: %s"
	ErrFmtPair   = "%s: %s (%s)"
)

// Error code constants for categorization
const (
	ErrCodeParse   = "QUTE_PARSE"
	ErrCodeResolve = "QUTE_RESOLVE"
	ErrCodeRender  = "QUTE_RENDER"
	ErrCodeEngine  = "QUTE_ENGINE"
	ErrCodeStorage = "QUTE_STORAGE"
	ErrCodeConfig  = "QUTE_CONFIG"
)

// ErrTemplateNotFound is wrapped by every error reporting an unknown template id.
var ErrTemplateNotFound = errors.New(ErrMsgTemplateNotFound)

// NewParseError wraps a structural parse failure. The cause text is
// appended by the wrapper; position metadata is attached when the cause
// carries one.
func NewParseError(cause error) error {
	err := cuserr.WrapStdError(cause, ErrCodeParse, ErrMsgParseFailed)

	var pe *internal.ParseError
	if errors.As(cause, &pe) {
		err = err.
			WithMetadata(MetaKeyLine, strconv.Itoa(pe.Position.Line)).
			WithMetadata(MetaKeyColumn, strconv.Itoa(pe.Position.Column)).
			WithMetadata(MetaKeyOffset, strconv.Itoa(pe.Position.Offset))
	}
	return err
}

// NewSectionInitError reports a section helper that rejected its blocks or parameters.
func NewSectionInitError(helper string, pos Position, cause error) error {
	msg := fmt.Sprintf(ErrFmtDetail, ErrMsgSectionInitFailed, helper)
	return cuserr.WrapStdError(cause, ErrCodeParse, msg).
		WithMetadata(MetaKeyHelper, helper).
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column))
}

// NewUnknownSectionError creates an error for a section name without a factory.
func NewUnknownSectionError(name string) error {
	return cuserr.NewValidationError(ErrCodeParse, fmt.Sprintf(ErrFmtDetail, ErrMsgUnknownSection, name)).
		WithMetadata(MetaKeyHelper, name)
}

// NewUnknownOperatorError creates an error for an unsupported if operator.
func NewUnknownOperatorError(operator string) error {
	return cuserr.NewValidationError(ErrCodeParse, fmt.Sprintf(ErrFmtDetail, ErrMsgUnknownOperator, operator)).
		WithMetadata(MetaKeyOperator, operator)
}

// NewMissingOperandError creates an error for an operator without operand.
func NewMissingOperandError(operator string) error {
	return cuserr.NewValidationError(ErrCodeParse, fmt.Sprintf(ErrFmtDetail, ErrMsgMissingOperand, operator)).
		WithMetadata(MetaKeyOperator, operator)
}

// NewInvalidAliasError creates an error for an alias that is not a simple name.
func NewInvalidAliasError(alias string) error {
	return cuserr.NewValidationError(ErrCodeParse, fmt.Sprintf(ErrFmtDetail, ErrMsgInvalidAlias, alias)).
		WithMetadata(MetaKeyValue, alias)
}

// NewNamespaceNotFoundError creates an error for an expression whose
// namespace has no resolver anywhere in the context chain.
func NewNamespaceNotFoundError(namespace string, expr *Expression) error {
	return cuserr.NewValidationError(ErrCodeResolve, fmt.Sprintf(ErrFmtDetail, ErrMsgNamespaceNotFound, namespace)).
		WithMetadata(MetaKeyNamespace, namespace).
		WithMetadata(MetaKeyExpression, expr.Original())
}

// NewResolverError wraps a failure returned by a value or namespace resolver.
func NewResolverError(resolver, part string, cause error) error {
	msg := fmt.Sprintf(ErrFmtPair, ErrMsgResolverFailed, part, resolver)
	return cuserr.WrapStdError(cause, ErrCodeResolve, msg).
		WithMetadata(MetaKeyResolver, resolver).
		WithMetadata(MetaKeyPart, part)
}

// NewNotNumberError creates an error for a relational operand that cannot be
// coerced to a decimal number.
func NewNotNumberError(operator string, value any) error {
	return cuserr.NewValidationError(ErrCodeResolve, fmt.Sprintf(ErrFmtDetail, ErrMsgNotNumber, fmt.Sprint(value))).
		WithMetadata(MetaKeyOperator, operator).
		WithMetadata(MetaKeyValue, fmt.Sprint(value)).
		WithMetadata(MetaKeyType, fmt.Sprintf("%T", value))
}

// NewNotIterableError creates an error for a loop over a non-iterable value.
func NewNotIterableError(value any) error {
	typeName := fmt.Sprintf("%T", value)
	return cuserr.NewValidationError(ErrCodeResolve, fmt.Sprintf(ErrFmtDetail, ErrMsgNotIterable, typeName)).
		WithMetadata(MetaKeyType, typeName)
}

// NewParamIndexError creates an error for a call parameter that was not supplied.
func NewParamIndexError(name string, index int) error {
	return cuserr.NewValidationError(ErrCodeResolve, fmt.Sprintf(ErrFmtDetail, ErrMsgParamIndex, name)).
		WithMetadata(MetaKeyPart, name).
		WithMetadata(MetaKeyValue, strconv.Itoa(index))
}

// NewRenderError wraps a failure that aborted a render.
func NewRenderError(templateID string, cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return cuserr.WrapStdError(cause, ErrCodeRender, ErrMsgRenderTimeout).
			WithMetadata(MetaKeyTemplateID, templateID)
	}
	return cuserr.WrapStdError(cause, ErrCodeRender, ErrMsgRenderFailed).
		WithMetadata(MetaKeyTemplateID, templateID)
}

// NewRenderTimeoutError creates an error for a render exceeding its timeout.
func NewRenderTimeoutError(templateID string, timeout time.Duration) error {
	return cuserr.WrapStdError(context.DeadlineExceeded, ErrCodeRender, ErrMsgRenderTimeout).
		WithMetadata(MetaKeyTemplateID, templateID).
		WithMetadata(MetaKeyTimeout, timeout.String())
}

// NewTemplateNotFoundError creates an error for an id no locator could provide.
func NewTemplateNotFoundError(id string) error {
	return cuserr.WrapStdError(ErrTemplateNotFound, ErrCodeEngine, fmt.Sprintf(ErrFmtDetail, ErrMsgTemplateNotFound, id)).
		WithMetadata(MetaKeyTemplateID, id)
}

// NewEngineConfigError creates an error for an invalid engine option.
func NewEngineConfigError(reason string) error {
	return cuserr.NewValidationError(ErrCodeEngine, reason)
}

// NewEmptyTemplateIDError creates an error for an empty template id.
func NewEmptyTemplateIDError() error {
	return cuserr.NewValidationError(ErrCodeEngine, ErrMsgEmptyTemplateID)
}

// NewLocatorError wraps a failure returned by a template locator.
func NewLocatorError(id string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeEngine, fmt.Sprintf(ErrFmtDetail, ErrMsgLocatorFailed, id)).
		WithMetadata(MetaKeyTemplateID, id)
}

// NewConfigReadError wraps a failure reading a configuration file.
func NewConfigReadError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeConfig, ErrMsgConfigRead).
		WithMetadata(MetaKeyPath, path)
}

// NewConfigParseError wraps a YAML decoding failure.
func NewConfigParseError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeConfig, ErrMsgConfigParse)
}

// NewConfigInvalidError creates an error for a configuration value that fails validation.
func NewConfigInvalidError(field, reason string) error {
	return cuserr.NewValidationError(ErrCodeConfig, fmt.Sprintf(ErrFmtPair, ErrMsgConfigInvalid, field, reason)).
		WithMetadata(MetaKeyField, field)
}

// NewStorageOpenError wraps a failure opening a configured template storage.
func NewStorageOpenError(driver string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeStorage, fmt.Sprintf(ErrFmtDetail, ErrMsgStorageOpen, driver)).
		WithMetadata(MetaKeyDriver, driver)
}
