package qute

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-qute/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metadata(t *testing.T, err error, key string) string {
	t.Helper()
	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	value, ok := customErr.GetMetadata(key)
	require.True(t, ok, "missing metadata %q", key)
	return value
}

func TestNewParseError(t *testing.T) {
	_, err := MustNew().Parse("line one\n{#if x}{/each}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgParseFailed)
	assert.Equal(t, "2", metadata(t, err, MetaKeyLine))
	_, convErr := strconv.Atoi(metadata(t, err, MetaKeyColumn))
	assert.NoError(t, convErr)
	assert.Equal(t, 1, strings.Count(err.Error(), internal.ErrMsgMismatchedEnd))

	plain := NewParseError(errors.New("boom"))
	assert.Equal(t, 1, strings.Count(plain.Error(), "boom"))
	var customErr *cuserr.CustomError
	require.True(t, errors.As(plain, &customErr))
	_, ok := customErr.GetMetadata(MetaKeyLine)
	assert.False(t, ok)
}

func TestNewRenderError(t *testing.T) {
	e := MustNew()
	_, err := e.PutTemplate("page", "{#each x}{it}{/each}")
	require.NoError(t, err)

	_, err = e.Render(context.Background(), "page", map[string]any{"x": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgRenderFailed)
	assert.Contains(t, err.Error(), ErrMsgNotIterable)
	assert.Equal(t, "page", metadata(t, err, MetaKeyTemplateID))

	assert.Equal(t, 1, strings.Count(err.Error(), ErrMsgNotIterable))

	timeout := NewRenderError("page", context.DeadlineExceeded)
	assert.Contains(t, timeout.Error(), ErrMsgRenderTimeout)
	assert.Equal(t, 1, strings.Count(timeout.Error(), context.DeadlineExceeded.Error()))
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)
}

func TestErrorMetadata(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		key   string
		value string
		msg   string
	}{
		{"unknown section", NewUnknownSectionError("nope"), MetaKeyHelper, "nope", ErrMsgUnknownSection},
		{"unknown operator", NewUnknownOperatorError("~"), MetaKeyOperator, "~", ErrMsgUnknownOperator},
		{"missing operand", NewMissingOperandError("gt"), MetaKeyOperator, "gt", ErrMsgMissingOperand},
		{"invalid alias", NewInvalidAliasError("a.b"), MetaKeyValue, "a.b", ErrMsgInvalidAlias},
		{"not number", NewNotNumberError("gt", "abc"), MetaKeyType, "string", ErrMsgNotNumber},
		{"not iterable", NewNotIterableError(true), MetaKeyType, "bool", ErrMsgNotIterable},
		{"param index", NewParamIndexError("join", 2), MetaKeyValue, "2", ErrMsgParamIndex},
		{"render timeout", NewRenderTimeoutError("t", time.Second), MetaKeyTimeout, "1s", ErrMsgRenderTimeout},
		{"template not found", NewTemplateNotFoundError("x"), MetaKeyTemplateID, "x", ErrMsgTemplateNotFound},
		{"locator", NewLocatorError("x", errBoom), MetaKeyTemplateID, "x", ErrMsgLocatorFailed},
		{"config read", NewConfigReadError("/etc/q.yaml", errBoom), MetaKeyPath, "/etc/q.yaml", ErrMsgConfigRead},
		{"config invalid", NewConfigInvalidError(ConfigFieldCacheTTL, ErrReasonNegative), MetaKeyField, ConfigFieldCacheTTL, ErrReasonNegative},
		{"storage open", NewStorageOpenError("mongo", errBoom), MetaKeyDriver, "mongo", ErrMsgStorageOpen},
		{"resolver", NewResolverError("custom", "name", errBoom), MetaKeyResolver, "custom", ErrMsgResolverFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.err.Error(), tt.msg)
			assert.Equal(t, tt.value, metadata(t, tt.err, tt.key))
		})
	}

	assert.ErrorIs(t, NewTemplateNotFoundError("x"), ErrTemplateNotFound)
	assert.ErrorIs(t, NewLocatorError("x", errBoom), errBoom)
	assert.ErrorIs(t, NewRenderTimeoutError("t", time.Second), context.DeadlineExceeded)
}
