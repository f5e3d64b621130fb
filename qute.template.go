package qute

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

// Template is a parsed, immutable template. It is safe for concurrent
// renders; every render gets its own resolution context.
type Template struct {
	id          string
	generatedID string
	source      string
	root        *SectionBlock
	exprs       []*Expression
	engine      *Engine
}

func newTemplate(id, source string, root *SectionBlock, exprs []*Expression, engine *Engine) *Template {
	return &Template{
		id:          id,
		generatedID: generateID(source),
		source:      source,
		root:        root,
		exprs:       exprs,
		engine:      engine,
	}
}

func generateID(source string) string {
	return fmt.Sprintf(GeneratedIDFormat, xxh3.HashString(source))
}

// ID returns the id the template was parsed or located with. Templates
// parsed without an id return their generated id.
func (t *Template) ID() string {
	if t.id == "" {
		return t.generatedID
	}
	return t.id
}

// GeneratedID returns a content hash of the source.
func (t *Template) GeneratedID() string {
	return t.generatedID
}

// Source returns the template source.
func (t *Template) Source() string {
	return t.source
}

// Expressions returns the distinct expressions of the template, including
// section parameters, in order of first occurrence.
func (t *Template) Expressions() []*Expression {
	out := make([]*Expression, len(t.exprs))
	copy(out, t.exprs)
	return out
}

// Render resolves the template against data and returns the output.
func (t *Template) Render(ctx context.Context, data any) (string, error) {
	var sb strings.Builder
	err := t.Consume(ctx, data, func(s string) {
		sb.WriteString(s)
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderTo resolves the template against data and writes the output to w.
// Nothing is written when the resolution fails.
func (t *Template) RenderTo(ctx context.Context, w io.Writer, data any) error {
	var werr error
	err := t.Consume(ctx, data, func(s string) {
		if werr == nil {
			_, werr = io.WriteString(w, s)
		}
	})
	if err != nil {
		return err
	}
	return werr
}

// Consume resolves the template against data and passes the output
// fragments to consumer in document order.
func (t *Template) Consume(ctx context.Context, data any, consumer func(string)) error {
	result, err := t.resolve(ctx, data)
	if err != nil {
		return err
	}
	result.Process(consumer)
	return nil
}

// RenderAsync starts a render in its own goroutine.
func (t *Template) RenderAsync(ctx context.Context, data any) *Future[string] {
	return Go(func() (string, error) {
		return t.Render(ctx, data)
	})
}

func (t *Template) resolve(ctx context.Context, data any) (ResultNode, error) {
	e := t.engine
	if timeout := e.config.renderTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	e.logger.Debug(LogMsgRenderStart, zap.String(LogFieldTemplateID, t.ID()))

	// Resolvers that ignore ctx keep running in the background; the render
	// itself returns once ctx is done.
	rc := newRootContext(data, e.rootResolvers, e.evaluator)
	pending := Go(func() (ResultNode, error) {
		return executeNodes(ctx, t.root.nodes, rc)
	})
	result, err := pending.Get(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if ctx.Err() != nil {
			e.logger.Warn(LogMsgRenderAbandoned,
				zap.String(LogFieldTemplateID, t.ID()),
				zap.Duration(LogFieldDuration, time.Since(start)),
				zap.Error(err))
		}
		return nil, NewRenderError(t.ID(), err)
	}

	e.logger.Debug(LogMsgRenderDone,
		zap.String(LogFieldTemplateID, t.ID()),
		zap.Duration(LogFieldDuration, time.Since(start)))
	return result, nil
}
