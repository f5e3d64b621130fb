package qute

import (
	"context"
	"slices"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/itsatony/go-qute/internal"
)

// Engine is the main entry point for qute. It holds the section helpers,
// resolvers and locators, parses templates and caches located templates.
// The configuration is fixed by New; the template cache is safe for
// concurrent use.
type Engine struct {
	sections      map[string]SectionHelperFactory
	evaluator     *Evaluator
	rootResolvers []NamespaceResolver
	locators      []Locator
	templates     map[string]*Template // located and put templates by id
	tmplMu        sync.RWMutex         // Protects templates map
	group         singleflight.Group
	config        *engineConfig
	logger        *zap.Logger
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		sections:  make(map[string]SectionHelperFactory),
		locators:  config.locators,
		templates: make(map[string]*Template),
		config:    config,
		logger:    logger,
	}

	var resolvers []ValueResolver
	if !config.noDefaults {
		for _, f := range DefaultSectionHelpers() {
			e.registerSection("", f)
		}
		resolvers = append(resolvers, DefaultValueResolvers()...)
	}
	for _, s := range config.sections {
		if s.factory == nil {
			return nil, NewEngineConfigError(ErrMsgNilFactory)
		}
		e.registerSection(s.name, s.factory)
	}
	for _, tag := range config.userTags {
		e.registerSection(tag.name, NewUserTagSectionFactory(tag.name, tag.templateID))
	}

	// user resolvers come first among equal priorities
	e.evaluator = NewEvaluator(slices.Concat(config.resolvers, resolvers), logger)
	e.rootResolvers = slices.Concat(config.namespaces, []NamespaceResolver{dataNamespaceResolver()})

	logger.Debug(LogMsgEngineCreated,
		zap.Int(LogFieldCount, len(e.sections)),
		zap.Int(LogFieldSize, len(e.evaluator.resolvers)))
	return e, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

func (e *Engine) registerSection(name string, factory SectionHelperFactory) {
	if name != "" {
		e.sections[name] = factory
		return
	}
	for _, alias := range factory.DefaultAliases() {
		e.sections[alias] = factory
	}
}

func (e *Engine) sectionFactory(name string) (SectionHelperFactory, bool) {
	f, ok := e.sections[name]
	return f, ok
}

func (e *Engine) schemaLookup(name string) (*ParamSchema, bool) {
	f, ok := e.sections[name]
	if !ok {
		return nil, false
	}
	return f.Parameters(), true
}

// Evaluator returns the expression evaluator of the engine.
func (e *Engine) Evaluator() *Evaluator {
	return e.evaluator
}

// Parse parses a template source without caching it.
func (e *Engine) Parse(source string) (*Template, error) {
	return e.ParseWithID("", source)
}

// ParseWithID parses a template source under id without caching it.
func (e *Engine) ParseWithID(id, source string) (*Template, error) {
	parser := internal.NewParser(e.schemaLookup, e.logger)
	tree, err := parser.Parse(source)
	if err != nil {
		return nil, NewParseError(err)
	}

	c := &compiler{engine: e, exprs: newExpressionSet(), logger: e.logger}
	root, err := c.compileRoot(tree)
	if err != nil {
		return nil, err
	}

	tmpl := newTemplate(id, source, root, c.exprs.list, e)
	e.logger.Debug(LogMsgTemplateParsed,
		zap.String(LogFieldTemplateID, tmpl.ID()),
		zap.Int(LogFieldCount, len(tmpl.exprs)))
	return tmpl, nil
}

// PutTemplate parses source and caches it under id, replacing any template
// cached before.
func (e *Engine) PutTemplate(id, source string) (*Template, error) {
	if id == "" {
		return nil, NewEmptyTemplateIDError()
	}
	tmpl, err := e.ParseWithID(id, source)
	if err != nil {
		return nil, err
	}
	e.tmplMu.Lock()
	e.templates[id] = tmpl
	e.tmplMu.Unlock()
	e.logger.Debug(LogMsgTemplateCached, zap.String(LogFieldTemplateID, id))
	return tmpl, nil
}

// GetTemplate returns the template cached under id. On a miss the locators
// are asked in registration order and the first hit is parsed and cached.
// Concurrent first lookups of the same id parse it once.
func (e *Engine) GetTemplate(ctx context.Context, id string) (*Template, error) {
	if id == "" {
		return nil, NewEmptyTemplateIDError()
	}
	if tmpl, ok := e.cached(id); ok {
		return tmpl, nil
	}

	v, err, _ := e.group.Do(id, func() (any, error) {
		if tmpl, ok := e.cached(id); ok {
			return tmpl, nil
		}
		return e.locate(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Template), nil
}

func (e *Engine) cached(id string) (*Template, bool) {
	e.tmplMu.RLock()
	defer e.tmplMu.RUnlock()
	tmpl, ok := e.templates[id]
	return tmpl, ok
}

func (e *Engine) locate(ctx context.Context, id string) (*Template, error) {
	for _, l := range e.locators {
		source, found, err := l.Locate(ctx, id)
		if err != nil {
			e.logger.Warn(LogMsgLocatorFailed,
				zap.String(LogFieldTemplateID, id),
				zap.String(LogFieldLocator, resolverName(l)),
				zap.Error(err))
			return nil, NewLocatorError(id, err)
		}
		if !found {
			continue
		}

		e.logger.Debug(LogMsgTemplateLocated,
			zap.String(LogFieldTemplateID, id),
			zap.String(LogFieldLocator, resolverName(l)))
		return e.PutTemplate(id, source)
	}
	return nil, NewTemplateNotFoundError(id)
}

// HasTemplate reports whether a template is cached under id.
func (e *Engine) HasTemplate(id string) bool {
	_, ok := e.cached(id)
	return ok
}

// RemoveTemplate drops the cached template id. The next GetTemplate asks
// the locators again. Returns true if a template was removed.
func (e *Engine) RemoveTemplate(id string) bool {
	e.tmplMu.Lock()
	_, ok := e.templates[id]
	delete(e.templates, id)
	e.tmplMu.Unlock()
	if ok {
		e.logger.Debug(LogMsgTemplateRemoved, zap.String(LogFieldTemplateID, id))
	}
	return ok
}

// ClearTemplates drops every cached template.
func (e *Engine) ClearTemplates() {
	e.tmplMu.Lock()
	n := len(e.templates)
	e.templates = make(map[string]*Template)
	e.tmplMu.Unlock()
	e.logger.Debug(LogMsgTemplatesCleared, zap.Int(LogFieldCount, n))
}

// TemplateIDs returns the ids of all cached templates, sorted.
func (e *Engine) TemplateIDs() []string {
	e.tmplMu.RLock()
	ids := make([]string, 0, len(e.templates))
	for id := range e.templates {
		ids = append(ids, id)
	}
	e.tmplMu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Render is a convenience method that looks up the template id and renders it.
func (e *Engine) Render(ctx context.Context, id string, data any) (string, error) {
	tmpl, err := e.GetTemplate(ctx, id)
	if err != nil {
		return "", err
	}
	return tmpl.Render(ctx, data)
}

// RenderString parses source and renders it in one step.
// For templates that will be rendered multiple times, use Parse instead.
func (e *Engine) RenderString(ctx context.Context, source string, data any) (string, error) {
	tmpl, err := e.Parse(source)
	if err != nil {
		return "", err
	}
	return tmpl.Render(ctx, data)
}

// dataNamespaceResolver serves {data:name}, a lookup in the root data of
// the render regardless of nesting.
func dataNamespaceResolver() NamespaceResolver {
	return NewNamespaceResolver(NamespaceData, func(ctx context.Context, ec *EvalContext) (any, error) {
		root := ec.rc.Root()
		inner := &EvalContext{Base: root.data, Name: ec.Name, Params: ec.Params, rc: ec.rc}
		return ec.rc.evaluator.resolve(ctx, inner, partString(ec))
	})
}
