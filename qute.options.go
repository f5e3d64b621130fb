package qute

import (
	"time"

	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

type namedFactory struct {
	name    string
	factory SectionHelperFactory
}

type userTag struct {
	name       string
	templateID string
}

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	sections      []namedFactory
	resolvers     []ValueResolver
	namespaces    []NamespaceResolver
	locators      []Locator
	userTags      []userTag
	logger        *zap.Logger
	renderTimeout time.Duration
	noDefaults    bool
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		renderTimeout: DefaultRenderTimeout,
	}
}

// WithSectionHelper registers a section helper factory under its default aliases.
func WithSectionHelper(factory SectionHelperFactory) Option {
	return func(c *engineConfig) {
		c.sections = append(c.sections, namedFactory{factory: factory})
	}
}

// WithSectionHelperName registers a section helper factory under name only.
func WithSectionHelperName(name string, factory SectionHelperFactory) Option {
	return func(c *engineConfig) {
		c.sections = append(c.sections, namedFactory{name: name, factory: factory})
	}
}

// WithValueResolver adds value resolvers to the chain.
func WithValueResolver(resolvers ...ValueResolver) Option {
	return func(c *engineConfig) {
		c.resolvers = append(c.resolvers, resolvers...)
	}
}

// WithNamespaceResolver adds namespace resolvers available to every render.
func WithNamespaceResolver(resolvers ...NamespaceResolver) Option {
	return func(c *engineConfig) {
		c.namespaces = append(c.namespaces, resolvers...)
	}
}

// WithLocator adds a template locator. Locators are asked in registration
// order when GetTemplate misses the cache.
func WithLocator(locators ...Locator) Option {
	return func(c *engineConfig) {
		c.locators = append(c.locators, locators...)
	}
}

// WithUserTag registers a section named name that renders the template templateID.
func WithUserTag(name, templateID string) Option {
	return func(c *engineConfig) {
		c.userTags = append(c.userTags, userTag{name: name, templateID: templateID})
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithRenderTimeout bounds every render. Use 0 to rely on the caller's context only.
// Default: 10s
func WithRenderTimeout(timeout time.Duration) Option {
	return func(c *engineConfig) {
		c.renderTimeout = timeout
	}
}

// WithoutDefaults leaves out the built-in section helpers and value resolvers.
func WithoutDefaults() Option {
	return func(c *engineConfig) {
		c.noDefaults = true
	}
}

// DefaultSectionHelpers returns the built-in section helper factories.
func DefaultSectionHelpers() []SectionHelperFactory {
	return []SectionHelperFactory{
		IfSectionFactory{},
		LoopSectionFactory{},
		WithSectionFactory{},
		SetSectionFactory{},
		SkipSectionFactory{},
	}
}
