package qute

import "time"

// Built-in section helper names
const (
	SectionIf   = "if"
	SectionFor  = "for"
	SectionEach = "each"
	SectionWith = "with"
	SectionSet  = "set"
	SectionSkip = "skip"
)

// Block labels
const (
	BlockMain = "main"
	BlockElse = "else"
)

// Section parameter names
const (
	ParamCondition = "condition"
	ParamOperator  = "operator"
	ParamOperand   = "operand"
	ParamIf        = "if"
	ParamAlias     = "alias"
	ParamIn        = "in"
	ParamIterable  = "iterable"
	ParamObject    = "object"
	ParamAs        = "as"
	ParamIt        = "it"
)

// Well-known namespaces and names
const (
	// NamespaceData exposes the root render data at any nesting depth.
	NamespaceData = "data"
	// NamespaceIter exposes iteration metadata inside for/each bodies.
	NamespaceIter = "iter"
	// DefaultLoopAlias is the element alias of a loop without an explicit alias.
	DefaultLoopAlias = "it"
	// NameThis resolves to the current data object.
	NameThis = "this"
	// NameKey and NameValue expose the current entry of a loop over a map.
	NameKey   = "key"
	NameValue = "value"
)

// Iteration metadata names
const (
	IterCount       = "count"
	IterIndex       = "index"
	IterIndexParity = "indexParity"
	IterHasNext     = "hasNext"
	IterIsLast      = "isLast"
	IterLast        = "last"
	IterIsOdd       = "isOdd"
	IterOdd         = "odd"
	IterIsEven      = "isEven"
	IterEven        = "even"
	ParityEven      = "even"
	ParityOdd       = "odd"
)

// Built-in value resolver names
const (
	ResolverNameThis       = "this"
	ResolverNameOr         = "or"
	ResolverNameAlias      = "alias"
	ResolverNameMapper     = "mapper"
	ResolverNameMap        = "map"
	ResolverNameCollection = "collection"
	ResolverNameReflect    = "reflect"
	ResolverNameCustom     = "custom"
	ResolverNameStorage    = "storage"
)

// Property and method names answered by the built-in resolvers
const (
	PropSize        = "size"
	PropLength      = "length"
	PropIsEmpty     = "isEmpty"
	PropEmpty       = "empty"
	PropKeys        = "keys"
	PropKeySet      = "keySet"
	PropValues      = "values"
	PropContainsKey = "containsKey"
	PropContains    = "contains"
	PropGet         = "get"
	PropOr          = "or"
)

// Resolver priorities
const (
	// DefaultResolverPriority is the priority of resolvers built without an explicit one.
	DefaultResolverPriority = 1
	// BuiltinResolverPriority is lower than the default so user resolvers run first.
	BuiltinResolverPriority = 0
	// ReflectResolverPriority is the lowest priority, the reflection fallback.
	ReflectResolverPriority = -1
)

// Version is the library version reported by the CLI.
const Version = "0.1.0"

// Engine defaults
const (
	// DefaultRenderTimeout bounds the synchronous render entry points.
	DefaultRenderTimeout = 10 * time.Second
	// GeneratedIDFormat formats the content hash of a template source.
	GeneratedIDFormat = "%016x"
)

// Storage driver names
const (
	StorageDriverNameMemory     = "memory"
	StorageDriverNameFilesystem = "filesystem"
	StorageDriverNamePostgres   = "postgres"
)

// Filesystem storage defaults
const (
	FilesystemDirPermissions  = 0o755
	FilesystemFilePermissions = 0o644
	DefaultTemplateSuffix     = ".html"
)

// DefaultTemplateSuffixes are tried in order when a template id has no suffix.
var DefaultTemplateSuffixes = []string{DefaultTemplateSuffix, ".txt", ".qute"}

// Postgres storage defaults
const (
	PostgresTablePrefix            = "qute_"
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
)

// Cache defaults
const (
	DefaultCacheTTL         = 5 * time.Minute
	DefaultCacheMaxEntries  = 1000
	DefaultNegativeCacheTTL = 30 * time.Second
)

// Reload defaults
const (
	DefaultReloadInterval = 2 * time.Second
)

// Logging defaults
const (
	DefaultLogLevel = "info"
)

// Configuration field names used in validation errors
const (
	ConfigFieldRenderTimeout   = "render_timeout"
	ConfigFieldSuffixes        = "templates.suffixes"
	ConfigFieldStorageDriver   = "storage.driver"
	ConfigFieldStorageDSN      = "storage.dsn"
	ConfigFieldCacheTTL        = "cache.ttl"
	ConfigFieldCacheMaxEntries = "cache.max_entries"
	ConfigFieldReloadInterval  = "reload.interval"
	ConfigFieldLogLevel        = "log.level"
)

// Log message constants
const (
	LogMsgEngineCreated       = "engine created"
	LogMsgTemplateParsed      = "template parsed"
	LogMsgTemplateLocated     = "template located"
	LogMsgTemplateCached      = "template cached"
	LogMsgTemplateRemoved     = "template removed"
	LogMsgTemplatesCleared    = "templates cleared"
	LogMsgLocatorFailed       = "template locator failed"
	LogMsgRenderStart         = "render started"
	LogMsgRenderDone          = "render finished"
	LogMsgRenderAbandoned     = "render abandoned before resolution finished"
	LogMsgNamespaceMissing    = "no namespace resolver found"
	LogMsgNamespaceFound      = "namespace resolver found"
	LogMsgResolverSelected    = "value resolver selected"
	LogMsgSectionInit         = "section helper initialized"
	LogMsgReloadStarted       = "template reloader started"
	LogMsgReloadStopped       = "template reloader stopped"
	LogMsgReloadChanged       = "template source changed"
	LogMsgReloadFailed        = "template modification check failed"
	LogMsgStorageOpened       = "template storage opened"
	LogMsgStorageCacheHit     = "template storage cache hit"
	LogMsgStorageCacheEvicted = "template storage cache entry evicted"
)

// Log field names
const (
	LogFieldTemplateID = "template_id"
	LogFieldNamespace  = "namespace"
	LogFieldResolver   = "resolver"
	LogFieldPart       = "part"
	LogFieldHelper     = "helper"
	LogFieldBlocks     = "blocks"
	LogFieldLocator    = "locator"
	LogFieldDuration   = "duration"
	LogFieldDriver     = "driver"
	LogFieldInterval   = "interval"
	LogFieldCount      = "count"
	LogFieldSize       = "size"
)

// Metadata keys attached to errors
const (
	MetaKeyLine       = "line"
	MetaKeyColumn     = "column"
	MetaKeyOffset     = "offset"
	MetaKeyHelper     = "helper"
	MetaKeyNamespace  = "namespace"
	MetaKeyResolver   = "resolver"
	MetaKeyPart       = "part"
	MetaKeyExpression = "expression"
	MetaKeyTemplateID = "template_id"
	MetaKeyOperator   = "operator"
	MetaKeyValue      = "value"
	MetaKeyType       = "type"
	MetaKeyTimeout    = "timeout"
	MetaKeyDriver     = "driver"
	MetaKeyField      = "field"
	MetaKeyPath       = "path"
	MetaKeyLabel      = "label"
)
