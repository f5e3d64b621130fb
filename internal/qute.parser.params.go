package internal

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Parameter describes one declared section parameter.
type Parameter struct {
	Name       string
	Default    string
	HasDefault bool
	// Optional parameters may remain unbound without failing the parse.
	Optional bool
}

// Required reports whether the parameter must be bound after defaults are applied.
func (p Parameter) Required() bool {
	return !p.Optional && !p.HasDefault
}

// ParamSchema holds the declared parameters of a section per block label.
type ParamSchema struct {
	params map[string][]Parameter
}

// NewParamSchema creates an empty schema.
func NewParamSchema() *ParamSchema {
	return &ParamSchema{params: make(map[string][]Parameter)}
}

// Add declares a parameter for the given block label, in declaration order.
func (s *ParamSchema) Add(label string, p Parameter) *ParamSchema {
	s.params[label] = append(s.params[label], p)
	return s
}

// Get returns the parameters declared for label. Unknown labels have none.
func (s *ParamSchema) Get(label string) []Parameter {
	if s == nil {
		return nil
	}
	return s.params[label]
}

// Labels returns the labels with declared parameters, sorted.
func (s *ParamSchema) Labels() []string {
	if s == nil {
		return nil
	}
	labels := make([]string, 0, len(s.params))
	for l := range s.params {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// ProcessParams binds the supplied tokens of a block to the declared
// parameters of label.
//
// Named tokens (name=value) bind directly. When fewer tokens than declared
// parameters are supplied, a positional token binds to the first unbound
// parameter without a default value; otherwise it binds to the first unbound
// parameter regardless of defaults. Defaults are applied afterwards and any
// required parameter that is still unbound fails the binding.
func ProcessParams(label string, tokens []string, schema *ParamSchema, logger *zap.Logger) (map[string]string, error) {
	declared := schema.Get(label)
	params := make(map[string]string, len(tokens))

	if len(tokens) > len(declared) && logger != nil {
		logger.Debug(LogMsgTooManyParams,
			zap.String(LogFieldLabel, label),
			zap.Strings(LogFieldParams, tokens),
			zap.Int(LogFieldSchema, len(declared)))
	}

	skipDefaults := len(tokens) < len(declared)
	for _, token := range tokens {
		if eq := FirstDeterminingEquals(token); eq != -1 {
			params[token[:eq]] = token[eq+1:]
			continue
		}
		for _, p := range declared {
			if _, bound := params[p.Name]; bound {
				continue
			}
			if skipDefaults && p.HasDefault {
				continue
			}
			params[p.Name] = token
			break
		}
	}

	for _, p := range declared {
		if _, bound := params[p.Name]; !bound && p.HasDefault {
			params[p.Name] = p.Default
		}
	}

	var missing []string
	for _, p := range declared {
		if _, bound := params[p.Name]; !bound && !p.Optional {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &TokenizeError{Message: ErrMsgMissingParams, Content: strings.Join(missing, ", ")}
	}
	return params, nil
}
