package qute

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Mapper is implemented by data objects that resolve names themselves.
type Mapper interface {
	Get(key string) (any, bool)
}

// MapEntry is the element type of a loop over a map.
type MapEntry struct {
	Key   any
	Value any
}

// DefaultValueResolvers returns the built-in resolver chain: this, or, loop
// aliases, Mapper, maps, collections and the reflection fallback for
// struct fields and methods.
func DefaultValueResolvers() []ValueResolver {
	return []ValueResolver{
		ThisResolver(),
		OrResolver(),
		aliasDataResolver(),
		MapperResolver(),
		MapResolver(),
		CollectionResolver(),
		ReflectResolver(),
	}
}

// ThisResolver resolves "this" to the base value itself.
func ThisResolver() ValueResolver {
	return NewResolver().
		Named(ResolverNameThis).
		Priority(BuiltinResolverPriority).
		AndName(NameThis).
		AndParamCount(0).
		Resolve(func(_ context.Context, ec *EvalContext) (any, error) {
			if data, ok := ec.Base.(*aliasData); ok {
				return data.value, nil
			}
			return ec.Base, nil
		}).
		Build()
}

// OrResolver implements "value or fallback": the fallback parameter is
// evaluated when the base is nil or NotFound.
func OrResolver() ValueResolver {
	return NewResolver().
		Named(ResolverNameOr).
		Priority(BuiltinResolverPriority).
		AndName(PropOr).
		AndParamCount(1).
		Resolve(func(ctx context.Context, ec *EvalContext) (any, error) {
			if ec.Base == nil || IsNotFound(ec.Base) {
				return ec.EvaluateParam(ctx, 0)
			}
			return ec.Base, nil
		}).
		Build()
}

// MapperResolver resolves names through the Mapper interface.
func MapperResolver() ValueResolver {
	return Match[Mapper]().
		Named(ResolverNameMapper).
		Priority(BuiltinResolverPriority).
		AndParamCount(0).
		Resolve(func(_ context.Context, ec *EvalContext) (any, error) {
			if v, ok := ec.Base.(Mapper).Get(ec.Name); ok {
				return v, nil
			}
			return NotFound, nil
		}).
		Build()
}

// MapResolver resolves keys of maps and the properties size, length,
// isEmpty, empty, keys, keySet, values, containsKey(k) and get(k). A key
// present in the map wins over a property of the same name.
func MapResolver() ValueResolver {
	return NewResolver().
		Named(ResolverNameMap).
		Priority(BuiltinResolverPriority).
		AndAppliesTo(func(ec *EvalContext) bool {
			return indirect(reflect.ValueOf(ec.Base)).Kind() == reflect.Map
		}).
		Resolve(resolveMap).
		Build()
}

func resolveMap(ctx context.Context, ec *EvalContext) (any, error) {
	if m, ok := ec.Base.(map[string]any); ok && len(ec.Params) == 0 {
		if v, found := m[ec.Name]; found {
			return v, nil
		}
	}

	m := indirect(reflect.ValueOf(ec.Base))
	if len(ec.Params) == 0 {
		if key, ok := convertKey(ec.Name, m.Type().Key()); ok {
			if v := m.MapIndex(key); v.IsValid() {
				return v.Interface(), nil
			}
		}
	}

	switch ec.Name {
	case PropSize, PropLength:
		return m.Len(), nil
	case PropIsEmpty, PropEmpty:
		return m.Len() == 0, nil
	case PropKeys, PropKeySet:
		keys := sortedMapKeys(m)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k.Interface()
		}
		return out, nil
	case PropValues:
		keys := sortedMapKeys(m)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = m.MapIndex(k).Interface()
		}
		return out, nil
	case PropGet, PropContainsKey:
		if len(ec.Params) != 1 {
			return NotFound, nil
		}
		k, err := ec.EvaluateParam(ctx, 0)
		if err != nil {
			return nil, err
		}
		key, ok := convertKey(k, m.Type().Key())
		var v reflect.Value
		if ok {
			v = m.MapIndex(key)
		}
		if ec.Name == PropContainsKey {
			return v.IsValid(), nil
		}
		if !v.IsValid() {
			return nil, nil
		}
		return v.Interface(), nil
	}
	return NotFound, nil
}

// CollectionResolver resolves slices, arrays and strings: size, length,
// isEmpty, empty, get(i), contains(x) and numeric indexes such as list[0].
func CollectionResolver() ValueResolver {
	return NewResolver().
		Named(ResolverNameCollection).
		Priority(BuiltinResolverPriority).
		AndAppliesTo(func(ec *EvalContext) bool {
			switch indirect(reflect.ValueOf(ec.Base)).Kind() {
			case reflect.Slice, reflect.Array, reflect.String:
				return true
			}
			return false
		}).
		Resolve(resolveCollection).
		Build()
}

func resolveCollection(ctx context.Context, ec *EvalContext) (any, error) {
	c := indirect(reflect.ValueOf(ec.Base))
	if c.Kind() == reflect.String {
		return resolveString(c.String(), ec.Name), nil
	}

	switch ec.Name {
	case PropSize, PropLength:
		return c.Len(), nil
	case PropIsEmpty, PropEmpty:
		return c.Len() == 0, nil
	case PropGet:
		if len(ec.Params) != 1 {
			return NotFound, nil
		}
		p, err := ec.EvaluateParam(ctx, 0)
		if err != nil {
			return nil, err
		}
		i, ok := toInt(p)
		if !ok || i < 0 || i >= c.Len() {
			return NotFound, nil
		}
		return c.Index(i).Interface(), nil
	case PropContains:
		if len(ec.Params) != 1 {
			return NotFound, nil
		}
		x, err := ec.EvaluateParam(ctx, 0)
		if err != nil {
			return nil, err
		}
		for i := 0; i < c.Len(); i++ {
			if valueEquals(c.Index(i).Interface(), x) {
				return true, nil
			}
		}
		return false, nil
	}

	if i, err := strconv.Atoi(ec.Name); err == nil && len(ec.Params) == 0 {
		if i < 0 || i >= c.Len() {
			return NotFound, nil
		}
		return c.Index(i).Interface(), nil
	}
	return NotFound, nil
}

func resolveString(s, name string) any {
	switch name {
	case PropSize, PropLength:
		return utf8.RuneCountInString(s)
	case PropIsEmpty, PropEmpty:
		return s == ""
	}
	return NotFound
}

// ReflectResolver resolves exported struct fields and exported methods.
// A lower-case name matches the capitalized Go name, so {item.name} reads
// the Name field. Methods may return one value or a value and an error;
// call parameters are evaluated and converted to the argument types.
func ReflectResolver() ValueResolver {
	return NewResolver().
		Named(ResolverNameReflect).
		Priority(ReflectResolverPriority).
		AndAppliesTo(func(ec *EvalContext) bool {
			return ec.Base != nil && !IsNotFound(ec.Base) && ec.Name != ""
		}).
		Resolve(resolveReflect).
		Build()
}

type memberKey struct {
	typ  reflect.Type
	name string
}

type member struct {
	field  []int
	method int
	found  bool
}

var memberCache sync.Map

func lookupMember(t reflect.Type, name string) member {
	key := memberKey{typ: t, name: name}
	if m, ok := memberCache.Load(key); ok {
		return m.(member)
	}

	m := member{method: -1}
	goName := exportedName(name)
	if method, ok := t.MethodByName(goName); ok {
		m.method = method.Index
		m.found = true
	} else if st := structType(t); st != nil {
		if f, ok := st.FieldByName(goName); ok && f.IsExported() {
			m.field = f.Index
			m.found = true
		}
	}
	memberCache.Store(key, m)
	return m
}

func structType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		return t
	}
	return nil
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func resolveReflect(ctx context.Context, ec *EvalContext) (any, error) {
	v := reflect.ValueOf(ec.Base)
	m := lookupMember(v.Type(), ec.Name)
	if !m.found {
		return NotFound, nil
	}
	if m.method >= 0 {
		return callMethod(ctx, ec, v.Method(m.method))
	}
	if len(ec.Params) > 0 {
		return NotFound, nil
	}

	sv := indirect(v)
	if !sv.IsValid() {
		return NotFound, nil
	}
	f, err := sv.FieldByIndexErr(m.field)
	if err != nil {
		// nil embedded pointer
		return NotFound, nil
	}
	return f.Interface(), nil
}

func callMethod(ctx context.Context, ec *EvalContext, method reflect.Value) (any, error) {
	mt := method.Type()
	if mt.IsVariadic() || mt.NumIn() != len(ec.Params) || mt.NumOut() == 0 || mt.NumOut() > 2 {
		return NotFound, nil
	}
	if mt.NumOut() == 2 && !mt.Out(1).Implements(errorType) {
		return NotFound, nil
	}

	args := make([]reflect.Value, mt.NumIn())
	if len(ec.Params) > 0 {
		params, err := ec.EvaluateParams(ctx)
		if err != nil {
			return nil, err
		}
		for i, p := range params {
			arg, ok := convertArg(p, mt.In(i))
			if !ok {
				return NotFound, nil
			}
			args[i] = arg
		}
	}

	out := method.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func convertArg(p any, t reflect.Type) (reflect.Value, bool) {
	if p == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(p)
	if v.Type().AssignableTo(t) {
		return v, true
	}
	if isIntKind(t.Kind()) || t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64 {
		if d, ok := toDecimal(p); ok {
			f, _ := d.Float64()
			return reflect.ValueOf(f).Convert(t), true
		}
		return reflect.Value{}, false
	}
	if t.Kind() == reflect.String {
		return reflect.ValueOf(stringify(p)).Convert(t), true
	}
	if v.Type().ConvertibleTo(t) {
		return v.Convert(t), true
	}
	return reflect.Value{}, false
}

// aliasData is the data of a loop iteration scope. It answers the alias,
// the iteration metadata names and, for map entries, key and value. Any
// other name is NotFound so the lookup continues in the enclosing scopes.
type aliasData struct {
	alias string
	value any
	iter  *iterationResolver
}

func (d *aliasData) get(name string) any {
	if name == d.alias {
		return d.value
	}
	if entry, ok := d.value.(MapEntry); ok {
		switch name {
		case NameKey:
			return entry.Key
		case NameValue:
			return entry.Value
		}
	}
	if d.iter != nil {
		return d.iter.metadata(name)
	}
	return NotFound
}

func aliasDataResolver() ValueResolver {
	return Match[*aliasData]().
		Named(ResolverNameAlias).
		Priority(BuiltinResolverPriority).
		AndParamCount(0).
		Resolve(func(_ context.Context, ec *EvalContext) (any, error) {
			return ec.Base.(*aliasData).get(ec.Name), nil
		}).
		Build()
}

func partString(ec *EvalContext) string {
	if len(ec.Params) == 0 {
		return ec.Name
	}
	return ec.Name + "(" + strings.Join(ec.Params, ", ") + ")"
}
