package rpcmeta

import (
	"context"
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"
)

var (
	ctxType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType    = reflect.TypeOf((*error)(nil)).Elem()
	futureType = reflect.TypeOf((*Future)(nil))
)

// Method is one registered method: stub metadata plus the bound handler.
// Immutable after construction.
type Method struct {
	name      string
	service   string
	kind      HandlerKind
	newArgs   func() any
	newResult func() ResultStruct
	fn        reflect.Value
}

func (m *Method) Name() string      { return m.name }
func (m *Method) Service() string   { return m.service }
func (m *Method) Kind() HandlerKind { return m.kind }

// NewArgs returns a fresh, empty argument struct to decode into.
func (m *Method) NewArgs() any { return m.newArgs() }

// NewResult returns a fresh result struct. It returns nil for one-way
// methods.
func (m *Method) NewResult() ResultStruct {
	if m.newResult == nil {
		return nil
	}
	return m.newResult()
}

// Call invokes a sync or one-way handler inline. For one-way handlers the
// returned value is always nil.
func (m *Method) Call(ctx context.Context, args any) (any, error) {
	out := m.fn.Call([]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(args)})
	switch m.kind {
	case KindOneWay:
		return nil, asError(out[0])
	default:
		return out[0].Interface(), asError(out[1])
	}
}

// CallAsync invokes an async handler and returns its completion handle.
func (m *Method) CallAsync(ctx context.Context, args any) *Future {
	out := m.fn.Call([]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(args)})
	fut, _ := out[0].Interface().(*Future)
	if fut == nil {
		fut = NewFuture()
		fut.Fail(fmt.Errorf("rpcmeta: async handler %s.%s returned nil future", m.service, m.name))
	}
	return fut
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

// Registry maps method names to bound methods. Read-only after NewRegistry.
type Registry struct {
	methods map[string]*Method
}

// NewRegistry binds every described method to the implementation's exported
// method of the same (capitalized) name and validates its signature:
//
//	sync:    func (ctx context.Context, args *T) (V, error)
//	async:   func (ctx context.Context, args *T) *rpcmeta.Future
//	one-way: func (ctx context.Context, args *T) error
func NewRegistry(desc ServiceDesc, impl any) (*Registry, error) {
	implValue := reflect.ValueOf(impl)
	methods := make(map[string]*Method, len(desc.Methods))

	for _, md := range desc.Methods {
		if md.NewArgs == nil {
			return nil, fmt.Errorf("rpcmeta: method %s.%s has no args factory", desc.Name, md.Name)
		}
		if !md.OneWay && md.NewResult == nil {
			return nil, fmt.Errorf("rpcmeta: method %s.%s has no result factory", desc.Name, md.Name)
		}
		if _, dup := methods[md.Name]; dup {
			return nil, fmt.Errorf("rpcmeta: duplicate method name %q", md.Name)
		}

		goName := exportedName(md.Name)
		fn := implValue.MethodByName(goName)
		if !fn.IsValid() {
			return nil, fmt.Errorf("rpcmeta: %T has no method %s for %s.%s", impl, goName, desc.Name, md.Name)
		}

		kind, err := classify(fn.Type(), md, reflect.TypeOf(md.NewArgs()))
		if err != nil {
			return nil, fmt.Errorf("rpcmeta: method %s.%s: %w", desc.Name, md.Name, err)
		}

		methods[md.Name] = &Method{
			name:      md.Name,
			service:   desc.Name,
			kind:      kind,
			newArgs:   md.NewArgs,
			newResult: md.NewResult,
			fn:        fn,
		}
	}

	return &Registry{methods: methods}, nil
}

// Lookup returns the method for name, or nil if it is not registered.
func (r *Registry) Lookup(name string) *Method {
	return r.methods[name]
}

// Len reports the number of registered methods.
func (r *Registry) Len() int { return len(r.methods) }

func classify(fnType reflect.Type, md MethodDesc, argsType reflect.Type) (HandlerKind, error) {
	if fnType.NumIn() != 2 || fnType.In(0) != ctxType || fnType.In(1) != argsType {
		return 0, fmt.Errorf("want func(context.Context, %s), got %s", argsType, fnType)
	}

	if md.OneWay {
		if fnType.NumOut() != 1 || fnType.Out(0) != errType {
			return 0, fmt.Errorf("one-way handler must return error, got %s", fnType)
		}
		return KindOneWay, nil
	}

	switch fnType.NumOut() {
	case 1:
		if fnType.Out(0) != futureType {
			return 0, fmt.Errorf("single-result handler must return *rpcmeta.Future, got %s", fnType)
		}
		return KindAsync, nil
	case 2:
		if fnType.Out(1) != errType {
			return 0, fmt.Errorf("second result must be error, got %s", fnType)
		}
		return KindSync, nil
	default:
		return 0, fmt.Errorf("unsupported handler shape %s", fnType)
	}
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
