// Package rpcmeta turns a service description plus a delegate implementation
// into an immutable method registry the bridge dispatches against.
//
// The description plays the role of generated stub metadata: it names each
// method and supplies factories for its argument and result structs. The
// implementation is bound by reflection once, at construction time, so the
// per-request path is a plain map lookup.
package rpcmeta

// ResultStruct is implemented by generated-style result structs: a Success
// field plus one pointer field per declared exception type.
type ResultStruct interface {
	// SetSuccess stores the call's return value.
	SetSuccess(v any)
	// SetException stores err if it matches one of the declared exception
	// fields and reports whether it did.
	SetException(err error) bool
}

// ServiceDesc describes one service's methods.
type ServiceDesc struct {
	Name    string
	Methods []MethodDesc
}

// MethodDesc is the per-method stub metadata. NewResult may be nil for
// one-way methods, which produce no reply.
type MethodDesc struct {
	Name      string
	OneWay    bool
	NewArgs   func() any
	NewResult func() ResultStruct
}

// HandlerKind tags the shape of a bound handler.
type HandlerKind uint8

const (
	KindSync HandlerKind = iota
	KindAsync
	KindOneWay
)

func (k HandlerKind) String() string {
	switch k {
	case KindSync:
		return "sync"
	case KindAsync:
		return "async"
	case KindOneWay:
		return "oneway"
	default:
		return "unknown"
	}
}
