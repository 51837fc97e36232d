package wire

import "fmt"

// Application exception type codes. The numbering follows the classic RPC
// convention so existing clients can interpret the codes.
const (
	ExcUnknown            int32 = 0
	ExcUnknownMethod      int32 = 1
	ExcInvalidMessageKind int32 = 2
	ExcInternalError      int32 = 6
	ExcProtocolError      int32 = 7
)

// ApplicationException is a wire-representable failure carried inside a
// normal 200 response, as opposed to a transport-level error. It is the body
// of an EXCEPTION envelope.
type ApplicationException struct {
	Type    int32
	Message string
}

func NewApplicationException(typ int32, format string, args ...any) *ApplicationException {
	return &ApplicationException{Type: typ, Message: fmt.Sprintf(format, args...)}
}

func (e *ApplicationException) Error() string {
	return fmt.Sprintf("application exception (type %d): %s", e.Type, e.Message)
}
