// Package wire defines the envelope model shared by every supported wire
// format: the format enumeration with its media types, the message header,
// and the application exception carried inside EXCEPTION replies.
//
// The byte-level encoding itself lives behind the Codec interface; the
// bridge never touches raw envelope bytes directly.
package wire

import (
	"fmt"
	"strings"
)

// Format identifies one supported envelope encoding.
type Format int

const (
	FormatBinary Format = iota
	FormatCompact
	FormatText
)

const (
	mediaTypeBinary  = "application/x-rpc-binary"
	mediaTypeCompact = "application/x-rpc-compact"
	mediaTypeText    = "application/x-rpc-json"
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatCompact:
		return "compact"
	case FormatText:
		return "text"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// MediaType returns the canonical Content-Type value for the format.
func (f Format) MediaType() string {
	switch f {
	case FormatBinary:
		return mediaTypeBinary
	case FormatCompact:
		return mediaTypeCompact
	case FormatText:
		return mediaTypeText
	default:
		return mediaTypeBinary
	}
}

// FormatFromName maps a config-level name ("binary", "compact", "text") to a
// Format.
func FormatFromName(name string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "binary":
		return FormatBinary, true
	case "compact":
		return FormatCompact, true
	case "text", "json":
		return FormatText, true
	default:
		return 0, false
	}
}

// FormatFromMediaType maps a Content-Type or Accept header value to a Format.
// Media type parameters ("; charset=utf-8") are ignored.
func FormatFromMediaType(mediaType string) (Format, bool) {
	mt := mediaType
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	switch strings.ToLower(strings.TrimSpace(mt)) {
	case mediaTypeBinary:
		return FormatBinary, true
	case mediaTypeCompact:
		return FormatCompact, true
	case mediaTypeText:
		return FormatText, true
	default:
		return 0, false
	}
}

// MessageKind is the envelope message type.
type MessageKind uint8

const (
	KindCall      MessageKind = 1
	KindReply     MessageKind = 2
	KindException MessageKind = 3
	KindOneWay    MessageKind = 4
)

func (k MessageKind) String() string {
	switch k {
	case KindCall:
		return "CALL"
	case KindReply:
		return "REPLY"
	case KindException:
		return "EXCEPTION"
	case KindOneWay:
		return "ONEWAY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(k))
	}
}

func (k MessageKind) valid() bool {
	return k >= KindCall && k <= KindOneWay
}

// Header is the leading part of every envelope. SeqID read from a request
// must appear unchanged in the matching reply, including error replies.
type Header struct {
	Method string
	Kind   MessageKind
	SeqID  int32
}
