package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Text envelope layout: a JSON header object followed by a JSON body value,
// newline-terminated. Meant for debugging with curl, not for throughput.
//
//	{"method":"add","kind":"call","seqid":7}
//	{...body...}
type textCodec struct{}

// NewTextCodec returns the JSON debugging codec.
func NewTextCodec() Codec { return textCodec{} }

func (textCodec) Format() Format    { return FormatText }
func (textCodec) NewReader() Reader { return &textReader{} }
func (textCodec) NewWriter() Writer { return &textWriter{} }

type textHeader struct {
	Method string `json:"method"`
	Kind   string `json:"kind"`
	SeqID  int32  `json:"seqid"`
}

func kindToName(k MessageKind) string {
	switch k {
	case KindCall:
		return "call"
	case KindReply:
		return "reply"
	case KindException:
		return "exception"
	case KindOneWay:
		return "oneway"
	default:
		return ""
	}
}

func kindFromName(name string) (MessageKind, bool) {
	switch name {
	case "call":
		return KindCall, true
	case "reply":
		return KindReply, true
	case "exception":
		return KindException, true
	case "oneway":
		return KindOneWay, true
	default:
		return 0, false
	}
}

type textReader struct {
	data []byte
	dec  *json.Decoder
}

func (r *textReader) Reset(data []byte) {
	r.data = data
	r.dec = json.NewDecoder(bytes.NewReader(data))
}

func (r *textReader) Clear() {
	r.data = nil
	r.dec = nil
}

func (r *textReader) ReadMessageBegin() (Header, error) {
	if r.dec == nil {
		return Header{}, errors.New("wire: reader not reset")
	}
	var hdr textHeader
	if err := r.dec.Decode(&hdr); err != nil {
		return Header{}, fmt.Errorf("wire: decode header: %w", err)
	}
	kind, ok := kindFromName(hdr.Kind)
	if !ok {
		return Header{}, fmt.Errorf("wire: invalid message kind %q", hdr.Kind)
	}
	return Header{Method: hdr.Method, Kind: kind, SeqID: hdr.SeqID}, nil
}

func (r *textReader) ReadStruct(v any) error {
	if err := r.dec.Decode(v); err != nil {
		return fmt.Errorf("wire: decode struct: %w", err)
	}
	return nil
}

func (r *textReader) ReadMessageEnd() error {
	var trailing json.RawMessage
	if err := r.dec.Decode(&trailing); err != io.EOF {
		return errors.New("wire: trailing data after envelope")
	}
	return nil
}

type textWriter struct {
	buf bytes.Buffer
}

func (w *textWriter) WriteMessageBegin(h Header) error {
	name := kindToName(h.Kind)
	if name == "" {
		return fmt.Errorf("wire: invalid message kind %d", uint8(h.Kind))
	}
	return json.NewEncoder(&w.buf).Encode(textHeader{Method: h.Method, Kind: name, SeqID: h.SeqID})
}

func (w *textWriter) WriteStruct(v any) error {
	return json.NewEncoder(&w.buf).Encode(v)
}

// WriteMessageEnd is a no-op: Encode already newline-terminates the body.
func (w *textWriter) WriteMessageEnd() error { return nil }

func (w *textWriter) Bytes() []byte { return w.buf.Bytes() }
