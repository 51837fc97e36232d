package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
)

// Binary envelope layout, big-endian throughout:
//
//	[2 methodLen][method][1 kind][4 seqId] [4 bodyLen][gob body] [1 terminator 0x00]
const binaryTerminator byte = 0x00

var errTruncatedEnvelope = errors.New("wire: truncated envelope")

type binaryCodec struct{}

// NewBinaryCodec returns the default big-endian framed codec.
func NewBinaryCodec() Codec { return binaryCodec{} }

func (binaryCodec) Format() Format    { return FormatBinary }
func (binaryCodec) NewReader() Reader { return &binaryReader{} }
func (binaryCodec) NewWriter() Writer { return &binaryWriter{} }

type binaryReader struct {
	data []byte
	off  int
}

func (r *binaryReader) Reset(data []byte) {
	r.data = data
	r.off = 0
}

func (r *binaryReader) Clear() {
	r.data = nil
	r.off = 0
}

func (r *binaryReader) remaining() int { return len(r.data) - r.off }

func (r *binaryReader) ReadMessageBegin() (Header, error) {
	if r.remaining() < 2 {
		return Header{}, errTruncatedEnvelope
	}
	methodLen := int(binary.BigEndian.Uint16(r.data[r.off:]))
	r.off += 2
	if r.remaining() < methodLen+5 {
		return Header{}, errTruncatedEnvelope
	}
	method := string(r.data[r.off : r.off+methodLen])
	r.off += methodLen

	kind := MessageKind(r.data[r.off])
	r.off++
	seqID := int32(binary.BigEndian.Uint32(r.data[r.off:]))
	r.off += 4

	if !kind.valid() {
		return Header{}, fmt.Errorf("wire: invalid message kind byte %d", uint8(kind))
	}
	return Header{Method: method, Kind: kind, SeqID: seqID}, nil
}

func (r *binaryReader) ReadStruct(v any) error {
	if r.remaining() < 4 {
		return errTruncatedEnvelope
	}
	bodyLen := int(binary.BigEndian.Uint32(r.data[r.off:]))
	r.off += 4
	if r.remaining() < bodyLen {
		return errTruncatedEnvelope
	}
	body := r.data[r.off : r.off+bodyLen]
	r.off += bodyLen
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(v); err != nil {
		return fmt.Errorf("wire: decode struct: %w", err)
	}
	return nil
}

func (r *binaryReader) ReadMessageEnd() error {
	if r.remaining() < 1 {
		return errTruncatedEnvelope
	}
	if r.data[r.off] != binaryTerminator {
		return fmt.Errorf("wire: bad terminator byte %#x", r.data[r.off])
	}
	r.off++
	return nil
}

type binaryWriter struct {
	buf bytes.Buffer
}

func (w *binaryWriter) WriteMessageBegin(h Header) error {
	if len(h.Method) > 0xFFFF {
		return fmt.Errorf("wire: method name too long (%d bytes)", len(h.Method))
	}
	var scratch [4]byte
	binary.BigEndian.PutUint16(scratch[:2], uint16(len(h.Method)))
	w.buf.Write(scratch[:2])
	w.buf.WriteString(h.Method)
	w.buf.WriteByte(byte(h.Kind))
	binary.BigEndian.PutUint32(scratch[:4], uint32(h.SeqID))
	w.buf.Write(scratch[:4])
	return nil
}

func (w *binaryWriter) WriteStruct(v any) error {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(v); err != nil {
		return fmt.Errorf("wire: encode struct: %w", err)
	}
	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], uint32(body.Len()))
	w.buf.Write(scratch[:])
	w.buf.Write(body.Bytes())
	return nil
}

func (w *binaryWriter) WriteMessageEnd() error {
	w.buf.WriteByte(binaryTerminator)
	return nil
}

func (w *binaryWriter) Bytes() []byte { return w.buf.Bytes() }
