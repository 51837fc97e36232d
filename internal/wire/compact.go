package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"math"
)

// Compact envelope layout: same field order as the binary codec but all
// lengths and the sequence id are unsigned varints, which shaves a few bytes
// off small envelopes:
//
//	[uvarint methodLen][method][1 kind][uvarint seqId] [uvarint bodyLen][gob body] [1 terminator 0x00]
type compactCodec struct{}

// NewCompactCodec returns the varint-framed codec.
func NewCompactCodec() Codec { return compactCodec{} }

func (compactCodec) Format() Format    { return FormatCompact }
func (compactCodec) NewReader() Reader { return &compactReader{} }
func (compactCodec) NewWriter() Writer { return &compactWriter{} }

type compactReader struct {
	data []byte
	off  int
}

func (r *compactReader) Reset(data []byte) {
	r.data = data
	r.off = 0
}

func (r *compactReader) Clear() {
	r.data = nil
	r.off = 0
}

func (r *compactReader) remaining() int { return len(r.data) - r.off }

func (r *compactReader) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		return 0, errTruncatedEnvelope
	}
	r.off += n
	return v, nil
}

func (r *compactReader) ReadMessageBegin() (Header, error) {
	methodLen, err := r.readUvarint()
	if err != nil {
		return Header{}, err
	}
	// Compared without adding: methodLen is attacker-controlled and
	// methodLen+1 can wrap around. The kind byte still needs one byte past
	// the method, hence >=.
	if methodLen >= uint64(r.remaining()) {
		return Header{}, errTruncatedEnvelope
	}
	method := string(r.data[r.off : r.off+int(methodLen)])
	r.off += int(methodLen)

	kind := MessageKind(r.data[r.off])
	r.off++
	seq, err := r.readUvarint()
	if err != nil {
		return Header{}, err
	}
	if seq > math.MaxUint32 {
		return Header{}, fmt.Errorf("wire: sequence id %d exceeds 32 bits", seq)
	}

	if !kind.valid() {
		return Header{}, fmt.Errorf("wire: invalid message kind byte %d", uint8(kind))
	}
	return Header{Method: method, Kind: kind, SeqID: int32(uint32(seq))}, nil
}

func (r *compactReader) ReadStruct(v any) error {
	bodyLen, err := r.readUvarint()
	if err != nil {
		return err
	}
	if uint64(r.remaining()) < bodyLen {
		return errTruncatedEnvelope
	}
	body := r.data[r.off : r.off+int(bodyLen)]
	r.off += int(bodyLen)
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(v); err != nil {
		return fmt.Errorf("wire: decode struct: %w", err)
	}
	return nil
}

func (r *compactReader) ReadMessageEnd() error {
	if r.remaining() < 1 {
		return errTruncatedEnvelope
	}
	if r.data[r.off] != binaryTerminator {
		return fmt.Errorf("wire: bad terminator byte %#x", r.data[r.off])
	}
	r.off++
	return nil
}

type compactWriter struct {
	buf bytes.Buffer
}

func (w *compactWriter) writeUvarint(v uint64) {
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], v)
	w.buf.Write(scratch[:n])
}

func (w *compactWriter) WriteMessageBegin(h Header) error {
	w.writeUvarint(uint64(len(h.Method)))
	w.buf.WriteString(h.Method)
	w.buf.WriteByte(byte(h.Kind))
	w.writeUvarint(uint64(uint32(h.SeqID)))
	return nil
}

func (w *compactWriter) WriteStruct(v any) error {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(v); err != nil {
		return fmt.Errorf("wire: encode struct: %w", err)
	}
	w.writeUvarint(uint64(body.Len()))
	w.buf.Write(body.Bytes())
	return nil
}

func (w *compactWriter) WriteMessageEnd() error {
	w.buf.WriteByte(binaryTerminator)
	return nil
}

func (w *compactWriter) Bytes() []byte { return w.buf.Bytes() }
