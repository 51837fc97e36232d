package wire

import "fmt"

// Reader decodes one envelope from a caller-owned byte slice. A Reader is
// reusable: Reset repoints it at the next request body without copying, and
// Clear must be called on every exit path so a pooled reader never retains a
// reference to a previous request's payload.
//
// A Reader must never be shared between concurrent decodes.
type Reader interface {
	Reset(data []byte)
	ReadMessageBegin() (Header, error)
	ReadStruct(v any) error
	ReadMessageEnd() error
	Clear()
}

// Writer encodes one envelope into a freshly grown buffer. Writers are not
// pooled: output size is unbounded and the reuse risk outweighs the
// allocation cost.
type Writer interface {
	WriteMessageBegin(h Header) error
	WriteStruct(v any) error
	WriteMessageEnd() error
	Bytes() []byte
}

// Codec produces readers and writers for one Format.
type Codec interface {
	Format() Format
	NewReader() Reader
	NewWriter() Writer
}

// CodecSet is the immutable format-to-codec map. It is constructed once at
// startup and passed explicitly into the components that need it.
type CodecSet struct {
	byFormat map[Format]Codec
}

func NewCodecSet(codecs ...Codec) (*CodecSet, error) {
	byFormat := make(map[Format]Codec, len(codecs))
	for _, c := range codecs {
		if _, dup := byFormat[c.Format()]; dup {
			return nil, fmt.Errorf("wire: duplicate codec for format %s", c.Format())
		}
		byFormat[c.Format()] = c
	}
	return &CodecSet{byFormat: byFormat}, nil
}

// DefaultCodecSet returns a set with all built-in codecs.
func DefaultCodecSet() *CodecSet {
	set, err := NewCodecSet(NewBinaryCodec(), NewCompactCodec(), NewTextCodec())
	if err != nil {
		panic(err)
	}
	return set
}

func (s *CodecSet) Lookup(f Format) (Codec, bool) {
	c, ok := s.byFormat[f]
	return c, ok
}

// Formats returns the formats the set can serve.
func (s *CodecSet) Formats() []Format {
	out := make([]Format, 0, len(s.byFormat))
	for f := range s.byFormat {
		out = append(out, f)
	}
	return out
}
