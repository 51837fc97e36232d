package rpchttp

import (
	"fmt"
	"sync"

	"wiregate/go-bridge/internal/wire"
)

// readerPool keeps one set of reusable envelope readers per format. Handles
// are partitioned by worker identity underneath (sync.Pool caches them
// per-P), so no two concurrent decodes ever share a handle and no locking is
// needed on the hot path.
//
// Writers are never pooled: reply size is unbounded and a fresh buffer per
// response is cheaper than the reuse risk.
type readerPool struct {
	byFormat map[wire.Format]*sync.Pool
}

func newReaderPool(codecs *wire.CodecSet) *readerPool {
	byFormat := make(map[wire.Format]*sync.Pool)
	for _, f := range codecs.Formats() {
		codec, _ := codecs.Lookup(f)
		byFormat[f] = &sync.Pool{
			New: func() any { return codec.NewReader() },
		}
	}
	return &readerPool{byFormat: byFormat}
}

func (p *readerPool) acquire(f wire.Format) wire.Reader {
	pool, ok := p.byFormat[f]
	if !ok {
		panic(fmt.Sprintf("rpchttp: no reader pool for format %s", f))
	}
	return pool.Get().(wire.Reader)
}

// release clears the reader before returning it, so a pooled handle never
// retains a reference to a request body.
func (p *readerPool) release(f wire.Format, r wire.Reader) {
	r.Clear()
	p.byFormat[f].Put(r)
}
