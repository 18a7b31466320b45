package protocol

import (
	"bytes"
	"sync"
)

// maxPooledLine caps buffers returned to the pool so one huge dump does
// not pin memory for the life of the process.
const maxPooledLine = DefaultMaxLineBytes

// linePool is a pool of reusable encode buffers for outgoing lines.
type linePool struct {
	pool sync.Pool
}

func newLinePool(defaultCap int) *linePool {
	p := &linePool{}
	p.pool.New = func() any {
		return bytes.NewBuffer(make([]byte, 0, defaultCap))
	}
	return p
}

// Get returns an empty buffer, preferably from the pool.
func (p *linePool) Get() *bytes.Buffer {
	b := p.pool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// Put returns b to the pool unless it grew past maxPooledLine.
func (p *linePool) Put(b *bytes.Buffer) {
	if b == nil || b.Cap() > maxPooledLine {
		return
	}
	p.pool.Put(b)
}

var lines = newLinePool(512)
