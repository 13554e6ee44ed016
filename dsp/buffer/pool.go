package buffer

import (
	"sync"
	"sync/atomic"
)

// Pool hands out zeroed scratch buffers for segment rendering. It is safe
// for concurrent use; one Pool is shared by every render of an engine.
type Pool struct {
	pool sync.Pool
	out  atomic.Int64
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	p := &Pool{}
	p.pool.New = func() any { return &Buffer{} }
	return p
}

// Get borrows a zeroed Buffer of the given length. Return it with Put.
func (p *Pool) Get(length int) *Buffer {
	b := p.pool.Get().(*Buffer)
	b.Resize(length)
	b.Zero()
	p.out.Add(1)
	return b
}

// Put returns b to the pool. b must not be used afterwards. Nil is ignored.
func (p *Pool) Put(b *Buffer) {
	if b == nil {
		return
	}
	p.out.Add(-1)
	if b.samples != nil {
		p.pool.Put(b)
	}
}

// Outstanding reports how many borrowed buffers have not been returned.
func (p *Pool) Outstanding() int {
	return int(p.out.Load())
}
