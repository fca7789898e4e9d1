package netbuf

import "sync/atomic"

// Pool is a fixed set of equally sized buffers.
//
// Free buffers are kept on a lock-free stack of indices. The head word
// packs a modification tag (high 32 bits) with index+1 of the top buffer
// (low 32 bits, 0 when empty) so a stale compare-and-swap can't succeed.
type Pool struct {
	bufs []*Buffer
	next []atomic.Int32
	head atomic.Uint64
	free atomic.Int32
	size int
}

// NewPool allocates count buffers of size bytes each, every buffer
// carrying userDataSize bytes of UserData.
func NewPool(count, size, userDataSize int) *Pool {
	if count <= 0 || size <= 0 || userDataSize < 0 {
		panic("netbuf: invalid pool dimensions")
	}
	p := &Pool{
		bufs: make([]*Buffer, count),
		next: make([]atomic.Int32, count),
		size: size,
	}
	for i := range p.bufs {
		p.bufs[i] = newBuffer(p, int32(i), size, userDataSize)
		// buffer i links to i+1, the last one terminates the stack.
		if i+1 < count {
			p.next[i].Store(int32(i + 2))
		}
	}
	p.head.Store(packHead(0, 1))
	p.free.Store(int32(count))
	return p
}

func packHead(tag uint32, top int32) uint64 {
	return uint64(tag)<<32 | uint64(uint32(top))
}

func unpackHead(h uint64) (tag uint32, top int32) {
	return uint32(h >> 32), int32(uint32(h))
}

// Count returns the number of buffers owned by the pool.
func (p *Pool) Count() int {
	return len(p.bufs)
}

// Size returns the capacity of each buffer.
func (p *Pool) Size() int {
	return p.size
}

// Free returns the number of buffers currently available.
func (p *Pool) Free() int {
	return int(p.free.Load())
}

// Get takes a free buffer with reserve bytes of headroom. It never blocks
// and returns ErrExhausted if all buffers are in use.
func (p *Pool) Get(reserve int) (*Buffer, error) {
	if reserve < 0 || reserve > p.size {
		return nil, ErrReserveTooLarge
	}
	for {
		h := p.head.Load()
		tag, top := unpackHead(h)
		if top == 0 {
			return nil, ErrExhausted
		}
		next := p.next[top-1].Load()
		if p.head.CompareAndSwap(h, packHead(tag+1, next)) {
			p.free.Add(-1)
			buf := p.bufs[top-1]
			buf.Reset(reserve)
			return buf, nil
		}
	}
}

// Put returns a buffer to the pool. Releasing a buffer twice is undefined.
func (p *Pool) Put(buf *Buffer) {
	if buf.pool != p {
		panic("netbuf: buffer released to foreign pool")
	}
	for {
		h := p.head.Load()
		tag, top := unpackHead(h)
		p.next[buf.index].Store(top)
		if p.head.CompareAndSwap(h, packHead(tag+1, buf.index+1)) {
			p.free.Add(1)
			return
		}
	}
}
