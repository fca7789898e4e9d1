package netbuf

// Buffer is a fixed capacity byte region owned by a Pool.
type Buffer struct {
	// UserData is per-buffer metadata sized when the pool is created.
	UserData []byte

	pool  *Pool
	index int32
	data  []byte
	off   int
	n     int
}

func newBuffer(pool *Pool, index int32, size, userDataSize int) *Buffer {
	b := &Buffer{
		pool:  pool,
		index: index,
		data:  make([]byte, size),
	}
	if userDataSize > 0 {
		b.UserData = make([]byte, userDataSize)
	}
	return b
}

// Pool returns the pool owning the buffer.
func (b *Buffer) Pool() *Pool {
	return b.pool
}

// Cap returns the total capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Len returns the number of bytes of data.
func (b *Buffer) Len() int {
	return b.n
}

// Headroom returns the space available in front of data.
func (b *Buffer) Headroom() int {
	return b.off
}

// Tailroom returns the space available after data.
func (b *Buffer) Tailroom() int {
	return len(b.data) - b.off - b.n
}

// Bytes returns the data. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data[b.off : b.off+b.n]
}

// Tail returns the writable space after data. Bytes written there become
// data after Add.
func (b *Buffer) Tail() []byte {
	return b.data[b.off+b.n:]
}

// Reset empties the buffer and reserves headroom.
func (b *Buffer) Reset(reserve int) {
	if reserve < 0 || reserve > len(b.data) {
		panic("netbuf: reserve out of range")
	}
	b.off, b.n = reserve, 0
	for i := range b.UserData {
		b.UserData[i] = 0
	}
}

// Add extends data by n bytes at the tail and returns the added region.
func (b *Buffer) Add(n int) []byte {
	if n < 0 || n > b.Tailroom() {
		panic("netbuf: add beyond tailroom")
	}
	start := b.off + b.n
	b.n += n
	return b.data[start : start+n]
}

// Write implements io.Writer by appending to the tail.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(p) > b.Tailroom() {
		return 0, ErrNoTailroom
	}
	return copy(b.Add(len(p)), p), nil
}

// Push prepends n bytes taken from headroom and returns them.
func (b *Buffer) Push(n int) []byte {
	if n < 0 || n > b.off {
		panic("netbuf: push beyond headroom")
	}
	b.off -= n
	b.n += n
	return b.data[b.off : b.off+n]
}

// Pull consumes n bytes from the front and returns them.
func (b *Buffer) Pull(n int) []byte {
	if n < 0 || n > b.n {
		panic("netbuf: pull beyond data")
	}
	p := b.data[b.off : b.off+n]
	b.off += n
	b.n -= n
	return p
}

// PullU8 consumes one byte from the front.
func (b *Buffer) PullU8() byte {
	return b.Pull(1)[0]
}

// Release returns the buffer to its pool. The caller must own it.
func (b *Buffer) Release() {
	b.pool.Put(b)
}
