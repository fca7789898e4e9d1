package netbuf

import "errors"

var (
	// ErrExhausted indicates no free buffer is left in the pool.
	ErrExhausted = errors.New("pool exhausted")
	// ErrReserveTooLarge indicates the requested headroom exceeds buffer size.
	ErrReserveTooLarge = errors.New("reserve exceeds buffer size")
	// ErrNoTailroom indicates the data doesn't fit the remaining tailroom.
	ErrNoTailroom = errors.New("no tailroom")
)
