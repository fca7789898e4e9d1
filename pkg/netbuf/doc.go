// Package netbuf provides fixed-size buffers, pools and queues for moving
// frames between interrupt and task context.
package netbuf

// Buffers are allocated once per Pool and never grow. A Buffer keeps
// headroom in front of its data so a link header can be prepended
// without moving the payload, and consumes data from the front without
// relocating what remains.
//
// Pool.Get and Queue.Put never block and take no locks, so they can be
// called from the goroutine simulating interrupt context. Queue.Get is
// the only blocking operation and belongs to the single consumer.
