/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package pool

import (
	"bytes"
	"sync"
)

// maxRetainedCap is the largest buffer capacity kept for reuse.
// Bigger buffers (a huge roster result, for instance) are left to the GC.
const maxRetainedCap = 64 << 10

// BufferPool holds reusable serialization buffers.
type BufferPool struct {
	p sync.Pool
}

// NewBufferPool returns a new buffer pool instance.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		p: sync.Pool{New: func() interface{} { return new(bytes.Buffer) }},
	}
}

// Get returns an empty buffer from the pool.
func (bp *BufferPool) Get() *bytes.Buffer {
	return bp.p.Get().(*bytes.Buffer)
}

// Put resets buf and hands it back to the pool.
func (bp *BufferPool) Put(buf *bytes.Buffer) {
	if buf.Cap() > maxRetainedCap {
		return
	}
	buf.Reset()
	bp.p.Put(buf)
}
