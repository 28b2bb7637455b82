// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"sync"
	"sync/atomic"
)

// Ownership decides who frees a PCM buffer.
type Ownership int

const (
	// Borrowed buffers belong to the caller and are never released by the
	// library.
	Borrowed Ownership = iota
	// Owned buffers belong exclusively to the one object holding them and
	// are released when it is destroyed or its data is replaced.
	Owned
	// Shared buffers are reference counted and released with the last
	// reference.
	Shared
)

func (o Ownership) String() string {
	switch o {
	case Borrowed:
		return "borrowed"
	case Owned:
		return "owned"
	case Shared:
		return "shared"
	}
	return "invalid"
}

// Buffer is a PCM byte buffer tagged with its ownership.
type Buffer struct {
	mu        sync.RWMutex
	data      []byte
	ownership Ownership
	refs      atomic.Int32
}

// NewBuffer wraps data with the given ownership.
func NewBuffer(data []byte, ownership Ownership) *Buffer {
	b := &Buffer{data: data, ownership: ownership}
	b.refs.Store(1)
	return b
}

// Bytes returns the underlying bytes, or nil once the buffer is released.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data
}

func (b *Buffer) Ownership() Ownership { return b.ownership }

// Released reports whether the data has been dropped.
func (b *Buffer) Released() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data == nil
}

// Ref returns a handle for another holder. Shared buffers gain a reference
// and return themselves, borrowed buffers are returned as they are and owned
// buffers are copied into a fresh owned buffer.
func (b *Buffer) Ref() *Buffer {
	switch b.ownership {
	case Shared:
		b.refs.Add(1)
		return b
	case Owned:
		data := b.Bytes()
		cp := make([]byte, len(data))
		copy(cp, data)
		return NewBuffer(cp, Owned)
	default:
		return b
	}
}

// Release gives up one holder's claim on the buffer.
func (b *Buffer) Release() {
	switch b.ownership {
	case Owned:
		b.drop()
	case Shared:
		if b.refs.Add(-1) == 0 {
			b.drop()
		}
	}
}

func (b *Buffer) drop() {
	b.mu.Lock()
	b.data = nil
	b.mu.Unlock()
}
