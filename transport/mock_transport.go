/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package transport

import (
	"bytes"
	"io"
	"sync"
)

// MockTransport represents a mocked transport type.
type MockTransport struct {
	mu     sync.RWMutex
	wb     *bytes.Buffer
	rb     *bytes.Buffer
	closed bool
}

// NewMockTransport returns a new MockTransport instance.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		wb: new(bytes.Buffer),
		rb: new(bytes.Buffer),
	}
}

// Read reads a byte array from the mocked transport.
// Returns io.EOF once every queued byte has been consumed.
func (mt *MockTransport) Read(p []byte) (n int, err error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.rb.Len() == 0 {
		return 0, io.EOF
	}
	return mt.rb.Read(p)
}

// SetReadBytes queues content for the next read operations.
func (mt *MockTransport) SetReadBytes(p []byte) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.rb.Write(p)
}

// Write writes a byte array to the mocked transport internal buffer.
func (mt *MockTransport) Write(p []byte) (n int, err error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.closed {
		return 0, io.ErrClosedPipe
	}
	return mt.wb.Write(p)
}

// WriteString writes a raw string to the mocked transport.
func (mt *MockTransport) WriteString(s string) error {
	_, err := mt.Write([]byte(s))
	return err
}

// ReadWrittenBytes returns and clears every byte written so far.
func (mt *MockTransport) ReadWrittenBytes() []byte {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	b := append([]byte(nil), mt.wb.Bytes()...)
	mt.wb.Reset()
	return b
}

// Close marks mocked transport as closed.
func (mt *MockTransport) Close() error {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.closed = true
	return nil
}

// IsClosed returns whether or not the mocked transport has been closed.
func (mt *MockTransport) IsClosed() bool {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	return mt.closed
}
