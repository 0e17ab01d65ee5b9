// SPDX-License-Identifier: EPL-2.0

// Package ring provides a fixed-capacity circular buffer of frames with
// independent read and write cursors.
//
// A Buffer decouples a bursty producer (a decoder emitting whole codec
// frames) from a steady consumer (the DMA refill). Frames are stored in a
// smallnest/ringbuffer byte ring as 8-byte little-endian records, so a
// read or write always moves whole frames.
//
// The cursors are monotonically increasing frame counters. The difference
// between them is the number of readable frames, which never exceeds the
// capacity:
//
//	AvailableRead() + AvailableWrite() == Cap()
//
// Writes never overwrite unread data: a full buffer accepts nothing.
package ring

import (
	"encoding/binary"

	"github.com/smallnest/ringbuffer"

	"github.com/ik5/audcore/audio"
)

// FrameBytes is the size of one stored frame record.
const FrameBytes = 8

// Buffer is a single-producer, single-consumer ring of audio frames.
type Buffer struct {
	rb      *ringbuffer.RingBuffer
	size    int
	scratch []byte
	head    uint64 // read cursor
	tail    uint64 // write cursor
}

// New allocates a ring holding up to size frames.
func New(size int) *Buffer {
	if size < 1 {
		size = 1
	}
	return &Buffer{rb: ringbuffer.New(size * FrameBytes), size: size}
}

// Cap returns the fixed capacity in frames.
func (b *Buffer) Cap() int { return b.size }

// AvailableRead returns the number of frames written and not yet read.
func (b *Buffer) AvailableRead() int { return b.rb.Length() / FrameBytes }

// AvailableWrite returns free space in frames.
func (b *Buffer) AvailableWrite() int { return b.rb.Free() / FrameBytes }

func (b *Buffer) grow(n int) []byte {
	if cap(b.scratch) < n*FrameBytes {
		b.scratch = make([]byte, n*FrameBytes)
	}
	return b.scratch[:n*FrameBytes]
}

// Write copies as many frames of p as fit and returns the count.
func (b *Buffer) Write(p []audio.Frame) int {
	n := min(len(p), b.AvailableWrite())
	if n == 0 {
		return 0
	}
	raw := b.grow(n)
	for i, f := range p[:n] {
		binary.LittleEndian.PutUint32(raw[i*FrameBytes:], uint32(f.L))
		binary.LittleEndian.PutUint32(raw[i*FrameBytes+4:], uint32(f.R))
	}
	// n frames fit, so a short write can only come from a broken ring.
	w, _ := b.rb.Write(raw)
	n = w / FrameBytes
	b.tail += uint64(n)
	return n
}

func (b *Buffer) decode(p []audio.Frame, raw []byte) int {
	n := len(raw) / FrameBytes
	for i := range n {
		p[i] = audio.Frame{
			L: int32(binary.LittleEndian.Uint32(raw[i*FrameBytes:])),
			R: int32(binary.LittleEndian.Uint32(raw[i*FrameBytes+4:])),
		}
	}
	return n
}

// Peek copies up to len(p) readable frames without consuming them.
func (b *Buffer) Peek(p []audio.Frame) int {
	n := min(len(p), b.AvailableRead())
	if n == 0 {
		return 0
	}
	raw := b.grow(n)
	got, _ := b.rb.Peek(raw)
	return b.decode(p, raw[:got])
}

// Read copies and consumes up to len(p) frames.
func (b *Buffer) Read(p []audio.Frame) int {
	n := min(len(p), b.AvailableRead())
	if n == 0 {
		return 0
	}
	raw := b.grow(n)
	got, _ := b.rb.Read(raw)
	n = b.decode(p, raw[:got])
	b.head += uint64(n)
	return n
}

// Discard drops up to n readable frames and returns how many were dropped.
func (b *Buffer) Discard(n int) int {
	n = min(max(n, 0), b.AvailableRead())
	if n == 0 {
		return 0
	}
	got, _ := b.rb.Read(b.grow(n))
	n = got / FrameBytes
	b.head += uint64(n)
	return n
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.rb.Reset()
	b.head, b.tail = 0, 0
}

// Written returns the total number of frames ever written.
func (b *Buffer) Written() uint64 { return b.tail }

// Consumed returns the total number of frames ever read or discarded.
func (b *Buffer) Consumed() uint64 { return b.head }
