// SPDX-License-Identifier: EPL-2.0

package storage

import (
	"fmt"
	"io"
)

// File is a readable, seekable file handle as seen by the decoder layer.
type File interface {
	io.ReadSeekCloser
	// Size in bytes.
	Size() int64
	// Err returns the first storage error seen by Read, if any.
	Err() error
}

// Extent locates a file on a block device: a contiguous run of blocks
// holding size bytes.
type Extent struct {
	Start uint64
	Size  int64
}

// maxBurst caps the blocks fetched by one aligned Read.
const maxBurst = 64

// BlockFile reads an Extent through a BlockDevice.
type BlockFile struct {
	dev BlockDevice
	ext Extent
	pos int64

	cache      []byte
	cacheBlock int64 // file-relative block held in cache, -1 if none

	err    error
	closed bool
}

func NewBlockFile(dev BlockDevice, ext Extent) *BlockFile {
	return &BlockFile{dev: dev, ext: ext, cacheBlock: -1}
}

func (f *BlockFile) Size() int64 { return f.ext.Size }
func (f *BlockFile) Err() error  { return f.err }

// Read performs at most one ReadBlocks call. Block-aligned reads of at
// least one block go straight to the caller's buffer; anything else goes
// through a one-block cache.
func (f *BlockFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	if f.err != nil {
		return 0, f.err
	}
	if f.pos >= f.ext.Size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	bs := int64(f.dev.BlockSize())
	block := f.pos / bs
	off := f.pos % bs
	remain := f.ext.Size - f.pos
	want := min(int64(len(p)), remain)

	if block == f.cacheBlock {
		n := copy(p[:want], f.cache[off:])
		f.pos += int64(n)
		return n, nil
	}

	if off == 0 && want >= bs {
		count := min(want/bs, maxBurst)
		data, err := f.dev.ReadBlocks(f.ext.Start+uint64(block), int(count))
		if err != nil {
			return 0, f.fail(err)
		}
		n := copy(p[:want], data)
		f.pos += int64(n)
		return n, nil
	}

	data, err := f.dev.ReadBlocks(f.ext.Start+uint64(block), 1)
	if err != nil {
		return 0, f.fail(err)
	}
	f.cache = data
	f.cacheBlock = block
	n := copy(p[:want], f.cache[off:])
	f.pos += int64(n)
	return n, nil
}

func (f *BlockFile) fail(err error) error {
	f.err = fmt.Errorf("%w: reading at %d: %w", ErrIO, f.pos, err)
	return f.err
}

func (f *BlockFile) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = f.pos + offset
	case io.SeekEnd:
		pos = f.ext.Size + offset
	default:
		return f.pos, fmt.Errorf("%w: whence %d", ErrInvalidSeek, whence)
	}
	if pos < 0 {
		return f.pos, fmt.Errorf("%w: negative position", ErrInvalidSeek)
	}
	f.pos = pos
	return pos, nil
}

func (f *BlockFile) Close() error {
	f.closed = true
	f.cache = nil
	return nil
}
