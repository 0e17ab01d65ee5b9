// SPDX-License-Identifier: EPL-2.0

package storage

import (
	"fmt"
	"io"
	"os"
)

// BlockDevice is the synchronous block-read interface of the storage stack.
type BlockDevice interface {
	// ReadBlocks returns count*BlockSize() bytes starting at block start.
	ReadBlocks(start uint64, count int) ([]byte, error)
	BlockSize() int
}

// MemDevice is an in-memory block device with fault injection.
type MemDevice struct {
	blockSize int
	data      []byte

	reads    int
	failFrom uint64
	failErr  error
}

func NewMemDevice(blockSize int, data []byte) *MemDevice {
	if rem := len(data) % blockSize; rem != 0 {
		data = append(data, make([]byte, blockSize-rem)...)
	}
	return &MemDevice{blockSize: blockSize, data: data}
}

func (d *MemDevice) BlockSize() int { return d.blockSize }

// Blocks returns the device size in blocks.
func (d *MemDevice) Blocks() uint64 { return uint64(len(d.data) / d.blockSize) }

// Reads returns how many ReadBlocks calls were served.
func (d *MemDevice) Reads() int { return d.reads }

// FailFrom makes every read touching block or later fail with err.
// A nil err clears the fault.
func (d *MemDevice) FailFrom(block uint64, err error) {
	d.failFrom = block
	d.failErr = err
}

func (d *MemDevice) ReadBlocks(start uint64, count int) ([]byte, error) {
	d.reads++
	if count <= 0 {
		return nil, nil
	}
	end := start + uint64(count)
	if d.failErr != nil && end > d.failFrom {
		return nil, fmt.Errorf("%w: block %d: %w", ErrIO, max(start, d.failFrom), d.failErr)
	}
	if end > d.Blocks() {
		return nil, fmt.Errorf("%w: %d+%d > %d", ErrOutOfRange, start, count, d.Blocks())
	}
	bs := uint64(d.blockSize)
	out := make([]byte, uint64(count)*bs)
	copy(out, d.data[start*bs:end*bs])
	return out, nil
}

// FileDevice exposes a host file or raw disk image as a block device.
type FileDevice struct {
	f         *os.File
	blockSize int
}

func OpenFileDevice(path string, blockSize int) (*FileDevice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return &FileDevice{f: f, blockSize: blockSize}, nil
}

func (d *FileDevice) BlockSize() int { return d.blockSize }

func (d *FileDevice) ReadBlocks(start uint64, count int) ([]byte, error) {
	out := make([]byte, count*d.blockSize)
	n, err := d.f.ReadAt(out, int64(start)*int64(d.blockSize))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if n == 0 && count > 0 {
		return nil, fmt.Errorf("%w: block %d", ErrOutOfRange, start)
	}
	// A short final block reads as zero padding.
	clear(out[n:])
	return out, nil
}

func (d *FileDevice) Close() error {
	return d.f.Close()
}
