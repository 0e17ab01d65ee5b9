// SPDX-License-Identifier: EPL-2.0

package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// FS opens files by path.
type FS interface {
	Open(name string) (File, error)
}

// Catalog is a flat path -> extent table over one block device.
type Catalog struct {
	dev     BlockDevice
	extents map[string]Extent
}

func NewCatalog(dev BlockDevice) *Catalog {
	return &Catalog{dev: dev, extents: make(map[string]Extent)}
}

func (c *Catalog) Add(name string, ext Extent) {
	c.extents[path.Clean("/"+name)] = ext
}

func (c *Catalog) Open(name string) (File, error) {
	ext, ok := c.extents[path.Clean("/"+name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return NewBlockFile(c.dev, ext), nil
}

// Names lists catalogued paths in order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.extents))
	for n := range c.extents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Image lays files out back to back, block aligned, on a MemDevice.
type Image struct {
	blockSize int
	data      []byte
	extents   map[string]Extent
}

func NewImage(blockSize int) *Image {
	return &Image{blockSize: blockSize, extents: make(map[string]Extent)}
}

// Add appends a file to the image.
func (im *Image) Add(name string, content []byte) *Image {
	start := uint64(len(im.data) / im.blockSize)
	im.data = append(im.data, content...)
	if rem := len(im.data) % im.blockSize; rem != 0 {
		im.data = append(im.data, make([]byte, im.blockSize-rem)...)
	}
	im.extents[name] = Extent{Start: start, Size: int64(len(content))}
	return im
}

// Build returns the device and a catalog of everything added.
func (im *Image) Build() (*MemDevice, *Catalog) {
	dev := NewMemDevice(im.blockSize, im.data)
	cat := NewCatalog(dev)
	for name, ext := range im.extents {
		cat.Add(name, ext)
	}
	return dev, cat
}

// DirFS serves files from a host directory.
type DirFS string

func (d DirFS) Open(name string) (File, error) {
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(string(d), filepath.FromSlash(name))
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return &hostFile{File: f, size: st.Size()}, nil
}

type hostFile struct {
	*os.File
	size int64
	err  error
}

func (h *hostFile) Size() int64 { return h.size }
func (h *hostFile) Err() error  { return h.err }

func (h *hostFile) Read(p []byte) (int, error) {
	n, err := h.File.Read(p)
	if err != nil && !isEOF(err) && h.err == nil {
		h.err = fmt.Errorf("%w: %w", ErrIO, err)
		return n, h.err
	}
	return n, err
}
