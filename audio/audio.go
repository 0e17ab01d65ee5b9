// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// InternalBits is the fixed-point precision of a Frame sample. Decoded audio
// of any depth is normalized to this scale; int32 storage leaves headroom for
// DSP gain before the output quantizer saturates.
const InternalBits = 24

const (
	// MaxSample is the largest in-range Frame sample.
	MaxSample = 1<<(InternalBits-1) - 1
	// MinSample is the smallest in-range Frame sample.
	MinSample = -1 << (InternalBits - 1)
)

// Frame is one stereo sample period.
type Frame struct {
	L, R int32
}

// Format describes the PCM layout produced by a Stream.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dbit/%dch", f.SampleRate, f.BitDepth, f.Channels)
}

// Stream is an opened, codec-specific decoder.
type Stream interface {
	// Format of the decoded PCM.
	Format() Format
	// DecodeNext decodes the next codec unit (a chunk, frame or block) and
	// returns its interleaved samples scaled to Format().BitDepth. The slice is
	// only valid until the next call. End of data is reported as
	// ErrEndOfStream; damaged units as ErrCorruptFrame.
	DecodeNext() ([]int32, error)
	// Length in frames, or 0 when the container does not say.
	Length() int64
	// Close releases any resources.
	Close() error
}

// ResyncPolicy tells the pipeline what a corrupt frame means for a codec.
type ResyncPolicy int

const (
	// ResyncNone: the format has no sync points, a corrupt frame ends the track.
	ResyncNone ResyncPolicy = iota
	// ResyncAtSyncWord: the codec skips to the next sync word and carries on.
	ResyncAtSyncWord
)

// Codec constructs a Stream from an input reader.
type Codec interface {
	Open(rs io.ReadSeeker) (Stream, error)
	Resync() ResyncPolicy
}

// Prober is implemented by codecs that can recognize their own bitstream
// from the first bytes of a file.
type Prober interface {
	Probe(head []byte) bool
}

// probeLen is how much of a file Detect looks at.
const probeLen = 64

// Registry for codecs by format tag (e.g., "wav", "mp3", "flac").
type Registry struct {
	codecs map[string]Codec
	exts   map[string]string
	order  []string

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Codec),
		exts:   make(map[string]string),
		mtx:    &sync.Mutex{},
	}
}

// Register adds a codec under tag. Extensions are matched case-insensitively
// and without the leading dot; the tag itself is always one of them.
func (r *Registry) Register(tag string, c Codec, exts ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.codecs[tag]; !ok {
		r.order = append(r.order, tag)
	}
	r.codecs[tag] = c
	r.exts[tag] = tag
	for _, e := range exts {
		r.exts[strings.ToLower(strings.TrimPrefix(e, "."))] = tag
	}
}

func (r *Registry) Get(tag string) (Codec, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	c, ok := r.codecs[tag]
	return c, ok
}

// Detect picks a codec for rs. Magic bytes win over the name's extension;
// a leading ID3v2 tag is skipped before probing. rs is rewound to the start
// before returning.
func (r *Registry) Detect(name string, rs io.ReadSeeker) (string, Codec, error) {
	head, err := readHead(rs, 0)
	if err == nil && HasID3v2(head) {
		head, err = readHead(rs, int64(ID3v2Size(head)))
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: probing %s: %w", ErrIO, name, err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", nil, fmt.Errorf("%w: rewinding %s: %w", ErrIO, name, err)
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, tag := range r.order {
		if p, ok := r.codecs[tag].(Prober); ok && len(head) > 0 && p.Probe(head) {
			return tag, r.codecs[tag], nil
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if tag, ok := r.exts[ext]; ok {
		return tag, r.codecs[tag], nil
	}

	return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// readHead reads up to probeLen bytes at off.
func readHead(rs io.ReadSeeker, off int64) ([]byte, error) {
	if _, err := rs.Seek(off, io.SeekStart); err != nil {
		return nil, err
	}
	head := make([]byte, probeLen)
	n, err := io.ReadFull(rs, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

// HasID3v2 reports whether head starts with an ID3v2 tag.
func HasID3v2(head []byte) bool {
	return len(head) >= 10 && bytes.HasPrefix(head, []byte("ID3"))
}

// ID3v2Size returns the full size of an ID3v2 tag from its 10-byte header.
func ID3v2Size(hdr []byte) int {
	size := int(hdr[6]&0x7f)<<21 | int(hdr[7]&0x7f)<<14 | int(hdr[8]&0x7f)<<7 | int(hdr[9]&0x7f)
	size += 10
	if hdr[5]&0x10 != 0 {
		size += 10 // footer
	}
	return size
}
