// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/utils"
)

// FrameBytes is the size of one stereo frame in the DMA byte format.
func FrameBytes(bits int) int {
	if bits == 16 {
		return 4
	}
	return 8
}

// Encode quantizes frames into dst in the DMA byte format and returns the
// bytes written: 16-bit little endian, or 24-bit samples left justified in
// 32-bit little endian words. Samples are rounded to the output depth and
// saturated.
func Encode(dst []byte, frames []audio.Frame, bits int) (int, error) {
	size := len(frames) * FrameBytes(bits)
	if len(dst) < size {
		return 0, fmt.Errorf("%w: %d < %d", ErrShortDst, len(dst), size)
	}

	switch bits {
	case 16:
		for i, f := range frames {
			binary.LittleEndian.PutUint16(dst[4*i:], uint16(quantize16(f.L)))
			binary.LittleEndian.PutUint16(dst[4*i+2:], uint16(quantize16(f.R)))
		}
	case 24:
		for i, f := range frames {
			binary.LittleEndian.PutUint32(dst[8*i:], uint32(quantize24(f.L)<<8))
			binary.LittleEndian.PutUint32(dst[8*i+4:], uint32(quantize24(f.R)<<8))
		}
	default:
		return 0, fmt.Errorf("%w: %d", ErrOutputBits, bits)
	}
	return size, nil
}

func quantize16(s int32) int16 {
	return int16(utils.Clamp(utils.ShiftRound(int64(s), audio.InternalBits-16), -1<<15, 1<<15-1))
}

func quantize24(s int32) int32 {
	return int32(utils.Clamp(int64(s), audio.MinSample, audio.MaxSample))
}

// Decode is the inverse of Encode, restoring frames at internal precision.
// It returns the frames read.
func Decode(dst []audio.Frame, src []byte, bits int) (int, error) {
	fb := FrameBytes(bits)
	if len(src)%fb != 0 {
		return 0, fmt.Errorf("%w: %d bytes", ErrUnalignedData, len(src))
	}
	n := min(len(dst), len(src)/fb)

	switch bits {
	case 16:
		for i := range n {
			l := int16(binary.LittleEndian.Uint16(src[4*i:]))
			r := int16(binary.LittleEndian.Uint16(src[4*i+2:]))
			dst[i] = audio.Frame{L: int32(l) << 8, R: int32(r) << 8}
		}
	case 24:
		for i := range n {
			l := int32(binary.LittleEndian.Uint32(src[8*i:]))
			r := int32(binary.LittleEndian.Uint32(src[8*i+4:]))
			dst[i] = audio.Frame{L: l >> 8, R: r >> 8}
		}
	default:
		return 0, fmt.Errorf("%w: %d", ErrOutputBits, bits)
	}
	return n, nil
}
