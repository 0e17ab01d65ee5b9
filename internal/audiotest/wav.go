// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"math"
)

// WAV builds a PCM WAV file. samples are interleaved and scaled to depth;
// 8-bit samples are signed here and stored unsigned as the format requires.
func WAV(rate, channels, depth int, samples []int32) []byte {
	bps := depth / 8
	data := make([]byte, len(samples)*bps)
	for i, s := range samples {
		putLE(data[i*bps:], depth, s)
	}

	out := make([]byte, 44, 44+len(data))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(data)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1)
	binary.LittleEndian.PutUint16(out[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(rate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(rate*channels*bps))
	binary.LittleEndian.PutUint16(out[32:34], uint16(channels*bps))
	binary.LittleEndian.PutUint16(out[34:36], uint16(depth))
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(data)))
	return append(out, data...)
}

func putLE(b []byte, depth int, s int32) {
	switch depth {
	case 8:
		b[0] = byte(s + 128)
	case 16:
		binary.LittleEndian.PutUint16(b, uint16(s))
	case 24:
		b[0], b[1], b[2] = byte(s), byte(s>>8), byte(s>>16)
	case 32:
		binary.LittleEndian.PutUint32(b, uint32(s))
	}
}

// AIFF builds a big-endian PCM AIFF file.
func AIFF(rate, channels, depth int, samples []int32) []byte {
	bps := depth / 8
	data := make([]byte, len(samples)*bps)
	for i, s := range samples {
		b := data[i*bps:]
		switch depth {
		case 8:
			b[0] = byte(s)
		case 16:
			binary.BigEndian.PutUint16(b, uint16(s))
		case 24:
			b[0], b[1], b[2] = byte(s>>16), byte(s>>8), byte(s)
		case 32:
			binary.BigEndian.PutUint32(b, uint32(s))
		}
	}

	frames := len(samples) / channels
	comm := make([]byte, 8+18)
	copy(comm[0:4], "COMM")
	binary.BigEndian.PutUint32(comm[4:8], 18)
	binary.BigEndian.PutUint16(comm[8:10], uint16(channels))
	binary.BigEndian.PutUint32(comm[10:14], uint32(frames))
	binary.BigEndian.PutUint16(comm[14:16], uint16(depth))
	putExtended(comm[16:26], float64(rate))

	ssnd := make([]byte, 16, 16+len(data))
	copy(ssnd[0:4], "SSND")
	binary.BigEndian.PutUint32(ssnd[4:8], uint32(8+len(data)))
	ssnd = append(ssnd, data...)
	if len(data)%2 == 1 {
		ssnd = append(ssnd, 0)
	}

	out := make([]byte, 12, 12+len(comm)+len(ssnd))
	copy(out[0:4], "FORM")
	binary.BigEndian.PutUint32(out[4:8], uint32(4+len(comm)+len(ssnd)))
	copy(out[8:12], "AIFF")
	out = append(out, comm...)
	return append(out, ssnd...)
}

// putExtended writes v as an 80-bit IEEE 754 extended float.
func putExtended(b []byte, v float64) {
	if v <= 0 {
		return
	}
	exp := int(math.Floor(math.Log2(v)))
	mant := uint64(v * math.Pow(2, float64(63-exp)))
	binary.BigEndian.PutUint16(b[0:2], uint16(16383+exp))
	binary.BigEndian.PutUint64(b[2:10], mant)
}

// Sine returns frames of an interleaved sine at depth scale. amplitude is
// 0..1 of full scale.
func Sine(rate, channels, depth, frames int, frequency, amplitude float64) []int32 {
	full := float64(int64(1)<<(depth-1) - 1)
	out := make([]int32, frames*channels)
	for f := range frames {
		v := int32(math.Round(amplitude * full * math.Sin(2*math.Pi*frequency*float64(f)/float64(rate))))
		for c := range channels {
			out[f*channels+c] = v
		}
	}
	return out
}
