// SPDX-License-Identifier: EPL-2.0

package audiotest

import "encoding/binary"

const (
	// MP3FrameSize is the size of a MP3Frame: MPEG-1 Layer III, 128 kbit/s,
	// 44100 Hz, no padding.
	MP3FrameSize = 417
	// MP3FrameSamples is the PCM frames one MP3Frame decodes to.
	MP3FrameSamples = 1152

	mp3SideInfo = 32 // MPEG-1 stereo
)

// MP3Frame returns a silent stereo MPEG-1 Layer III frame. With crc set the
// header carries a CRC-16 over the header and side info.
func MP3Frame(crc bool) []byte {
	f := make([]byte, MP3FrameSize)
	f[0], f[1], f[2], f[3] = 0xFF, 0xFB, 0x90, 0x00
	if crc {
		f[1] = 0xFA
		sum := MPEGCRC(f[2:4], f[6:6+mp3SideInfo])
		binary.BigEndian.PutUint16(f[4:6], sum)
	}
	return f
}

// XingFrame returns a silent frame carrying a Xing tag (id "Xing" or
// "Info") with the frame count set, or without it when frames is negative.
func XingFrame(id string, frames int) []byte {
	f := MP3Frame(false)
	off := 4 + mp3SideInfo
	copy(f[off:], id)
	if frames >= 0 {
		binary.BigEndian.PutUint32(f[off+4:], 1)
		binary.BigEndian.PutUint32(f[off+8:], uint32(frames))
	}
	return f
}

// MP3 concatenates n frames.
func MP3(n int, crc bool) []byte {
	out := make([]byte, 0, n*MP3FrameSize)
	for range n {
		out = append(out, MP3Frame(crc)...)
	}
	return out
}

// MPEGCRC is the CRC-16 (poly 0x8005, init 0xFFFF) used by MPEG audio.
func MPEGCRC(parts ...[]byte) uint16 {
	crc := uint16(0xFFFF)
	for _, p := range parts {
		for _, b := range p {
			crc ^= uint16(b) << 8
			for range 8 {
				if crc&0x8000 != 0 {
					crc = crc<<1 ^ 0x8005
				} else {
					crc <<= 1
				}
			}
		}
	}
	return crc
}

// ID3v2 returns an empty ID3v2.4 tag padded to size bytes of payload.
func ID3v2(size int) []byte {
	tag := make([]byte, 10+size)
	copy(tag, "ID3")
	tag[3] = 4
	tag[6] = byte(size>>21) & 0x7f
	tag[7] = byte(size>>14) & 0x7f
	tag[8] = byte(size>>7) & 0x7f
	tag[9] = byte(size) & 0x7f
	return tag
}

// ADTSFrame wraps payload in a 7-byte ADTS header (AAC LC, no CRC) for the
// given sampling frequency index and channel configuration.
func ADTSFrame(srIndex, channels int, payload []byte) []byte {
	n := 7 + len(payload)
	h := []byte{
		0xFF,
		0xF1, // MPEG-4, layer 0, no CRC
		byte(1<<6 | srIndex<<2 | channels>>2),
		byte(channels&3<<6 | n>>11),
		byte(n >> 3),
		byte(n&7<<5 | 0x1F),
		0xFC,
	}
	return append(h, payload...)
}
