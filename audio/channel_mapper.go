// SPDX-License-Identifier: EPL-2.0

package audio

// ChannelMapper folds interleaved samples of any channel count and bit depth
// into stereo Frames at InternalBits precision.
//
// Mono is duplicated to both sides. Stereo passes through. Wider layouts are
// averaged: even channels to the left, odd channels to the right.
type ChannelMapper struct {
	channels int
	shift    int // left shift to reach InternalBits; negative shifts right
}

func NewChannelMapper(f Format) *ChannelMapper {
	ch := f.Channels
	if ch < 1 {
		ch = 1
	}
	depth := f.BitDepth
	if depth == 0 {
		depth = 16
	}
	return &ChannelMapper{
		channels: ch,
		shift:    InternalBits - depth,
	}
}

func (m *ChannelMapper) Channels() int { return m.channels }

func (m *ChannelMapper) scale(v int32) int32 {
	if m.shift >= 0 {
		return v << m.shift
	}
	return v >> -m.shift
}

// Map converts src into dst and returns the number of frames written, which
// is the smaller of len(dst) and the whole frames in src.
func (m *ChannelMapper) Map(dst []Frame, src []int32) (int, error) {
	if len(src)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	frames := min(len(dst), len(src)/m.channels)

	switch m.channels {
	case 1:
		for f := range frames {
			v := m.scale(src[f])
			dst[f] = Frame{L: v, R: v}
		}
	case 2:
		for f := range frames {
			idx := f << 1
			dst[f] = Frame{L: m.scale(src[idx]), R: m.scale(src[idx+1])}
		}
	default:
		left := int64((m.channels + 1) / 2)
		right := int64(m.channels / 2)
		for f := range frames {
			var l, r int64
			base := f * m.channels
			for c := range m.channels {
				if c&1 == 0 {
					l += int64(src[base+c])
				} else {
					r += int64(src[base+c])
				}
			}
			dst[f] = Frame{L: m.scale(int32(l / left)), R: m.scale(int32(r / right))}
		}
	}

	return frames, nil
}
