// SPDX-License-Identifier: EPL-2.0

package ring

import (
	"math/rand/v2"
	"testing"

	"github.com/ik5/audcore/audio"
)

// frames builds frames with L set to each value and R to its negation.
func frames(v ...int32) []audio.Frame {
	out := make([]audio.Frame, len(v))
	for i, x := range v {
		out[i] = audio.Frame{L: x, R: -x}
	}
	return out
}

func checkInvariant(t *testing.T, b *Buffer) {
	t.Helper()
	if got := b.AvailableRead() + b.AvailableWrite(); got != b.Cap() {
		t.Fatalf("AvailableRead()+AvailableWrite() = %d, want Cap() = %d", got, b.Cap())
	}
	if b.AvailableRead() < 0 || b.AvailableRead() > b.Cap() {
		t.Fatalf("AvailableRead() = %d outside [0, %d]", b.AvailableRead(), b.Cap())
	}
	if got := b.Written() - b.Consumed(); got != uint64(b.AvailableRead()) {
		t.Fatalf("Written()-Consumed() = %d, want AvailableRead() = %d", got, b.AvailableRead())
	}
}

func TestBuffer_WriteRead(t *testing.T) {
	t.Parallel()

	b := New(4)
	if n := b.Write(frames(1, 2, 3)); n != 3 {
		t.Fatalf("Write() = %d, want 3", n)
	}
	checkInvariant(t, b)

	out := make([]audio.Frame, 2)
	if n := b.Read(out); n != 2 || out[0].L != 1 || out[1].L != 2 {
		t.Fatalf("Read() = %d %v, want 2 frames 1 2", n, out)
	}

	// Wraps around the end of the backing array.
	if n := b.Write(frames(4, 5, 6, 7)); n != 3 {
		t.Fatalf("Write() = %d, want 3 (one slot still taken)", n)
	}
	checkInvariant(t, b)

	out = make([]audio.Frame, 8)
	n := b.Read(out)
	want := frames(3, 4, 5, 6)
	if n != len(want) {
		t.Fatalf("Read() = %d, want %d", n, len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestBuffer_FullRangeSamples(t *testing.T) {
	t.Parallel()

	b := New(2)
	in := []audio.Frame{{L: -1 << 31, R: 1<<31 - 1}, {L: -8388608, R: 8388607}}
	b.Write(in)
	out := make([]audio.Frame, 2)
	b.Read(out)
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestBuffer_FullAndEmpty(t *testing.T) {
	t.Parallel()

	b := New(3)
	if n := b.Read(make([]audio.Frame, 3)); n != 0 {
		t.Errorf("Read() on empty = %d, want 0", n)
	}
	b.Write(frames(1, 2, 3))
	if n := b.Write(frames(4)); n != 0 {
		t.Errorf("Write() on full = %d, want 0", n)
	}
	if b.AvailableWrite() != 0 {
		t.Errorf("AvailableWrite() = %d, want 0", b.AvailableWrite())
	}
	checkInvariant(t, b)
}

func TestBuffer_PeekDoesNotConsume(t *testing.T) {
	t.Parallel()

	b := New(8)
	b.Write(frames(9, 8, 7))
	p := make([]audio.Frame, 2)
	if n := b.Peek(p); n != 2 {
		t.Fatalf("Peek() = %d, want 2", n)
	}
	if p[0].L != 9 || p[1].L != 8 {
		t.Errorf("Peek() = %v, want frames 9 8", p)
	}
	if b.AvailableRead() != 3 {
		t.Errorf("AvailableRead() after Peek = %d, want 3", b.AvailableRead())
	}
	out := make([]audio.Frame, 3)
	if n := b.Read(out); n != 3 || out[0].L != 9 {
		t.Errorf("Read() after Peek = %d %v, want 3 starting at 9", n, out)
	}
}

func TestBuffer_DiscardAndReset(t *testing.T) {
	t.Parallel()

	b := New(8)
	b.Write(frames(1, 2, 3, 4, 5))
	if n := b.Discard(2); n != 2 {
		t.Errorf("Discard(2) = %d", n)
	}
	out := make([]audio.Frame, 1)
	if b.Peek(out); out[0].L != 3 {
		t.Errorf("Peek() after Discard = %v, want frame 3", out[0])
	}
	if n := b.Discard(100); n != 3 {
		t.Errorf("Discard(100) = %d, want 3", n)
	}
	if n := b.Discard(-1); n != 0 {
		t.Errorf("Discard(-1) = %d, want 0", n)
	}
	if b.Consumed() != 5 || b.Written() != 5 {
		t.Errorf("Consumed()/Written() = %d/%d, want 5/5", b.Consumed(), b.Written())
	}
	b.Reset()
	checkInvariant(t, b)
	if b.AvailableWrite() != 8 {
		t.Errorf("AvailableWrite() after Reset = %d, want 8", b.AvailableWrite())
	}
}

func TestNew_MinimumCapacity(t *testing.T) {
	t.Parallel()

	if got := New(0).Cap(); got != 1 {
		t.Errorf("New(0).Cap() = %d, want 1", got)
	}
}

// TestBuffer_RandomOps checks the capacity invariant after every operation
// and that reads return exactly the written sequence, never unwritten data.
func TestBuffer_RandomOps(t *testing.T) {
	t.Parallel()

	for seed := range uint64(20) {
		rng := rand.New(rand.NewPCG(seed, seed*7+1))
		capacity := 1 + rng.IntN(64)
		b := New(capacity)

		var next, expect int32
		for range 2000 {
			if rng.IntN(2) == 0 {
				chunk := make([]audio.Frame, rng.IntN(2*capacity))
				for i := range chunk {
					v := next + int32(i)
					chunk[i] = audio.Frame{L: v, R: -v}
				}
				free := b.AvailableWrite()
				n := b.Write(chunk)
				if n != min(len(chunk), free) {
					t.Fatalf("seed %d: Write() = %d, want %d", seed, n, min(len(chunk), free))
				}
				next += int32(n)
			} else {
				out := make([]audio.Frame, rng.IntN(2*capacity))
				avail := b.AvailableRead()
				n := b.Read(out)
				if n != min(len(out), avail) {
					t.Fatalf("seed %d: Read() = %d, want %d", seed, n, min(len(out), avail))
				}
				for i := range n {
					if out[i].L != expect || out[i].R != -expect {
						t.Fatalf("seed %d: read %v, want {%d %d}", seed, out[i], expect, -expect)
					}
					expect++
				}
			}
			checkInvariant(t, b)
			if expect > next {
				t.Fatalf("seed %d: read past write cursor", seed)
			}
		}
	}
}

func BenchmarkBuffer_WriteRead(b *testing.B) {
	r := New(4096)
	chunk := make([]audio.Frame, 1152)
	out := make([]audio.Frame, 1024)

	b.ReportAllocs()

	for b.Loop() {
		r.Write(chunk)
		r.Read(out)
		if r.AvailableWrite() < len(chunk) {
			r.Discard(r.AvailableRead())
		}
	}
}
