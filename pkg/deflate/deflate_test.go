/*
Copyright 2018 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package deflate_test

import (
	"bytes"
	"compress/zlib"
	"io"
	"math/rand"
	"testing"

	"github.com/barwood/pdfmill/pkg/deflate"
)

func inflate(t *testing.T, wrapped []byte) []byte {
	t.Helper()
	r, err := zlib.NewReader(bytes.NewReader(wrapped))
	if err != nil {
		t.Fatalf("zlib.NewReader: %v", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	return out
}

func TestRoundTripScenario1(t *testing.T) {
	in := []byte{0x41, 0x42, 0x43, 0x41}
	opts := deflate.DefaultOptions()
	opts.ZlibWrap = true
	out := deflate.Compress(in, opts)
	if out[0] != 0x78 || out[1] != 0x9C {
		t.Fatalf("want zlib header 78 9C, got %02x %02x", out[0], out[1])
	}
	got := inflate(t, out)
	if !bytes.Equal(got, in) {
		t.Fatalf("round trip mismatch: got %v want %v", got, in)
	}
}

func TestAdler32Wikipedia(t *testing.T) {
	got := deflate.Adler32([]byte("Wikipedia"))
	if got != 0x11E60398 {
		t.Fatalf("Adler32(Wikipedia) = %#x, want 0x11E60398", got)
	}
}

func TestAdler32Empty(t *testing.T) {
	if got := deflate.Adler32(nil); got != 1 {
		t.Fatalf("Adler32(empty) = %d, want 1", got)
	}
}

func TestRepeatedByteIsTiny(t *testing.T) {
	in := bytes.Repeat([]byte{0x61}, 1000)
	opts := deflate.DefaultOptions()
	opts.ZlibWrap = true
	out := deflate.Compress(in, opts)
	got := inflate(t, out)
	if !bytes.Equal(got, in) {
		t.Fatal("round trip mismatch")
	}
	if len(out)-6 > 20 {
		t.Fatalf("compressed payload %d bytes, want <= 20 excluding the 6-byte zlib wrapper", len(out)-6)
	}
}

func TestEmptyInput(t *testing.T) {
	opts := deflate.DefaultOptions()
	opts.ZlibWrap = true
	out := deflate.Compress(nil, opts)
	got := inflate(t, out)
	if len(got) != 0 {
		t.Fatalf("want empty output, got %d bytes", len(got))
	}
}

func TestRoundTripRandomSizes(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	sizes := []int{0, 1, 2, 3, 100, 4095, 4096, 4097, 8192, 20000, 70000}
	for _, size := range sizes {
		in := make([]byte, size)
		// A mix of random and repeated regions exercises both literal runs
		// and long back-references.
		for i := range in {
			if i > 0 && r.Intn(3) == 0 {
				in[i] = in[i-1]
			} else {
				in[i] = byte(r.Intn(6)) // small alphabet encourages matches
			}
		}
		opts := deflate.DefaultOptions()
		opts.ZlibWrap = true
		out := deflate.Compress(in, opts)
		got := inflate(t, out)
		if !bytes.Equal(got, in) {
			t.Fatalf("size %d: round trip mismatch", size)
		}
	}
}

func TestRoundTripThreaded(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	in := make([]byte, 50000)
	for i := range in {
		if i > 64 && r.Intn(4) == 0 {
			copy(in[i:], in[i-64:i-64+8])
		} else {
			in[i] = byte(r.Intn(16))
		}
	}
	opts := deflate.DefaultOptions()
	opts.ZlibWrap = true
	opts.Threaded = true
	opts.StartBlockSize = 2048
	out := deflate.Compress(in, opts)
	got := inflate(t, out)
	if !bytes.Equal(got, in) {
		t.Fatal("threaded round trip mismatch")
	}
}

func TestRoundTripBoundaryTuning(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	in := make([]byte, 30000)
	for i := range in {
		in[i] = byte(r.Intn(8))
	}
	opts := deflate.DefaultOptions()
	opts.ZlibWrap = true
	opts.BoundaryTuning = true
	out := deflate.Compress(in, opts)
	got := inflate(t, out)
	if !bytes.Equal(got, in) {
		t.Fatal("boundary-tuned round trip mismatch")
	}
}

func TestDistanceExactly32768(t *testing.T) {
	// Random filler, so the copied 16 bytes have no nearer occurrence and
	// the match has to reach back exactly 32768 bytes.
	r := rand.New(rand.NewSource(5))
	in := make([]byte, 32768+16)
	r.Read(in[:32768])
	copy(in[32768:], in[0:16])
	opts := deflate.DefaultOptions()
	opts.ZlibWrap = true
	out := deflate.Compress(in, opts)
	got := inflate(t, out)
	if !bytes.Equal(got, in) {
		t.Fatal("round trip mismatch at max distance")
	}
}
