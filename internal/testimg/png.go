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

package testimg

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
)

// PNG2x2 builds a 2x2 truecolor (non-interlaced, no alpha) PNG matching
// the corner pixels red/green/blue/white, encoded with the standard
// library's encoder purely as a test fixture generator (pdfmill's own
// decoder in pkg/pngimage never uses image/png).
func PNG2x2() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{255, 255, 255, 255})

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&buf, img); err != nil {
		panic(err) // fixture generation only; a failure here is a test bug
	}
	return buf.Bytes()
}

// PNGTrueColorAlpha builds a 2x2 truecolor+alpha PNG with one fully
// transparent corner, exercising the SMask extraction path.
func PNGTrueColorAlpha() []byte {
	ga := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	ga.Set(0, 0, color.NRGBA{128, 128, 128, 255})
	ga.Set(1, 0, color.NRGBA{200, 200, 200, 0})
	ga.Set(0, 1, color.NRGBA{50, 50, 50, 255})
	ga.Set(1, 1, color.NRGBA{10, 10, 10, 128})

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&buf, ga); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// injectChunk splices a raw ancillary chunk right after the IHDR chunk of
// an encoded PNG, computing its CRC. The standard library's encoder has no
// option to write iCCP/sRGB chunks, so fixtures needing one build off an
// already-encoded image instead.
func injectChunk(png []byte, typ string, body []byte) []byte {
	const ihdrEnd = 8 + 8 + 13 + 4 // signature + length/type + IHDR body + CRC

	chunk := binary.BigEndian.AppendUint32(nil, uint32(len(body)))
	chunk = append(chunk, typ...)
	chunk = append(chunk, body...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	out := append([]byte(nil), png[:ihdrEnd]...)
	out = append(out, chunk...)
	out = append(out, png[ihdrEnd:]...)
	return out
}

// PNGWithSRGB builds the PNG2x2 fixture with an sRGB chunk (rendering
// intent 0, perceptual) and no explicit cHRM/gAMA, exercising the
// sRGB-implies-standard-chromaticities colour space fallback.
func PNGWithSRGB() []byte {
	return injectChunk(PNG2x2(), "sRGB", []byte{0})
}

// PNGWithICCProfile builds the PNG2x2 fixture with an iCCP chunk carrying
// a minimal ICC profile header tagged "RGB " (matching PNG2x2's 3-channel
// truecolor data), deflated as the chunk format requires.
func PNGWithICCProfile() []byte {
	profile := make([]byte, 128)
	copy(profile[16:20], "RGB ")

	var zbuf bytes.Buffer
	zw := zlib.NewWriter(&zbuf)
	zw.Write(profile)
	zw.Close()

	body := append([]byte("test\x00\x00"), zbuf.Bytes()...)
	return injectChunk(PNG2x2(), "iCCP", body)
}
