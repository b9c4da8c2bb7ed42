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

package pngimage

import "github.com/pkg/errors"

// adam7Pass describes one of the seven Adam7 interlacing passes: the
// starting column/row and the column/row stride within the full image
// that this pass's pixels occupy (spec.md §5.2's interlace pass table).
type adam7Pass struct{ xStart, yStart, xStep, yStep int }

var adam7Passes = [7]adam7Pass{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

func (p adam7Pass) dims(width, height int) (cols, rows int) {
	if width <= p.xStart {
		cols = 0
	} else {
		cols = (width-p.xStart+p.xStep-1)/p.xStep
	}
	if height <= p.yStart {
		rows = 0
	} else {
		rows = (height-p.yStart+p.yStep-1)/p.yStep
	}
	return
}

// reconstructAdam7 unfilters each of the seven passes independently (each
// pass is itself a miniature rectangular image for filtering purposes),
// then scatters the resulting samples into the full-resolution plane.
func (img *Image) reconstructAdam7(raw []byte, channels, bitsPerPixel, bytesPerPixel int) error {
	fullRowBytes := (img.Width*bitsPerPixel + 7) / 8
	out := make([]byte, fullRowBytes*img.Height)

	off := 0
	for _, pass := range adam7Passes {
		cols, rows := pass.dims(img.Width, img.Height)
		if cols == 0 || rows == 0 {
			continue
		}
		passRowBytes := (cols*bitsPerPixel + 7) / 8
		stride := passRowBytes + 1
		need := stride * rows
		if off+need > len(raw) {
			return errors.New("pdfmill: pngimage: Adam7 data too short")
		}
		passPixels, err := unfilterPlane(raw[off:off+need], cols, rows, passRowBytes, bytesPerPixel)
		if err != nil {
			return err
		}
		off += need

		scatterPass(out, passPixels, pass, cols, rows, img.Width, bitsPerPixel)
	}
	img.Pixels = out
	return nil
}

// scatterPass copies one Adam7 pass's reconstructed samples into their
// final position in the full-resolution raster. Sub-byte bit depths (1/2/4)
// are handled bit-by-bit; byte-aligned depths (8/16-multiple channels) copy
// whole bytes per sample.
func scatterPass(out, passPixels []byte, p adam7Pass, cols, rows, fullWidth, bitsPerPixel int) {
	fullRowBytes := (fullWidth*bitsPerPixel + 7) / 8
	passRowBytes := (cols*bitsPerPixel + 7) / 8

	if bitsPerPixel%8 == 0 {
		bytesPerSample := bitsPerPixel / 8
		for ry := 0; ry < rows; ry++ {
			destY := p.yStart + ry*p.yStep
			srcRow := passPixels[ry*passRowBytes : (ry+1)*passRowBytes]
			for rx := 0; rx < cols; rx++ {
				destX := p.xStart + rx*p.xStep
				srcOff := rx * bytesPerSample
				destOff := destY*fullRowBytes + destX*bytesPerSample
				copy(out[destOff:destOff+bytesPerSample], srcRow[srcOff:srcOff+bytesPerSample])
			}
		}
		return
	}

	for ry := 0; ry < rows; ry++ {
		destY := p.yStart + ry*p.yStep
		for rx := 0; rx < cols; rx++ {
			destX := p.xStart + rx*p.xStep
			bit := getBits(passPixels, ry*passRowBytes*8+rx*bitsPerPixel, bitsPerPixel)
			setBits(out, destY*fullRowBytes*8+destX*bitsPerPixel, bitsPerPixel, bit)
		}
	}
}

func getBits(data []byte, bitOff, n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		byteIx := (bitOff + i) / 8
		bitIx := 7 - (bitOff+i)%8
		bit := (data[byteIx] >> bitIx) & 1
		v = v<<1 | uint32(bit)
	}
	return v
}

func setBits(data []byte, bitOff, n int, v uint32) {
	for i := 0; i < n; i++ {
		bit := (v >> (n - 1 - i)) & 1
		byteIx := (bitOff + i) / 8
		bitIx := 7 - (bitOff+i)%8
		if bit != 0 {
			data[byteIx] |= 1 << bitIx
		} else {
			data[byteIx] &^= 1 << bitIx
		}
	}
}
