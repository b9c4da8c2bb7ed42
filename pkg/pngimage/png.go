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

// Package pngimage decodes PNG images into the pixel and colorspace data a
// PDF image XObject needs (spec.md §5), independent of image/png: the
// scanline-filter reconstruction below is grounded on the PNG predictor
// postprocessing pdfcpu's flate filter applies to /DecodeParms streams
// (pkg/filter/flateDecode.go's processRow/filterPaeth), repurposed here as
// the primary decode path for a standalone PNG file rather than a
// predictor over an already-flate-decoded PDF stream.
package pngimage

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/pkg/errors"
)

// ColorType mirrors the PNG IHDR colour type byte.
type ColorType uint8

const (
	ColorGray       ColorType = 0
	ColorTrueColor  ColorType = 2
	ColorIndexed    ColorType = 3
	ColorGrayAlpha  ColorType = 4
	ColorTrueColorA ColorType = 6
)

// Image is a fully decoded PNG raster plus the ancillary chunks PDF image
// synthesis needs (spec.md §5.3-5.4): palette, transparency, gamma and
// calibration data.
type Image struct {
	Width, Height int
	BitDepth      int
	ColorType     ColorType
	Interlace     int // 0 none, 1 Adam7

	Pixels []byte // reconstructed, de-interlaced, one row after another, no filter bytes

	Palette []RGB  // PLTE, for ColorIndexed
	Trns    []byte // tRNS: alpha per palette entry (Indexed), or gray/RGB key bytes

	Gamma      float64 // gAMA, 0 if absent
	HasChrm    bool
	WhitePoint [2]float64
	Chroma     [3][2]float64 // red, green, blue xy
	SRGBIntent int           // sRGB chunk rendering intent, -1 if absent

	PixelsPerUnitX, PixelsPerUnitY int // pHYs, 0 if absent
	PHYsMeters                     bool

	ICCProfileName string // iCCP, empty if absent
	ICCProfile     []byte // iCCP, inflated profile bytes
}

// RGB is one 8-bit palette entry.
type RGB struct{ R, G, B uint8 }

var pngSignature = [8]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// Decode reads a PNG byte stream. CRC checks are performed on every chunk
// (spec.md §5.1); a mismatch is reported, not silently ignored.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "pdfmill: pngimage: read")
	}
	if len(data) < 8 || [8]byte(data[:8]) != pngSignature {
		return nil, errors.New("pdfmill: pngimage: missing PNG signature")
	}

	img := &Image{SRGBIntent: -1}
	var idat []byte
	pos := 8
	sawIHDR := false

	for pos+8 <= len(data) {
		length := binary.BigEndian.Uint32(data[pos:])
		typ := string(data[pos+4 : pos+8])
		bodyStart := pos + 8
		bodyEnd := bodyStart + int(length)
		if bodyEnd+4 > len(data) {
			return nil, errors.Errorf("pdfmill: pngimage: chunk %q truncated", typ)
		}
		body := data[bodyStart:bodyEnd]
		wantCRC := binary.BigEndian.Uint32(data[bodyEnd:])
		gotCRC := crc32.ChecksumIEEE(data[pos+4 : bodyEnd])
		if gotCRC != wantCRC {
			return nil, errors.Errorf("pdfmill: pngimage: chunk %q failed CRC check", typ)
		}

		switch typ {
		case "IHDR":
			if err := img.parseIHDR(body); err != nil {
				return nil, err
			}
			sawIHDR = true
		case "PLTE":
			if err := img.parsePLTE(body); err != nil {
				return nil, err
			}
		case "tRNS":
			img.Trns = append([]byte(nil), body...)
		case "iCCP":
			if err := img.parseICCP(body); err != nil {
				return nil, err
			}
		case "gAMA":
			if len(body) == 4 {
				img.Gamma = float64(binary.BigEndian.Uint32(body)) / 100000
			}
		case "cHRM":
			img.parseCHRM(body)
		case "sRGB":
			if len(body) == 1 {
				img.SRGBIntent = int(body[0])
			}
		case "pHYs":
			if len(body) == 9 {
				img.PixelsPerUnitX = int(binary.BigEndian.Uint32(body[0:]))
				img.PixelsPerUnitY = int(binary.BigEndian.Uint32(body[4:]))
				img.PHYsMeters = body[8] == 1
			}
		case "IDAT":
			idat = append(idat, body...)
		case "IEND":
			pos = bodyEnd + 4
			goto done
		}
		pos = bodyEnd + 4
	}
done:
	if !sawIHDR {
		return nil, errors.New("pdfmill: pngimage: missing IHDR")
	}
	if img.ColorType == ColorIndexed && img.Palette == nil {
		return nil, errors.New("pdfmill: pngimage: indexed image missing PLTE")
	}

	raw, err := inflateZlib(idat)
	if err != nil {
		return nil, err
	}

	if err := img.reconstruct(raw); err != nil {
		return nil, err
	}
	return img, nil
}

func (img *Image) parseIHDR(b []byte) error {
	if len(b) != 13 {
		return errors.New("pdfmill: pngimage: malformed IHDR")
	}
	img.Width = int(binary.BigEndian.Uint32(b[0:]))
	img.Height = int(binary.BigEndian.Uint32(b[4:]))
	img.BitDepth = int(b[8])
	img.ColorType = ColorType(b[9])
	if b[10] != 0 {
		return errors.New("pdfmill: pngimage: unsupported compression method")
	}
	if b[11] != 0 {
		return errors.New("pdfmill: pngimage: unsupported filter method")
	}
	img.Interlace = int(b[12])
	if img.Width <= 0 || img.Height <= 0 {
		return errors.New("pdfmill: pngimage: zero-sized image")
	}
	return nil
}

func (img *Image) parsePLTE(b []byte) error {
	if len(b)%3 != 0 {
		return errors.New("pdfmill: pngimage: malformed PLTE")
	}
	img.Palette = make([]RGB, len(b)/3)
	for i := range img.Palette {
		img.Palette[i] = RGB{b[3*i], b[3*i+1], b[3*i+2]}
	}
	return nil
}

func (img *Image) parseCHRM(b []byte) {
	if len(b) != 32 {
		return
	}
	v := func(i int) float64 { return float64(binary.BigEndian.Uint32(b[i:])) / 100000 }
	img.HasChrm = true
	img.WhitePoint = [2]float64{v(0), v(4)}
	img.Chroma = [3][2]float64{{v(8), v(12)}, {v(16), v(20)}, {v(24), v(28)}}
}

func inflateZlib(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "pdfmill: pngimage: zlib header")
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrap(err, "pdfmill: pngimage: inflate")
	}
	return raw, nil
}

// parseICCP decodes an iCCP chunk: a null-terminated profile name, a
// single compression method byte (0 = deflate, the only defined value),
// then the deflated ICC profile itself.
func (img *Image) parseICCP(b []byte) error {
	nul := bytes.IndexByte(b, 0)
	if nul < 0 || nul > 79 {
		return errors.New("pdfmill: pngimage: malformed iCCP: missing name terminator")
	}
	rest := b[nul+1:]
	if len(rest) < 1 {
		return errors.New("pdfmill: pngimage: malformed iCCP: missing compression method")
	}
	if rest[0] != 0 {
		return errors.Errorf("pdfmill: pngimage: iCCP: unsupported compression method %d", rest[0])
	}
	profile, err := inflateZlib(rest[1:])
	if err != nil {
		return errors.Wrap(err, "pdfmill: pngimage: iCCP profile")
	}
	img.ICCProfileName = string(b[:nul])
	img.ICCProfile = profile
	return nil
}

// channelsFor reports sample count per pixel for a colour type.
func channelsFor(ct ColorType) int {
	switch ct {
	case ColorGray, ColorIndexed:
		return 1
	case ColorGrayAlpha:
		return 2
	case ColorTrueColor:
		return 3
	case ColorTrueColorA:
		return 4
	default:
		return 1
	}
}

func (img *Image) reconstruct(raw []byte) error {
	channels := channelsFor(img.ColorType)
	bitsPerPixel := channels * img.BitDepth
	bytesPerPixel := (bitsPerPixel + 7) / 8
	if bytesPerPixel == 0 {
		bytesPerPixel = 1
	}

	if img.Interlace == 1 {
		return img.reconstructAdam7(raw, channels, bitsPerPixel, bytesPerPixel)
	}

	rowBytes := (img.Width*bitsPerPixel + 7) / 8
	out, err := unfilterPlane(raw, img.Width, img.Height, rowBytes, bytesPerPixel)
	if err != nil {
		return err
	}
	img.Pixels = out
	return nil
}

// unfilterPlane reverses the per-scanline PNG filter (spec.md §5.2: None,
// Sub, Up, Average, Paeth), each row prefixed by its filter-type byte.
func unfilterPlane(raw []byte, width, height, rowBytes, bpp int) ([]byte, error) {
	stride := rowBytes + 1
	if len(raw) < stride*height {
		return nil, errors.Errorf("pdfmill: pngimage: decompressed data too short: got %d bytes, want %d", len(raw), stride*height)
	}
	out := make([]byte, rowBytes*height)
	var prior []byte
	for y := 0; y < height; y++ {
		row := raw[y*stride : (y+1)*stride]
		ft := row[0]
		cur := append([]byte(nil), row[1:]...)
		if err := unfilterRow(ft, cur, prior, bpp); err != nil {
			return nil, err
		}
		copy(out[y*rowBytes:], cur)
		prior = cur
	}
	return out, nil
}

func unfilterRow(ft byte, cur, prior []byte, bpp int) error {
	switch ft {
	case 0: // None
	case 1: // Sub
		for i := bpp; i < len(cur); i++ {
			cur[i] += cur[i-bpp]
		}
	case 2: // Up
		for i := range cur {
			if i < len(prior) {
				cur[i] += prior[i]
			}
		}
	case 3: // Average
		for i := 0; i < len(cur); i++ {
			var left, up int
			if i >= bpp {
				left = int(cur[i-bpp])
			}
			if i < len(prior) {
				up = int(prior[i])
			}
			cur[i] += uint8((left + up) / 2)
		}
	case 4: // Paeth
		filterPaeth(cur, prior, bpp)
	default:
		return errors.Errorf("pdfmill: pngimage: unknown filter type %d", ft)
	}
	return nil
}

// filterPaeth reverses the Paeth predictor in place, grounded on pdfcpu's
// flate-filter PNG predictor of the same name.
func filterPaeth(cur, prior []byte, bpp int) {
	for i := range cur {
		var left, up, upLeft int
		if i >= bpp {
			left = int(cur[i-bpp])
		}
		if i < len(prior) {
			up = int(prior[i])
		}
		if i >= bpp && i-bpp < len(prior) {
			upLeft = int(prior[i-bpp])
		}
		cur[i] += uint8(paethPredictor(left, up, upLeft))
	}
}

func paethPredictor(a, b, c int) int {
	p := a + b - c
	pa, pb, pc := abs(p-a), abs(p-b), abs(p-c)
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
