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

// Transparency describes how a PDF image XObject should express this
// image's alpha channel (spec.md §5.4): an explicit soft mask for alpha
// planes, or a colour-key /Mask range for single-colour transparency.
type Transparency struct {
	HasSMask bool
	SMask    []byte // one byte per pixel, full resolution, row-major

	HasColorKey bool
	ColorKey    []int // pairs of (min,max) per component, as PDF /Mask expects
}

// Transparency derives the mask PDF needs to emit alongside this image's
// pixel data, or a zero-value Transparency if the image is fully opaque.
func (img *Image) Transparency() Transparency {
	switch img.ColorType {
	case ColorGrayAlpha, ColorTrueColorA:
		return Transparency{HasSMask: true, SMask: img.extractAlphaPlane()}
	case ColorIndexed:
		if len(img.Trns) > 0 {
			return Transparency{HasSMask: true, SMask: img.indexedAlphaPlane()}
		}
	default:
		if len(img.Trns) > 0 {
			return Transparency{HasColorKey: true, ColorKey: img.colorKeyRanges()}
		}
	}
	return Transparency{}
}

func (img *Image) extractAlphaPlane() []byte {
	channels := channelsFor(img.ColorType)
	bytesPerSample := img.BitDepth / 8
	if bytesPerSample < 1 {
		bytesPerSample = 1
	}
	stride := channels * bytesPerSample
	out := make([]byte, img.Width*img.Height)
	rowBytes := len(img.Pixels) / img.Height
	alphaOff := (channels - 1) * bytesPerSample
	for y := 0; y < img.Height; y++ {
		row := img.Pixels[y*rowBytes : (y+1)*rowBytes]
		for x := 0; x < img.Width; x++ {
			out[y*img.Width+x] = row[x*stride+alphaOff]
		}
	}
	return out
}

func (img *Image) indexedAlphaPlane() []byte {
	out := make([]byte, img.Width*img.Height)
	rowBytes := len(img.Pixels) / img.Height
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			idx := getBits(img.Pixels[y*rowBytes:(y+1)*rowBytes], x*img.BitDepth, img.BitDepth)
			a := uint8(255)
			if int(idx) < len(img.Trns) {
				a = img.Trns[idx]
			}
			out[y*img.Width+x] = a
		}
	}
	return out
}

// colorKeyRanges builds the PDF /Mask colour-key array: one (min,max)
// sample-value pair per component, matching the single tRNS colour the
// PNG designates fully transparent.
func (img *Image) colorKeyRanges() []int {
	n := len(img.Trns) / 2
	out := make([]int, 0, 2*n)
	for i := 0; i < n; i++ {
		v := int(img.Trns[2*i])<<8 | int(img.Trns[2*i+1])
		out = append(out, v, v)
	}
	return out
}
