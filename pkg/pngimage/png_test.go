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

package pngimage_test

import (
	"bytes"
	"testing"

	"github.com/barwood/pdfmill/internal/testimg"
	"github.com/barwood/pdfmill/pkg/pngimage"
)

// TestDecode2x2TrueColor covers spec.md §8 scenario 4.
func TestDecode2x2TrueColor(t *testing.T) {
	img, err := pngimage.Decode(bytes.NewReader(testimg.PNG2x2()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("dims = %dx%d, want 2x2", img.Width, img.Height)
	}
	if img.ColorType != pngimage.ColorTrueColor {
		t.Fatalf("ColorType = %v, want ColorTrueColor (no alpha requested)", img.ColorType)
	}
	rowBytes := len(img.Pixels) / img.Height
	px := func(x, y int) (r, g, b byte) {
		o := y*rowBytes + x*3
		return img.Pixels[o], img.Pixels[o+1], img.Pixels[o+2]
	}
	if r, g, b := px(0, 0); r != 255 || g != 0 || b != 0 {
		t.Fatalf("pixel(0,0) = %d,%d,%d, want red", r, g, b)
	}
	if r, g, b := px(1, 1); r != 255 || g != 255 || b != 255 {
		t.Fatalf("pixel(1,1) = %d,%d,%d, want white", r, g, b)
	}

	cs := img.ColorSpace()
	if cs.Kind != pngimage.DeviceRGB {
		t.Fatalf("ColorSpace = %v, want DeviceRGB (no cHRM/gAMA in fixture)", cs.Kind)
	}
}

func TestDecodeTrueColorAlphaSMask(t *testing.T) {
	img, err := pngimage.Decode(bytes.NewReader(testimg.PNGTrueColorAlpha()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	tr := img.Transparency()
	if !tr.HasSMask {
		t.Fatal("expected an SMask for a truecolor+alpha image")
	}
	if len(tr.SMask) != img.Width*img.Height {
		t.Fatalf("SMask has %d bytes, want %d", len(tr.SMask), img.Width*img.Height)
	}
	if tr.SMask[1] != 0 { // pixel (1,0) was fully transparent
		t.Fatalf("SMask[1] = %d, want 0", tr.SMask[1])
	}
}

// TestSRGBImpliesStandardChromaticities covers spec.md §4.8: an sRGB
// chunk with no explicit cHRM/gAMA still yields a calibrated CalRGB space
// rather than the plain Device fallback.
func TestSRGBImpliesStandardChromaticities(t *testing.T) {
	img, err := pngimage.Decode(bytes.NewReader(testimg.PNGWithSRGB()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.SRGBIntent != 0 {
		t.Fatalf("SRGBIntent = %d, want 0 (perceptual)", img.SRGBIntent)
	}
	cs := img.ColorSpace()
	if cs.Kind != pngimage.CalRGB {
		t.Fatalf("ColorSpace = %v, want CalRGB", cs.Kind)
	}
	if cs.WhitePoint[1] != 1 {
		t.Fatalf("WhitePoint Y = %g, want 1 (normalized)", cs.WhitePoint[1])
	}
}

// TestICCProfileSelectsICCBased covers spec.md §4.8's colour space
// selection algorithm: an attached iCCP profile whose declared channel
// count matches the image wins over the Device/Cal fallback.
func TestICCProfileSelectsICCBased(t *testing.T) {
	img, err := pngimage.Decode(bytes.NewReader(testimg.PNGWithICCProfile()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.ICCProfileName != "test" {
		t.Fatalf("ICCProfileName = %q, want %q", img.ICCProfileName, "test")
	}
	if len(img.ICCProfile) != 128 {
		t.Fatalf("ICCProfile has %d bytes, want 128", len(img.ICCProfile))
	}
	cs := img.ColorSpace()
	if cs.Kind != pngimage.ICCBased {
		t.Fatalf("ColorSpace = %v, want ICCBased", cs.Kind)
	}
	if cs.N != 3 || cs.Alternate != pngimage.DeviceRGB {
		t.Fatalf("N/Alternate = %d/%v, want 3/DeviceRGB", cs.N, cs.Alternate)
	}
}

func TestBadCRCRejected(t *testing.T) {
	data := testimg.PNG2x2()
	corrupt := append([]byte(nil), data...)
	corrupt[len(corrupt)-1] ^= 0xFF // flip last IEND CRC byte
	if _, err := pngimage.Decode(bytes.NewReader(corrupt)); err == nil {
		t.Fatal("expected CRC mismatch error")
	}
}
