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

// ColorSpaceKind names which PDF colour space family a decoded PNG maps
// to (spec.md §5.3: Indexed, DeviceGray, DeviceRGB, CalGray, CalRGB).
type ColorSpaceKind int

const (
	DeviceGray ColorSpaceKind = iota
	DeviceRGB
	CalGray
	CalRGB
	Indexed
	ICCBased
)

// ColorSpace is everything pkg/pdfdoc needs to emit a PDF /ColorSpace
// entry for this image, without pdfdoc needing to know about PNG chunks.
type ColorSpace struct {
	Kind ColorSpaceKind

	// CalGray/CalRGB only.
	WhitePoint [3]float64
	Gamma      [3]float64 // CalRGB per-channel; CalGray uses Gamma[0]
	Matrix     [9]float64 // CalRGB only, XYZ transform derived from cHRM

	// Indexed only.
	Base    ColorSpaceKind // always DeviceRGB for PNG palettes
	Palette []RGB

	// ICCBased only: the profile is attached as a deferred stream
	// placeholder (pkg/pdfdoc decides the actual object id), with
	// Alternate as the /Alternate fallback space and N its component count.
	ICCProfile []byte
	Alternate  ColorSpaceKind
	N          int
}

// ColorSpace derives the PDF colour space for this image: Indexed if a
// palette is present, else ICCBased if an iCCP profile matching the
// image's channel count is attached, else CalGray/CalRGB when cHRM+gAMA
// supply enough to build an exact calibration, else the plain Device
// space (spec.md §5.3, §4.8).
func (img *Image) ColorSpace() ColorSpace {
	if img.ColorType == ColorIndexed {
		return ColorSpace{Kind: Indexed, Base: DeviceRGB, Palette: img.Palette}
	}

	isGray := img.ColorType == ColorGray || img.ColorType == ColorGrayAlpha

	if len(img.ICCProfile) > 0 {
		if n, ok := iccColorSpaceN(img.ICCProfile); ok {
			want := 3
			alt := DeviceRGB
			if isGray {
				want, alt = 1, DeviceGray
			}
			if n == want {
				return ColorSpace{Kind: ICCBased, ICCProfile: img.ICCProfile, Alternate: alt, N: n}
			}
		}
	}

	hasChrm, chromaGamma, whitePoint, chroma := img.HasChrm, img.Gamma, img.WhitePoint, img.Chroma
	if img.SRGBIntent >= 0 && (!hasChrm || chromaGamma == 0) {
		// sRGB implies the standard chromaticities and a nominal 2.2
		// gamma (spec.md §4.8), used whenever an explicit cHRM/gAMA
		// pair isn't already present to override it.
		hasChrm = true
		chromaGamma = 1 / 2.2
		whitePoint = [2]float64{0.3127, 0.3290}
		chroma = [3][2]float64{{0.64, 0.33}, {0.30, 0.60}, {0.15, 0.06}}
	}

	if !hasChrm || chromaGamma == 0 {
		if isGray {
			return ColorSpace{Kind: DeviceGray}
		}
		return ColorSpace{Kind: DeviceRGB}
	}

	wx, wy := whitePoint[0], whitePoint[1]
	wp := xyToXYZ(wx, wy)
	gamma := 1.0 / chromaGamma

	if isGray {
		return ColorSpace{Kind: CalGray, WhitePoint: wp, Gamma: [3]float64{gamma, gamma, gamma}}
	}

	m := chromaticityMatrix(chroma, wp)
	return ColorSpace{
		Kind:       CalRGB,
		WhitePoint: wp,
		Gamma:      [3]float64{gamma, gamma, gamma},
		Matrix:     m,
	}
}

// iccColorSpaceN reads the data colour space signature out of an ICC
// profile header (bytes 16-19) and reports the component count it
// implies, so ColorSpace can reject a profile that doesn't match the
// PNG's own channel count instead of embedding a contradictory one.
func iccColorSpaceN(profile []byte) (n int, ok bool) {
	if len(profile) < 20 {
		return 0, false
	}
	switch string(profile[16:20]) {
	case "GRAY":
		return 1, true
	case "RGB ":
		return 3, true
	case "CMYK":
		return 4, true
	default:
		return 0, false
	}
}

func xyToXYZ(x, y float64) [3]float64 {
	if y == 0 {
		return [3]float64{0, 0, 0}
	}
	return [3]float64{x / y, 1, (1 - x - y) / y}
}

// chromaticityMatrix builds the CalRGB /Matrix (RGB-to-XYZ, spec.md §5.3)
// from the PNG cHRM primaries and white point, following the standard
// PNG-to-XYZ derivation: solve for per-channel scale factors S such that
// M * S * (1,1,1) = whitePointXYZ, where M's columns are the primaries'
// XYZ coordinates.
func chromaticityMatrix(chroma [3][2]float64, whiteXYZ [3]float64) [9]float64 {
	var xyz [3][3]float64
	for i, c := range chroma {
		xyz[i] = xyToXYZ(c[0], c[1])
	}

	// Build the 3x3 matrix with primaries as columns, then invert it.
	a := [3][3]float64{
		{xyz[0][0], xyz[1][0], xyz[2][0]},
		{xyz[0][1], xyz[1][1], xyz[2][1]},
		{xyz[0][2], xyz[1][2], xyz[2][2]},
	}
	inv, ok := invert3x3(a)
	if !ok {
		// Degenerate primaries; fall back to sRGB-ish identity scaling.
		return [9]float64{
			xyz[0][0], xyz[1][0], xyz[2][0],
			xyz[0][1], xyz[1][1], xyz[2][1],
			xyz[0][2], xyz[1][2], xyz[2][2],
		}
	}
	s := mulVec3(inv, whiteXYZ)

	return [9]float64{
		xyz[0][0] * s[0], xyz[1][0] * s[1], xyz[2][0] * s[2],
		xyz[0][1] * s[0], xyz[1][1] * s[1], xyz[2][1] * s[2],
		xyz[0][2] * s[0], xyz[1][2] * s[1], xyz[2][2] * s[2],
	}
}

func invert3x3(m [3][3]float64) ([3][3]float64, bool) {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if det == 0 {
		return [3][3]float64{}, false
	}
	invDet := 1 / det
	var inv [3][3]float64
	inv[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * invDet
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invDet
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invDet
	inv[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * invDet
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invDet
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * invDet
	inv[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * invDet
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * invDet
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * invDet
	return inv, true
}

func mulVec3(m [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}
