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

package pdfdoc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/barwood/pdfmill/pkg/pngimage"
)

// PutPNGImage decodes a PNG and writes it as a PDF image XObject (spec.md
// §4.8-4.9): an /Indexed, /DeviceGray, /DeviceRGB, /CalGray, /CalRGB or
// /ICCBased colour space, an optional /SMask or colour-key /Mask, and the
// pixel data, written through PutStream (flate-compressed when the
// document was created with New(true)). Returns the image object's id.
func (d *Document) PutPNGImage(png io.Reader) (int, error) {
	img, err := pngimage.Decode(png)
	if err != nil {
		return 0, wrapErr(MalformedInput, "PNG", err)
	}

	cs := img.ColorSpace()
	csEntry, err := d.colorSpaceEntry(cs)
	if err != nil {
		return 0, err
	}

	tr := img.Transparency()
	var extra bytes.Buffer
	if tr.HasSMask {
		smaskID := d.putSMask(img.Width, img.Height, tr.SMask)
		fmt.Fprintf(&extra, "/SMask %d 0 R", smaskID)
	} else if tr.HasColorKey {
		extra.WriteString("/Mask[")
		for i, v := range tr.ColorKey {
			if i > 0 {
				extra.WriteByte(' ')
			}
			fmt.Fprintf(&extra, "%d", v)
		}
		extra.WriteString("]")
	}

	dict := fmt.Sprintf("/Type/XObject/Subtype/Image/Width %d/Height %d/ColorSpace %s/BitsPerComponent %d%s",
		img.Width, img.Height, csEntry, min(img.BitDepth, 8), extra.String())

	id := d.PutStream(img.Pixels, dict)
	return id, nil
}

// colorSpaceEntry renders the /ColorSpace dictionary entry.
func (d *Document) colorSpaceEntry(cs pngimage.ColorSpace) (string, error) {
	switch cs.Kind {
	case pngimage.DeviceGray:
		return "/DeviceGray", nil
	case pngimage.DeviceRGB:
		return "/DeviceRGB", nil
	case pngimage.CalGray:
		s := fmt.Sprintf("[/CalGray<</WhitePoint[%g %g %g]/Gamma %g>>]",
			cs.WhitePoint[0], cs.WhitePoint[1], cs.WhitePoint[2], cs.Gamma[0])
		return s, nil
	case pngimage.CalRGB:
		s := fmt.Sprintf("[/CalRGB<</WhitePoint[%g %g %g]/Gamma[%g %g %g]/Matrix[%g %g %g %g %g %g %g %g %g]>>]",
			cs.WhitePoint[0], cs.WhitePoint[1], cs.WhitePoint[2],
			cs.Gamma[0], cs.Gamma[1], cs.Gamma[2],
			cs.Matrix[0], cs.Matrix[1], cs.Matrix[2],
			cs.Matrix[3], cs.Matrix[4], cs.Matrix[5],
			cs.Matrix[6], cs.Matrix[7], cs.Matrix[8])
		return s, nil
	case pngimage.Indexed:
		var raw bytes.Buffer
		for _, p := range cs.Palette {
			raw.WriteByte(p.R)
			raw.WriteByte(p.G)
			raw.WriteByte(p.B)
		}
		hex := HexString(raw.Bytes())
		s := fmt.Sprintf("[/Indexed/DeviceRGB %d%s]", len(cs.Palette)-1, hex)
		return s, nil
	case pngimage.ICCBased:
		alt := "/DeviceRGB"
		if cs.Alternate == pngimage.DeviceGray {
			alt = "/DeviceGray"
		}
		id := d.putICCProfile(cs.ICCProfile, cs.N, alt)
		return fmt.Sprintf("[/ICCBased %d 0 R]", id), nil
	default:
		return "", newErr(MalformedInput, "", "unrecognized colour space kind")
	}
}

func (d *Document) putSMask(width, height int, alpha []byte) int {
	dict := fmt.Sprintf("/Type/XObject/Subtype/Image/Width %d/Height %d/ColorSpace/DeviceGray/BitsPerComponent 8", width, height)
	return d.PutStream(alpha, dict)
}

// putICCProfile writes an iCCP profile as an ICC profile stream object
// (spec.md §9's resolved Open Question: best-effort /ICCBased embedding,
// deferred until the profile's referencing image is actually written).
func (d *Document) putICCProfile(profile []byte, n int, alternate string) int {
	dict := fmt.Sprintf("/N %d/Alternate %s", n, alternate)
	return d.PutStream(profile, dict)
}
