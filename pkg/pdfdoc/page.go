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
)

// Page is one page's content and resource references. Content is built
// with the text-state and graphics operators spec.md §6 lists (BT/ET, Tf,
// Tj, Tc, Ts, rg, Td, m, l, re, S, q, Q, cm, Do, c, f); pkg/layout drives
// these through the ContentBuilder below, but callers may also append
// operators directly for simple pages.
type Page struct {
	MediaBox [4]float64 // llx, lly, urx, ury

	content bytes.Buffer

	fontRes  map[string]int // resource name -> object id, e.g. "F1" -> 12
	xobjRes  map[string]int // resource name -> object id, e.g. "X1" -> 7
}

// NewPage creates a page with the given media box (points).
func NewPage(width, height float64) *Page {
	return &Page{
		MediaBox: [4]float64{0, 0, width, height},
		fontRes:  map[string]int{},
		xobjRes:  map[string]int{},
	}
}

// UseFont registers a /Font resource under name (e.g. "F1") pointing at
// fontObjID, the Type0 font dictionary's object id.
func (p *Page) UseFont(name string, fontObjID int) { p.fontRes[name] = fontObjID }

// UseXObject registers an /XObject resource under name (e.g. "X1")
// pointing at an image or form object id.
func (p *Page) UseXObject(name string, objID int) { p.xobjRes[name] = objID }

// Content returns the page's content stream builder for appending
// operators directly.
func (p *Page) Content() *bytes.Buffer { return &p.content }

func (p *Page) write(doc *Document, parentID int) (int, error) {
	contentID := doc.PutStream(p.content.Bytes(), "")

	pageID := doc.AllocObj()
	doc.StartObj(pageID)
	fmt.Fprintf(&doc.buf, "<</Type/Page/Parent %d 0 R/MediaBox[%g %g %g %g]/Contents %d 0 R/Resources<<",
		parentID, p.MediaBox[0], p.MediaBox[1], p.MediaBox[2], p.MediaBox[3], contentID)

	if len(p.fontRes) > 0 {
		doc.buf.WriteString("/Font<<")
		for name, id := range p.fontRes {
			fmt.Fprintf(&doc.buf, "/%s %d 0 R", name, id)
		}
		doc.buf.WriteString(">>")
	}
	if len(p.xobjRes) > 0 {
		doc.buf.WriteString("/XObject<<")
		for name, id := range p.xobjRes {
			fmt.Fprintf(&doc.buf, "/%s %d 0 R", name, id)
		}
		doc.buf.WriteString(">>")
	}
	doc.buf.WriteString(">>>>")
	doc.EndObj()

	return pageID, nil
}

// ContentBuilder accumulates text and graphics operators in the order
// pkg/layout emits them. Its SetFont/SetSuper/SetColor/MoveTo/BeginText/
// EndText/Txt methods satisfy layout.Sink; it has no NewPage, so page
// breaks are left to the caller.
type ContentBuilder struct {
	page *Page
	fontSize float64
}

// NewContentBuilder wraps a page's content stream.
func NewContentBuilder(p *Page) *ContentBuilder { return &ContentBuilder{page: p} }

// SetFont emits "/name size Tf".
func (c *ContentBuilder) SetFont(name string, size float64) {
	c.fontSize = size
	fmt.Fprintf(&c.page.content, "/%s %g Tf\n", name, size)
}

// SetSuper emits "n Ts" (text rise, points).
func (c *ContentBuilder) SetSuper(rise float64) {
	fmt.Fprintf(&c.page.content, "%g Ts\n", rise)
}

// SetColor emits "r g b rg".
func (c *ContentBuilder) SetColor(r, g, b float64) {
	fmt.Fprintf(&c.page.content, "%g %g %g rg\n", r, g, b)
}

// MoveTo emits "x y Td", positioning the next Txt call.
func (c *ContentBuilder) MoveTo(x, y float64) {
	fmt.Fprintf(&c.page.content, "%g %g Td\n", x, y)
}

// BeginText/EndText bracket a run of text operators with BT/ET.
func (c *ContentBuilder) BeginText() { c.page.content.WriteString("BT\n") }
func (c *ContentBuilder) EndText()   { c.page.content.WriteString("ET\n") }

// Txt emits a Tj operator for s, escaped with EscapePDFString.
func (c *ContentBuilder) Txt(s string) {
	fmt.Fprintf(&c.page.content, "%s Tj\n", EscapePDFString(s))
}

// NewLine emits a relative Td move for a simple fixed line advance.
func (c *ContentBuilder) NewLine(dx, dy float64) {
	fmt.Fprintf(&c.page.content, "%g %g Td\n", dx, dy)
}

// DrawImage emits "q w 0 0 h 0 0 cm /name Do Q" placing an image XObject
// at the origin scaled to (w,h) user-space units.
func (c *ContentBuilder) DrawImage(name string, w, h float64) {
	fmt.Fprintf(&c.page.content, "q %g 0 0 %g 0 0 cm /%s Do Q\n", w, h, name)
}
