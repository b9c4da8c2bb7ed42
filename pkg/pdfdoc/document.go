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

// Package pdfdoc assembles a single-file, uncompressed-structure PDF 1.4
// document: object allocation, a classic cross-reference table, the page
// graph, and embedded TrueType/PNG resources (spec.md §4.9, §6).
package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/barwood/pdfmill/pkg/filter"
	"github.com/barwood/pdfmill/pkg/logging"
	"github.com/pkg/errors"
)

// DeferredWriter is a deferred object (spec.md §9's tagged-variant
// pattern): one function per kind (font subset, image XObject, ...),
// invoked at Finish in allocation order with the id it was pre-assigned.
type DeferredWriter func(doc *Document, id int) error

// Document is an append-only PDF byte stream builder plus the object
// bookkeeping (xref, deferred objects, page graph) Finish needs to
// produce a complete, valid file.
type Document struct {
	buf  bytes.Buffer
	xref []int64 // xref[id-1] = byte offset of "id 0 obj"

	deferred   []deferredEntry
	pages      []*Page
	title      string
	haveTitle  bool
	compress   bool

	catalogID, pagesID, infoID int
}

type deferredEntry struct {
	id int
	fn DeferredWriter
}

// New starts a fresh document. compress controls whether PutStream runs
// payloads through pkg/filter's FlateDecode filter (backed by pkg/deflate)
// before writing them.
func New(compress bool) *Document {
	d := &Document{compress: compress}
	d.buf.WriteString("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n")
	return d
}

// SetTitle sets the /Info dictionary's /Title. Per spec.md §9's resolved
// Open Question, /Info is always emitted, defaulting Title to "Untitled"
// if SetTitle is never called.
func (d *Document) SetTitle(title string) {
	d.title = title
	d.haveTitle = true
}

// AllocObj reserves the next object id and extends Xref with a zero
// placeholder, to be filled in by StartObj.
func (d *Document) AllocObj() int {
	d.xref = append(d.xref, 0)
	return len(d.xref)
}

// StartObj records id's offset and writes its "id 0 obj" header.
func (d *Document) StartObj(id int) {
	d.xref[id-1] = int64(d.buf.Len())
	fmt.Fprintf(&d.buf, "%d 0 obj\n", id)
}

// EndObj closes the current object.
func (d *Document) EndObj() {
	d.buf.WriteString("\nendobj\n")
}

// WriteRaw appends bytes directly into the object currently being
// written (between StartObj and EndObj).
func (d *Document) WriteRaw(s string) {
	d.buf.WriteString(s)
}

// PutStream allocates a new object holding a stream: dict, /Length,
// payload, endstream (spec.md §4.9). extraDict is inserted into the
// dictionary verbatim (e.g. "/Subtype/Image/Width 2/Height 2...").
func (d *Document) PutStream(data []byte, extraDict string) int {
	id := d.AllocObj()
	d.StartObj(id)

	payload := data
	filterEntry := ""
	if d.compress {
		if compressed, err := deflateStream(data); err != nil {
			logging.Info.Printf("PutStream: falling back to uncompressed, object %d: %v\n", id, err)
		} else {
			payload = compressed
			filterEntry = "/Filter/" + filter.Flate
		}
	}

	fmt.Fprintf(&d.buf, "<<%s%s/Length %d>>stream\n", filterEntry, extraDict, len(payload))
	d.buf.Write(payload)
	d.buf.WriteString("\nendstream")
	d.EndObj()

	logging.Trace.Printf("PutStream: object %d, %d raw bytes, %d on disk\n", id, len(data), len(payload))
	return id
}

// deflateStream runs data through pkg/filter's FlateDecode filter, the
// same /Filter entry a decoder would see on the resulting stream object.
func deflateStream(data []byte) ([]byte, error) {
	f, err := filter.NewFilter(filter.Flate, nil)
	if err != nil {
		return nil, errors.Wrap(err, "pdfdoc: deflateStream")
	}
	r, err := f.Encode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "pdfdoc: deflateStream")
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, errors.Wrap(err, "pdfdoc: deflateStream")
	}
	return buf.Bytes(), nil
}

// AllocDyn pre-assigns an id for a deferred object and registers its
// writer to run during Finish, in registration order (spec.md §9).
func (d *Document) AllocDyn(fn DeferredWriter) int {
	id := d.AllocObj()
	d.deferred = append(d.deferred, deferredEntry{id: id, fn: fn})
	return id
}

// AddPage appends a page to the document's page tree.
func (d *Document) AddPage(p *Page) {
	d.pages = append(d.pages, p)
}

// Finish writes the page graph, Info, Catalog, drains deferred objects,
// and emits the xref table and trailer. The returned bytes are the
// complete PDF file. A non-nil error means the buffer is a partial,
// invalid file (spec.md §5's "caller truncates or discards").
func (d *Document) Finish() ([]byte, error) {
	d.pagesID = d.AllocObj()

	pageIDs := make([]int, len(d.pages))
	for i, p := range d.pages {
		id, err := p.write(d, d.pagesID)
		if err != nil {
			return d.buf.Bytes(), wrapErr(IoFailure, fmt.Sprintf("page %d", i), err)
		}
		pageIDs[i] = id
	}

	d.StartObj(d.pagesID)
	fmt.Fprintf(&d.buf, "<</Type/Pages/Count %d/Kids[", len(pageIDs))
	for i, id := range pageIDs {
		if i > 0 {
			d.buf.WriteByte(' ')
		}
		fmt.Fprintf(&d.buf, "%d 0 R", id)
	}
	d.buf.WriteString("]>>")
	d.EndObj()

	title := d.title
	if !d.haveTitle {
		title = "Untitled"
	}
	d.infoID = d.AllocObj()
	d.StartObj(d.infoID)
	fmt.Fprintf(&d.buf, "<</Title%s>>", EscapePDFString(title))
	d.EndObj()

	d.catalogID = d.AllocObj()
	d.StartObj(d.catalogID)
	fmt.Fprintf(&d.buf, "<</Type/Catalog/Pages %d 0 R>>", d.pagesID)
	d.EndObj()

	for _, de := range d.deferred {
		d.StartObj(de.id)
		if err := de.fn(d, de.id); err != nil {
			return d.buf.Bytes(), wrapErr(MalformedInput, fmt.Sprintf("deferred object %d", de.id), err)
		}
		d.EndObj()
	}

	startxref := d.buf.Len()
	fmt.Fprintf(&d.buf, "xref\n0 %d\n", len(d.xref)+1)
	d.buf.WriteString("0000000000 65535 f \n")
	for _, off := range d.xref {
		fmt.Fprintf(&d.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&d.buf, "trailer\n<</Size %d/Root %d 0 R/Info %d 0 R>>\nstartxref\n%d\n%%%%EOF\n",
		len(d.xref)+1, d.catalogID, d.infoID, startxref)

	return d.buf.Bytes(), nil
}
