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

package main

import (
	"bytes"
	"fmt"
	"image/png"
	"os"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"

	"github.com/barwood/pdfmill/pkg/config"
	"github.com/barwood/pdfmill/pkg/layout"
	"github.com/barwood/pdfmill/pkg/pdfdoc"
	"github.com/barwood/pdfmill/pkg/truetype"
)

// build assembles a PDF from job, the same pipeline cmd/pdfmill drives
// from the command line: an embedded TrueType subset flowed via
// pkg/layout, followed by any referenced images (or a generated barcode
// placeholder) decoded through pkg/pngimage.
func build(job config.Job) ([]byte, error) {
	width, height, err := job.MediaBox()
	if err != nil {
		return nil, err
	}

	doc := pdfdoc.New(job.Deflate.ZlibWrap)
	doc.SetTitle(job.Title)

	page := pdfdoc.NewPage(width, height)
	cb := pdfdoc.NewContentBuilder(page)

	if job.FontPath != "" {
		fontBytes, err := os.ReadFile(job.FontPath)
		if err != nil {
			return nil, err
		}
		font, err := truetype.ReadFont(fontBytes)
		if err != nil {
			return nil, err
		}
		session := pdfdoc.NewFontSession("F1", font)
		for _, line := range job.Text {
			if err := session.Use(line); err != nil {
				return nil, err
			}
		}
		fontID := session.Register(doc)
		page.UseFont("F1", fontID)

		x0, y0 := job.Margins.Left, height-job.Margins.Top
		colWidth := width - job.Margins.Left - job.Margins.Right
		lineHeight := job.FontSize * 1.2
		eng := layout.NewEngine(cb, nil, x0, y0, colWidth, lineHeight, nil)
		eng.SetFont("F1", job.FontSize)
		for _, line := range job.Text {
			eng.Txt(line)
			eng.NewLine()
		}
	}

	for i, imgPath := range job.ImagePaths {
		pngBytes, err := os.ReadFile(imgPath)
		if err != nil {
			return nil, err
		}
		imgID, err := doc.PutPNGImage(bytes.NewReader(pngBytes))
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("X%d", i+1)
		page.UseXObject(name, imgID)
		cb.DrawImage(name, 144, 144)
	}

	if len(job.ImagePaths) == 0 {
		if imgID, err := barcodeImage(doc, job.Title); err == nil {
			page.UseXObject("X1", imgID)
			cb.DrawImage("X1", 300, 80)
		}
	}

	doc.AddPage(page)
	return doc.Finish()
}

func barcodeImage(doc *pdfdoc.Document, s string) (int, error) {
	if s == "" {
		s = "pdfmill"
	}
	bc, err := code128.Encode(s)
	if err != nil {
		return 0, err
	}
	bc, err = barcode.Scale(bc, 300, 80)
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, bc); err != nil {
		return 0, err
	}
	return doc.PutPNGImage(bytes.NewReader(buf.Bytes()))
}
