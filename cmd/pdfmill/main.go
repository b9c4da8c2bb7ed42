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

// Package main is the pdfmill CLI: build a PDF from a YAML build job,
// matching the teacher's flag-driven single-binary harness. The library
// itself (pkg/pdfdoc and its collaborators) takes no flags or files of
// its own; this harness exists only to exercise it end to end.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"

	"github.com/barwood/pdfmill/pkg/config"
	"github.com/barwood/pdfmill/pkg/layout"
	"github.com/barwood/pdfmill/pkg/logging"
	"github.com/barwood/pdfmill/pkg/pdfdoc"
	"github.com/barwood/pdfmill/pkg/truetype"
)

const usage = `pdfmill is a tool for building PDFs from a YAML build job.

Usage:

	pdfmill [-verbose] jobFile outFile

jobFile ... YAML build job (see pkg/config.Job)
outFile ... output PDF file`

var verbose bool

func init() {
	flag.BoolVar(&verbose, "verbose", false, "")
	flag.BoolVar(&verbose, "v", false, "")
}

func main() {
	flag.Parse()
	if verbose {
		logging.SetDefaultLoggers()
	}

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	jobFile, outFile := flag.Arg(0), flag.Arg(1)

	job, err := config.LoadFile(jobFile)
	if err != nil {
		fatal(err)
	}

	out, err := build(job)
	if err != nil {
		fatal(err)
	}

	if err := os.WriteFile(outFile, out, 0644); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "pdfmill: %+v\n", err)
	os.Exit(1)
}

// build assembles a PDF from job: a text column flowed with pkg/layout
// over an embedded TrueType subset, followed by a generated barcode image
// decoded through pkg/pngimage, matching the teacher's demo-content style
// in pkg/pdfcpu/createTestPDF.go.
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

		x0, y0, colWidth, lineHeight := job.Margins.Left, height-job.Margins.Top, width-job.Margins.Left-job.Margins.Right, job.FontSize*1.2
		pageCount := 1
		eng := layout.NewEngine(cb, nil, x0, y0, colWidth, lineHeight, func() { pageCount++ })
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

	if len(job.ImagePaths) == 0 && len(job.Text) > 0 {
		// No explicit image input: generate a Code128 barcode of the job
		// title as a realistic PNG source, exercising pkg/pngimage the
		// same way a user-supplied image would.
		if imgID, err := barcodeImage(doc, job.Title); err == nil {
			page.UseXObject("X1", imgID)
			cb.DrawImage("X1", 300, 80)
		}
	}

	doc.AddPage(page)
	return doc.Finish()
}

// barcodeImage encodes s as a Code128 barcode, scales it, re-encodes it as
// a PNG (via the standard library's encoder, a convenience for producing a
// realistic fixture, not part of pdfmill's own PNG support) and decodes
// that through pkg/pngimage like any other embedded image.
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
