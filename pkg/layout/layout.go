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

// Package layout is the text-layout collaborator spec.md §9 describes:
// SetFont/SetSuper/SetColor/Txt/NewLine/NewPage, driving a pdfdoc page's
// content stream while tracking line position, column width and
// grapheme-aware line breaking.
package layout

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Sink is the subset of pdfdoc.ContentBuilder (plus page/font switching)
// that the layout engine drives. Defined here, rather than importing
// pkg/pdfdoc directly, to keep pkg/layout usable against any emitter.
type Sink interface {
	SetFont(name string, size float64)
	SetSuper(rise float64)
	SetColor(r, g, b float64)
	MoveTo(x, y float64)
	BeginText()
	EndText()
	Txt(s string)
}

// GlyphWidth looks up a glyph's advance width in font design units,
// scaled to text space (1/1000 em), the width pkg/layout needs for line
// breaking; callers supply it since the engine itself doesn't own a font.
type GlyphWidth func(r rune) int

// Engine drives column text flow: it tracks cursor position within a
// rectangular column, wraps at grapheme-cluster boundaries (not raw
// runes, so combining marks and emoji stay attached to their base), and
// calls NewPage when NewLine moves below colHeightBudget.
type Engine struct {
	sink Sink
	width func(r rune) int

	x0, y0, colWidth, lineHeight float64
	x, y                         float64
	fontSize                     float64

	newPage func() // invoked when the current column runs out of vertical room
}

// NewEngine starts layout at (x0,y0) with the given column width and line
// height (PDF user-space units, typically points). newPage is called
// from NewPage; NewLine calls NewPage only once y falls more than
// colHeightBudget (1<<30) below y0, since the engine takes no column height.
func NewEngine(sink Sink, width GlyphWidth, x0, y0, colWidth, lineHeight float64, newPage func()) *Engine {
	return &Engine{
		sink: sink, width: width,
		x0: x0, y0: y0, x: x0, y: y0,
		colWidth: colWidth, lineHeight: lineHeight,
		newPage: newPage,
	}
}

// SetFont selects the named font resource and point size; also fixes the
// em-to-points scale used by glyph-width-based wrapping.
func (e *Engine) SetFont(name string, size float64) {
	e.fontSize = size
	e.sink.SetFont(name, size)
}

// SetSuper sets the text rise for superscript/subscript runs.
func (e *Engine) SetSuper(rise float64) { e.sink.SetSuper(rise) }

// SetColor sets the fill color for subsequent text.
func (e *Engine) SetColor(r, g, b float64) { e.sink.SetColor(r, g, b) }

// NewLine advances to the next line within the column, triggering NewPage
// if there's no more vertical room.
func (e *Engine) NewLine() {
	e.x = e.x0
	e.y -= e.lineHeight
	if e.y < e.y0-e.colHeightBudget() {
		e.NewPage()
	}
}

// colHeightBudget is a placeholder column height; callers that need a
// hard bottom margin should call NewPage explicitly rather than rely on
// an implicit budget, since the engine has no fixed page height of its
// own (spec.md's collaborator contract leaves page geometry to the
// caller).
func (e *Engine) colHeightBudget() float64 { return 1 << 30 }

// NewPage resets the cursor to the column's top and invokes the
// caller-supplied page-break hook.
func (e *Engine) NewPage() {
	e.x, e.y = e.x0, e.y0
	if e.newPage != nil {
		e.newPage()
	}
}

// Txt lays out s, starting a new line before any grapheme cluster that
// would overflow colWidth (there is no word-boundary search), and writes
// each line via the sink's Tj calls.
func (e *Engine) Txt(s string) {
	e.sink.BeginText()
	defer e.sink.EndText()

	gr := uniseg.NewGraphemes(s)
	var line []byte
	lineWidth := 0.0

	flush := func() {
		if len(line) == 0 {
			return
		}
		e.sink.MoveTo(e.x, e.y)
		e.sink.Txt(string(line))
		line = line[:0]
	}

	for gr.Next() {
		cluster := gr.Str()
		w := e.clusterWidth(cluster)
		if lineWidth+w > e.colWidth && len(line) > 0 {
			flush()
			e.NewLine()
			lineWidth = 0
		}
		line = append(line, cluster...)
		lineWidth += w
	}
	flush()
}

// clusterWidth estimates a grapheme cluster's rendered width in points:
// the sum of its runes' font-reported advance widths (scaled to the
// current point size) when a GlyphWidth function was supplied, falling
// back to go-runewidth's terminal-cell heuristic scaled to an assumed
// 0.6em average otherwise.
func (e *Engine) clusterWidth(cluster string) float64 {
	if e.width == nil {
		cells := runewidth.StringWidth(cluster)
		return float64(cells) * e.fontSize * 0.6
	}
	total := 0
	for _, r := range cluster {
		total += e.width(r)
	}
	return float64(total) / 1000 * e.fontSize
}
