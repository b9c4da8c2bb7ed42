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

// Package config is the one user-facing configuration surface: a YAML
// build job file read by cmd/pdfmill and cmd/pdfmillsrv. pkg/pdfdoc and
// its collaborators never read a file or environment variable themselves
// (there are none to read); the commands pass them plain values taken
// from this, such as pdfdoc.New's compress flag.
package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// PageSize names a standard page size in points; Custom uses Width/Height.
type PageSize string

const (
	Letter PageSize = "letter"
	A4     PageSize = "a4"
	Custom PageSize = "custom"
)

var pageSizePoints = map[PageSize][2]float64{
	Letter: {612, 792},
	A4:     {595.28, 841.89},
}

// Margins are page margins in points.
type Margins struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// DeflateTuning holds the job's DEFLATE settings, named after fields of
// deflate.Options. Only ZlibWrap is used: the commands pass it to
// pdfdoc.New as the flag that turns stream compression on. StartBlockSize,
// BoundaryTuning and Threaded are parsed but not passed on; streams are
// compressed through pkg/filter with deflate.DefaultOptions().
type DeflateTuning struct {
	StartBlockSize  int  `yaml:"startBlockSize"`
	BoundaryTuning  bool `yaml:"boundaryTuning"`
	Threaded        bool `yaml:"threaded"`
	ZlibWrap        bool `yaml:"zlibWrap"`
}

// Job is a build job: the page/font/image inputs and tuning knobs a CLI
// invocation or HTTP request assembles a PDF from.
type Job struct {
	Title    string   `yaml:"title"`
	PageSize PageSize `yaml:"pageSize"`
	Width    float64  `yaml:"width"`  // only consulted when PageSize == Custom
	Height   float64  `yaml:"height"` // only consulted when PageSize == Custom

	Margins Margins `yaml:"margins"`

	FontPath string  `yaml:"fontPath"`
	FontSize float64 `yaml:"fontSize"`

	ImagePaths []string `yaml:"imagePaths"`
	Text       []string `yaml:"text"`

	Deflate DeflateTuning `yaml:"deflate"`
}

// Default returns a Job with the teacher's conservative defaults: Letter
// paper, one-inch margins, threaded DEFLATE off (predictable ordering for
// small jobs), zlib-wrapped output on (spec.md §4.9 trailer expectations).
func Default() Job {
	return Job{
		PageSize: Letter,
		Margins:  Margins{Top: 72, Right: 72, Bottom: 72, Left: 72},
		FontSize: 11,
		Deflate: DeflateTuning{
			StartBlockSize: 1 << 16,
			BoundaryTuning: true,
			Threaded:       false,
			ZlibWrap:       true,
		},
	}
}

// Load reads and parses a YAML build job, applying Default()'s zero-value
// fallbacks for anything the file leaves unset.
func Load(r io.Reader) (Job, error) {
	job := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&job); err != nil {
		return Job{}, errors.Wrap(err, "pdfmill: config: parsing build job")
	}
	return job, nil
}

// LoadFile opens path and parses it as a YAML build job.
func LoadFile(path string) (Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return Job{}, errors.Wrapf(err, "pdfmill: config: opening %s", path)
	}
	defer f.Close()
	return Load(f)
}

// MediaBox resolves PageSize/Width/Height to a (width, height) pair in
// points.
func (j Job) MediaBox() (width, height float64, err error) {
	if j.PageSize == Custom {
		if j.Width <= 0 || j.Height <= 0 {
			return 0, 0, errors.New("pdfmill: config: custom page size requires width and height")
		}
		return j.Width, j.Height, nil
	}
	wh, ok := pageSizePoints[j.PageSize]
	if !ok {
		return 0, 0, errors.Errorf("pdfmill: config: unknown page size %q", j.PageSize)
	}
	return wh[0], wh[1], nil
}

// ColumnBox returns the text column's origin and width/height inside the
// margins, the rectangle pkg/layout flows text into.
func (j Job) ColumnBox() (x0, y0, width, height float64, err error) {
	w, h, err := j.MediaBox()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	x0 = j.Margins.Left
	y0 = h - j.Margins.Top
	width = w - j.Margins.Left - j.Margins.Right
	height = h - j.Margins.Top - j.Margins.Bottom
	return x0, y0, width, height, nil
}
