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

package config_test

import (
	"strings"
	"testing"

	"github.com/barwood/pdfmill/pkg/config"
)

func TestLoadAppliesDefaultsForUnsetFields(t *testing.T) {
	job, err := config.Load(strings.NewReader(`
title: Report
text: ["hello"]
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if job.PageSize != config.Letter {
		t.Fatalf("PageSize = %q, want default %q", job.PageSize, config.Letter)
	}
	if job.Margins.Top != 72 {
		t.Fatalf("Margins.Top = %g, want default 72", job.Margins.Top)
	}
	if job.Title != "Report" {
		t.Fatalf("Title = %q, want Report", job.Title)
	}
}

func TestMediaBoxCustomRequiresDimensions(t *testing.T) {
	job := config.Default()
	job.PageSize = config.Custom
	if _, _, err := job.MediaBox(); err == nil {
		t.Fatal("expected error for custom page size with no width/height")
	}
	job.Width, job.Height = 300, 400
	w, h, err := job.MediaBox()
	if err != nil || w != 300 || h != 400 {
		t.Fatalf("MediaBox() = (%g,%g,%v), want (300,400,nil)", w, h, err)
	}
}

func TestColumnBoxSubtractsMargins(t *testing.T) {
	job := config.Default()
	x0, _, w, h, err := job.ColumnBox()
	if err != nil {
		t.Fatalf("ColumnBox: %v", err)
	}
	if x0 != 72 {
		t.Fatalf("x0 = %g, want 72", x0)
	}
	if w != 612-144 || h != 792-144 {
		t.Fatalf("got w=%g h=%g, want w=%g h=%g", w, h, 612.0-144, 792.0-144)
	}
}
