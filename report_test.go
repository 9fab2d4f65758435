// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package linedataset

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestGraph(t *testing.T) {
	counts := []LineCount{
		{Page: 3, ImageLines: 20, TextLines: 20},
		{Page: 1, ImageLines: 5, TextLines: 4},
		{Page: 2, ImageLines: 18, TextLines: 18},
	}
	var buf bytes.Buffer
	err := Graph(counts, "Demo", &buf)
	if err != nil {
		t.Fatalf("Error creating graph: %v", err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("Graph is not a valid png: %v", err)
	}
	if cfg.Width != 3840 || cfg.Height != 2160 {
		t.Fatalf("Unexpected graph size %dx%d", cfg.Width, cfg.Height)
	}
	if counts[0].Page != 3 {
		t.Fatalf("Graph reordered the counts passed to it")
	}

	err = Graph(counts[:1], "Demo", &buf)
	if err == nil {
		t.Fatalf("Expected an error graphing a single page")
	}
}

func TestReviewPdf(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 600, 400))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	regions := []image.Rectangle{image.Rect(10, 10, 500, 40), image.Rect(10, 60, 500, 90)}

	var pdf ReviewPdf
	err := pdf.Setup()
	if err != nil {
		t.Fatalf("Error setting up pdf: %v", err)
	}
	err = pdf.AddPage("Demo_pg1", img, regions, "Demo_pg1: 2 line images but 3 lines of text")
	if err != nil {
		t.Fatalf("Error adding page: %v", err)
	}
	err = pdf.AddPage("Demo_pg2", img, nil, "")
	if err != nil {
		t.Fatalf("Error adding page: %v", err)
	}
	if pdf.Pages() != 2 {
		t.Fatalf("Expected 2 pages, got %d", pdf.Pages())
	}

	path := filepath.Join(t.TempDir(), "review.pdf")
	err = pdf.Save(path)
	if err != nil {
		t.Fatalf("Error saving pdf: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Error reading pdf: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("Saved file is not a pdf")
	}
}
