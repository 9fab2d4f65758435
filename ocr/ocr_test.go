// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package ocr

import (
	"context"
	"image"
	"testing"
)

func TestEligible(t *testing.T) {
	cases := []struct {
		name string
		img  image.Image
		min  image.Point
		ok   bool
	}{
		{"bigline", image.NewGray(image.Rect(0, 0, 400, 60)), DefaultLineMin, true},
		{"exactline", image.NewGray(image.Rect(0, 0, 40, 50)), DefaultLineMin, true},
		{"shortline", image.NewGray(image.Rect(0, 0, 400, 49)), DefaultLineMin, false},
		{"narrowline", image.NewGray(image.Rect(0, 0, 39, 60)), DefaultLineMin, false},
		{"page", image.NewGray(image.Rect(0, 0, 70, 25)), DefaultPageMin, true},
		{"smallpage", image.NewGray(image.Rect(0, 0, 69, 400)), DefaultPageMin, false},
		{"offset", image.NewGray(image.Rect(100, 100, 140, 150)), DefaultLineMin, true},
		{"nil", nil, DefaultLineMin, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if Eligible(c.img, c.min) != c.ok {
				t.Fatalf("Expected eligibility %v, got %v", c.ok, !c.ok)
			}
		})
	}
}

func TestTesseractMissing(t *testing.T) {
	tess := Tesseract{Training: "eng", Cmd: "linedataset-nonexistent-tesseract"}
	_, err := tess.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 100, 60)))
	if err == nil {
		t.Fatalf("Expected an error running a missing command")
	}
}
