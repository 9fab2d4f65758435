// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package ocr runs an OCR model over line images, to produce
// predictions which can be compared against the ground truth.
package ocr

import (
	"context"
	"image"
)

// DefaultPageMin is the smallest whole page image worth recognising
var DefaultPageMin = image.Point{X: 70, Y: 25}

// DefaultLineMin is the smallest line image worth recognising
var DefaultLineMin = image.Point{X: 40, Y: 50}

// Result is the text recognised in an image, with the average
// confidence of its words, from 0 to 100
type Result struct {
	Text string
	Conf float64
}

// Recognizer recognises the text in an image
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (Result, error)
}

// Eligible reports whether an image is at least as wide and tall
// as min. Smaller images tend to just produce noise.
func Eligible(img image.Image, min image.Point) bool {
	if img == nil {
		return false
	}
	s := img.Bounds().Size()
	return s.X >= min.X && s.Y >= min.Y
}
