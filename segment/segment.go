// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// segment cuts page images into images of each line of text, in
// reading order from the top of the page to the bottom.
//
// The page is blurred, binarised and then closed with a wide, short
// structuring element so that each line becomes one blob. The outer
// blobs which are wide enough to be lines are sorted by their top
// edge and cropped, with some padding, from the original page. The
// order is important, as it is all that links a line image to its
// transcription.
package segment

import (
	"fmt"
	"image"
	"log"
)

// Line is an image of one line of a page
type Line struct {
	// Index is the 1-based position of the line on the page
	Index  int
	Image  image.Image
	Region Region
	// Whole is set when no lines were found, so the whole page is
	// used as a single line
	Whole bool
}

// Page splits a page into lines. If no lines are found the whole
// page is returned unmodified as the only line, so that unusual
// layouts are never silently dropped. Blank pages should be
// filtered out with IsBlank beforehand.
func Page(page image.Image, p Params) ([]Line, error) {
	s := Segmenter{Params: p}
	return s.Segment(page)
}

// Segmenter splits pages into lines with a set of Params, logging
// any skipped regions if Logger is set
type Segmenter struct {
	Params Params
	Logger *log.Logger
}

// Segment splits a page into lines, as Page does
func (s Segmenter) Segment(page image.Image) ([]Line, error) {
	err := s.Params.Validate()
	if err != nil {
		return nil, fmt.Errorf("Invalid segmentation parameters: %v", err)
	}

	mask, err := Preprocess(page, s.Params)
	if err != nil {
		return nil, err
	}

	regions, skipped := Locate(mask, s.Params)
	for _, e := range skipped {
		s.log(e)
	}

	var lines []Line
	for _, r := range regions {
		img, ok := Crop(page, r, s.Params.Padding, s.Params.MinLineHeight)
		if !ok {
			s.log("Skipping region", r, "as it is too small")
			continue
		}
		lines = append(lines, Line{Index: len(lines) + 1, Image: img, Region: r})
	}

	if len(lines) == 0 {
		b := page.Bounds()
		s.log("No lines found, using the whole page")
		return []Line{{Index: 1, Image: page, Region: Region{W: b.Dx(), H: b.Dy()}, Whole: true}}, nil
	}

	return lines, nil
}

func (s Segmenter) log(v ...interface{}) {
	if s.Logger != nil {
		s.Logger.Println(v...)
	}
}
