// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"
)

// Region is the bounding box of a blob in a mask, in page pixel
// coordinates relative to the top left of the page
type Region struct {
	X, Y, W, H int
}

// Aspect returns the width to height ratio of the region
func (r Region) Aspect() float64 {
	if r.H == 0 {
		return 0
	}
	return float64(r.W) / float64(r.H)
}

// Rect returns the region as an image.Rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y)
}

// Locate finds the outer contours of a mask, drops those which are
// not wide enough to be a line of text, and returns the bounding
// boxes of the rest sorted from the top of the page to the bottom.
// Contours inside holes of other contours are ignored, as only the
// outer boundaries matter. Any region which could not be used is
// returned as a ContourError alongside the good ones.
func Locate(mask *image.Gray, p Params) ([]Region, []*ContourError) {
	if mask == nil || mask.Bounds().Empty() {
		return nil, nil
	}

	m, err := gocv.ImageGrayToMatGray(Gray(mask))
	if err != nil {
		return nil, []*ContourError{{Reason: fmt.Sprintf("could not convert mask: %v", err)}}
	}
	defer m.Close()

	contours := gocv.FindContours(m, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var regions []Region
	var skipped []*ContourError
	for i := 0; i < contours.Size(); i++ {
		b := gocv.BoundingRect(contours.At(i))
		r := Region{X: b.Min.X, Y: b.Min.Y, W: b.Dx(), H: b.Dy()}
		if r.W <= 0 || r.H <= 0 {
			skipped = append(skipped, &ContourError{Region: r, Reason: "region has no area"})
			continue
		}
		if r.Aspect() < p.MinAspect {
			continue
		}
		regions = append(regions, r)
	}

	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Y < regions[j].Y })

	return regions, skipped
}
