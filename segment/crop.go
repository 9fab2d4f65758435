// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"image"
	"image/draw"
)

// Crop copies a region, grown by padding on every side and clamped
// to the page, out of the original page image. Crops which end up
// minHeight pixels tall or less are treated as noise, and nothing
// is returned for them.
func Crop(page image.Image, r Region, padding int, minHeight int) (image.Image, bool) {
	b := page.Bounds()
	rect := image.Rect(r.X-padding, r.Y-padding, r.X+r.W+padding, r.Y+r.H+padding)
	rect = rect.Add(b.Min).Intersect(b)
	if rect.Dx() <= 0 || rect.Dy() <= minHeight {
		return nil, false
	}

	dst := image.Rect(0, 0, rect.Dx(), rect.Dy())
	switch src := page.(type) {
	case *image.Gray:
		line := image.NewGray(dst)
		draw.Draw(line, dst, src, rect.Min, draw.Src)
		return line, true
	default:
		line := image.NewRGBA(dst)
		draw.Draw(line, dst, src, rect.Min, draw.Src)
		return line, true
	}
}
