// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"image"
	"image/color"
)

// IsBlank reports whether every pixel of an image is pure white once
// converted to greyscale. A single faint mark makes the page not
// blank. An image with no pixels is not blank; it is invalid.
func IsBlank(img image.Image) bool {
	if img == nil {
		return false
	}
	b := img.Bounds()
	if b.Empty() {
		return false
	}
	if g, ok := img.(*image.Gray); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := g.PixOffset(b.Min.X, y)
			for _, v := range g.Pix[i : i+b.Dx()] {
				if v != 255 {
					return false
				}
			}
		}
		return true
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y != 255 {
				return false
			}
		}
	}
	return true
}
