// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"image"

	"gocv.io/x/gocv"
)

// morph applies a morphological operation with a rectangular
// structuring element of size k, anchored at its centre. Pixels
// outside of the mask are ignored, so the edges of the page do not
// eat into blobs touching them.
func morph(src gocv.Mat, dst *gocv.Mat, op gocv.MorphType, k Size) {
	if k.Zero() {
		src.CopyTo(dst)
		return
	}
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k.W, k.H))
	defer kernel.Close()
	gocv.MorphologyEx(src, dst, op, kernel)
}

func morphGray(mask *image.Gray, op gocv.MorphType, k Size) (*image.Gray, error) {
	src, err := gocv.ImageGrayToMatGray(Gray(mask))
	if err != nil {
		return nil, err
	}
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	morph(src, &dst, op, k)
	return toGray(dst)
}

// Close dilates then erodes, bridging gaps smaller than the
// structuring element, such as those between the words of a line.
func Close(mask *image.Gray, k Size) (*image.Gray, error) {
	return morphGray(mask, gocv.MorphClose, k)
}

// Open erodes then dilates, removing connections thinner than the
// structuring element, such as ascenders touching the line above.
func Open(mask *image.Gray, k Size) (*image.Gray, error) {
	return morphGray(mask, gocv.MorphOpen, k)
}
