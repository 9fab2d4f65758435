// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"fmt"
	"image"
	"image/draw"

	"gocv.io/x/gocv"
)

// Preprocess turns a page into a mask in which each line of text
// should be a single connected blob. The steps are: conversion to
// greyscale, a small blur, inverted Otsu binarisation (so text is
// foreground), closing with p.Close and, if set, opening with
// p.Open. The mask always starts at (0, 0).
func Preprocess(img image.Image, p Params) (*image.Gray, error) {
	err := checkImage(img)
	if err != nil {
		return nil, err
	}

	bw, _, err := binarize(img)
	if err != nil {
		return nil, err
	}
	defer bw.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	morph(bw, &closed, gocv.MorphClose, p.Close)
	if p.Open.Zero() {
		return toGray(closed)
	}

	opened := gocv.NewMat()
	defer opened.Close()
	morph(closed, &opened, gocv.MorphOpen, p.Open)
	return toGray(opened)
}

func checkImage(img image.Image) error {
	if img == nil {
		return &InvalidImageError{Reason: "no image"}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return &InvalidImageError{Width: b.Dx(), Height: b.Dy(), Reason: "image has no pixels"}
	}
	return nil
}

// Binarize blurs a page with a 3x3 Gaussian and then applies an
// inverted Otsu threshold, so that dark pixels become foreground
// (255) and light ones background (0). The threshold chosen is
// returned along with the mask.
func Binarize(img image.Image) (*image.Gray, float32, error) {
	err := checkImage(img)
	if err != nil {
		return nil, 0, err
	}
	bw, th, err := binarize(img)
	if err != nil {
		return nil, 0, err
	}
	defer bw.Close()
	mask, err := toGray(bw)
	return mask, th, err
}

func binarize(img image.Image) (gocv.Mat, float32, error) {
	gray, err := grayMat(img)
	if err != nil {
		return gocv.Mat{}, 0, err
	}
	defer gray.Close()

	// anything larger than 3x3 tends to join neighbouring glyphs
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(3, 3), 0, 0, gocv.BorderReflect101)

	bw := gocv.NewMat()
	th := gocv.Threshold(blurred, &bw, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)
	return bw, th, nil
}

// Gray returns a greyscale version of img starting at (0, 0) with
// no padding between rows. If img already is one it is returned
// unchanged.
func Gray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) && g.Stride == b.Dx() {
		return g
	}
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// grayMat converts an image to a single channel Mat. The conversion
// to grey uses the same colour model as IsBlank.
func grayMat(img image.Image) (gocv.Mat, error) {
	m, err := gocv.ImageGrayToMatGray(Gray(img))
	if err != nil {
		return m, fmt.Errorf("Error converting image: %v", err)
	}
	return m, nil
}

// toGray copies a single channel Mat to an image starting at (0, 0)
func toGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("Error converting mask: %v", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("Mask is not greyscale")
	}
	return g, nil
}
