// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package raster turns books into page images, either by rasterising
// a PDF or by reading a directory of pages which have already been
// rasterised.
package raster

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Page is a single page image of a book
type Page struct {
	// Number is the 1-based page number
	Number int
	// Path is where the page image is stored
	Path string
}

// Rasterizer produces the page images of a book, in page number
// order. Any files it needs to create are put in dir, which is
// owned by the caller.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, dir string) ([]Page, error)
}

// ImageExts are the file extensions recognised as page images
var ImageExts = []string{".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp"}

// IsImage reports whether a filename has one of the ImageExts
func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExts {
		if ext == e {
			return true
		}
	}
	return false
}

// Load decodes an image file
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Could not open file %s: %v", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Could not decode image %s: %v", path, err)
	}
	return img, nil
}

// BookName returns the name of a book from the path of its PDF,
// text or page directory: the base name without any extension, up
// to the first underscore.
func BookName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.Index(name, "_"); i >= 0 {
		name = name[:i]
	}
	return name
}

// PageNumber returns the page number from a filename in the form
// {book}_pg{n}.{ext}
func PageNumber(name string) (int, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	i := strings.LastIndex(base, "_pg")
	if i < 0 {
		return 0, fmt.Errorf("No page number found in %s", name)
	}
	n, err := strconv.Atoi(base[i+3:])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("Invalid page number in %s", name)
	}
	return n, nil
}
