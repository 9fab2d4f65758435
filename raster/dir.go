// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package raster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Dir reads the pages of a book which has already been rasterised
// into a directory of images named {book}_pg{n}.{ext}. Files which
// are not images are ignored.
type Dir struct{}

// Rasterize lists the page images in the directory at path, in page
// number order. Nothing is written to dir.
func (Dir) Rasterize(ctx context.Context, path string, dir string) ([]Page, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("Error reading page directory %s: %v", path, err)
	}

	var pages []Page
	seen := make(map[int]string)
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		n, err := PageNumber(e.Name())
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[n]; ok {
			return nil, fmt.Errorf("Page %d found twice in %s: %s and %s", n, path, prev, e.Name())
		}
		seen[n] = e.Name()
		pages = append(pages, Page{Number: n, Path: filepath.Join(path, e.Name())})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("No page images found in %s", path)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}
