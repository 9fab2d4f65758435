// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"rescribe.xyz/linedataset/raster"
)

// null writer to enable non-verbose logging to be discarded
type NullWriter bool

func (w NullWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

type fileWalk chan string

// Walk sends the path of all files to the channel, with the exception of
// any file which starts with "."
func (f fileWalk) Walk(path string, info os.FileInfo, err error) error {
	if err != nil {
		return err
	}
	// skip files starting with . to prevent automatically generated
	// files like .DS_Store getting in the way
	if strings.HasPrefix(filepath.Base(path), ".") {
		return nil
	}
	if !info.IsDir() {
		f <- path
	}
	return nil
}

// CheckImages checks that all page images in a directory can be
// decoded (skipping dotfiles), so that problems can be found before
// a long run rather than part way through it
func CheckImages(ctx context.Context, dir string) error {
	checker := make(fileWalk)
	go func() {
		_ = filepath.Walk(dir, checker.Walk)
		close(checker)
	}()

	n := 0
	for path := range checker {
		select {
		case <-ctx.Done():
			for range checker {
			} // consume the rest of the receiving channel so it isn't blocked
			return ctx.Err()
		default:
		}
		if !raster.IsImage(path) {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			for range checker {
			}
			return fmt.Errorf("Opening image %s failed: %v", path, err)
		}
		_, _, err = image.Decode(f)
		f.Close()
		if err != nil {
			for range checker {
			}
			return fmt.Errorf("Decoding image %s failed: %v", path, err)
		}
		n++
	}

	if n == 0 {
		return fmt.Errorf("No images found")
	}

	return nil
}
