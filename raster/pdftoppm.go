// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package raster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"rescribe.xyz/linedataset/internal/hidecmd"
)

// DefaultDpi is the resolution PDFs are rasterised at
const DefaultDpi = 200

// Pdftoppm rasterises PDFs to PNG images with the pdftoppm command
// from poppler
type Pdftoppm struct {
	// Dpi is the resolution to rasterise at, DefaultDpi if 0
	Dpi int
	// Cmd is the command to run, "pdftoppm" if empty
	Cmd string
}

// Rasterize writes every page of the PDF at path into dir as a PNG
// image, and returns them in page number order
func (p Pdftoppm) Rasterize(ctx context.Context, path string, dir string) ([]Page, error) {
	cmdname := p.Cmd
	if cmdname == "" {
		cmdname = "pdftoppm"
	}
	dpi := p.Dpi
	if dpi <= 0 {
		dpi = DefaultDpi
	}

	root := filepath.Join(dir, BookName(path)+"_pg")
	cmd := exec.CommandContext(ctx, cmdname, "-r", strconv.Itoa(dpi), "-png", path, root)
	hidecmd.Hide(cmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return nil, fmt.Errorf("Error rasterising %s: %s\nStdout: %s\nStderr: %s\n", path, err, stdout.String(), stderr.String())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("Error reading rasterised pages in %s: %v", dir, err)
	}

	prefix := filepath.Base(root) + "-"
	var pages []Page
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || filepath.Ext(name) != ".png" {
			continue
		}
		// pdftoppm zero pads page numbers depending on the page count
		num := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".png")
		n, err := strconv.Atoi(num)
		if err != nil {
			return nil, fmt.Errorf("Unexpected file %s from pdftoppm", name)
		}
		pages = append(pages, Page{Number: n, Path: filepath.Join(dir, name)})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("No pages rasterised from %s", path)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}
