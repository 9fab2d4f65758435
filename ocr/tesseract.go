// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"rescribe.xyz/linedataset/internal/hidecmd"
	"rescribe.xyz/utils/pkg/hocr"
)

// Tesseract recognises images by running the tesseract command,
// and reading the hOCR it produces
type Tesseract struct {
	// Training is the name of the traineddata to use
	Training string
	// Cmd is the command to run, "tesseract" if empty
	Cmd string
}

// Recognize writes the image to a temporary file, runs tesseract on
// it, and returns the text and average word confidence found
func (t Tesseract) Recognize(ctx context.Context, img image.Image) (Result, error) {
	tesscmd := t.Cmd
	if tesscmd == "" {
		tesscmd = "tesseract"
	}

	dir, err := os.MkdirTemp("", "linedataset-ocr")
	if err != nil {
		return Result{}, fmt.Errorf("Error setting up temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "line.png")
	f, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("Error creating file %s: %v", path, err)
	}
	err = png.Encode(f, img)
	f.Close()
	if err != nil {
		return Result{}, fmt.Errorf("Error encoding image %s: %v", path, err)
	}

	name := strings.TrimSuffix(path, ".png")
	cmd := exec.CommandContext(ctx, tesscmd, "-l", t.Training, path, name, "-c", "tessedit_create_hocr=1", "-c", "hocr_font_info=0")
	hidecmd.Hide(cmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err = cmd.Run()
	if err != nil {
		return Result{}, fmt.Errorf("Error ocring with training %s: %s\nStdout: %s\nStderr: %s\n", t.Training, err, stdout.String(), stderr.String())
	}

	hocrpath := name + ".hocr"
	text, err := hocr.GetText(hocrpath)
	if err != nil {
		return Result{}, fmt.Errorf("Error reading text from %s: %v", hocrpath, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, nil
	}
	conf, err := hocr.GetAvgConf(hocrpath)
	if err != nil {
		return Result{}, fmt.Errorf("Error retreiving confidence for %s: %v", hocrpath, err)
	}

	return Result{Text: text, Conf: conf}, nil
}
