// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package tessapi recognises images with the tesseract library
// directly, rather than by running the tesseract command. It needs
// cgo and the tesseract and leptonica development headers to build.
package tessapi

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"rescribe.xyz/linedataset/ocr"
)

// Client recognises images with the given training, using a fresh
// tesseract client for each image so it can be shared between
// goroutines
type Client struct {
	Training string
}

// Recognize returns the text found in an image and the average
// confidence of its words
func (c Client) Recognize(ctx context.Context, img image.Image) (ocr.Result, error) {
	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("Error encoding image: %v", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if c.Training != "" {
		err = client.SetLanguage(c.Training)
		if err != nil {
			return ocr.Result{}, fmt.Errorf("Error setting training %s: %v", c.Training, err)
		}
	}
	err = client.SetImageFromBytes(buf.Bytes())
	if err != nil {
		return ocr.Result{}, fmt.Errorf("Error setting image: %v", err)
	}

	text, err := client.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("Error recognising text: %v", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("Error getting word confidences: %v", err)
	}
	var total float64
	for _, b := range boxes {
		total += b.Confidence
	}
	var conf float64
	if len(boxes) > 0 {
		conf = total / float64(len(boxes))
	}

	return ocr.Result{Text: strings.TrimSpace(text), Conf: conf}, nil
}
