// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"rescribe.xyz/linedataset"
	"rescribe.xyz/linedataset/align"
	"rescribe.xyz/linedataset/ocr"
	"rescribe.xyz/linedataset/pagetext"
	"rescribe.xyz/linedataset/raster"
	"rescribe.xyz/linedataset/segment"
	"rescribe.xyz/preproc"
	"rescribe.xyz/utils/pkg/line"
)

// lineImg is a line image which is encoded as jpg or png when it is
// copied
type lineImg struct {
	img image.Image
	ext string
}

func (l lineImg) CopyLineTo(w io.Writer) error {
	if l.ext == "png" {
		return png.Encode(w, l.img)
	}
	return jpeg.Encode(w, l.img, &jpeg.Options{Quality: 95})
}

// bookRun holds the state of a book while its pages are processed
type bookRun struct {
	name   string
	opts   Options
	text   *pagetext.Book
	dir    string
	upc    chan upload
	stats  *BookStats
	ledger *align.Ledger
	logger *log.Logger
	review *linedataset.ReviewPdf
	counts []linedataset.LineCount
	preds  []string
}

// page processes a single page, recording any failure in the ledger
// rather than returning it, so that the rest of the book carries on
func (b *bookRun) page(ctx context.Context, pg raster.Page) {
	err := b.processPage(ctx, pg)
	if err != nil {
		b.logger.Printf("Error processing %s: %v", align.PageKey(b.name, pg.Number), err)
		b.ledger.AddFailure(b.name, pg.Number, err)
		b.stats.PagesFailed++
	}
}

func (b *bookRun) processPage(ctx context.Context, pg raster.Page) (err error) {
	// files for the page are only queued for upload once they have
	// all been written, so a failed page leaves nothing behind
	var pending []upload
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Unexpected failure: %v", r)
		}
		if err != nil {
			discard(pending)
		}
	}()

	key := align.PageKey(b.name, pg.Number)

	img, err := raster.Load(pg.Path)
	if err != nil {
		return err
	}
	if segment.IsBlank(img) {
		b.logger.Println("Skipping blank page", key)
		b.stats.PagesBlank++
		return nil
	}
	if pg.Number < b.opts.SkipBelow {
		b.logger.Println("Skipping page", key, "as it is before page", b.opts.SkipBelow)
		b.stats.PagesSkipped++
		return nil
	}

	var text []string
	if b.text != nil {
		var ok bool
		text, ok = b.text.Lines(pg.Number)
		if !ok {
			b.logger.Println("No text found for", key)
			b.ledger.AddNoText(b.name, pg.Number)
			b.stats.PagesNoText++
			return nil
		}
	}

	if b.opts.Wipe {
		wiped := filepath.Join(b.dir, key+"_wiped.png")
		err = preproc.WipeFile(pg.Path, wiped, 5, 0.03, 30, 120, 0.005, 30)
		if err != nil {
			return fmt.Errorf("Error wiping page: %v", err)
		}
		img, err = raster.Load(wiped)
		_ = os.Remove(wiped)
		if err != nil {
			return err
		}
	}

	s := segment.Segmenter{Params: b.opts.Params, Logger: b.logger}
	lines, err := s.Segment(img)
	if err != nil {
		return err
	}

	var pred string
	if b.opts.Recognizer != nil {
		var u upload
		u, pred, err = b.predict(ctx, pg.Number, lines)
		if err != nil {
			return err
		}
		pending = append(pending, u)
	}

	var pairs []align.Pair
	if b.text == nil {
		for _, l := range lines {
			pairs = append(pairs, align.Pair{Index: l.Index, Image: l.Image})
		}
	} else {
		res := align.Align(lines, text, b.name, pg.Number)
		b.counts = append(b.counts, linedataset.LineCount{Page: pg.Number, ImageLines: len(lines), TextLines: len(text)})
		if res.Mismatch != nil {
			b.logger.Println("Mismatch:", res.Mismatch)
			b.commit(pending, pred)
			b.ledger.AddMismatch(*res.Mismatch)
			b.stats.PagesMismatched++
			b.stats.PagesProcessed++
			if b.review != nil {
				var regions []image.Rectangle
				for _, l := range lines {
					regions = append(regions, l.Region.Rect())
				}
				err = b.review.AddPage(key, img, regions, res.Mismatch.String())
				if err != nil {
					b.logger.Println("Error adding", key, "to review pdf:", err)
				}
			}
			return nil
		}
		pairs = res.Pairs
	}

	for _, p := range pairs {
		d := line.Detail{
			OcrName: b.name,
			Name:    fmt.Sprintf("pg%d_ln%d", pg.Number, p.Index),
			Img:     lineImg{img: p.Image, ext: b.ext()},
			Text:    p.Text,
		}
		pending, err = b.saveline(pending, d, b.text != nil)
		if err != nil {
			return err
		}
	}

	b.commit(pending, pred)
	b.stats.LinesWritten += len(pairs)
	b.stats.PagesProcessed++

	return nil
}

// commit queues the files of a page for upload, and keeps its
// predictions for the book's predictions file
func (b *bookRun) commit(pending []upload, pred string) {
	for _, u := range pending {
		b.upc <- u
	}
	if pred != "" {
		b.preds = append(b.preds, pred)
	}
}

// discard removes files which were written but will not be uploaded
func discard(pending []upload) {
	for _, u := range pending {
		_ = os.Remove(u.path)
	}
}

// ext returns the line image format to use
func (b *bookRun) ext() string {
	if b.opts.Ext == "png" {
		return "png"
	}
	return "jpg"
}

// saveline writes the image, and text if withText is set, for a line
// to files, adding them to pending
func (b *bookRun) saveline(pending []upload, l line.Detail, withText bool) ([]upload, error) {
	base := l.OcrName + "_" + l.Name
	imgname := base + "." + b.ext()

	u, err := b.write(imgname, b.name+"/images/"+imgname, func(w io.Writer) error {
		return l.Img.CopyLineTo(w)
	})
	if err != nil {
		return pending, fmt.Errorf("Error writing line image for %s: %v", base, err)
	}
	pending = append(pending, u)

	if !withText {
		return pending, nil
	}
	u, err = b.write(base+".txt", b.name+"/texts/"+base+".txt", func(w io.Writer) error {
		_, err := io.WriteString(w, l.Text)
		return err
	})
	if err != nil {
		return pending, fmt.Errorf("Error writing line text for %s: %v", base, err)
	}
	return append(pending, u), nil
}

// write creates a file called name with write, to be uploaded as key
func (b *bookRun) write(name string, key string, write func(io.Writer) error) (upload, error) {
	path := filepath.Join(b.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return upload{}, fmt.Errorf("Error creating file %s: %v", path, err)
	}
	err = write(f)
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return upload{}, err
	}
	return upload{path: path, key: key}, nil
}

// send writes a file and passes it straight on to be uploaded
func (b *bookRun) send(name string, key string, write func(io.Writer) error) error {
	u, err := b.write(name, key, write)
	if err != nil {
		return err
	}
	b.upc <- u
	return nil
}

// predict recognises each line of a page which is big enough, and
// writes the predictions for the page, returning the file to upload
// and the page's entry for the book's predictions file
func (b *bookRun) predict(ctx context.Context, page int, lines []segment.Line) (upload, string, error) {
	key := align.PageKey(b.name, page)
	var preds []string
	for _, l := range lines {
		min := b.opts.OCRLineMin
		if l.Whole {
			min = b.opts.OCRPageMin
		}
		if !ocr.Eligible(l.Image, min) {
			b.logger.Printf("Not recognising line %d of %s as it is too small", l.Index, key)
			continue
		}
		r, err := b.opts.Recognizer.Recognize(ctx, l.Image)
		if err != nil {
			return upload{}, "", fmt.Errorf("Error recognising line %d: %v", l.Index, err)
		}
		preds = append(preds, r.Text)
	}

	text := strings.Join(preds, "\n")
	name := key + ".txt"
	u, err := b.write(name, b.name+"/predictions/"+name, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
	if err != nil {
		return upload{}, "", fmt.Errorf("Error writing predictions for %s: %v", key, err)
	}

	return u, fmt.Sprintf("######## Page %d ########\n%s\n", page, text), nil
}

// finish saves the reports for the whole book
func (b *bookRun) finish() error {
	err := b.send("ledger.csv", b.name+"/ledger.csv", b.ledger.WriteCSV)
	if err != nil {
		return fmt.Errorf("Error saving ledger: %v", err)
	}

	if len(b.counts) >= 2 {
		err = b.send("linecounts.png", b.name+"/linecounts.png", func(w io.Writer) error {
			return linedataset.Graph(b.counts, b.name, w)
		})
		if err != nil {
			return fmt.Errorf("Error saving line count graph: %v", err)
		}
	}

	if len(b.preds) > 0 {
		name := b.name + ".txt"
		err = b.send(name, b.name+"/predictions/"+name, func(w io.Writer) error {
			_, err := io.WriteString(w, strings.Join(b.preds, ""))
			return err
		})
		if err != nil {
			return fmt.Errorf("Error saving predictions: %v", err)
		}
	}

	if b.review != nil && b.review.Pages() > 0 {
		path := filepath.Join(b.dir, "review.pdf")
		err = b.review.Save(path)
		if err != nil {
			return fmt.Errorf("Error saving review pdf: %v", err)
		}
		b.upc <- upload{path: path, key: b.name + "/review.pdf"}
	}

	return nil
}
