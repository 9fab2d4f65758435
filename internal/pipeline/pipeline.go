// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// pipeline is a package used by the linedataset commands, which
// handles the core functionality of turning books into datasets,
// using channels to hand finished files over to be stored. Note
// that it is considered an "internal" package, not intended for
// external use, and no guarantee is made of the stability of any
// interfaces provided.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"rescribe.xyz/linedataset"
	"rescribe.xyz/linedataset/align"
	"rescribe.xyz/linedataset/ocr"
	"rescribe.xyz/linedataset/pagetext"
	"rescribe.xyz/linedataset/raster"
	"rescribe.xyz/linedataset/segment"
)

type Uploader interface {
	GetLogger() *log.Logger
	Log(v ...interface{})
	Upload(bucket string, key string, path string) error
}

type Downloader interface {
	Download(bucket string, key string, fn string) error
	Log(v ...interface{})
}

type DownloadLister interface {
	Download(bucket string, key string, fn string) error
	ListObjects(bucket string, prefix string) ([]string, error)
	Log(v ...interface{})
}

// Options control how books are processed. They are only read, so
// the same Options can be used for many books at once.
type Options struct {
	// Bucket is where the dataset is stored
	Bucket string
	// Params are the settings used to find lines on each page
	Params segment.Params
	// Rasterizer is used for books which are PDFs. Books which are
	// directories of page images are always read with raster.Dir.
	Rasterizer raster.Rasterizer
	// SkipBelow is the first page number to include; pages before
	// it are not used. 0 includes every page.
	SkipBelow int
	// Ext is the format to save line images in, "jpg" or "png"
	Ext string
	// Recognizer, if set, is used to save OCR predictions for each
	// page
	Recognizer ocr.Recognizer
	// OCRLineMin is the smallest line image to recognise
	OCRLineMin image.Point
	// OCRPageMin is the smallest page to recognise, when the whole
	// page is used as a line
	OCRPageMin image.Point
	// Wipe removes content at the sides of each page before finding
	// lines, which can help with marginalia and scanning shadows
	Wipe bool
	// Review saves a PDF of each page whose lines couldn't be paired
	// with its text, showing the lines which were found
	Review bool
}

// DefaultOptions returns the Options normally used
func DefaultOptions() Options {
	return Options{
		Params:     segment.DefaultParams(),
		Rasterizer: raster.Pdftoppm{},
		Ext:        "jpg",
		OCRLineMin: ocr.DefaultLineMin,
		OCRPageMin: ocr.DefaultPageMin,
	}
}

// Book is a book to be turned into a dataset
type Book struct {
	Name string
	// Path is a PDF or a directory of page images
	Path string
	// Text is the path of the transcription. If it is empty, only
	// line images are extracted, with no text.
	Text string
}

// BookStats are the counts of what happened to the pages of a book
type BookStats struct {
	Book            string
	Pages           int
	PagesBlank      int
	PagesSkipped    int
	PagesNoText     int
	PagesProcessed  int
	PagesMismatched int
	PagesFailed     int
	LinesWritten    int
	// Err is set if the whole book could not be processed
	Err error
}

// upload is a local file to be stored under key
type upload struct {
	path, key string
}

// up reads files from a channel and uploads them, removing the local
// copy of each once it has been successfully uploaded. The done
// channel is then written to to signal completion. If an error
// occurs it is sent to the errc channel straight away, so the sender
// can stop, and the rest of the channel is then drained until it is
// closed.
func up(ctx context.Context, c chan upload, done chan bool, conn Uploader, bucket string, errc chan error, logger *log.Logger) {
	for u := range c {
		select {
		case <-ctx.Done():
			errc <- ctx.Err()
			for range c {
			} // consume the rest of the receiving channel so it isn't blocked
			return
		default:
		}
		logger.Println("Uploading", u.key)
		err := conn.Upload(bucket, u.key, u.path)
		if err != nil {
			errc <- fmt.Errorf("Error uploading %s: %v", u.key, err)
			for range c {
			} // consume the rest of the receiving channel so it isn't blocked
			return
		}
		err = os.Remove(u.path)
		if err != nil {
			errc <- err
			for range c {
			} // consume the rest of the receiving channel so it isn't blocked
			return
		}
	}

	done <- true
}

// ProcessBook turns a book into line images and texts, storing them
// with conn. Problems with individual pages are recorded in the
// returned ledger rather than stopping the book; an error is only
// returned if the book as a whole could not be processed.
func ProcessBook(ctx context.Context, book Book, opts Options, conn Uploader) (BookStats, *align.Ledger, error) {
	stats := BookStats{Book: book.Name}
	ledger := align.NewLedger()
	logger := conn.GetLogger()

	var text *pagetext.Book
	if book.Text != "" {
		conn.Log("Splitting text", book.Text)
		t, err := pagetext.SplitFile(book.Text, logger)
		if err != nil {
			return stats, ledger, err
		}
		text = &t
	} else {
		conn.Log("No text for", book.Name, "so only extracting lines")
	}

	tmpdir, err := os.MkdirTemp("", "linedataset")
	if err != nil {
		return stats, ledger, fmt.Errorf("Error setting up temporary directory: %v", err)
	}
	defer os.RemoveAll(tmpdir)

	pagedir := filepath.Join(tmpdir, "pages")
	outdir := filepath.Join(tmpdir, "out")
	for _, d := range []string{pagedir, outdir} {
		err = os.Mkdir(d, 0700)
		if err != nil {
			return stats, ledger, fmt.Errorf("Error setting up temporary directory: %v", err)
		}
	}

	var r raster.Rasterizer = raster.Dir{}
	if info, err := os.Stat(book.Path); err != nil || !info.IsDir() {
		r = opts.Rasterizer
		if r == nil {
			r = raster.Pdftoppm{}
		}
	}
	conn.Log("Rasterising", book.Path)
	pages, err := r.Rasterize(ctx, book.Path, pagedir)
	if err != nil {
		return stats, ledger, err
	}
	stats.Pages = len(pages)

	upc := make(chan upload)
	done := make(chan bool, 1)
	errc := make(chan error, 1)
	go up(ctx, upc, done, conn, opts.Bucket, errc, logger)

	b := &bookRun{
		name:   book.Name,
		opts:   opts,
		text:   text,
		dir:    outdir,
		upc:    upc,
		stats:  &stats,
		ledger: ledger,
		logger: logger,
	}
	if opts.Review {
		b.review = new(linedataset.ReviewPdf)
		err = b.review.Setup()
		if err != nil {
			close(upc)
			return stats, ledger, fmt.Errorf("Error setting up review pdf: %v", err)
		}
	}

	for _, pg := range pages {
		select {
		case <-ctx.Done():
			close(upc)
			return stats, ledger, ctx.Err()
		case err = <-errc:
			close(upc)
			return stats, ledger, err
		default:
		}
		b.page(ctx, pg)
	}

	err = b.finish()
	if err != nil {
		conn.Log("Error saving reports for", book.Name, err)
	}
	close(upc)

	select {
	case <-done:
	case err = <-errc:
		return stats, ledger, err
	}

	conn.Log("Finished", book.Name, "-", stats.LinesWritten, "lines from", stats.PagesProcessed, "pages")
	return stats, ledger, nil
}
