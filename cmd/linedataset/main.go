// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// linedataset turns scanned books and their transcriptions into a
// dataset of line images paired with their text, for training OCR.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"rescribe.xyz/linedataset"
	"rescribe.xyz/linedataset/align"
	"rescribe.xyz/linedataset/internal/pipeline"
	"rescribe.xyz/linedataset/ocr"
	"rescribe.xyz/linedataset/raster"
	"rescribe.xyz/linedataset/segment"
)

const usage = `Usage: linedataset [-v] [-c local|aws] [-d dir] [-p preset] [-t training] book|collection

Turns books into a dataset of line images and texts, for training
OCR.

A book is either a PDF or a directory of page images named
{book}_pg{n}.{ext}. Its transcription is expected beside it, named
after the book with a .txt extension; for a directory of pages it
may also be inside the directory. Pages of the transcription are
marked by lines like '##### 12 #####'. A collection is a directory
containing several books, which are processed at once.

Each page is split into lines, and if the number of lines found
matches the number of lines of text for that page, each line image
and its text are saved as:
  {book}/images/{book}_pg{n}_ln{m}.jpg
  {book}/texts/{book}_pg{n}_ln{m}.txt

Pages where the counts don't match are recorded in each book's
ledger.csv, along with pages which failed or had no transcription,
and are left out of the dataset. Books with no transcription at all
just have their line images saved. The counts for every book are
saved in stats.csv.

By default the dataset is saved in a local directory. With -c aws
it is saved to S3 instead, using the bucket and region from the
cloudsettings file if it exists.

`

// null writer to enable non-verbose logging to be discarded
type NullWriter bool

func (w NullWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

type Storer interface {
	Init() error
	ListObjects(bucket string, prefix string) ([]string, error)
	Download(bucket string, key string, fn string) error
	Upload(bucket string, key string, path string) error
	GetLogger() *log.Logger
	Log(v ...interface{})
}

// params builds the segmentation parameters from the preset, and any
// flags which were explicitly set
func params(preset, closeSize, openSize string, minheight, padding int, aspect float64) (segment.Params, error) {
	p, err := segment.Preset(preset)
	if err != nil {
		return p, err
	}

	var perr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "close":
			p.Close, err = segment.ParseSize(closeSize)
		case "open":
			p.Open, err = segment.ParseSize(openSize)
		case "minheight":
			p.MinLineHeight = minheight
		case "padding":
			p.Padding = padding
		case "aspect":
			p.MinAspect = aspect
		}
		if err != nil && perr == nil {
			perr = fmt.Errorf("Invalid -%s: %v", f.Name, err)
		}
	})
	if perr != nil {
		return p, perr
	}

	return p, p.Validate()
}

func main() {
	verbose := flag.Bool("v", false, "verbose")
	storage := flag.String("c", "local", "storage to save the dataset to: local or aws")
	dir := flag.String("d", "dataset", "directory to save the dataset in, for local storage")
	bucket := flag.String("b", "", "bucket to save the dataset in, for aws storage (default from cloudsettings)")
	preset := flag.String("p", "default", "line finding settings preset: "+strings.Join(segment.PresetNames(), ", "))
	closeSize := flag.String("close", "", "closing element used to join the glyphs of a line, as WxH (overrides preset)")
	openSize := flag.String("open", "", "opening element used to separate touching lines, as WxH, or 0x0 to disable (overrides preset)")
	minheight := flag.Int("minheight", 0, "height in pixels a line image must exceed to be kept (overrides preset)")
	padding := flag.Int("padding", 0, "pixels added around each line before cropping (overrides preset)")
	aspect := flag.Float64("aspect", 0, "lowest width / height ratio of a line (overrides preset)")
	skip := flag.Int("skip", 0, "skip pages numbered below this, such as front matter")
	ext := flag.String("ext", "jpg", "format to save line images in: jpg or png")
	dpi := flag.Int("dpi", raster.DefaultDpi, "resolution to rasterise PDFs at")
	workers := flag.Int("w", 1, "number of books to process at once")
	wipe := flag.Bool("wipe", false, "remove content at the sides of pages before finding lines")
	review := flag.Bool("review", false, "save a review PDF for each book showing pages whose lines didn't match the text")
	training := flag.String("t", "", "tesseract training to save OCR predictions of each line with (disabled if empty)")
	check := flag.Bool("check", false, "only check that the page images of a book can be read")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	var verboselog *log.Logger
	if *verbose {
		verboselog = log.New(os.Stdout, "", log.LstdFlags)
	} else {
		var n NullWriter
		verboselog = log.New(n, "", log.LstdFlags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *check {
		err := pipeline.CheckImages(ctx, path)
		if err != nil {
			log.Fatalln("Error checking images:", err)
		}
		fmt.Println("All images in", path, "could be read")
		return
	}

	p, err := params(*preset, *closeSize, *openSize, *minheight, *padding, *aspect)
	if err != nil {
		log.Fatalln("Error with line finding settings:", err)
	}

	if *ext != "jpg" && *ext != "png" {
		log.Fatalln("Unknown image format", *ext, "- should be jpg or png")
	}

	opts := pipeline.DefaultOptions()
	opts.Params = p
	opts.Rasterizer = raster.Pdftoppm{Dpi: *dpi}
	opts.SkipBelow = *skip
	opts.Ext = *ext
	opts.Wipe = *wipe
	opts.Review = *review
	if *training != "" {
		opts.Recognizer = ocr.Tesseract{Training: *training}
	}

	var conn Storer
	switch *storage {
	case "local":
		conn = &linedataset.LocalConn{Dir: *dir, Logger: verboselog}
	case "aws":
		settings, err := linedataset.LoadCloudSettings(linedataset.CloudSettingsPath())
		if err != nil {
			log.Fatalln("Error loading cloud settings:", err)
		}
		if *bucket == "" {
			*bucket = settings.Bucket
		}
		opts.Bucket = *bucket
		conn = &linedataset.AwsConn{Region: settings.Region, Logger: verboselog}
	default:
		log.Fatalln("Unknown storage type", *storage, "- should be local or aws")
	}

	verboselog.Println("Setting up storage")
	err = conn.Init()
	if err != nil {
		log.Fatalln("Error setting up storage:", err)
	}
	if a, ok := conn.(*linedataset.AwsConn); ok {
		err = a.CreateBucket(opts.Bucket)
		if err != nil {
			log.Fatalln(err)
		}
	}

	books, err := pipeline.FindBooks(path)
	if err != nil {
		log.Fatalln(err)
	}
	for _, b := range books {
		if b.Text == "" {
			log.Println("No transcription found for", b.Name, "so only line images will be saved")
		}
	}

	run, ledger := pipeline.ProcessBooks(ctx, books, opts, conn, *workers)

	failed := false
	for _, s := range run.Books {
		if s.Err != nil {
			log.Printf("Error processing %s: %v", s.Book, s.Err)
			failed = true
			continue
		}
		fmt.Printf("%s: %d lines from %d of %d pages (%d mismatched, %d failed, %d with no text, %d blank, %d skipped)\n",
			s.Book, s.LinesWritten, s.PagesProcessed-s.PagesMismatched, s.Pages,
			s.PagesMismatched, s.PagesFailed, s.PagesNoText, s.PagesBlank, s.PagesSkipped)
	}
	for _, e := range ledger.Entries() {
		if e.Kind == align.KindFailure {
			verboselog.Printf("%s failed: %s", e.Key(), e.Err)
		}
	}
	if len(run.Books) > 1 {
		t := run.Total
		fmt.Printf("Total: %d lines from %d books (%d pages mismatched, %d failed)\n",
			t.LinesWritten, len(run.Books), t.PagesMismatched, t.PagesFailed)
	}

	if failed || ctx.Err() != nil {
		os.Exit(1)
	}
}
