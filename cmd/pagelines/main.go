// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// pagelines splits a single page image into line images, which is
// useful for trying out line finding settings on a tricky book.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"rescribe.xyz/linedataset"
	"rescribe.xyz/linedataset/raster"
	"rescribe.xyz/linedataset/segment"
)

const usage = `Usage: pagelines [-v] [-p preset] [-close WxH] [-open WxH] [-pdf review.pdf] page outdir

Splits a page image into lines, saving each as outdir/{page}_ln{n}.png.

If -pdf is given, a PDF of the page is also saved with the lines
that were found marked on it.
`

// null writer to enable non-verbose logging to be discarded
type NullWriter bool

func (w NullWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func main() {
	verbose := flag.Bool("v", false, "verbose")
	preset := flag.String("p", "default", "line finding settings preset: "+strings.Join(segment.PresetNames(), ", "))
	closeSize := flag.String("close", "", "closing element as WxH (overrides preset)")
	openSize := flag.String("open", "", "opening element as WxH (overrides preset)")
	pdfname := flag.String("pdf", "", "save a pdf showing the lines found")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	var verboselog *log.Logger
	if *verbose {
		verboselog = log.New(os.Stdout, "", 0)
	} else {
		var n NullWriter
		verboselog = log.New(n, "", 0)
	}

	p, err := segment.Preset(*preset)
	if err != nil {
		log.Fatalln(err)
	}
	if *closeSize != "" {
		p.Close, err = segment.ParseSize(*closeSize)
		if err != nil {
			log.Fatalln(err)
		}
	}
	if *openSize != "" {
		p.Open, err = segment.ParseSize(*openSize)
		if err != nil {
			log.Fatalln(err)
		}
	}

	page := flag.Arg(0)
	outdir := flag.Arg(1)

	img, err := raster.Load(page)
	if err != nil {
		log.Fatalln(err)
	}
	if segment.IsBlank(img) {
		log.Fatalln(page, "is blank")
	}

	s := segment.Segmenter{Params: p, Logger: verboselog}
	lines, err := s.Segment(img)
	if err != nil {
		log.Fatalln("Error finding lines:", err)
	}

	err = os.MkdirAll(outdir, 0755)
	if err != nil {
		log.Fatalln("Error creating output directory:", err)
	}

	base := strings.TrimSuffix(filepath.Base(page), filepath.Ext(page))
	var regions []image.Rectangle
	for _, l := range lines {
		regions = append(regions, l.Region.Rect())
		fn := filepath.Join(outdir, fmt.Sprintf("%s_ln%d.png", base, l.Index))
		verboselog.Println("Saving", fn, "from", l.Region)
		f, err := os.Create(fn)
		if err != nil {
			log.Fatalln("Error creating file", fn, err)
		}
		err = png.Encode(f, l.Image)
		f.Close()
		if err != nil {
			log.Fatalln("Error encoding line", fn, err)
		}
	}

	if len(lines) == 1 && lines[0].Whole {
		fmt.Println("No lines found, so saved the whole page")
	} else {
		fmt.Printf("Found %d lines\n", len(lines))
	}

	if *pdfname != "" {
		var pdf linedataset.ReviewPdf
		err = pdf.Setup()
		if err != nil {
			log.Fatalln("Error setting up pdf:", err)
		}
		err = pdf.AddPage(base, img, regions, fmt.Sprintf("%d lines found", len(lines)))
		if err != nil {
			log.Fatalln("Error adding page to pdf:", err)
		}
		err = pdf.Save(*pdfname)
		if err != nil {
			log.Fatalln("Error saving pdf:", err)
		}
	}
}
