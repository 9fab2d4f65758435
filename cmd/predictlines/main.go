// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// predictlines recognises line images with tesseract, printing the
// text and confidence of each.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"rescribe.xyz/linedataset/ocr"
	"rescribe.xyz/linedataset/ocr/tessapi"
	"rescribe.xyz/linedataset/raster"
)

const usage = `Usage: predictlines [-api] [-t training] lineimg...

Recognises each line image with tesseract, and prints its name,
average word confidence and text, separated by tabs. Images smaller
than the minimum size used when building a dataset are skipped.
`

func main() {
	training := flag.String("t", "eng", "tesseract training to use")
	api := flag.Bool("api", false, "use the tesseract library rather than the tesseract command")
	all := flag.Bool("a", false, "recognise every image, however small")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	var r ocr.Recognizer
	if *api {
		r = tessapi.Client{Training: *training}
	} else {
		r = ocr.Tesseract{Training: *training}
	}

	ctx := context.Background()
	for _, fn := range flag.Args() {
		img, err := raster.Load(fn)
		if err != nil {
			log.Println(err)
			continue
		}
		if !*all && !ocr.Eligible(img, ocr.DefaultLineMin) {
			log.Println("Skipping", fn, "as it is too small")
			continue
		}
		res, err := r.Recognize(ctx, img)
		if err != nil {
			log.Fatalln("Error recognising", fn, err)
		}
		fmt.Printf("%s\t%.0f\t%s\n", fn, res.Conf, res.Text)
	}
}
