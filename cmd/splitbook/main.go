// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// splitbook splits the transcription of a book into a file for each
// page, to check that its page markers are being read correctly.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"rescribe.xyz/linedataset/pagetext"
	"rescribe.xyz/linedataset/raster"
)

const usage = `Usage: splitbook [-v] book.txt [outdir]

Splits the transcription of a book into pages, using the page
markers in it, like '##### 12 #####' or '--- Page ١٢ ---'. Lines
before the first marker, and after a marker which can't be read,
are left out.

A summary of the pages found is printed. If outdir is given, the
lines of each page are saved as outdir/{book}_pg{n}.txt.
`

// null writer to enable non-verbose logging to be discarded
type NullWriter bool

func (w NullWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func main() {
	verbose := flag.Bool("v", false, "verbose")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
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

	path := flag.Arg(0)
	book, err := pagetext.SplitFile(path, verboselog)
	if err != nil {
		log.Fatalln(err)
	}

	nums := book.Numbers()
	lines := 0
	for _, n := range nums {
		lines += len(book.Pages[n].Lines)
	}
	fmt.Printf("%d pages, %d lines\n", len(nums), lines)
	for _, m := range book.Malformed {
		fmt.Println("Bad page marker:", m)
	}

	if flag.NArg() < 2 {
		return
	}

	outdir := flag.Arg(1)
	err = os.MkdirAll(outdir, 0755)
	if err != nil {
		log.Fatalln("Error creating output directory:", err)
	}
	name := raster.BookName(path)
	for _, n := range nums {
		fn := filepath.Join(outdir, fmt.Sprintf("%s_pg%d.txt", name, n))
		verboselog.Println("Saving", fn)
		err = os.WriteFile(fn, []byte(strings.Join(book.Pages[n].Lines, "\n")+"\n"), 0644)
		if err != nil {
			log.Fatalln("Error saving page", fn, err)
		}
	}
}
