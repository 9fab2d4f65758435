// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// getdataset downloads the dataset of a book from S3.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"rescribe.xyz/linedataset"
	"rescribe.xyz/linedataset/internal/pipeline"
)

const usage = `Usage: getdataset [-a] [-v] [-b bucket] bookname

Downloads the dataset of a book which was saved to S3.

By default this just downloads the reports for the book: the
ledger.csv of pages left out of the dataset, the linecounts.png
graph and the review.pdf, if they exist. With -a the line images,
texts and predictions are downloaded too.

Everything is saved in a directory named after the book.
`

// null writer to enable non-verbose logging to be discarded
type NullWriter bool

func (w NullWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func main() {
	all := flag.Bool("a", false, "Get all files for book")
	verbose := flag.Bool("v", false, "Verbose")
	bucket := flag.String("b", "", "bucket the dataset is in (default from cloudsettings)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		return
	}

	var verboselog *log.Logger
	if *verbose {
		verboselog = log.New(os.Stdout, "", log.LstdFlags)
	} else {
		var n NullWriter
		verboselog = log.New(n, "", log.LstdFlags)
	}

	settings, err := linedataset.LoadCloudSettings(linedataset.CloudSettingsPath())
	if err != nil {
		log.Fatalln("Error loading cloud settings:", err)
	}
	if *bucket == "" {
		*bucket = settings.Bucket
	}

	conn := &linedataset.AwsConn{Region: settings.Region, Logger: verboselog}

	verboselog.Println("Setting up AWS session")
	err = conn.Init()
	if err != nil {
		log.Fatalln("Error setting up cloud connection:", err)
	}
	verboselog.Println("Finished setting up AWS session")

	bookname := flag.Arg(0)

	err = os.MkdirAll(bookname, 0755)
	if err != nil {
		log.Fatalln("Failed to create directory", bookname, err)
	}

	if *all {
		verboselog.Println("Downloading all files for", bookname)
		err = pipeline.DownloadAll(bookname, *bucket, bookname, conn)
	} else {
		verboselog.Println("Downloading reports for", bookname)
		err = pipeline.DownloadReports(bookname, *bucket, bookname, conn)
	}
	if err != nil {
		log.Fatalln(err)
	}
}
