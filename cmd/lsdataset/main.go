// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// lsdataset lists the books in a dataset.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"rescribe.xyz/linedataset"
	"rescribe.xyz/linedataset/internal/pipeline"
)

const usage = `Usage: lsdataset [-c local|aws] [-d dir] [-b bucket]

Lists the books in a dataset, with the number of line images, texts
and predictions saved for each, and its reports.
`

type Lister interface {
	Init() error
	ListObjects(bucket string, prefix string) ([]string, error)
}

// NullWriter is used so non-verbose logging may be discarded
type NullWriter bool

func (w NullWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func main() {
	storage := flag.String("c", "local", "storage the dataset is in: local or aws")
	dir := flag.String("d", "dataset", "directory the dataset is in, for local storage")
	bucket := flag.String("b", "", "bucket the dataset is in, for aws storage (default from cloudsettings)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	var n NullWriter
	logger := log.New(n, "", 0)

	var conn Lister
	switch *storage {
	case "local":
		if _, err := os.Stat(*dir); err != nil {
			log.Fatalln("Error opening dataset:", err)
		}
		conn = &linedataset.LocalConn{Dir: *dir, Logger: logger}
	case "aws":
		settings, err := linedataset.LoadCloudSettings(linedataset.CloudSettingsPath())
		if err != nil {
			log.Fatalln("Error loading cloud settings:", err)
		}
		if *bucket == "" {
			*bucket = settings.Bucket
		}
		conn = &linedataset.AwsConn{Region: settings.Region, Logger: logger}
	default:
		log.Fatalln("Unknown storage type", *storage, "- should be local or aws")
	}

	err := conn.Init()
	if err != nil {
		log.Fatalln("Error setting up storage:", err)
	}

	books, err := pipeline.ListBooks(*bucket, conn)
	if err != nil {
		log.Fatalln(err)
	}

	if len(books) == 0 {
		fmt.Println("No books found")
		return
	}

	var images, texts int
	for _, b := range books {
		fmt.Printf("%s\t%d images\t%d texts\t%d predictions\t%s\n", b.Name, b.Images, b.Texts, b.Predictions, strings.Join(b.Reports, " "))
		images += b.Images
		texts += b.Texts
	}
	fmt.Printf("%d books, %d images, %d texts\n", len(books), images, texts)
}
