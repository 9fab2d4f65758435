// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Lister interface {
	ListObjects(bucket string, prefix string) ([]string, error)
}

// DatasetBook summarises what has been saved for a book
type DatasetBook struct {
	Name        string
	Images      int
	Texts       int
	Predictions int
	// Reports are the files saved at the top level of the book
	Reports []string
}

// ListBooks lists the books which have been saved to a bucket,
// sorted by name
func ListBooks(bucket string, conn Lister) ([]DatasetBook, error) {
	keys, err := conn.ListObjects(bucket, "")
	if err != nil {
		return nil, fmt.Errorf("Failed to list files: %v", err)
	}

	books := make(map[string]*DatasetBook)
	for _, key := range keys {
		parts := strings.SplitN(key, "/", 3)
		if len(parts) < 2 {
			continue
		}
		b, ok := books[parts[0]]
		if !ok {
			b = &DatasetBook{Name: parts[0]}
			books[parts[0]] = b
		}
		if len(parts) == 2 {
			b.Reports = append(b.Reports, parts[1])
			continue
		}
		switch parts[1] {
		case "images":
			b.Images++
		case "texts":
			b.Texts++
		case "predictions":
			b.Predictions++
		}
	}

	var list []DatasetBook
	for _, b := range books {
		list = append(list, *b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// DownloadReports downloads the ledger, line count graph and review
// pdf of a book into dir, skipping any which don't exist
func DownloadReports(dir string, bucket string, name string, conn DownloadLister) error {
	keys, err := conn.ListObjects(bucket, name+"/")
	if err != nil {
		return fmt.Errorf("Failed to get list of files for book %s: %v", name, err)
	}
	for _, key := range keys {
		rel := strings.TrimPrefix(key, name+"/")
		if strings.Contains(rel, "/") {
			continue
		}
		err = download(dir, bucket, name, key, conn)
		if err != nil {
			return err
		}
	}
	return nil
}

// DownloadAll downloads every file in the dataset of a book into
// dir, keeping the images, texts and predictions subdirectories
func DownloadAll(dir string, bucket string, name string, conn DownloadLister) error {
	keys, err := conn.ListObjects(bucket, name+"/")
	if err != nil {
		return fmt.Errorf("Failed to get list of files for book %s: %v", name, err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("No files found for book %s", name)
	}
	for _, key := range keys {
		err = download(dir, bucket, name, key, conn)
		if err != nil {
			return err
		}
	}
	return nil
}

func download(dir string, bucket string, name string, key string, conn Downloader) error {
	fn := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(key, name+"/")))
	err := os.MkdirAll(filepath.Dir(fn), 0755)
	if err != nil {
		return fmt.Errorf("Failed to create directory for %s: %v", fn, err)
	}
	conn.Log("Downloading file", key)
	err = conn.Download(bucket, key, fn)
	if err != nil {
		return fmt.Errorf("Failed to download file %s: %v", key, err)
	}
	return nil
}
