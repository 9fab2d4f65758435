// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"rescribe.xyz/linedataset/align"
	"rescribe.xyz/linedataset/raster"
)

// ErrDuplicateBook is the error given to a book with the same name
// as an earlier book in a run, as their files would be stored under
// the same keys
var ErrDuplicateBook = errors.New("Duplicate book name")

// RunStats are the statistics for every book processed in a run, in
// the order the books were given, along with their totals
type RunStats struct {
	Books []BookStats
	Total BookStats
}

// hasPages reports whether a directory contains page images
func hasPages(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() || !raster.IsImage(e.Name()) {
			continue
		}
		if _, err := raster.PageNumber(e.Name()); err == nil {
			return true
		}
	}
	return false
}

// exists returns path if it is a file which exists, or "" otherwise
func exists(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}

func pdfBook(path string) Book {
	return Book{
		Name: raster.BookName(path),
		Path: path,
		Text: exists(strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"),
	}
}

func dirBook(dir string) Book {
	dir = filepath.Clean(dir)
	text := exists(dir + ".txt")
	if text == "" {
		text = exists(filepath.Join(dir, filepath.Base(dir)+".txt"))
	}
	return Book{Name: raster.BookName(dir), Path: dir, Text: text}
}

// FindBooks finds the books at path. It can be a PDF, a directory
// of page images, or a directory containing PDFs and directories of
// page images. The transcription of a PDF is expected beside it with
// a .txt extension; the transcription of a directory of pages is
// expected beside it or inside it, named after the directory with a
// .txt extension. Books with no transcription are given an empty
// Text. The books are returned sorted by path.
func FindBooks(path string) ([]Book, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("Error finding books in %s: %v", path, err)
	}

	if !info.IsDir() {
		if strings.ToLower(filepath.Ext(path)) != ".pdf" {
			return nil, fmt.Errorf("%s is not a PDF or a directory", path)
		}
		return []Book{pdfBook(path)}, nil
	}

	if hasPages(path) {
		return []Book{dirBook(path)}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("Error reading directory %s: %v", path, err)
	}
	var books []Book
	for _, e := range entries {
		p := filepath.Join(path, e.Name())
		switch {
		case strings.HasPrefix(e.Name(), "."):
			continue
		case e.IsDir() && hasPages(p):
			books = append(books, dirBook(p))
		case !e.IsDir() && strings.ToLower(filepath.Ext(e.Name())) == ".pdf":
			books = append(books, pdfBook(p))
		}
	}

	if len(books) == 0 {
		return nil, fmt.Errorf("No books found in %s", path)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Path < books[j].Path })
	return books, nil
}

// ProcessBooks processes several books at once, using up to workers
// goroutines. A problem with one book never stops the others; it is
// logged and recorded in the book's stats. The ledgers of all books
// are merged, and the stats for the run are saved as stats.csv. A
// book with the same name as an earlier one is not processed, and is
// given an ErrDuplicateBook error.
func ProcessBooks(ctx context.Context, books []Book, opts Options, conn Uploader, workers int) (RunStats, *align.Ledger) {
	if workers < 1 {
		workers = 1
	}

	stats := make([]BookStats, len(books))
	ledgers := make([]*align.Ledger, len(books))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s, l, err := ProcessBook(ctx, books[i], opts, conn)
				if err != nil {
					conn.Log("Error processing book", books[i].Name, err)
					s.Err = err
				}
				stats[i] = s
				ledgers[i] = l
			}
		}()
	}

	seen := make(map[string]string)
	for i, book := range books {
		if prev, ok := seen[book.Name]; ok {
			err := fmt.Errorf("%w: %s has the same name as %s", ErrDuplicateBook, book.Path, prev)
			conn.Log("Not processing book", book.Name, err)
			stats[i] = BookStats{Book: book.Name, Err: err}
			ledgers[i] = align.NewLedger()
			continue
		}
		seen[book.Name] = book.Path
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	run := RunStats{Books: stats, Total: BookStats{Book: "total"}}
	ledger := align.NewLedger()
	for i, s := range stats {
		ledger.Merge(ledgers[i])
		run.Total.Pages += s.Pages
		run.Total.PagesBlank += s.PagesBlank
		run.Total.PagesSkipped += s.PagesSkipped
		run.Total.PagesNoText += s.PagesNoText
		run.Total.PagesProcessed += s.PagesProcessed
		run.Total.PagesMismatched += s.PagesMismatched
		run.Total.PagesFailed += s.PagesFailed
		run.Total.LinesWritten += s.LinesWritten
	}

	err := saveStats(run, opts.Bucket, conn)
	if err != nil {
		conn.Log("Error saving stats:", err)
	}

	return run, ledger
}

// WriteCSV writes the stats of each book, followed by the totals
func (r RunStats) WriteCSV(w io.Writer) error {
	c := csv.NewWriter(w)
	err := c.Write([]string{"book", "pages", "blank", "skipped", "notext", "processed", "mismatched", "failed", "lines", "error"})
	if err != nil {
		return err
	}
	rows := append(append([]BookStats{}, r.Books...), r.Total)
	for _, s := range rows {
		var e string
		if s.Err != nil {
			e = s.Err.Error()
		}
		err = c.Write([]string{
			s.Book,
			strconv.Itoa(s.Pages),
			strconv.Itoa(s.PagesBlank),
			strconv.Itoa(s.PagesSkipped),
			strconv.Itoa(s.PagesNoText),
			strconv.Itoa(s.PagesProcessed),
			strconv.Itoa(s.PagesMismatched),
			strconv.Itoa(s.PagesFailed),
			strconv.Itoa(s.LinesWritten),
			e,
		})
		if err != nil {
			return err
		}
	}
	c.Flush()
	return c.Error()
}

func saveStats(run RunStats, bucket string, conn Uploader) error {
	f, err := os.CreateTemp("", "linedataset-stats")
	if err != nil {
		return fmt.Errorf("Error creating stats file: %v", err)
	}
	defer os.Remove(f.Name())

	err = run.WriteCSV(f)
	cerr := f.Close()
	if err != nil {
		return fmt.Errorf("Error writing stats: %v", err)
	}
	if cerr != nil {
		return fmt.Errorf("Error writing stats: %v", cerr)
	}
	return conn.Upload(bucket, "stats.csv", f.Name())
}
