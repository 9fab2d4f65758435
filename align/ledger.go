// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package align

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Kind is the type of problem recorded for a page
type Kind string

const (
	// KindMismatch is a page whose line counts differed
	KindMismatch Kind = "mismatch"
	// KindFailure is a page which could not be processed at all
	KindFailure Kind = "failure"
	// KindNoText is a page with no transcription
	KindNoText Kind = "notext"
)

// Entry is a problem with a page
type Entry struct {
	Book       string
	Page       int
	Kind       Kind
	ImageLines int
	TextLines  int
	Err        string
}

// Key returns the page identifier of the entry
func (e Entry) Key() string {
	return PageKey(e.Book, e.Page)
}

// Ledger records problems with pages, keyed by page identifier.
// Only the latest problem recorded for a page is kept. A Ledger is
// not safe for concurrent use; each book should have its own, which
// can be merged once the book is done.
type Ledger struct {
	entries map[string]Entry
}

// NewLedger creates an empty Ledger
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]Entry)}
}

func (l *Ledger) add(e Entry) {
	if l.entries == nil {
		l.entries = make(map[string]Entry)
	}
	l.entries[e.Key()] = e
}

// AddMismatch records a page whose line counts differed
func (l *Ledger) AddMismatch(m Mismatch) {
	l.add(Entry{
		Book:       m.Book,
		Page:       m.Page,
		Kind:       KindMismatch,
		ImageLines: m.ImageLines,
		TextLines:  m.TextLines,
	})
}

// AddFailure records a page which could not be processed
func (l *Ledger) AddFailure(book string, page int, err error) {
	e := Entry{Book: book, Page: page, Kind: KindFailure}
	if err != nil {
		e.Err = err.Error()
	}
	l.add(e)
}

// AddNoText records a page which has an image but no transcription
func (l *Ledger) AddNoText(book string, page int) {
	l.add(Entry{Book: book, Page: page, Kind: KindNoText})
}

// Len returns the number of pages in the ledger
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Get returns the entry for a page identifier, if there is one
func (l *Ledger) Get(key string) (Entry, bool) {
	e, ok := l.entries[key]
	return e, ok
}

// Entries returns every entry, sorted by book and then page
func (l *Ledger) Entries() []Entry {
	entries := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Book != entries[j].Book {
			return entries[i].Book < entries[j].Book
		}
		return entries[i].Page < entries[j].Page
	})
	return entries
}

// Count returns the number of entries of a kind
func (l *Ledger) Count(k Kind) int {
	n := 0
	for _, e := range l.entries {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Merge adds every entry from another ledger
func (l *Ledger) Merge(other *Ledger) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		l.add(e)
	}
}

// WriteCSV writes the ledger as CSV, with a header row
func (l *Ledger) WriteCSV(w io.Writer) error {
	c := csv.NewWriter(w)
	err := c.Write([]string{"key", "book", "page", "kind", "image_lines", "text_lines", "error"})
	if err != nil {
		return fmt.Errorf("Error writing ledger header: %v", err)
	}
	for _, e := range l.Entries() {
		err = c.Write([]string{
			e.Key(),
			e.Book,
			strconv.Itoa(e.Page),
			string(e.Kind),
			strconv.Itoa(e.ImageLines),
			strconv.Itoa(e.TextLines),
			e.Err,
		})
		if err != nil {
			return fmt.Errorf("Error writing ledger entry %s: %v", e.Key(), err)
		}
	}
	c.Flush()
	return c.Error()
}
