// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package align pairs the line images of a page with the lines of
// its transcription, and keeps a ledger of the pages where that
// could not be done.
//
// Alignment is purely positional: the nth line image is paired with
// the nth line of text. If the number of line images found on a page
// differs from the number of lines transcribed for it, no guess is
// made about which lines were missed or merged, and the page is
// recorded as a mismatch instead.
package align

import (
	"fmt"
	"image"

	"rescribe.xyz/linedataset/segment"
)

// Pair is a line image with its transcription
type Pair struct {
	Index int
	Image image.Image
	Text  string
}

// Mismatch records a page whose line counts did not agree
type Mismatch struct {
	Book       string
	Page       int
	ImageLines int
	TextLines  int
}

// Key returns the page identifier used in the ledger
func (m Mismatch) Key() string {
	return PageKey(m.Book, m.Page)
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: %d line images but %d lines of text", m.Key(), m.ImageLines, m.TextLines)
}

// Result is the outcome of aligning one page. Either Pairs or
// Mismatch is set, never both.
type Result struct {
	Pairs    []Pair
	Mismatch *Mismatch
}

// PageKey returns the identifier of a page of a book, as used in
// output filenames and the ledger
func PageKey(book string, page int) string {
	return fmt.Sprintf("%s_pg%d", book, page)
}

// Align pairs the line images of a page with its lines of text, if
// there are the same number of each. Otherwise a Mismatch is
// returned, and none of the page is used.
func Align(lines []segment.Line, text []string, book string, page int) Result {
	if len(lines) != len(text) {
		return Result{Mismatch: &Mismatch{
			Book:       book,
			Page:       page,
			ImageLines: len(lines),
			TextLines:  len(text),
		}}
	}

	pairs := make([]Pair, len(lines))
	for i, l := range lines {
		pairs[i] = Pair{Index: l.Index, Image: l.Image, Text: text[i]}
	}
	return Result{Pairs: pairs}
}
