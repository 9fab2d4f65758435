// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package pagetext splits the transcription of a book into pages of
// lines, using the page markers found in the text.
//
// A page marker is a line with a run of '#' or '-' characters on
// each side of a page number, for example:
//
//	#########12#########
//	---- 7 ----
//	######## Page 3 ########
//
// Page numbers may be written in ASCII, Arabic-Indic or Extended
// Arabic-Indic digits. Every non-empty line after a marker belongs
// to that page, until the next marker.
package pagetext

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxLineLen is the longest line of text which can be read
const maxLineLen = 1024 * 1024

// Page is the transcription of a single page
type Page struct {
	Number int
	Lines  []string
}

// Book is a transcription split into pages. Pages with no lines
// are not included.
type Book struct {
	Pages map[int]Page
	// Malformed lists the markers which could not be understood, in
	// the order they were found
	Malformed []*MarkerParseError
}

// Numbers returns the page numbers in the book, in ascending order
func (b Book) Numbers() []int {
	var nums []int
	for n := range b.Pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Lines returns the lines of a page, and whether the page exists
func (b Book) Lines(n int) ([]string, bool) {
	p, ok := b.Pages[n]
	return p.Lines, ok
}

// MarkerParseError is a page marker whose page number could not be
// parsed. The lines following it are discarded until the next good
// marker, as it is not known which page they belong to.
type MarkerParseError struct {
	Line      int
	Marker    string
	Discarded int
	Err       error
}

func (e *MarkerParseError) Error() string {
	return fmt.Sprintf("Bad page marker %q on line %d (%d lines discarded): %v", e.Marker, e.Line, e.Discarded, e.Err)
}

func (e *MarkerParseError) Unwrap() error {
	return e.Err
}

func isMarkerChar(r rune) bool {
	return r == '#' || r == '-'
}

// digit returns the value of an ASCII, Arabic-Indic or Extended
// Arabic-Indic digit
func digit(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= '٠' && r <= '٩':
		return int(r - '٠'), true
	case r >= '۰' && r <= '۹':
		return int(r - '۰'), true
	}
	return 0, false
}

// ParseMarker checks whether a line is a page marker. Any line
// starting with '#' or '-' is a marker. If it is, the page number is
// returned, or an error if the marker is not closed or the number
// could not be parsed.
func ParseMarker(line string) (int, bool, error) {
	s := strings.TrimSpace(line)
	if s == "" {
		return 0, false, nil
	}
	if !isMarkerChar(rune(s[0])) {
		return 0, false, nil
	}
	if !isMarkerChar(rune(s[len(s)-1])) {
		return 0, true, fmt.Errorf("unclosed page marker")
	}

	payload := strings.TrimSpace(strings.TrimFunc(s, isMarkerChar))
	if len(payload) >= 4 && strings.EqualFold(payload[:4], "page") {
		payload = strings.TrimSpace(payload[4:])
	}
	if payload == "" {
		return 0, true, fmt.Errorf("no page number")
	}

	var ascii strings.Builder
	for _, r := range payload {
		d, ok := digit(r)
		if !ok {
			return 0, true, fmt.Errorf("%q is not a page number", payload)
		}
		ascii.WriteByte(byte('0' + d))
	}
	n, err := strconv.Atoi(ascii.String())
	if err != nil {
		return 0, true, fmt.Errorf("page number %q out of range", payload)
	}
	return n, true, nil
}

// Split reads a transcription and splits it into pages. A byte
// order mark at the start of the text is ignored. Lines are trimmed
// of surrounding whitespace, and blank lines are dropped. Lines
// before the first page marker are discarded, and lines for a page
// number which has already been seen are added to the end of that
// page. Bad markers are logged and recorded in Book.Malformed; they
// do not stop the rest of the text being read.
func Split(r io.Reader, logger *log.Logger) (Book, error) {
	book := Book{Pages: make(map[int]Page)}

	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLen)

	cur := -1
	var bad *MarkerParseError
	preamble := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())

		n, isMarker, err := ParseMarker(text)
		if isMarker {
			if err != nil {
				bad = &MarkerParseError{Line: lineNo, Marker: text, Err: err}
				book.Malformed = append(book.Malformed, bad)
				cur = -1
				continue
			}
			if bad != nil {
				logf(logger, "Warning: %v", bad)
				bad = nil
			}
			if _, seen := book.Pages[n]; seen {
				logf(logger, "Page %d appears more than once, adding line %d onwards to it", n, lineNo)
			}
			cur = n
			continue
		}

		if text == "" {
			continue
		}
		if bad != nil {
			bad.Discarded++
			continue
		}
		if cur < 0 {
			preamble++
			continue
		}

		p := book.Pages[cur]
		p.Number = cur
		p.Lines = append(p.Lines, text)
		book.Pages[cur] = p
	}
	if bad != nil {
		logf(logger, "Warning: %v", bad)
	}
	if err := scanner.Err(); err != nil {
		return book, fmt.Errorf("Error reading text: %w", err)
	}
	if preamble > 0 {
		logf(logger, "Discarded %d lines before the first page marker", preamble)
	}

	return book, nil
}

// SplitFile splits the transcription in a file into pages
func SplitFile(path string, logger *log.Logger) (Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return Book{}, fmt.Errorf("Error opening text %s: %w", path, err)
	}
	defer f.Close()

	book, err := Split(f, logger)
	if err != nil {
		return book, fmt.Errorf("Error splitting %s: %w", path, err)
	}
	return book, nil
}

func logf(logger *log.Logger, format string, v ...interface{}) {
	if logger != nil {
		logger.Printf(format, v...)
	}
}
