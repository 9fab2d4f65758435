// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package align

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"

	"rescribe.xyz/linedataset/segment"
)

func mklines(n int) []segment.Line {
	var lines []segment.Line
	for i := 0; i < n; i++ {
		img := image.NewGray(image.Rect(0, 0, 100, 20))
		lines = append(lines, segment.Line{Index: i + 1, Image: img})
	}
	return lines
}

func TestAlign(t *testing.T) {
	cases := []struct {
		name   string
		lines  int
		text   []string
		paired bool
	}{
		{"equal", 3, []string{"a", "b", "c"}, true},
		{"moreimages", 5, []string{"a", "b", "c", "d"}, false},
		{"moretext", 2, []string{"a", "b", "c"}, false},
		{"notext", 1, nil, false},
		{"wholepage", 1, []string{"only"}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lines := mklines(c.lines)
			r := Align(lines, c.text, "Demo", 4)
			if c.paired {
				if r.Mismatch != nil {
					t.Fatalf("Expected no mismatch, got %v", r.Mismatch)
				}
				if len(r.Pairs) != c.lines {
					t.Fatalf("Expected %d pairs, got %d", c.lines, len(r.Pairs))
				}
				for i, p := range r.Pairs {
					if p.Index != i+1 || p.Text != c.text[i] || p.Image != lines[i].Image {
						t.Fatalf("Pair %d is not positional: %+v", i, p)
					}
				}
				return
			}
			if len(r.Pairs) != 0 {
				t.Fatalf("Expected no pairs on a mismatch, got %d", len(r.Pairs))
			}
			if r.Mismatch == nil {
				t.Fatalf("Expected a mismatch")
			}
			want := Mismatch{Book: "Demo", Page: 4, ImageLines: c.lines, TextLines: len(c.text)}
			if *r.Mismatch != want {
				t.Fatalf("Expected %+v, got %+v", want, *r.Mismatch)
			}
			if r.Mismatch.Key() != "Demo_pg4" {
				t.Fatalf("Expected key Demo_pg4, got %s", r.Mismatch.Key())
			}
		})
	}
}

func TestLedger(t *testing.T) {
	l := NewLedger()
	l.AddMismatch(Mismatch{Book: "Zeta", Page: 2, ImageLines: 5, TextLines: 4})
	l.AddMismatch(Mismatch{Book: "Alpha", Page: 10, ImageLines: 3, TextLines: 4})
	l.AddFailure("Alpha", 2, errors.New("bad image"))
	l.AddNoText("Alpha", 9)

	if l.Len() != 4 {
		t.Fatalf("Expected 4 entries, got %d", l.Len())
	}
	if l.Count(KindMismatch) != 2 || l.Count(KindFailure) != 1 || l.Count(KindNoText) != 1 {
		t.Fatalf("Unexpected counts of entry kinds")
	}

	var keys []string
	for _, e := range l.Entries() {
		keys = append(keys, e.Key())
	}
	want := "Alpha_pg2 Alpha_pg9 Alpha_pg10 Zeta_pg2"
	if strings.Join(keys, " ") != want {
		t.Fatalf("Expected entries in order %s, got %s", want, strings.Join(keys, " "))
	}

	l.AddFailure("Zeta", 2, errors.New("retried and failed"))
	if e, _ := l.Get("Zeta_pg2"); e.Kind != KindFailure {
		t.Fatalf("Expected later entry for a page to replace earlier one, got %+v", e)
	}
	if l.Len() != 4 {
		t.Fatalf("Expected 4 entries after replacing one, got %d", l.Len())
	}
}

func TestLedgerMerge(t *testing.T) {
	a := NewLedger()
	a.AddMismatch(Mismatch{Book: "A", Page: 1, ImageLines: 2, TextLines: 1})
	b := NewLedger()
	b.AddMismatch(Mismatch{Book: "B", Page: 1, ImageLines: 2, TextLines: 1})
	b.AddNoText("B", 3)

	var merged Ledger
	merged.Merge(a)
	merged.Merge(b)
	merged.Merge(nil)
	if merged.Len() != 3 {
		t.Fatalf("Expected 3 entries after merge, got %d", merged.Len())
	}
}

func TestLedgerCSV(t *testing.T) {
	l := NewLedger()
	l.AddMismatch(Mismatch{Book: "Demo", Page: 3, ImageLines: 5, TextLines: 4})
	l.AddFailure("Demo", 1, errors.New("invalid image, with comma"))

	var buf bytes.Buffer
	err := l.WriteCSV(&buf)
	if err != nil {
		t.Fatalf("Error writing CSV: %v", err)
	}
	want := "key,book,page,kind,image_lines,text_lines,error\n" +
		"Demo_pg1,Demo,1,failure,0,0,\"invalid image, with comma\"\n" +
		"Demo_pg3,Demo,3,mismatch,5,4,\n"
	if buf.String() != want {
		t.Fatalf("Expected CSV:\n%s\ngot:\n%s", want, buf.String())
	}
}
