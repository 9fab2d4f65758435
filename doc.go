// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

/*
The linedataset package contains tools and functions to build OCR training
datasets from books, by cutting each page into line images and pairing them
with the corresponding lines of a ground truth transcription.

Introduction

Training an OCR model needs many examples of a line image together with the
exact text it contains. Books are often available as a PDF or a set of page
images, with a separate transcription of the whole book, but not line by line.
linedataset bridges that gap. It splits each page image into lines, splits the
transcription into pages using the page markers it contains, and pairs them up
in reading order.

The main tool is the linedataset command, which can be installed along with
the other tools with:
  go install rescribe.xyz/linedataset/cmd/...

All of the tools will give information on what they do and how they work with
the '-h' flag, for example:
  linedataset -h

Transcriptions

A transcription is a UTF-8 text file, with each page introduced by a marker
line containing the page number surrounded by '#' or '-' characters, like
this:
  ##########1##########
  the first line of page one
  the second line of page one
  ##########2##########
  the first line of page two

Arabic-Indic page numbers are also understood. The splitbook tool can be used
to check how a transcription will be split, by writing each page to its own
file.

How lines are found

Each page is converted to greyscale, lightly blurred, and binarised with an
automatically chosen threshold. A wide, short morphological closing then joins
the glyphs of each line into a single blob, and the outer boundary of every
blob is found. Blobs which are not much wider than they are tall are ignored,
and the rest are sorted from the top of the page down, padded a little, and
cropped from the original page image. If nothing that looks like a line is
found, the whole page is used instead, so odd layouts are never silently lost.
The pagelines tool runs this on a single page image, which is useful for
tuning the parameters for a particular book.

How lines are paired with text

Pairing is purely positional. If a page has the same number of line images as
lines of text, the first image is paired with the first line, and so on. If
the numbers differ, no attempt is made to guess which lines were missed or
merged, and the whole page is left out of the dataset and recorded in the
ledger instead, so it can be checked by hand. The review.pdf produced for
each book shows the lines found on each such page.

Output

For each book, the dataset is written under a directory with the book's name:
  Book/images/Book_pg1_ln1.jpg
  Book/texts/Book_pg1_ln1.txt
  Book/ledger.csv
  Book/linecounts.png
  Book/review.pdf
along with a stats.csv covering all books processed. The output can be written
to a local directory, or to an S3 bucket, which is configured in
cloudsettings.go and can be overridden in ~/.config/linedataset/cloudsettings.
*/
package linedataset
