// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package linedataset

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/nickjwhite/gofpdf"
)

const pageWidth = 5 // pageWidth in inches

// pxToPt converts a pixel value into a pt value (72 pts per inch)
// This uses pageWidth to determine the appropriate value
func pxToPt(i int) float64 {
	return float64(i) / pageWidth
}

// ReviewPdf is a PDF of pages which need to be checked by hand, with
// the lines which were found on each one outlined
type ReviewPdf struct {
	fpdf  *gofpdf.Fpdf
	pages int
}

// Setup creates a new PDF with appropriate settings
func (p *ReviewPdf) Setup() error {
	p.fpdf = gofpdf.New("P", "pt", "A4", "")
	p.fpdf.SetFont("Helvetica", "", 10)
	p.fpdf.SetAutoPageBreak(false, float64(0))
	return p.fpdf.Error()
}

// AddPage adds a page to the pdf with an image, a box around each
// region, and a caption at the top. Regions are relative to the
// top left of the image.
func (p *ReviewPdf) AddPage(name string, img image.Image, regions []image.Rectangle, caption string) error {
	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err != nil {
		return fmt.Errorf("Could not encode image %s: %v", name, err)
	}

	b := img.Bounds()
	p.fpdf.AddPageFormat("P", gofpdf.SizeType{Wd: pxToPt(b.Dx()), Ht: pxToPt(b.Dy())})

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	_ = p.fpdf.RegisterImageOptionsReader(name, opts, &buf)
	p.fpdf.ImageOptions(name, 0, 0, pxToPt(b.Dx()), pxToPt(b.Dy()), false, opts, 0, "")

	p.fpdf.SetDrawColor(255, 0, 0)
	p.fpdf.SetLineWidth(1)
	for _, r := range regions {
		p.fpdf.Rect(pxToPt(r.Min.X), pxToPt(r.Min.Y), pxToPt(r.Dx()), pxToPt(r.Dy()), "D")
	}

	if caption != "" {
		p.fpdf.SetTextColor(255, 0, 0)
		p.fpdf.SetXY(2, 2)
		p.fpdf.CellFormat(pxToPt(b.Dx())-4, 12, caption, "", 0, "L", false, 0, "")
	}

	p.pages++
	return p.fpdf.Error()
}

// Pages returns the number of pages added so far
func (p *ReviewPdf) Pages() int {
	return p.pages
}

// Save saves the PDF to the file at path
func (p *ReviewPdf) Save(path string) error {
	return p.fpdf.OutputFileAndClose(path)
}
