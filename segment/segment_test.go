// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
)

// whitePage creates an all white colour page
func whitePage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

// textLine draws a line of "glyphs": black blocks separated by small
// gaps, which should be joined up by closing
func textLine(img draw.Image, x0, x1, y, h int) {
	for x := x0; x < x1; x += 16 {
		end := x + 10
		if end > x1 {
			end = x1
		}
		draw.Draw(img, image.Rect(x, y, end, y+h), image.Black, image.Point{}, draw.Src)
	}
}

// maskWith creates a mask with the given rectangles set as foreground
func maskWith(w, h int, rects ...image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for _, r := range rects {
		draw.Draw(img, r, &image.Uniform{color.Gray{255}}, image.Point{}, draw.Src)
	}
	return img
}

func TestIsBlank(t *testing.T) {
	white := whitePage(50, 40)
	dotted := whitePage(50, 40)
	dotted.Set(10, 10, color.Black)
	faint := image.NewGray(image.Rect(0, 0, 10, 10))
	draw.Draw(faint, faint.Bounds(), image.White, image.Point{}, draw.Src)
	faint.SetGray(9, 9, color.Gray{254})
	whitegray := image.NewGray(image.Rect(0, 0, 10, 10))
	draw.Draw(whitegray, whitegray.Bounds(), image.White, image.Point{}, draw.Src)

	cases := []struct {
		name  string
		img   image.Image
		blank bool
	}{
		{"white", white, true},
		{"onepixel", dotted, false},
		{"faint", faint, false},
		{"whitegray", whitegray, true},
		{"empty", image.NewRGBA(image.Rect(0, 0, 0, 0)), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if IsBlank(c.img) != c.blank {
				t.Fatalf("Expected IsBlank to be %v, got %v", c.blank, !c.blank)
			}
		})
	}
}

func TestBinarize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			v := uint8(220)
			if x < 10 {
				v = 20
			}
			img.SetGray(x, y, color.Gray{v})
		}
	}
	bw, th, err := Binarize(img)
	if err != nil {
		t.Fatalf("Error binarising: %v", err)
	}
	if th < 20 || th >= 220 {
		t.Fatalf("Expected threshold between 20 and 220, got %f", th)
	}
	if bw.Bounds() != img.Bounds() {
		t.Fatalf("Expected mask of size %v, got %v", img.Bounds(), bw.Bounds())
	}
	if bw.GrayAt(0, 0).Y != 255 {
		t.Errorf("Expected dark pixel to become foreground")
	}
	if bw.GrayAt(19, 9).Y != 0 {
		t.Errorf("Expected light pixel to become background")
	}
}

func TestPreprocessInvalid(t *testing.T) {
	cases := []struct {
		name string
		img  image.Image
	}{
		{"nil", nil},
		{"nowidth", image.NewRGBA(image.Rect(0, 0, 0, 10))},
		{"noheight", image.NewGray(image.Rect(0, 0, 10, 0))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Preprocess(c.img, DefaultParams())
			var invalid *InvalidImageError
			if !errors.As(err, &invalid) {
				t.Fatalf("Expected an InvalidImageError, got %v", err)
			}
		})
	}
}

func TestClose(t *testing.T) {
	mask := maskWith(100, 20, image.Rect(10, 8, 40, 12), image.Rect(50, 8, 80, 12))
	closed, err := Close(mask, Size{W: 30, H: 3})
	if err != nil {
		t.Fatalf("Error closing mask: %v", err)
	}
	if closed.GrayAt(45, 9).Y != 255 {
		t.Fatalf("Expected gap between words to be closed")
	}
	if closed.GrayAt(45, 3).Y != 0 {
		t.Fatalf("Expected area above line to stay empty")
	}
	p := DefaultParams()
	p.MinAspect = 1
	regions, _ := Locate(closed, p)
	if len(regions) != 1 {
		t.Fatalf("Expected 1 region after closing, got %d: %v", len(regions), regions)
	}
}

func TestOpen(t *testing.T) {
	mask := maskWith(120, 40,
		image.Rect(10, 10, 110, 20),
		image.Rect(50, 20, 51, 22),
		image.Rect(10, 22, 110, 32))
	p := DefaultParams()

	regions, _ := Locate(mask, p)
	if len(regions) != 1 {
		t.Fatalf("Expected touching lines to be 1 region before opening, got %d: %v", len(regions), regions)
	}

	opened, err := Open(mask, Size{W: 8, H: 3})
	if err != nil {
		t.Fatalf("Error opening mask: %v", err)
	}
	regions, _ = Locate(opened, p)
	if len(regions) != 2 {
		t.Fatalf("Expected opening to split lines into 2 regions, got %d: %v", len(regions), regions)
	}
	if regions[0].Y != 10 || regions[1].Y != 22 {
		t.Fatalf("Expected regions at y 10 and 22, got %v", regions)
	}
}

func TestLocate(t *testing.T) {
	mask := maskWith(200, 100,
		image.Rect(10, 60, 110, 65),  // bottom line
		image.Rect(20, 5, 120, 10),   // top line
		image.Rect(30, 30, 130, 35),  // middle line
		image.Rect(180, 10, 185, 60), // vertical rule
		// hollow frame with a line inside it
		image.Rect(140, 70, 176, 71),
		image.Rect(140, 95, 176, 96),
		image.Rect(140, 70, 141, 96),
		image.Rect(175, 70, 176, 96),
		image.Rect(145, 80, 171, 82),
	)
	p := DefaultParams()
	regions, skipped := Locate(mask, p)
	if len(skipped) != 0 {
		t.Fatalf("Expected no skipped regions, got %v", skipped)
	}

	expected := []Region{
		{X: 20, Y: 5, W: 100, H: 5},
		{X: 30, Y: 30, W: 100, H: 5},
		{X: 10, Y: 60, W: 100, H: 5},
	}
	if len(regions) != len(expected) {
		t.Fatalf("Expected %d regions, got %d: %v", len(expected), len(regions), regions)
	}
	for i, r := range regions {
		if r != expected[i] {
			t.Errorf("Region %d differs, expected %v, got %v", i, expected[i], r)
		}
		if r.Aspect() < p.MinAspect {
			t.Errorf("Region %v has aspect %f, below %f", r, r.Aspect(), p.MinAspect)
		}
		if i > 0 && regions[i-1].Y > r.Y {
			t.Errorf("Regions not in reading order: %v before %v", regions[i-1], r)
		}
	}
}

func TestCrop(t *testing.T) {
	page := whitePage(100, 50)
	red := color.RGBA{255, 0, 0, 255}
	page.Set(50, 20, red)

	cases := []struct {
		name      string
		page      image.Image
		r         Region
		minHeight int
		ok        bool
		size      image.Point
	}{
		{"clampedtopleft", page, Region{0, 0, 20, 10}, 10, true, image.Pt(23, 13)},
		{"toosmall", page, Region{0, 0, 20, 10}, 15, false, image.Point{}},
		{"exactlymin", page, Region{0, 0, 20, 10}, 13, false, image.Point{}},
		{"middle", page, Region{50, 20, 30, 20}, 15, true, image.Pt(36, 26)},
		{"clampedbottomright", page, Region{90, 40, 10, 10}, 5, true, image.Pt(13, 13)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			line, ok := Crop(c.page, c.r, 3, c.minHeight)
			if ok != c.ok {
				t.Fatalf("Expected ok to be %v, got %v", c.ok, ok)
			}
			if !ok {
				return
			}
			if line.Bounds().Size() != c.size {
				t.Fatalf("Expected size %v, got %v", c.size, line.Bounds().Size())
			}
			if line.Bounds().Dy() <= c.minHeight {
				t.Fatalf("Crop height %d is not above minimum %d", line.Bounds().Dy(), c.minHeight)
			}
		})
	}

	line, _ := Crop(page, Region{50, 20, 30, 20}, 3, 15)
	r, g, b, _ := line.At(3, 3).RGBA()
	if r != 0xffff || g != 0 || b != 0 {
		t.Fatalf("Expected crop to be taken from the original colour page")
	}

	sub := page.SubImage(image.Rect(47, 17, 100, 50))
	line, ok := Crop(sub, Region{3, 3, 30, 20}, 3, 15)
	if !ok {
		t.Fatalf("Expected crop of subimage to succeed")
	}
	r, g, b, _ = line.At(3, 3).RGBA()
	if r != 0xffff || g != 0 || b != 0 {
		t.Fatalf("Expected crop of subimage to be relative to its bounds")
	}

	gray := image.NewGray(image.Rect(0, 0, 100, 50))
	line, _ = Crop(gray, Region{50, 20, 30, 20}, 3, 15)
	if _, isgray := line.(*image.Gray); !isgray {
		t.Fatalf("Expected crop of a greyscale page to be greyscale")
	}
}

func TestPageRoundTrip(t *testing.T) {
	starts := []int{50, 180, 310, 440}
	page := whitePage(800, 600)
	for _, y := range starts {
		textLine(page, 100, 600, y, 20)
	}

	lines, err := Page(page, DefaultParams())
	if err != nil {
		t.Fatalf("Error segmenting page: %v", err)
	}
	if len(lines) != len(starts) {
		t.Fatalf("Expected %d lines, got %d", len(starts), len(lines))
	}
	for i, l := range lines {
		if l.Index != i+1 {
			t.Errorf("Expected line %d to have index %d, got %d", i, i+1, l.Index)
		}
		if l.Whole {
			t.Errorf("Line %d unexpectedly marked as whole page", l.Index)
		}
		d := l.Region.Y - starts[i]
		if d < -3 || d > 3 {
			t.Errorf("Line %d found at y %d, expected around %d", l.Index, l.Region.Y, starts[i])
		}
		if l.Image.Bounds().Dy() <= DefaultParams().MinLineHeight {
			t.Errorf("Line %d is only %d pixels tall", l.Index, l.Image.Bounds().Dy())
		}
	}
}

func TestPageSubImage(t *testing.T) {
	page := whitePage(900, 700)
	textLine(page, 150, 650, 100, 20)
	textLine(page, 150, 650, 300, 20)
	sub := page.SubImage(image.Rect(50, 50, 850, 650))

	lines, err := Page(sub, DefaultParams())
	if err != nil {
		t.Fatalf("Error segmenting page: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	for i, y := range []int{50, 250} {
		d := lines[i].Region.Y - y
		if d < -3 || d > 3 {
			t.Errorf("Line %d found at y %d, expected around %d relative to the subimage", i+1, lines[i].Region.Y, y)
		}
	}
}

func TestPageTight(t *testing.T) {
	page := whitePage(600, 200)
	textLine(page, 50, 550, 40, 20)
	textLine(page, 50, 550, 66, 20)
	textLine(page, 50, 550, 92, 20)

	lines, err := Page(page, TightParams())
	if err != nil {
		t.Fatalf("Error segmenting page: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("Expected 3 closely spaced lines, got %d", len(lines))
	}
}

func TestPageFallback(t *testing.T) {
	page := whitePage(300, 200)
	draw.Draw(page, image.Rect(100, 100, 103, 103), image.Black, image.Point{}, draw.Src)

	lines, err := Page(page, DefaultParams())
	if err != nil {
		t.Fatalf("Error segmenting page: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Expected whole page as 1 line, got %d lines", len(lines))
	}
	if !lines[0].Whole || lines[0].Index != 1 {
		t.Fatalf("Expected line to be marked as the whole page with index 1, got %+v", lines[0])
	}
	if lines[0].Image != image.Image(page) {
		t.Fatalf("Expected whole page fallback to be the unmodified page")
	}
}

func TestPageIdempotent(t *testing.T) {
	page := whitePage(400, 200)
	textLine(page, 20, 380, 30, 18)
	textLine(page, 20, 300, 110, 22)

	first, err := Page(page, DefaultParams())
	if err != nil {
		t.Fatalf("Error segmenting page: %v", err)
	}
	second, err := Page(page, DefaultParams())
	if err != nil {
		t.Fatalf("Error segmenting page again: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("Different number of lines on second run: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a := first[i].Image.(*image.RGBA)
		b := second[i].Image.(*image.RGBA)
		if !a.Bounds().Eq(b.Bounds()) || !bytes.Equal(a.Pix, b.Pix) {
			t.Fatalf("Line %d differs between runs", i+1)
		}
	}
}

func TestPageInvalid(t *testing.T) {
	_, err := Page(image.NewRGBA(image.Rect(0, 0, 0, 0)), DefaultParams())
	var invalid *InvalidImageError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected an InvalidImageError, got %v", err)
	}
}

func TestParams(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("Default parameters invalid: %v", err)
	}
	if err := TightParams().Validate(); err != nil {
		t.Fatalf("Tight parameters invalid: %v", err)
	}

	bad := []Params{
		{Close: Size{0, 10}, MinAspect: 3},
		{Close: Size{200, 10}, Open: Size{8, 0}, MinAspect: 3},
		{Close: Size{200, 10}, MinAspect: 0},
		{Close: Size{200, 10}, MinAspect: 3, Padding: -1},
		{Close: Size{200, 10}, MinAspect: 3, MinLineHeight: -1},
	}
	for i, p := range bad {
		if p.Validate() == nil {
			t.Errorf("Expected parameters %d (%+v) to be invalid", i, p)
		}
	}

	p := DefaultParams()
	p.Close.W = 1
	if DefaultParams().Close.W != 200 {
		t.Fatalf("Changing returned parameters altered the defaults")
	}
}

func TestParseSize(t *testing.T) {
	cases := []struct {
		in  string
		out Size
		ok  bool
	}{
		{"200x10", Size{200, 10}, true},
		{" 8X3 ", Size{8, 3}, true},
		{"0x0", Size{0, 0}, true},
		{"200", Size{}, false},
		{"ax10", Size{}, false},
		{"-1x10", Size{}, false},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			s, err := ParseSize(c.in)
			if (err == nil) != c.ok {
				t.Fatalf("Expected ok %v, got error %v", c.ok, err)
			}
			if s != c.out {
				t.Fatalf("Expected %v, got %v", c.out, s)
			}
		})
	}

	if _, err := Preset("nonsense"); err == nil {
		t.Fatalf("Expected error for unknown preset")
	}
	if p, err := Preset("tight"); err != nil || p.Open.Zero() {
		t.Fatalf("Expected tight preset to include opening, got %+v, %v", p, err)
	}
}
