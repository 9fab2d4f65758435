// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Size is the width and height of a rectangular structuring element
type Size struct {
	W, H int
}

// Zero reports whether the Size disables the operation it is for
func (s Size) Zero() bool {
	return s.W <= 0 || s.H <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// ParseSize parses a size in the form "200x10"
func ParseSize(s string) (Size, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return Size{}, fmt.Errorf("Invalid size %q, should be in the form WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return Size{}, fmt.Errorf("Invalid width in size %q: %v", s, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return Size{}, fmt.Errorf("Invalid height in size %q: %v", s, err)
	}
	if w < 0 || h < 0 {
		return Size{}, fmt.Errorf("Invalid size %q, dimensions must not be negative", s)
	}
	return Size{W: w, H: h}, nil
}

// Params controls how a page is cut into lines. It is always passed
// by value, so different books can use different settings at the
// same time.
type Params struct {
	// Close is the structuring element used to join the glyphs of a
	// line together. It should be much wider than it is tall.
	Close Size
	// Open is the structuring element used to split apart lines
	// which were joined by Close. A zero Size skips opening.
	Open Size
	// MinLineHeight is the height a cropped line must exceed to be kept
	MinLineHeight int
	// MinAspect is the lowest width / height ratio a region can have
	// and still be considered a line
	MinAspect float64
	// Padding is added to every side of a region before cropping
	Padding int
}

// DefaultParams returns the settings which work for most printed books
func DefaultParams() Params {
	return Params{
		Close:         Size{W: 200, H: 10},
		MinLineHeight: 15,
		MinAspect:     3.0,
		Padding:       3,
	}
}

// TightParams returns settings for books with little space between
// lines, where a shorter closing element is followed by an opening
// to separate lines that still touch.
func TightParams() Params {
	p := DefaultParams()
	p.Close = Size{W: 200, H: 4}
	p.Open = Size{W: 8, H: 3}
	return p
}

var presets = map[string]func() Params{
	"default": DefaultParams,
	"tight":   TightParams,
}

// Preset returns the named set of parameters
func Preset(name string) (Params, error) {
	f, ok := presets[name]
	if !ok {
		return Params{}, fmt.Errorf("Unknown preset %q, should be one of %s", name, strings.Join(PresetNames(), ", "))
	}
	return f(), nil
}

// PresetNames lists the names usable with Preset
func PresetNames() []string {
	var names []string
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the parameters can be used
func (p Params) Validate() error {
	if p.Close.Zero() {
		return fmt.Errorf("Closing element must have a positive size, got %s", p.Close)
	}
	if (p.Open.W != 0 || p.Open.H != 0) && p.Open.Zero() {
		return fmt.Errorf("Opening element must either be 0x0 or have a positive size, got %s", p.Open)
	}
	if p.MinLineHeight < 0 {
		return fmt.Errorf("Minimum line height must not be negative, got %d", p.MinLineHeight)
	}
	if p.MinAspect <= 0 {
		return fmt.Errorf("Minimum aspect ratio must be positive, got %f", p.MinAspect)
	}
	if p.Padding < 0 {
		return fmt.Errorf("Padding must not be negative, got %d", p.Padding)
	}
	return nil
}
