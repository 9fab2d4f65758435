// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package linedataset

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
)

const maxticks = 40

// LineCount is the number of lines found on a page, in the image
// and in the transcription
type LineCount struct {
	Page       int
	ImageLines int
	TextLines  int
}

// Graph creates a graph of the number of lines found on each page of
// a book, in the page images and in the transcription. Pages where
// the two lines differ are the ones which were left out of the
// dataset.
func Graph(counts []LineCount, bookname string, w io.Writer) error {
	if len(counts) < 2 {
		return errors.New("Not enough pages to graph")
	}

	sorted := make([]LineCount, len(counts))
	copy(sorted, counts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Page < sorted[j].Page })

	var xvalues, imgvalues, txtvalues []float64
	var ticks []chart.Tick
	tickevery := len(sorted) / maxticks
	if tickevery < 1 {
		tickevery = 1
	}
	most := 1
	for i, c := range sorted {
		x := float64(c.Page)
		xvalues = append(xvalues, x)
		imgvalues = append(imgvalues, float64(c.ImageLines))
		txtvalues = append(txtvalues, float64(c.TextLines))
		if i%tickevery == 0 {
			ticks = append(ticks, chart.Tick{Value: x, Label: fmt.Sprintf("%d", c.Page)})
		}
		if c.ImageLines > most {
			most = c.ImageLines
		}
		if c.TextLines > most {
			most = c.TextLines
		}
	}
	// Make last tick the final page
	final := sorted[len(sorted)-1]
	ticks[len(ticks)-1] = chart.Tick{Value: float64(final.Page), Label: fmt.Sprintf("%d", final.Page)}

	var yticks []chart.Tick
	ytickevery := most/maxticks + 1
	for n := 0; n <= most+1; n += ytickevery {
		yticks = append(yticks, chart.Tick{Value: float64(n), Label: fmt.Sprintf("%d", n)})
	}

	graph := chart.Chart{
		Title:  bookname,
		Width:  3840,
		Height: 2160,
		XAxis: chart.XAxis{
			Name: "Page number",
			Range: &chart.ContinuousRange{
				Min: 0.0,
			},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name: "Lines",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: float64(most + 1),
			},
			Ticks: yticks,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "Line images",
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
				},
				XValues: xvalues,
				YValues: imgvalues,
			},
			chart.ContinuousSeries{
				Name: "Lines of text",
				Style: chart.Style{
					StrokeColor:     chart.ColorRed,
					StrokeDashArray: []float64{5.0, 5.0},
				},
				XValues: xvalues,
				YValues: txtvalues,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}
