package report

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/biostat-tools/taxsum/internal/taxonomy"
)

// Default chart canvas size in pixels.
const (
	DefaultChartWidth  = 1000
	DefaultChartHeight = 600
)

// ChartOptions controls chart rendering.
type ChartOptions struct {
	// Width and Height are the canvas size in pixels. Zero values use
	// the defaults.
	Width  int
	Height int

	// FontPath optionally names a TTF file for chart text. When empty,
	// a built-in bitmap face is used so no font file is required.
	FontPath string
}

// WriteChart renders summaries as a bar chart PNG at path.
//
// One bar per phylum in summary order, bar height proportional to total
// species count, phylum labels on the category axis, value axis scaled
// to the data range with round-number gridlines. An empty summary is
// refused with a render error rather than producing a placeholder image.
func WriteChart(summaries []taxonomy.PhylumSummary, path string, opts ChartOptions) error {
	if len(summaries) == 0 {
		return taxonomy.NewRenderError("no phyla to chart: summary is empty")
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultChartWidth
	}
	if height <= 0 {
		height = DefaultChartHeight
	}

	face, err := chartFace(opts.FontPath)
	if err != nil {
		return err
	}

	layout := newChartLayout(summaries, width, height)

	dc := gg.NewContext(width, height)
	dc.SetFontFace(face)

	// White background
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Gridlines and value-axis tick labels
	dc.SetLineWidth(1)
	for _, tick := range layout.ticks {
		y := layout.yFor(tick)
		dc.SetRGB(0.85, 0.85, 0.85)
		dc.DrawLine(layout.plotLeft, y, layout.plotRight, y)
		dc.Stroke()
		dc.SetRGB(0.25, 0.25, 0.25)
		dc.DrawStringAnchored(strconv.Itoa(tick), layout.plotLeft-8, y, 1, 0.4)
	}

	// Bars (the original used skyblue)
	dc.SetRGB255(135, 206, 235)
	for _, bar := range layout.bars {
		dc.DrawRectangle(bar.x, bar.y, bar.w, bar.h)
		dc.Fill()
	}

	// Axes
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.SetLineWidth(2)
	dc.DrawLine(layout.plotLeft, layout.plotTop, layout.plotLeft, layout.plotBottom)
	dc.DrawLine(layout.plotLeft, layout.plotBottom, layout.plotRight, layout.plotBottom)
	dc.Stroke()

	// Category labels, rotated 45 degrees as in the original figure
	for _, bar := range layout.bars {
		ax := bar.x + bar.w/2
		ay := layout.plotBottom + 12
		dc.Push()
		dc.RotateAbout(gg.Radians(-45), ax, ay)
		dc.DrawStringAnchored(bar.label, ax, ay, 1, 0.5)
		dc.Pop()
	}

	// Title and axis labels
	dc.DrawStringAnchored("Total Species Count per Phylum", float64(width)/2, layout.plotTop/2, 0.5, 0.5)
	dc.DrawStringAnchored("Phylum", float64(width)/2, float64(height)-14, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 18, float64(height)/2)
	dc.DrawStringAnchored("Total Species Count", 18, float64(height)/2, 0.5, 0.5)
	dc.Pop()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return taxonomy.NewWriteError(path, fmt.Errorf("encode PNG: %w", err))
	}
	return writeAtomic(path, buf.Bytes())
}

// barGeom is the computed geometry of one bar, in pixels.
type barGeom struct {
	label string
	total int
	x, y  float64
	w, h  float64
}

// chartLayout holds the computed plot geometry for a chart, separated
// from drawing so the scaling arithmetic is testable without decoding
// pixels.
type chartLayout struct {
	plotLeft   float64
	plotRight  float64
	plotTop    float64
	plotBottom float64

	yMax  int
	ticks []int
	bars  []barGeom
}

func newChartLayout(summaries []taxonomy.PhylumSummary, width, height int) *chartLayout {
	l := &chartLayout{
		plotLeft:   90,
		plotRight:  float64(width) - 40,
		plotTop:    70,
		plotBottom: float64(height) - 110,
	}

	maxTotal := 0
	for _, s := range summaries {
		if s.TotalSpeciesCount > maxTotal {
			maxTotal = s.TotalSpeciesCount
		}
	}
	l.yMax = niceCeiling(maxTotal)

	step := l.yMax / 5
	if step < 1 {
		step = 1
	}
	for tick := 0; tick <= l.yMax; tick += step {
		l.ticks = append(l.ticks, tick)
	}

	plotWidth := l.plotRight - l.plotLeft
	plotHeight := l.plotBottom - l.plotTop
	slot := plotWidth / float64(len(summaries))
	barWidth := slot * 0.6

	l.bars = make([]barGeom, len(summaries))
	for i, s := range summaries {
		h := float64(s.TotalSpeciesCount) / float64(l.yMax) * plotHeight
		l.bars[i] = barGeom{
			label: s.Phylum,
			total: s.TotalSpeciesCount,
			x:     l.plotLeft + slot*float64(i) + (slot-barWidth)/2,
			y:     l.plotBottom - h,
			w:     barWidth,
			h:     h,
		}
	}

	return l
}

// yFor maps a data value onto the canvas y coordinate.
func (l *chartLayout) yFor(value int) float64 {
	frac := float64(value) / float64(l.yMax)
	return l.plotBottom - frac*(l.plotBottom-l.plotTop)
}

// niceCeiling rounds v up to the nearest 1, 2, or 5 times a power of
// ten, so the value axis ends on a round number.
func niceCeiling(v int) int {
	if v <= 1 {
		return 1
	}
	for mag := 1; ; mag *= 10 {
		for _, m := range []int{1, 2, 5} {
			if m*mag >= v {
				return m * mag
			}
		}
		if mag > math.MaxInt/10 {
			return v
		}
	}
}

// chartFace loads the TTF at fontPath, or falls back to a built-in
// bitmap face when fontPath is empty.
func chartFace(fontPath string) (font.Face, error) {
	if fontPath == "" {
		return basicfont.Face7x13, nil
	}

	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, taxonomy.NewRenderError(fmt.Sprintf("failed to read chart font %s: %v", fontPath, err))
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, taxonomy.NewRenderError(fmt.Sprintf("failed to parse chart font %s: %v", fontPath, err))
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    14,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
