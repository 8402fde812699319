package report

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biostat-tools/taxsum/internal/taxonomy"
)

func TestWriteChartProducesDecodablePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), ChartFileName)
	require.NoError(t, WriteChart(exampleSummaries, path, ChartOptions{}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, DefaultChartWidth, img.Bounds().Dx())
	assert.Equal(t, DefaultChartHeight, img.Bounds().Dy())
}

func TestWriteChartCustomCanvasSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), ChartFileName)
	require.NoError(t, WriteChart(exampleSummaries, path, ChartOptions{Width: 400, Height: 300}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestWriteChartEmptySummaryRefused(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ChartFileName)

	err := WriteChart(nil, path, ChartOptions{})
	require.Error(t, err)
	assert.True(t, taxonomy.IsRenderError(err))

	// Refusal means no placeholder image either.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteChartMissingFontFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ChartFileName)

	err := WriteChart(exampleSummaries, path, ChartOptions{FontPath: "/nonexistent/font.ttf"})
	require.Error(t, err)
	assert.True(t, taxonomy.IsRenderError(err))
}

func TestChartLayoutBarHeightsProportionalToTotals(t *testing.T) {
	layout := newChartLayout(exampleSummaries, DefaultChartWidth, DefaultChartHeight)

	require.Len(t, layout.bars, 2)
	arthropoda, chordata := layout.bars[0], layout.bars[1]

	assert.Equal(t, "Arthropoda", arthropoda.label)
	assert.Equal(t, "Chordata", chordata.label)

	// 100 vs 15: heights must hold the same ratio.
	assert.InDelta(t, 100.0/15.0, arthropoda.h/chordata.h, 1e-9)

	// Bars sit on the category axis.
	assert.InDelta(t, layout.plotBottom, arthropoda.y+arthropoda.h, 1e-9)
	assert.InDelta(t, layout.plotBottom, chordata.y+chordata.h, 1e-9)
}

func TestChartLayoutBarsInsidePlotArea(t *testing.T) {
	summaries := []taxonomy.PhylumSummary{
		{Phylum: "Arthropoda", TotalSpeciesCount: 1300000},
		{Phylum: "Mollusca", TotalSpeciesCount: 85000},
		{Phylum: "Chordata", TotalSpeciesCount: 65000},
		{Phylum: "Annelida", TotalSpeciesCount: 17000},
	}
	layout := newChartLayout(summaries, DefaultChartWidth, DefaultChartHeight)

	for _, bar := range layout.bars {
		assert.GreaterOrEqual(t, bar.x, layout.plotLeft, "bar %s", bar.label)
		assert.LessOrEqual(t, bar.x+bar.w, layout.plotRight, "bar %s", bar.label)
		assert.GreaterOrEqual(t, bar.y, layout.plotTop, "bar %s", bar.label)
	}

	// Axis scaled to the data range: max total fits under yMax.
	assert.GreaterOrEqual(t, layout.yMax, 1300000)
}

func TestChartLayoutZeroTotals(t *testing.T) {
	summaries := []taxonomy.PhylumSummary{
		{Phylum: "Chordata", TotalSpeciesCount: 0},
	}
	layout := newChartLayout(summaries, DefaultChartWidth, DefaultChartHeight)

	require.Len(t, layout.bars, 1)
	assert.Equal(t, 0.0, layout.bars[0].h)
	assert.Equal(t, 1, layout.yMax)
}

func TestNiceCeiling(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 5},
		{5, 5},
		{7, 10},
		{15, 20},
		{100, 100},
		{101, 200},
		{4999, 5000},
		{1300000, 2000000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, niceCeiling(tt.in), "niceCeiling(%d)", tt.in)
	}
}
