package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/biostat-tools/taxsum/internal/taxonomy"
)

// Output file names, matching the pipeline's documented contract.
const (
	SummaryFileName = "summary_statistics.csv"
	ChartFileName   = "total_species_count_chart.png"
)

// DefaultPrecision is the number of decimal places used for averages.
const DefaultPrecision = 2

// WriteSummary serializes summaries to a CSV file at path.
//
// Column order is fixed: phylum, total_species_count,
// average_species_count. Averages are formatted with precision decimal
// places (DefaultPrecision when precision is negative). An existing file
// at path is replaced. An empty summary produces a header-only file.
func WriteSummary(summaries []taxonomy.PhylumSummary, path string, precision int) error {
	if precision < 0 {
		precision = DefaultPrecision
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := make([][]string, 0, len(summaries)+1)
	rows = append(rows, []string{"phylum", "total_species_count", "average_species_count"})
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Phylum,
			strconv.Itoa(s.TotalSpeciesCount),
			strconv.FormatFloat(s.AverageSpeciesCount, 'f', precision, 64),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return taxonomy.NewWriteError(path, err)
	}

	return writeAtomic(path, buf.Bytes())
}

// writeAtomic writes data to path via a uniquely named temp file in the
// same directory followed by a rename. The destination directory is
// created if absent; creation is idempotent.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return taxonomy.NewWriteError(path, err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return taxonomy.NewWriteError(path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return taxonomy.NewWriteError(path, err)
	}
	return nil
}
