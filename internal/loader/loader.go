// Package loader reads and validates the input CSV for the pipeline.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/biostat-tools/taxsum/internal/taxonomy"
)

// Required column names, fixed by convention.
const (
	ColumnPhylum       = "phylum"
	ColumnSpeciesCount = "species_count"
)

// Mode controls how malformed rows are handled during loading.
type Mode int

const (
	// ModeFailFast aborts on the first malformed row.
	ModeFailFast Mode = iota
	// ModeSkipMalformed drops malformed rows and records them in
	// Result.Skipped. Missing-file and missing-column errors are
	// always fatal regardless of mode.
	ModeSkipMalformed
)

// Result contains the outcome of loading an input file.
type Result struct {
	// Records is the fully materialized sequence of valid rows.
	Records []taxonomy.Record

	// Skipped holds the row errors dropped under ModeSkipMalformed,
	// in input order. Always empty under ModeFailFast.
	Skipped []*taxonomy.PipelineError
}

// Load reads the CSV at path and validates every row.
//
// The file must contain a header row naming at least the phylum and
// species_count columns; extra columns are ignored. Cells are parsed
// with checked conversion: species_count must be a non-negative integer
// and phylum must be non-empty. A header-only file is valid and yields
// zero records. A leading UTF-8 BOM is tolerated.
func Load(path string, mode Mode) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, taxonomy.NewInputNotFoundError(path, err)
	}
	if info.IsDir() {
		return nil, taxonomy.NewInputNotFoundError(path, fmt.Errorf("%s is a directory", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, taxonomy.NewInputNotFoundError(path, err)
	}
	defer f.Close()

	// Strip a UTF-8 BOM if present so the first header cell matches.
	r := csv.NewReader(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))
	r.FieldsPerRecord = -1 // ragged rows get our own error, not csv's

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, taxonomy.NewSchemaError(path, ColumnPhylum)
	}
	if err != nil {
		return nil, taxonomy.NewInputNotFoundError(path, err)
	}

	phylumIdx, err := columnIndex(path, header, ColumnPhylum)
	if err != nil {
		return nil, err
	}
	countIdx, err := columnIndex(path, header, ColumnSpeciesCount)
	if err != nil {
		return nil, err
	}

	result := &Result{Records: []taxonomy.Record{}}
	for row := 1; ; row++ {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErr := taxonomy.NewDataTypeError(path, row, "", fmt.Sprintf("malformed CSV row: %v", err))
			if mode == ModeSkipMalformed {
				result.Skipped = append(result.Skipped, rowErr)
				continue
			}
			return nil, rowErr
		}

		rec, rowErr := parseRow(path, row, fields, phylumIdx, countIdx)
		if rowErr != nil {
			if mode == ModeSkipMalformed {
				result.Skipped = append(result.Skipped, rowErr)
				continue
			}
			return nil, rowErr
		}
		result.Records = append(result.Records, rec)
	}

	return result, nil
}

// parseRow converts one CSV row into a Record with checked conversion.
func parseRow(path string, row int, fields []string, phylumIdx, countIdx int) (taxonomy.Record, *taxonomy.PipelineError) {
	if len(fields) <= phylumIdx || len(fields) <= countIdx {
		return taxonomy.Record{}, taxonomy.NewDataTypeError(path, row, "",
			fmt.Sprintf("row has %d fields, expected at least %d", len(fields), max(phylumIdx, countIdx)+1))
	}

	phylum := strings.TrimSpace(fields[phylumIdx])
	if phylum == "" {
		return taxonomy.Record{}, taxonomy.NewDataTypeError(path, row, ColumnPhylum, "empty phylum label")
	}

	raw := strings.TrimSpace(fields[countIdx])
	count, err := strconv.Atoi(raw)
	if err != nil {
		return taxonomy.Record{}, taxonomy.NewDataTypeError(path, row, ColumnSpeciesCount,
			fmt.Sprintf("cannot parse %q as a non-negative integer", raw))
	}
	if count < 0 {
		return taxonomy.Record{}, taxonomy.NewDataTypeError(path, row, ColumnSpeciesCount,
			fmt.Sprintf("species count must be non-negative, got %d", count))
	}

	return taxonomy.Record{Phylum: phylum, SpeciesCount: count}, nil
}

// columnIndex locates a required column in the header, case-sensitive.
func columnIndex(path string, header []string, name string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return 0, taxonomy.NewSchemaError(path, name)
}
