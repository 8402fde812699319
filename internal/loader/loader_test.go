package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biostat-tools/taxsum/internal/taxonomy"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxonomic_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValidInput(t *testing.T) {
	path := writeInput(t, "phylum,species_count\nChordata,10\nChordata,5\nArthropoda,100\n")

	result, err := Load(path, ModeFailFast)
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, []taxonomy.Record{
		{Phylum: "Chordata", SpeciesCount: 10},
		{Phylum: "Chordata", SpeciesCount: 5},
		{Phylum: "Arthropoda", SpeciesCount: 100},
	}, result.Records)
}

func TestLoadIgnoresExtraColumns(t *testing.T) {
	path := writeInput(t, "kingdom,phylum,species_count,notes\nAnimalia,Mollusca,7,benthic\n")

	result, err := Load(path, ModeFailFast)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, taxonomy.Record{Phylum: "Mollusca", SpeciesCount: 7}, result.Records[0])
}

func TestLoadStripsUTF8BOM(t *testing.T) {
	path := writeInput(t, "\xef\xbb\xbfphylum,species_count\nChordata,1\n")

	result, err := Load(path, ModeFailFast)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Chordata", result.Records[0].Phylum)
}

func TestLoadHeaderOnlyIsEmptyNotError(t *testing.T) {
	path := writeInput(t, "phylum,species_count\n")

	result, err := Load(path, ModeFailFast)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), ModeFailFast)
	require.Error(t, err)
	assert.Equal(t, taxonomy.ErrCodeInputNotFound, taxonomy.CodeOf(err))
}

func TestLoadDirectoryPath(t *testing.T) {
	_, err := Load(t.TempDir(), ModeFailFast)
	require.Error(t, err)
	assert.Equal(t, taxonomy.ErrCodeInputNotFound, taxonomy.CodeOf(err))
}

func TestLoadMissingRequiredColumn(t *testing.T) {
	path := writeInput(t, "name,count\nChordata,10\n")

	_, err := Load(path, ModeFailFast)
	require.Error(t, err)
	assert.True(t, taxonomy.IsSchemaError(err))
	assert.Contains(t, err.Error(), `"phylum"`)
}

func TestLoadEmptyFileIsSchemaError(t *testing.T) {
	path := writeInput(t, "")

	_, err := Load(path, ModeFailFast)
	require.Error(t, err)
	assert.True(t, taxonomy.IsSchemaError(err))
}

func TestLoadNonNumericCountFailsFast(t *testing.T) {
	path := writeInput(t, "phylum,species_count\nChordata,10\nChordata,abc\n")

	_, err := Load(path, ModeFailFast)
	require.Error(t, err)
	assert.True(t, taxonomy.IsDataTypeError(err))
	assert.Contains(t, err.Error(), "row=2")
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestLoadNegativeCountRejected(t *testing.T) {
	path := writeInput(t, "phylum,species_count\nChordata,-3\n")

	_, err := Load(path, ModeFailFast)
	require.Error(t, err)
	assert.True(t, taxonomy.IsDataTypeError(err))
	assert.Contains(t, err.Error(), "non-negative")
}

func TestLoadEmptyPhylumRejected(t *testing.T) {
	path := writeInput(t, "phylum,species_count\n,10\n")

	_, err := Load(path, ModeFailFast)
	require.Error(t, err)
	assert.True(t, taxonomy.IsDataTypeError(err))
	assert.Contains(t, err.Error(), "empty phylum")
}

func TestLoadRaggedRowRejected(t *testing.T) {
	path := writeInput(t, "phylum,species_count\nChordata\n")

	_, err := Load(path, ModeFailFast)
	require.Error(t, err)
	assert.True(t, taxonomy.IsDataTypeError(err))
}

func TestLoadSkipMalformedKeepsValidRows(t *testing.T) {
	path := writeInput(t, "phylum,species_count\nChordata,10\nChordata,abc\n,5\nArthropoda,100\n")

	result, err := Load(path, ModeSkipMalformed)
	require.NoError(t, err)
	assert.Equal(t, []taxonomy.Record{
		{Phylum: "Chordata", SpeciesCount: 10},
		{Phylum: "Arthropoda", SpeciesCount: 100},
	}, result.Records)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, 2, result.Skipped[0].Row)
	assert.Equal(t, 3, result.Skipped[1].Row)
}

func TestLoadSkipMalformedDoesNotSkipSchemaErrors(t *testing.T) {
	path := writeInput(t, "name,count\nChordata,10\n")

	_, err := Load(path, ModeSkipMalformed)
	require.Error(t, err)
	assert.True(t, taxonomy.IsSchemaError(err))
}
