// Package aggregate computes per-phylum summary statistics.
package aggregate

import (
	"sort"

	"github.com/biostat-tools/taxsum/internal/taxonomy"
)

// Aggregate groups records by exact phylum label and computes the total
// and average species count for each group.
//
// Grouping is case-sensitive with no normalization; duplicate phylum rows
// accumulate into the same group. The result is ordered by descending
// total, ties broken by ascending label, so identical input always yields
// identical output regardless of map iteration order. Empty input is a
// valid degenerate case and yields an empty slice.
func Aggregate(records []taxonomy.Record) []taxonomy.PhylumSummary {
	type group struct {
		total int
		rows  int
	}
	groups := make(map[string]*group)
	for _, rec := range records {
		g, ok := groups[rec.Phylum]
		if !ok {
			g = &group{}
			groups[rec.Phylum] = g
		}
		g.total += rec.SpeciesCount
		g.rows++
	}

	summaries := make([]taxonomy.PhylumSummary, 0, len(groups))
	for phylum, g := range groups {
		summaries = append(summaries, taxonomy.PhylumSummary{
			Phylum:              phylum,
			TotalSpeciesCount:   g.total,
			AverageSpeciesCount: float64(g.total) / float64(g.rows),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalSpeciesCount != summaries[j].TotalSpeciesCount {
			return summaries[i].TotalSpeciesCount > summaries[j].TotalSpeciesCount
		}
		return summaries[i].Phylum < summaries[j].Phylum
	})

	return summaries
}
