package taxonomy

// Record is one validated row of the input dataset.
type Record struct {
	Phylum       string `json:"phylum"`
	SpeciesCount int    `json:"species_count"`
}

// PhylumSummary holds the aggregated statistics for a single phylum.
//
// Summaries are immutable after aggregation: the reporter serializes them
// but never mutates them.
type PhylumSummary struct {
	Phylum              string  `json:"phylum"`
	TotalSpeciesCount   int     `json:"total_species_count"`
	AverageSpeciesCount float64 `json:"average_species_count"`
}
