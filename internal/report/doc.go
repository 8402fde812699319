// Package report serializes phylum summaries to their two output
// formats: a delimited summary table and a bar chart image.
//
// Both writers create the destination directory if absent and replace
// the output file atomically, so a failed run never leaves a truncated
// file behind.
package report
