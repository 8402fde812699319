// Package taxonomy provides the domain types for the analysis pipeline.
//
// This package contains type definitions and the pipeline error taxonomy
// only. All other internal packages import taxonomy; taxonomy imports
// nothing internal, so it remains the foundational layer with no circular
// dependencies.
package taxonomy
