package model

import "sort"

// ExtractionResult is a complete bill of materials extracted from one
// document. Items keep their extraction order; DetectedColumns is the
// sorted set of canonical fields that carry at least one value.
type ExtractionResult struct {
	Items           []*BOMItem     `json:"items"`
	DetectedColumns []string       `json:"detected_columns"`
	Metadata        map[string]any `json:"metadata"`
}

// Metadata keys written by the pipeline.
const (
	MetaSource              = "source"
	MetaPages               = "pages"
	MetaTablesChecked       = "tables_checked"
	MetaMode                = "mode"
	MetaAnnotationItems     = "annotation_items"
	MetaGeometryItems       = "geometry_items"
	MetaLinesChecked        = "lines_checked"
	MetaShapesConsidered    = "shapes_considered"
	MetaFallbackPlaceholder = "fallback_placeholder"
)

// Extraction modes recorded under the "mode" metadata key.
const (
	ModeTable       = "table"
	ModeInterpreted = "interpreted"
)

// InferDetectedColumns returns the sorted set of canonical fields that
// are populated on at least one item.
func InferDetectedColumns(items []*BOMItem) []string {
	seen := make(map[string]bool)
	for _, item := range items {
		for _, name := range CanonicalFields {
			if item.Field(name) != "" {
				seen[name] = true
			}
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}
