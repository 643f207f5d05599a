// Package bomex turns heterogeneous engineering-drawing content into a
// structured bill of materials. It consumes pre-extracted document data
// (table grids, page text, vector primitives) supplied by an external
// document-geometry provider and runs a multi-tier pipeline: table
// recognition first, then free-text callout interpretation and geometric
// shape clustering as fallbacks, with a placeholder entry when nothing
// interpretable remains.
//
// Basic usage:
//
//	result, err := bomex.New().Extract(doc)
//	if err != nil {
//	    // handle error
//	}
//	for _, item := range result.Items {
//	    fmt.Println(item.Position, item.Description)
//	}
//
// With a learning engine attached, every result carries calibrated
// confidence scores that improve as user feedback accumulates:
//
//	engine := learning.NewEngine(learning.NewFileStore(learning.DefaultPath()), nil)
//	result, err := bomex.New().WithLearner(engine).Extract(doc)
package bomex

import (
	"errors"

	"github.com/tsawler/bomex/model"
)

// ErrNoBOM is returned by ExtractStrict when no tabular bill of
// materials exists anywhere in the document.
var ErrNoBOM = errors.New("bomex: no bill of materials found")

// ErrMalformedDocument is returned when document content cannot be
// interpreted at all, for example a nil document or one without pages.
var ErrMalformedDocument = errors.New("bomex: malformed document content")

// Extract runs the full fallback-enabled pipeline with default options.
func Extract(doc *model.Document) (*model.ExtractionResult, error) {
	return New().Extract(doc)
}
