// Package model defines the data types shared across the extraction
// pipeline: the bill-of-materials item and result produced by the
// extractors, and the pre-extracted document content (table grids, page
// text, vector primitives) consumed by them.
package model
