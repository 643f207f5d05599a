package bomex

import "github.com/tsawler/bomex/interpret"

// Options holds pipeline configuration.
type Options struct {
	// Table interpretation: minimum recognized header columns.
	MinHeaderScore int

	// Geometry clustering parameters.
	Clusterer interpret.ClustererConfig

	// ClassifyComponents tags items with component families recognized
	// from their text.
	ClassifyComponents bool
}

// defaultOptions returns the default pipeline options.
func defaultOptions() Options {
	return Options{
		MinHeaderScore:     2,
		Clusterer:          interpret.DefaultClustererConfig(),
		ClassifyComponents: true,
	}
}
