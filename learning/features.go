package learning

import (
	"fmt"
	"strings"

	"github.com/tsawler/bomex/model"
)

// Item is the minimal view of a BOM entry the learner needs: canonical
// field accessors plus the extras map carrying provenance tags.
type Item interface {
	Field(name string) string
	Extra(key string) string
}

// Smoothing priors for the global bias term.
const (
	biasPriorPositive = 5.0
	biasPriorNegative = 3.0
)

// defaultPrior smooths features without a dedicated prior.
var defaultPrior = [2]float64{1, 1}

// featurePriors seed each known feature with a plausibility estimate so
// confidence is sensible before any feedback arrives.
var featurePriors = map[string][2]float64{
	"source::table":      {6.0, 1.0},
	"source::text":       {3.5, 2.0},
	"source::geometry":   {2.5, 3.0},
	"source::fallback":   {1.0, 4.0},
	"mode::table":        {5.0, 1.5},
	"mode::interpreted":  {2.5, 3.0},
	"heuristic::hoch":    {5.5, 1.0},
	"heuristic::mittel":  {3.0, 2.0},
	"heuristic::niedrig": {1.2, 3.5},
	"fields::1":          {1.0, 2.5},
	"fields::2":          {1.5, 2.0},
	"fields::3":          {2.5, 1.5},
	"fields::4":          {3.0, 1.2},
	"fields::5+":         {3.5, 1.0},
	"has_quantity":       {3.5, 1.0},
	"has_part_number":    {3.0, 1.2},
	"has_material":       {2.6, 1.4},
}

// itemFeatures derives the categorical feature tags for one item. The
// context may carry a mode hint taken from result or feedback metadata.
func itemFeatures(item Item, context map[string]string) []string {
	var features []string

	if source := item.Extra("source"); source != "" {
		features = append(features, "source::"+strings.ToLower(source))
	}
	if mode := context["mode"]; mode != "" {
		features = append(features, "mode::"+strings.ToLower(mode))
	}
	if bucket := item.Extra("confidence"); bucket != "" {
		features = append(features, "heuristic::"+strings.ToLower(strings.TrimSpace(bucket)))
	}
	if code := item.Extra("component_code"); code != "" {
		features = append(features, "component::"+strings.ToLower(code))
	}

	fieldCount := 0
	for _, name := range model.CanonicalFields {
		if item.Field(name) != "" {
			fieldCount++
		}
	}
	if fieldCount >= 5 {
		features = append(features, "fields::5+")
	} else {
		features = append(features, fmt.Sprintf("fields::%d", fieldCount))
	}

	if item.Field(model.FieldQuantity) != "" {
		features = append(features, "has_quantity")
	}
	if item.Field(model.FieldPartNumber) != "" {
		features = append(features, "has_part_number")
	}
	if item.Field(model.FieldMaterial) != "" {
		features = append(features, "has_material")
	}

	return features
}

func priorFor(feature string) (float64, float64) {
	if prior, ok := featurePriors[feature]; ok {
		return prior[0], prior[1]
	}
	return defaultPrior[0], defaultPrior[1]
}
