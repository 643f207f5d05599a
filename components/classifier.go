// Package components tags BOM items with pipe-fabrication component
// families recognized from their text. The tags feed the confidence
// learner's component feature.
package components

import (
	"strings"

	"github.com/tsawler/bomex/model"
)

// keywords maps description substrings to component families. Longer
// keywords come first so "Rohrbogen" is not shadowed by "Rohr".
var keywords = []struct {
	Keyword string
	Label   string
}{
	{"rohrbogen", "Rohrbogen"},
	{"rohrende", "Rohrende"},
	{"flansch", "Flansch"},
	{"blech", "Blech"},
	{"rohr", "Rohr"},
}

// Classify tags an item whose description, part number or comment
// mentions a known component family. Items already carrying a component
// tag (geometry pseudo-items) are left untouched. It reports whether the
// item ended up tagged.
func Classify(item *model.BOMItem) bool {
	if item.Extra("component_type") != "" {
		return true
	}

	haystack := strings.ToLower(item.Description + " " + item.PartNumber + " " + item.Comment)
	for _, entry := range keywords {
		if strings.Contains(haystack, entry.Keyword) {
			item.SetExtra("component_type", entry.Label)
			item.SetExtra("component_code", entry.Keyword)
			item.SetExtra("component_source", "text")
			return true
		}
	}
	return false
}

// Apply classifies every item and returns how many carry a component
// tag afterwards.
func Apply(items []*model.BOMItem) int {
	tagged := 0
	for _, item := range items {
		if Classify(item) {
			tagged++
		}
	}
	return tagged
}
