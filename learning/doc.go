// Package learning attaches calibrated confidence scores to extracted
// BOM items and improves them from user feedback. The model is a
// transparent linear log-odds learner: every item maps to a small set of
// categorical features, each feature carries smoothed positive/negative
// counters, and the confidence is the logistic of their summed log-odds.
// The accumulated counters persist through a pluggable Store.
package learning
