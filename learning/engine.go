package learning

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/tsawler/bomex/model"
)

// maxSummaryFeatures bounds the feature ranking in summaries.
const maxSummaryFeatures = 6

// Rating pairs an item with a user's correctness judgement.
type Rating struct {
	Item    Item
	Correct bool
}

// FeatureSummary describes one feature in the aggregate summary.
type FeatureSummary struct {
	Feature     string  `json:"feature"`
	Label       string  `json:"label"`
	Support     int     `json:"support"`
	SuccessRate float64 `json:"success_rate"`
}

// Summary aggregates the learnt state for reporting.
type Summary struct {
	TotalFeedback int              `json:"total_feedback"`
	SuccessRate   float64          `json:"success_rate"`
	TopFeatures   []FeatureSummary `json:"top_features"`
}

// Engine is the online confidence learner. A single instance is shared
// across requests; Annotate only reads the state while RecordFeedback
// mutates it under an exclusive lock and persists synchronously.
type Engine struct {
	mu    sync.RWMutex
	store Store
	state *State
	log   *slog.Logger
}

// NewEngine creates an engine backed by store. Load failures are logged
// and replaced by an empty state so startup never fails on a corrupt
// state file.
func NewEngine(store Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	state, err := store.Load()
	if err != nil {
		logger.Warn("learning state unreadable, starting empty", "error", err)
		state = NewState()
	}
	return &Engine{store: store, state: state, log: logger}
}

// Annotate attaches a confidence score to every item of the result and
// copies aggregate feedback counters into its metadata. Repeated calls
// without intervening feedback yield identical scores.
func (e *Engine) Annotate(result *model.ExtractionResult) {
	if result == nil {
		return
	}

	context := modeContext(result.Metadata)

	e.mu.RLock()
	for _, item := range result.Items {
		features := itemFeatures(item, context)
		confidence := round4(e.score(features))
		item.Confidence = &confidence

		if item.Extra("source") == "" && context["mode"] != "" {
			item.SetExtra("source", context["mode"])
		}
		if item.Extra("confidence_estimate") == "" {
			item.SetExtra("confidence_estimate", fmt.Sprintf("%.1f %%", confidence*100))
		}
	}
	summary := e.summaryLocked()
	e.mu.RUnlock()

	if result.Metadata == nil {
		result.Metadata = make(map[string]any)
	}
	result.Metadata["learning_feedback"] = summary.TotalFeedback
	result.Metadata["learning_success_rate"] = math.Round(summary.SuccessRate*1000) / 10
}

// RecordFeedback applies user-labelled ratings to the state and persists
// it before returning. Concurrent batches apply one at a time.
func (e *Engine) RecordFeedback(ratings []Rating, metadata map[string]any) Summary {
	if len(ratings) == 0 {
		return e.Summary()
	}

	context := modeContext(metadata)

	e.mu.Lock()
	for _, rating := range ratings {
		if rating.Item == nil {
			continue
		}
		features := itemFeatures(rating.Item, context)
		e.update(features, rating.Correct)
	}
	if err := e.store.Save(e.state); err != nil {
		// Durability is best-effort; feedback still applies in memory.
		e.log.Warn("persisting learning state failed", "error", err)
	}
	summary := e.summaryLocked()
	e.mu.Unlock()

	return summary
}

// Summary returns the aggregate feedback statistics.
func (e *Engine) Summary() Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.summaryLocked()
}

func (e *Engine) summaryLocked() Summary {
	total := e.state.TotalPositive + e.state.TotalNegative
	if total <= 0 {
		return Summary{TopFeatures: []FeatureSummary{}}
	}

	features := make([]FeatureSummary, 0, len(e.state.FeatureStats))
	for name, counter := range e.state.FeatureStats {
		support := counter.Positive + counter.Negative
		if support <= 0 {
			continue
		}
		features = append(features, FeatureSummary{
			Feature:     name,
			Label:       describeFeature(name),
			Support:     int(math.Round(support)),
			SuccessRate: counter.Positive / support,
		})
	}

	sort.Slice(features, func(i, j int) bool {
		if features[i].Support != features[j].Support {
			return features[i].Support > features[j].Support
		}
		if features[i].SuccessRate != features[j].SuccessRate {
			return features[i].SuccessRate > features[j].SuccessRate
		}
		return features[i].Feature < features[j].Feature
	})
	if len(features) > maxSummaryFeatures {
		features = features[:maxSummaryFeatures]
	}

	return Summary{
		TotalFeedback: int(math.Round(total)),
		SuccessRate:   e.state.TotalPositive / total,
		TopFeatures:   features,
	}
}

// score computes the logistic of the summed, smoothed log-odds of the
// global bias and every feature.
func (e *Engine) score(features []string) float64 {
	logit := math.Log(
		(e.state.TotalPositive + biasPriorPositive) /
			(e.state.TotalNegative + biasPriorNegative),
	)
	for _, name := range features {
		var positive, negative float64
		if counter := e.state.FeatureStats[name]; counter != nil {
			positive = counter.Positive
			negative = counter.Negative
		}
		priorPos, priorNeg := priorFor(name)
		logit += math.Log((positive + priorPos) / (negative + priorNeg))
	}
	return 1 / (1 + math.Exp(-logit))
}

func (e *Engine) update(features []string, correct bool) {
	if correct {
		e.state.TotalPositive++
	} else {
		e.state.TotalNegative++
	}
	for _, name := range features {
		counter := e.state.counter(name)
		if correct {
			counter.Positive++
		} else {
			counter.Negative++
		}
	}
}

func modeContext(metadata map[string]any) map[string]string {
	context := make(map[string]string, 1)
	if metadata != nil {
		if mode, ok := metadata["mode"].(string); ok && mode != "" {
			context["mode"] = mode
		}
	}
	return context
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
