package learning

import (
	"testing"

	"github.com/tsawler/bomex/model"
)

func tableResult() *model.ExtractionResult {
	item := model.NewBOMItem()
	item.Position = "1"
	item.Description = "Flansch DN50"
	item.Quantity = model.NewQuantity(2)
	item.Extras["source"] = "table"

	return &model.ExtractionResult{
		Items:    []*model.BOMItem{item},
		Metadata: map[string]any{"mode": model.ModeTable},
	}
}

func TestAnnotateAssignsConfidence(t *testing.T) {
	engine := NewEngine(NewMemoryStore(), nil)
	result := tableResult()

	engine.Annotate(result)

	item := result.Items[0]
	if item.Confidence == nil {
		t.Fatal("expected confidence to be assigned")
	}
	if *item.Confidence <= 0 || *item.Confidence >= 1 {
		t.Errorf("expected confidence in (0,1), got %v", *item.Confidence)
	}
	if item.Extra("confidence_estimate") == "" {
		t.Error("expected confidence_estimate extra")
	}
	if got := result.Metadata["learning_feedback"]; got != 0 {
		t.Errorf("expected learning_feedback 0, got %v", got)
	}
}

func TestAnnotateIsIdempotent(t *testing.T) {
	engine := NewEngine(NewMemoryStore(), nil)
	result := tableResult()

	engine.Annotate(result)
	first := *result.Items[0].Confidence
	engine.Annotate(result)
	second := *result.Items[0].Confidence

	if first != second {
		t.Errorf("expected identical scores without feedback, got %v then %v", first, second)
	}
}

func TestPositiveFeedbackRaisesConfidence(t *testing.T) {
	engine := NewEngine(NewMemoryStore(), nil)
	result := tableResult()

	engine.Annotate(result)
	before := *result.Items[0].Confidence

	engine.RecordFeedback(
		[]Rating{{Item: result.Items[0], Correct: true}},
		result.Metadata,
	)

	engine.Annotate(result)
	after := *result.Items[0].Confidence

	if after <= before {
		t.Errorf("expected confidence to rise after positive feedback, got %v then %v", before, after)
	}
}

func TestNegativeFeedbackLowersConfidence(t *testing.T) {
	engine := NewEngine(NewMemoryStore(), nil)
	result := tableResult()

	engine.Annotate(result)
	before := *result.Items[0].Confidence

	engine.RecordFeedback(
		[]Rating{{Item: result.Items[0], Correct: false}},
		result.Metadata,
	)

	engine.Annotate(result)
	after := *result.Items[0].Confidence

	if after >= before {
		t.Errorf("expected confidence to drop after negative feedback, got %v then %v", before, after)
	}
}

func TestRecordFeedbackSummary(t *testing.T) {
	engine := NewEngine(NewMemoryStore(), nil)
	result := tableResult()
	engine.Annotate(result)

	summary := engine.RecordFeedback(
		[]Rating{
			{Item: result.Items[0], Correct: true},
			{Item: result.Items[0], Correct: false},
		},
		result.Metadata,
	)

	if summary.TotalFeedback != 2 {
		t.Errorf("expected 2 feedback entries, got %d", summary.TotalFeedback)
	}
	if summary.SuccessRate != 0.5 {
		t.Errorf("expected success rate 0.5, got %v", summary.SuccessRate)
	}
	if len(summary.TopFeatures) == 0 {
		t.Fatal("expected top features after feedback")
	}
	if len(summary.TopFeatures) > 6 {
		t.Errorf("expected at most 6 top features, got %d", len(summary.TopFeatures))
	}
	for _, feature := range summary.TopFeatures {
		if feature.Label == "" {
			t.Errorf("expected a label for feature %q", feature.Feature)
		}
	}
}

func TestEmptySummary(t *testing.T) {
	engine := NewEngine(NewMemoryStore(), nil)

	summary := engine.Summary()
	if summary.TotalFeedback != 0 {
		t.Errorf("expected 0 feedback, got %d", summary.TotalFeedback)
	}
	if summary.SuccessRate != 0 {
		t.Errorf("expected success rate 0, got %v", summary.SuccessRate)
	}
	if summary.TopFeatures == nil || len(summary.TopFeatures) != 0 {
		t.Errorf("expected empty feature list, got %v", summary.TopFeatures)
	}
}

func TestFeedbackSurvivesRestart(t *testing.T) {
	store := NewMemoryStore()
	result := tableResult()

	first := NewEngine(store, nil)
	first.Annotate(result)
	first.RecordFeedback([]Rating{{Item: result.Items[0], Correct: true}}, result.Metadata)

	second := NewEngine(store, nil)
	summary := second.Summary()
	if summary.TotalFeedback != 1 {
		t.Errorf("expected restored feedback count 1, got %d", summary.TotalFeedback)
	}
	if summary.SuccessRate != 1 {
		t.Errorf("expected restored success rate 1, got %v", summary.SuccessRate)
	}
}

func TestItemFeatures(t *testing.T) {
	item := model.NewBOMItem()
	item.Position = "1"
	item.PartNumber = "M8"
	item.Description = "Schraube"
	item.Quantity = model.NewQuantity(4)
	item.Extras["source"] = "text"
	item.Extras["confidence"] = "hoch"
	item.Extras["component_code"] = "rohr"

	features := itemFeatures(item, map[string]string{"mode": model.ModeInterpreted})

	want := map[string]bool{
		"source::text":      true,
		"mode::interpreted": true,
		"heuristic::hoch":   true,
		"component::rohr":   true,
		"fields::4":         true,
		"has_quantity":      true,
		"has_part_number":   true,
	}
	if len(features) != len(want) {
		t.Fatalf("expected %d features, got %v", len(want), features)
	}
	for _, feature := range features {
		if !want[feature] {
			t.Errorf("unexpected feature %q", feature)
		}
	}
}

func TestItemFeaturesFieldBucketCap(t *testing.T) {
	item := model.NewBOMItem()
	item.Position = "1"
	item.PartNumber = "M8"
	item.Description = "Schraube"
	item.Quantity = model.NewQuantity(4)
	item.Unit = "pcs"
	item.Material = "A2"

	features := itemFeatures(item, nil)
	found := false
	for _, feature := range features {
		if feature == "fields::5+" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected fields::5+ bucket, got %v", features)
	}
}
