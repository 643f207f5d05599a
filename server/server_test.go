package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/bomex/learning"
	"github.com/tsawler/bomex/model"
)

func testHandler() http.Handler {
	engine := learning.NewEngine(learning.NewMemoryStore(), nil)
	return New(DefaultConfig(), engine, nil).Routes()
}

const tableDocumentJSON = `{
	"source": "drawing.pdf",
	"pages": [
		{
			"number": 1,
			"width": 595,
			"height": 842,
			"tables": [
				{
					"strategy": "lines",
					"rows": [
						["Pos", "Benennung", "Menge"],
						["1", "Flansch DN50", "2"]
					]
				}
			]
		}
	]
}`

const textDocumentJSON = `{
	"source": "sketch.pdf",
	"pages": [
		{
			"number": 1,
			"width": 595,
			"height": 842,
			"text": "Pos 1 Schraube M8 Qty 4"
		}
	]
}`

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestExtractEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(tableDocumentJSON))
	testHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result model.ExtractionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	if result.Items[0].Description != "Flansch DN50" {
		t.Errorf("expected description Flansch DN50, got %q", result.Items[0].Description)
	}
	if result.Items[0].Confidence == nil {
		t.Error("expected confidence on extracted item")
	}
	if result.Metadata["mode"] != "table" {
		t.Errorf("expected mode table, got %v", result.Metadata["mode"])
	}
	if id, ok := result.Metadata["extraction_id"].(string); !ok || id == "" {
		t.Error("expected an extraction_id")
	}
}

func TestExtractEndpointEmptyBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader(nil))
	testHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestExtractEndpointRejectsInvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "not json"},
		{name: "missing pages", body: `{"source": "x.pdf"}`},
		{name: "bad page number", body: `{"pages": [{"number": 0}]}`},
		{name: "rows not strings", body: `{"pages": [{"number": 1, "tables": [{"rows": [[1, 2]]}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(tt.body))
			testHandler().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestExtractEndpointStrictMode(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract?strict=1", strings.NewReader(textDocumentJSON))
	testHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if body.Error == "" {
		t.Error("expected an error message")
	}
}

func TestExtractEndpointFallback(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(textDocumentJSON))
	testHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result model.ExtractionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if result.Metadata["mode"] != "interpreted" {
		t.Errorf("expected mode interpreted, got %v", result.Metadata["mode"])
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	handler := testHandler()

	payload := `{
		"document": "drawing.pdf",
		"metadata": {"mode": "table"},
		"ratings": [
			{"item": {"position": "1", "description": "Flansch DN50", "quantity": 2, "extras": {"source": "table"}}, "correct": true}
		]
	}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(payload))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body feedbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("expected status ok, got %q", body.Status)
	}
	if body.Summary.TotalFeedback != 1 {
		t.Errorf("expected 1 feedback entry, got %d", body.Summary.TotalFeedback)
	}
	if body.Summary.SuccessRate != 1 {
		t.Errorf("expected success rate 1, got %v", body.Summary.SuccessRate)
	}
}

func TestFeedbackEndpointRejectsEmptyRatings(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(`{"ratings": []}`))
	testHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestFeedbackSummaryEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feedback/summary", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary learning.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if summary.TotalFeedback != 0 {
		t.Errorf("expected empty summary, got %d", summary.TotalFeedback)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %q", cfg.Addr)
	}
	if cfg.LearningStore != StoreFile {
		t.Errorf("expected file store, got %q", cfg.LearningStore)
	}
	if cfg.MaxBodyBytes != 32<<20 {
		t.Errorf("expected 32MiB body limit, got %d", cfg.MaxBodyBytes)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "addr: \":9090\"\nlearning_store: memory\nmax_body_bytes: 1024\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %q", cfg.Addr)
	}
	if cfg.LearningStore != StoreMemory {
		t.Errorf("expected memory store, got %q", cfg.LearningStore)
	}
	if cfg.MaxBodyBytes != 1024 {
		t.Errorf("expected body limit 1024, got %d", cfg.MaxBodyBytes)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("BOM_ADDR", ":7070")
	t.Setenv("BOM_LEARNING_STORE", "sqlite")
	t.Setenv("BOM_MAX_BODY_BYTES", "2048")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("expected env addr :7070, got %q", cfg.Addr)
	}
	if cfg.LearningStore != StoreSQLite {
		t.Errorf("expected sqlite store, got %q", cfg.LearningStore)
	}
	if cfg.MaxBodyBytes != 2048 {
		t.Errorf("expected body limit 2048, got %d", cfg.MaxBodyBytes)
	}
}

func TestLoadConfigRejectsUnknownStore(t *testing.T) {
	t.Setenv("BOM_LEARNING_STORE", "redis")
	if _, err := LoadConfig(""); err == nil {
		t.Error("expected error for unknown store kind")
	}
}
