package types

import (
	"strings"
	"testing"
)

func TestParseCanvasDocument(t *testing.T) {
	raw := []byte(`{
		"version": "1.0",
		"background": "#ffffff",
		"objects": [
			{"type": "rect", "left": 0, "top": 0, "width": 100, "height": 40, "fill": "#333333"},
			{"type": "text", "left": 8, "top": 8, "width": 84, "height": 24, "text": "Hello", "fontSize": 14}
		]
	}`)
	doc, err := ParseCanvasDocument(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Version != "1.0" || len(doc.Objects) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.Objects[1].Text != "Hello" {
		t.Fatalf("text object = %+v", doc.Objects[1])
	}
}

func TestParseCanvasDocument_Rejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"empty input", "", "empty canvas document"},
		{"malformed json", "{not json", "parse canvas document"},
		{"missing version", `{"objects": []}`, "missing version"},
		{"missing objects", `{"version": "1.0"}`, "missing objects"},
		{"untyped object", `{"version": "1.0", "objects": [{"left": 1}]}`, "missing type"},
		{"negative size", `{"version": "1.0", "objects": [{"type": "rect", "width": -5, "height": 10}]}`, "negative size"},
	}
	for _, tc := range cases {
		_, err := ParseCanvasDocument([]byte(tc.raw))
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error = %v, want substring %q", tc.name, err, tc.want)
		}
	}
}

func TestCanvasDocumentJSONRoundTrip(t *testing.T) {
	opacity := 0.5
	doc := &CanvasDocument{
		Version:    "1.0",
		Background: "#f0f0f0",
		Objects: []CanvasObject{
			{Type: "ellipse", Left: 10, Top: 20, Width: 30, Height: 30, Opacity: &opacity},
		},
	}
	raw, err := doc.JSON()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	parsed, err := ParseCanvasDocument(raw)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if parsed.Objects[0].Opacity == nil || *parsed.Objects[0].Opacity != 0.5 {
		t.Fatalf("opacity lost in round trip: %+v", parsed.Objects[0])
	}
}

func TestCanvasDocumentJSONValidatesFirst(t *testing.T) {
	doc := &CanvasDocument{Objects: []CanvasObject{}}
	if _, err := doc.JSON(); err == nil {
		t.Fatalf("expected validation failure for missing version")
	}
}

func TestOptimizationStatusPredicates(t *testing.T) {
	hasDesign := []OptimizationStatus{OptimizationRevised, OptimizationRefined, OptimizationApproved}
	for _, s := range hasDesign {
		if !s.HasDesign() {
			t.Fatalf("%s should report a design", s)
		}
	}
	if OptimizationPending.HasDesign() || OptimizationRejected.HasDesign() {
		t.Fatalf("PENDING and REJECTED must not report a design")
	}
	if !OptimizationRejected.Terminal() {
		t.Fatalf("REJECTED is terminal")
	}
	if OptimizationApproved.Terminal() {
		t.Fatalf("APPROVED allows further refinement")
	}
}
