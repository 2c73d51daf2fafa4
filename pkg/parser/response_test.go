package parser

import "testing"

func TestExtractJSONBlock(t *testing.T) {
	raw := "Here is the analysis:\n```json\n{\"score\": 80, \"nested\": {\"a\": 1}}\n```\nDone."
	doc, ok := ExtractJSONBlock(raw)
	if !ok {
		t.Fatal("expected a JSON block")
	}
	if doc["score"].(float64) != 80 {
		t.Errorf("score = %v", doc["score"])
	}
}

func TestExtractJSONBlock_BracesInStrings(t *testing.T) {
	raw := `prefix {"text": "keep {this} intact", "n": 1} suffix`
	doc, ok := ExtractJSONBlock(raw)
	if !ok {
		t.Fatal("expected a JSON block")
	}
	if doc["text"] != "keep {this} intact" {
		t.Errorf("text = %v", doc["text"])
	}
}

func TestExtractJSONBlock_NoJSON(t *testing.T) {
	if _, ok := ExtractJSONBlock("just prose, no structure"); ok {
		t.Error("expected no block")
	}
	if _, ok := ExtractJSONBlock("broken {not json]"); ok {
		t.Error("expected malformed block to be rejected")
	}
}

func TestFirstString_PriorityOrder(t *testing.T) {
	doc := map[string]interface{}{
		"result":     map[string]interface{}{"suggested_value": "  nested wins  "},
		"suggestion": "flat loses",
	}
	got, ok := FirstString(doc, "result.suggested_value", "suggested_value", "suggestion")
	if !ok || got != "nested wins" {
		t.Errorf("FirstString = %q, %v", got, ok)
	}
}

func TestFirstString_SkipsEmptyAndMissing(t *testing.T) {
	doc := map[string]interface{}{
		"suggested_value": "   ",
		"content":         "fallback",
	}
	got, ok := FirstString(doc, "result.suggested_value", "suggested_value", "suggestion", "content")
	if !ok || got != "fallback" {
		t.Errorf("FirstString = %q, %v", got, ok)
	}
	if _, ok := FirstString(doc, "nope", "also.nope"); ok {
		t.Error("expected miss")
	}
}

func TestTokens(t *testing.T) {
	nested := map[string]interface{}{"tokensUsed": map[string]interface{}{"total": float64(321)}}
	if got := Tokens(nested, 100); got != 321 {
		t.Errorf("nested total = %d", got)
	}
	flat := map[string]interface{}{"tokensUsed": float64(42)}
	if got := Tokens(flat, 100); got != 42 {
		t.Errorf("flat = %d", got)
	}
	if got := Tokens(nil, 150); got != 150 {
		t.Errorf("fallback = %d", got)
	}
	if got := Tokens(map[string]interface{}{"tokensUsed": "n/a"}, 100); got != 100 {
		t.Errorf("non-numeric = %d", got)
	}
}
