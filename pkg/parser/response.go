package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

// The generative API's reply shape is not guaranteed: it varies by provider,
// response cache and mock mode. Everything here treats replies as loose
// documents and degrades instead of failing.

var fenceRe = regexp.MustCompile("```[a-zA-Z]*\n|```")

// StripFences removes markdown code fences such as ```json ... ``` so the
// embedded JSON can be parsed.
func StripFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}

// ExtractJSONBlock finds the first balanced {...} block in raw and decodes
// it. Returns false when no block is present or the block does not decode;
// callers fall back to the raw text rather than erroring.
func ExtractJSONBlock(raw string) (map[string]interface{}, bool) {
	cleaned := StripFences(raw)

	start := strings.Index(cleaned, "{")
	if start < 0 {
		return nil, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		c := cleaned[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// skip structural chars inside strings
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				var doc map[string]interface{}
				if err := json.Unmarshal([]byte(cleaned[start:i+1]), &doc); err != nil {
					return nil, false
				}
				return doc, true
			}
		}
	}
	return nil, false
}

// FirstString walks an ordered list of dotted key paths and returns the
// first one present as a non-empty string, trimmed. This is how the
// heterogeneous reply shapes of the generative API are normalized: try the
// richest shape first, fall through to the flattest.
func FirstString(doc map[string]interface{}, paths ...string) (string, bool) {
	for _, path := range paths {
		v, ok := lookup(doc, path)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			return s, true
		}
	}
	return "", false
}

// Tokens resolves the tokens-used figure from a reply document: a nested
// tokensUsed.total wins, then a numeric tokensUsed, then the given default.
func Tokens(doc map[string]interface{}, fallback int) int {
	if doc != nil {
		if v, ok := lookup(doc, "tokensUsed.total"); ok {
			if n, ok := asInt(v); ok {
				return n
			}
		}
		if v, ok := doc["tokensUsed"]; ok {
			if n, ok := asInt(v); ok {
				return n
			}
		}
	}
	return fallback
}

func lookup(doc map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var current interface{} = doc
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
