package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

const fence = "```"

type rawAnalysis struct {
	Viability       *float64 `json:"viabilidad"`
	Classes         []string `json:"clases"`
	Note            string   `json:"nota"`
	Recommendations []string `json:"recomendaciones"`
}

// parseAnalysis decodes a model reply into an Analysis. Replies without classes or
// recommendations are rejected so the next model gets a chance.
func parseAnalysis(text string) (Analysis, error) {
	content := normalizeJSONBlock(text)
	if content == "" {
		return Analysis{}, errors.New("ai empty response")
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Analysis{}, fmt.Errorf("parse ai response: %w", err)
	}

	analysis := Analysis{
		Viability:       50,
		Classes:         compactStrings(raw.Classes),
		Note:            strings.TrimSpace(raw.Note),
		Recommendations: compactStrings(raw.Recommendations),
	}
	if raw.Viability != nil && !math.IsNaN(*raw.Viability) {
		analysis.Viability = int(math.Round(math.Max(0, math.Min(100, *raw.Viability))))
	}
	if len(analysis.Classes) == 0 {
		return Analysis{}, errors.New("ai classes missing")
	}
	if len(analysis.Recommendations) == 0 {
		return Analysis{}, errors.New("ai recommendations missing")
	}
	return analysis, nil
}

// normalizeJSONBlock pulls the JSON object out of a reply that may be wrapped in
// markdown fences, possibly with a language tag after the opening fence.
func normalizeJSONBlock(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if strings.Contains(trimmed, fence) {
		for _, part := range strings.Split(trimmed, fence) {
			open := strings.Index(part, "{")
			end := strings.LastIndex(part, "}")
			if open >= 0 && end > open {
				trimmed = stripLanguageTag(part)
				break
			}
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end >= start {
		return strings.TrimSpace(trimmed[start : end+1])
	}
	return trimmed
}

// stripLanguageTag drops a leading word such as "json" that sits before the object.
func stripLanguageTag(block string) string {
	block = strings.TrimLeftFunc(block, unicode.IsSpace)
	idx := strings.IndexAny(block, "{\n")
	if idx <= 0 {
		return strings.TrimSpace(block)
	}
	tag := strings.TrimSpace(block[:idx])
	for _, r := range tag {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return strings.TrimSpace(block)
		}
	}
	return strings.TrimSpace(block[idx:])
}

func compactStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
