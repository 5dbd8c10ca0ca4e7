package ai

import "testing"

func TestNormalizeJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain object", `  {"a": 1}  `, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around fence", "Claro, aquí está:\n```json\n{\"nota\": \"usa json\"}\n```\nSaludos", `{"nota": "usa json"}`},
		{"tag on same line", "```JSON {\"a\": 1}```", `{"a": 1}`},
		{"leading prose no fence", "Resultado: {\"a\": 1} fin", `{"a": 1}`},
		{"empty", "   ", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeJSONBlock(tc.input); got != tc.expected {
				t.Fatalf("expected %q got %q", tc.expected, got)
			}
		})
	}
}

func TestParseAnalysisClampsAndRejects(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		viability int
		wantErr   bool
	}{
		{"over range", `{"viabilidad": 140, "clases": ["Clase 9"], "nota": "n", "recomendaciones": ["r"]}`, 100, false},
		{"negative", `{"viabilidad": -3, "clases": ["Clase 9"], "nota": "n", "recomendaciones": ["r"]}`, 0, false},
		{"huge", `{"viabilidad": 1e20, "clases": ["Clase 9"], "nota": "n", "recomendaciones": ["r"]}`, 100, false},
		{"just above int64", `{"viabilidad": 9.3e18, "clases": ["Clase 9"], "nota": "n", "recomendaciones": ["r"]}`, 100, false},
		{"hugely negative", `{"viabilidad": -1e20, "clases": ["Clase 9"], "nota": "n", "recomendaciones": ["r"]}`, 0, false},
		{"fractional", `{"viabilidad": 72.6, "clases": ["Clase 9"], "nota": "n", "recomendaciones": ["r"]}`, 73, false},
		{"missing score", `{"clases": ["Clase 9"], "nota": "n", "recomendaciones": ["r"]}`, 50, false},
		{"blank classes", `{"viabilidad": 70, "clases": ["  "], "nota": "n", "recomendaciones": ["r"]}`, 0, true},
		{"no recommendations", `{"viabilidad": 70, "clases": ["Clase 9"], "nota": "n"}`, 0, true},
		{"not json", `lo siento`, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseAnalysis(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Viability != tc.viability {
				t.Fatalf("expected viability %d got %d", tc.viability, got.Viability)
			}
		})
	}
}
