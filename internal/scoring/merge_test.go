package scoring

import (
	"strings"
	"testing"

	"marca-checker/internal/ai"
	"marca-checker/internal/impi"
)

func baseAnalysis(score int) ai.Analysis {
	return ai.Analysis{
		Viability:       score,
		Classes:         []string{"Clase 43: Restaurantes"},
		Note:            "Nombre distintivo",
		Recommendations: []string{"Registrar en clase 43", "Proteger logotipo"},
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name       string
		score      int
		outcome    impi.Outcome
		expected   int
		notePrefix string
	}{
		{"occupied forces five", 95, impi.OutcomeOccupied, 5, "⚠️ ALERTA CRÍTICA: La marca 'LUNA'"},
		{"available raises low score", 40, impi.OutcomeAvailable, 80, "✅ Marca aparentemente disponible. Nombre distintivo"},
		{"available keeps higher score", 92, impi.OutcomeAvailable, 92, "✅ Marca aparentemente disponible."},
		{"manual review subtracts twenty", 70, impi.OutcomeManualReview, 50, "⚠️ Se requiere verificación manual"},
		{"manual review floors at twenty", 30, impi.OutcomeManualReview, 20, "⚠️ Se requiere verificación manual"},
		{"connection error", 90, impi.OutcomeConnectionError, 50, "⚠️ No se pudo verificar en el IMPI"},
		{"timeout error", 10, impi.OutcomeTimeoutError, 50, "⚠️ No se pudo verificar en el IMPI"},
		{"unknown error", 77, impi.OutcomeUnknownError, 50, "⚠️ No se pudo verificar en el IMPI"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Merge("LUNA", baseAnalysis(tc.score), tc.outcome)
			if result.Viability != tc.expected {
				t.Fatalf("expected viability %d got %d", tc.expected, result.Viability)
			}
			if !strings.HasPrefix(result.Note, tc.notePrefix) {
				t.Fatalf("expected note prefix %q got %q", tc.notePrefix, result.Note)
			}
			if result.Status != string(tc.outcome) {
				t.Fatalf("expected status %s got %s", tc.outcome, result.Status)
			}
		})
	}
}

func TestMergeOccupiedReplacesRecommendations(t *testing.T) {
	result := Merge("LUNA", baseAnalysis(60), impi.OutcomeOccupied)
	if len(result.Recommendations) != 3 {
		t.Fatalf("expected 3 legal recommendations got %d", len(result.Recommendations))
	}
	if result.Classes[0] != "Clase 43: Restaurantes" {
		t.Fatalf("classes should be preserved, got %v", result.Classes)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	input := baseAnalysis(70)
	first := Merge("LUNA", input, impi.OutcomeOccupied)
	second := Merge("LUNA", input, impi.OutcomeOccupied)

	if input.Viability != 70 || input.Note != "Nombre distintivo" || input.Status != "" {
		t.Fatalf("input mutated: %+v", input)
	}
	if input.Recommendations[0] != "Registrar en clase 43" {
		t.Fatalf("input recommendations mutated: %v", input.Recommendations)
	}
	if first.Note != second.Note || first.Viability != second.Viability {
		t.Fatalf("merge is not deterministic: %+v vs %+v", first, second)
	}
}

func TestMergeKeepsScoreInRange(t *testing.T) {
	for _, outcome := range []impi.Outcome{
		impi.OutcomeAvailable, impi.OutcomeOccupied, impi.OutcomeManualReview,
		impi.OutcomeConnectionError, impi.OutcomeTimeoutError, impi.OutcomeUnknownError,
	} {
		for _, score := range []int{-50, 0, 100, 400} {
			result := Merge("X", baseAnalysis(score), outcome)
			if result.Viability < 0 || result.Viability > 100 {
				t.Fatalf("%s with %d produced %d", outcome, score, result.Viability)
			}
		}
	}
}
