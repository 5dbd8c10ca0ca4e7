package impi

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected Outcome
	}{
		{"no results phrase", "<html><body><p>No se encontraron registros</p></body></html>", OutcomeAvailable},
		{"no results wins over table", "<table><tr><td>No se encontraron registros</td></tr></table>", OutcomeAvailable},
		{"sin resultados", "<div>Búsqueda SIN RESULTADOS</div>", OutcomeAvailable},
		{"zero count", "<p>0 resultados</p>", OutcomeAvailable},
		{"ten results still reads as zero", "<p>10 resultados</p><table><tr><td>LUNA</td></tr></table>", OutcomeAvailable},
		{"expediente indicator", "<div>Expediente 1234567</div>", OutcomeOccupied},
		{"solicitud indicator", "<span>Número de solicitud</span>", OutcomeOccupied},
		{"results table", "<html><body><table><tr><td>LUNA</td></tr></table></body></html>", OutcomeOccupied},
		{"ambiguous page", "<html><body><h1>Marcanet</h1><p>Intente más tarde</p></body></html>", OutcomeManualReview},
		{"empty body", "", OutcomeManualReview},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.body); got != tc.expected {
				t.Fatalf("expected %s got %s", tc.expected, got)
			}
		})
	}
}

func TestOutcomeCategories(t *testing.T) {
	errorsOnly := map[Outcome]bool{
		OutcomeAvailable:       false,
		OutcomeOccupied:        false,
		OutcomeManualReview:    false,
		OutcomeConnectionError: true,
		OutcomeTimeoutError:    true,
		OutcomeUnknownError:    true,
	}
	for outcome, isErr := range errorsOnly {
		if !outcome.Valid() {
			t.Fatalf("%s should be valid", outcome)
		}
		if outcome.IsError() != isErr {
			t.Fatalf("%s IsError expected %v", outcome, isErr)
		}
	}
	if Outcome("ERROR").Valid() {
		t.Fatalf("unknown outcome reported valid")
	}
}
