package scoring

import (
	"fmt"
	"strings"

	"marca-checker/internal/ai"
	"marca-checker/internal/impi"
)

const (
	availableFloor      = 80
	manualReviewPenalty = 20
	manualReviewFloor   = 20
	occupiedScore       = 5
	lookupFailedScore   = 50
)

// Merge folds the registry outcome into the AI analysis. The input analysis is left
// untouched; the returned copy always carries the outcome in Status.
func Merge(brand string, analysis ai.Analysis, outcome impi.Outcome) ai.Analysis {
	result := analysis.Clone()
	result.Status = string(outcome)

	switch outcome {
	case impi.OutcomeOccupied:
		result.Viability = occupiedScore
		result.Note = fmt.Sprintf("⚠️ ALERTA CRÍTICA: La marca '%s' ya está registrada en el IMPI. Su uso podría resultar en infracciones legales.", brand)
		result.Recommendations = []string{
			"Considerar una variación de la marca",
			"Consultar con un abogado especializado en propiedad industrial",
			"Verificar si la marca está vigente o abandonada",
		}
	case impi.OutcomeAvailable:
		result.Viability = max(result.Viability, availableFloor)
		result.Note = strings.TrimSpace("✅ Marca aparentemente disponible. " + strings.TrimSpace(analysis.Note))
	case impi.OutcomeManualReview:
		result.Viability = max(result.Viability-manualReviewPenalty, manualReviewFloor)
		result.Note = "⚠️ Se requiere verificación manual en el IMPI. El sistema automático no pudo confirmar disponibilidad."
	default:
		result.Viability = lookupFailedScore
		result.Note = "⚠️ No se pudo verificar en el IMPI por problemas técnicos. Se recomienda consulta manual."
	}

	result.Viability = ai.ClampScore(result.Viability)
	return result
}
