package ai

// Analysis is the structured viability opinion returned to clients. Status is only
// populated once the registry outcome has been merged in.
type Analysis struct {
	Viability       int      `json:"viabilidad"`
	Classes         []string `json:"clases"`
	Note            string   `json:"nota"`
	Recommendations []string `json:"recomendaciones"`
	Status          string   `json:"status_impi,omitempty"`
}

// Clone returns a deep copy so callers can mutate the result without touching cached values.
func (a Analysis) Clone() Analysis {
	out := a
	out.Classes = append([]string(nil), a.Classes...)
	out.Recommendations = append([]string(nil), a.Recommendations...)
	return out
}

// ClampScore bounds a viability score to [0,100].
func ClampScore(value int) int {
	return clampInt(value, 0, 100)
}

// UnavailableAnalysis is returned when no AI credential was configured at startup.
func UnavailableAnalysis() Analysis {
	return Analysis{
		Viability: 50,
		Classes:   []string{"Configuración pendiente"},
		Note:      "API Key de Gemini no configurada. El análisis con IA no está disponible.",
		Recommendations: []string{
			"Configurar API_KEY_GEMINI",
			"Verificar la marca manualmente en el IMPI",
		},
	}
}

// ExhaustedAnalysis is returned when every configured model failed to produce a usable answer.
func ExhaustedAnalysis() Analysis {
	return Analysis{
		Viability: 50,
		Classes:   []string{"Consulta manual requerida"},
		Note:      "Error en análisis automático. Verifica con especialista.",
		Recommendations: []string{
			"Consultar con un abogado especializado en propiedad industrial",
			"Verificar la marca manualmente en el IMPI",
		},
	}
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
