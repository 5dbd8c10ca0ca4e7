package api

import (
	"strings"
	"time"

	"marca-checker/internal/check"
	"marca-checker/internal/store"
)

// ConsultRequest is the body accepted by POST /consultar.
type ConsultRequest struct {
	Marca       string `json:"marca"`
	Descripcion string `json:"descripcion"`
}

// DiagnosisResponse is returned by the registry-only diagnostic endpoint.
type DiagnosisResponse struct {
	Marca      string    `json:"marca"`
	StatusIMPI string    `json:"status_impi"`
	Timestamp  time.Time `json:"timestamp"`
}

// HealthResponse reports liveness and whether the AI advisor is configured.
type HealthResponse struct {
	Status       string `json:"status"`
	Service      string `json:"service"`
	AIConfigured bool   `json:"ai_configured"`
}

// ConfigResponse describes the runtime configuration visible to operators.
// StatusCounts is absent when the consultation log is disabled.
type ConfigResponse struct {
	Models          []string         `json:"models"`
	CacheBackend    string           `json:"cache_backend"`
	FallbackEnabled bool             `json:"fallback_enabled"`
	LogEnabled      bool             `json:"log_enabled"`
	Subscribers     int              `json:"subscribers"`
	StatusCounts    map[string]int64 `json:"status_counts,omitempty"`
}

// ConsultationDTO is the API representation of a logged consultation.
type ConsultationDTO struct {
	ID               string    `json:"id"`
	Marca            string    `json:"marca"`
	Descripcion      string    `json:"descripcion"`
	Viabilidad       int       `json:"viabilidad"`
	StatusIMPI       string    `json:"status_impi"`
	Nota             string    `json:"nota"`
	Clases           []string  `json:"clases"`
	Recomendaciones  []string  `json:"recomendaciones"`
	AIEnabled        bool      `json:"ai_enabled"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// ConsultationsResponse is the paginated consultation history.
type ConsultationsResponse struct {
	Items []ConsultationDTO `json:"items"`
	Total int64             `json:"total"`
}

// FromModel converts a store.Consultation into the DTO representation.
func FromModel(c store.Consultation) ConsultationDTO {
	return ConsultationDTO{
		ID:               c.ID,
		Marca:            c.Brand,
		Descripcion:      c.Description,
		Viabilidad:       c.Viability,
		StatusIMPI:       c.Status,
		Nota:             strings.TrimSpace(c.Note),
		Clases:           nonNil(c.Classes()),
		Recomendaciones:  nonNil(c.Recommendations()),
		AIEnabled:        c.AIEnabled,
		ProcessingTimeMs: c.ProcessingTimeMs,
		CreatedAt:        c.CreatedAt,
	}
}

// FromResult converts a pipeline result into the DTO representation.
func FromResult(r check.Result, aiEnabled bool) ConsultationDTO {
	return ConsultationDTO{
		ID:               r.ID,
		Marca:            r.Query.Brand,
		Descripcion:      r.Query.Description,
		Viabilidad:       r.Analysis.Viability,
		StatusIMPI:       string(r.Outcome),
		Nota:             r.Analysis.Note,
		Clases:           nonNil(r.Analysis.Classes),
		Recomendaciones:  nonNil(r.Analysis.Recommendations),
		AIEnabled:        aiEnabled,
		ProcessingTimeMs: r.ProcessingTimeMs,
		CreatedAt:        r.CheckedAt,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
