package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"marca-checker/internal/match"
)

// Cache memoizes advisor results keyed by the normalized query.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
}

// Advisor produces a viability Analysis for a query. It never fails: when the
// generator is missing or every model fails it returns a static fallback.
type Advisor struct {
	chain  *Chain
	cache  Cache
	models []string
}

// NewAdvisor wires a generator, configuration and optional cache. A nil generator
// leaves the advisor permanently in fallback mode.
func NewAdvisor(generator Generator, cfg Config, cache Cache) *Advisor {
	cfg = cfg.withDefaults()
	advisor := &Advisor{cache: cache, models: cfg.Models}
	if generator == nil {
		advisor.chain = NewChain()
		return advisor
	}
	opts := GenerateOptions{Temperature: cfg.Temperature, MaxOutputTokens: cfg.MaxTokens}
	strategies := make([]Strategy, 0, len(cfg.Models))
	for _, model := range cfg.Models {
		strategies = append(strategies, ModelStrategy(generator, model, opts, cfg.Timeout))
	}
	advisor.chain = NewChain(strategies...)
	return advisor
}

// Enabled reports whether the advisor can reach a generative model.
func (a *Advisor) Enabled() bool {
	return a != nil && a.chain.Len() > 0
}

// Models returns the model identifiers in priority order.
func (a *Advisor) Models() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.models...)
}

// Advise returns the AI opinion for the query, from cache when available.
func (a *Advisor) Advise(ctx context.Context, q match.Query) Analysis {
	if !a.Enabled() {
		return UnavailableAnalysis()
	}

	key := q.CacheKey()
	if cached, ok := a.lookup(ctx, key); ok {
		logrus.WithField("brand", q.Brand).Debug("advisor cache hit")
		return cached
	}

	analysis, model, err := a.chain.Analyze(ctx, BuildPrompt(q))
	if err != nil {
		logrus.WithError(err).WithField("brand", q.Brand).Warn("ai analysis failed, using fallback")
		return ExhaustedAnalysis()
	}
	logrus.WithFields(logrus.Fields{
		"brand":     q.Brand,
		"model":     model,
		"viability": analysis.Viability,
	}).Info("ai analysis completed")

	a.remember(ctx, key, analysis)
	return analysis
}

func (a *Advisor) lookup(ctx context.Context, key string) (Analysis, bool) {
	if a.cache == nil {
		return Analysis{}, false
	}
	payload, ok := a.cache.Get(ctx, key)
	if !ok {
		return Analysis{}, false
	}
	var analysis Analysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		logrus.WithError(err).Warn("discard undecodable advisor cache entry")
		return Analysis{}, false
	}
	return analysis, true
}

func (a *Advisor) remember(ctx context.Context, key string, analysis Analysis) {
	if a.cache == nil {
		return
	}
	payload, err := json.Marshal(analysis)
	if err != nil {
		logrus.WithError(err).Warn("encode advisor cache entry")
		return
	}
	if err := a.cache.Set(ctx, key, payload); err != nil {
		logrus.WithError(err).Warn("store advisor cache entry")
	}
}

// BuildPrompt renders the instruction sent to every model.
func BuildPrompt(q match.Query) string {
	builder := &strings.Builder{}
	fmt.Fprintf(builder, "Analiza la marca '%s' para el giro '%s' en México.\n\n", q.Brand, q.Description)
	builder.WriteString("Responde ÚNICAMENTE con un objeto JSON válido (sin markdown) con exactamente cuatro campos:\n")
	builder.WriteString("- \"viabilidad\": entero de 0 a 100 que indique qué tan registrable es la marca\n")
	builder.WriteString("- \"clases\": de 2 a 4 clases de Niza aplicables, con el formato \"Clase N: descripción\"\n")
	builder.WriteString("- \"nota\": una nota breve sobre la viabilidad\n")
	builder.WriteString("- \"recomendaciones\": de 2 a 4 recomendaciones concretas\n\n")
	builder.WriteString("Ejemplo:\n")
	builder.WriteString(`{
  "viabilidad": 75,
  "clases": ["Clase 35: Servicios comerciales", "Clase 42: Servicios tecnológicos"],
  "nota": "Análisis de viabilidad",
  "recomendaciones": ["Consultar especialista", "Verificar clases específicas"]
}`)
	builder.WriteString("\n")
	return builder.String()
}
