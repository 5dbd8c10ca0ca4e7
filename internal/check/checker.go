package check

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marca-checker/internal/ai"
	"marca-checker/internal/impi"
	"marca-checker/internal/match"
	"marca-checker/internal/scoring"
	"marca-checker/internal/store"
	"marca-checker/internal/util"
)

// Advisor is the AI half of a consultation.
type Advisor interface {
	Enabled() bool
	Advise(ctx context.Context, q match.Query) ai.Analysis
}

// Recorder persists completed consultations.
type Recorder interface {
	SaveConsultation(c *store.Consultation) error
}

// Config wires the pipeline collaborators. Fallback, Recorder and OnResult are optional.
type Config struct {
	Advisor       Advisor
	Prober        impi.Prober
	Fallback      impi.Prober
	FallbackDelay time.Duration
	Recorder      Recorder
	OnResult      func(Result)
}

// Result is the outcome of one consultation.
type Result struct {
	ID               string
	Query            match.Query
	Analysis         ai.Analysis
	Outcome          impi.Outcome
	ProcessingTimeMs int64
	CheckedAt        time.Time
}

// Diagnosis is a registry-only probe result.
type Diagnosis struct {
	Brand     string
	Outcome   impi.Outcome
	Timestamp time.Time
}

// Checker runs the advisor, the registry prober and the merger for one query at a time.
// It holds no per-request state and is safe for concurrent use.
type Checker struct {
	advisor       Advisor
	prober        impi.Prober
	fallback      impi.Prober
	fallbackDelay time.Duration
	recorder      Recorder
	onResult      func(Result)
}

// New validates cfg and returns a Checker.
func New(cfg Config) (*Checker, error) {
	if cfg.Advisor == nil {
		return nil, errors.New("advisor required")
	}
	if cfg.Prober == nil {
		return nil, errors.New("prober required")
	}
	if cfg.FallbackDelay < 0 {
		cfg.FallbackDelay = 0
	}
	return &Checker{
		advisor:       cfg.Advisor,
		prober:        cfg.Prober,
		fallback:      cfg.Fallback,
		fallbackDelay: cfg.FallbackDelay,
		recorder:      cfg.Recorder,
		onResult:      cfg.OnResult,
	}, nil
}

// AIEnabled reports whether the advisor has a configured model.
func (c *Checker) AIEnabled() bool {
	return c.advisor.Enabled()
}

// FallbackEnabled reports whether error outcomes are retried against the secondary registry.
func (c *Checker) FallbackEnabled() bool {
	return c.fallback != nil
}

// Check runs the advisor then the registry probe and merges both signals.
func (c *Checker) Check(ctx context.Context, q match.Query) Result {
	sw := util.StartStopwatch()

	analysis := c.advisor.Advise(ctx, q)
	sw.Lap("ai")

	outcome := c.probe(ctx, q.Brand)
	sw.Lap("impi")

	result := Result{
		ID:        uuid.NewString(),
		Query:     q,
		Analysis:  scoring.Merge(q.Brand, analysis, outcome),
		Outcome:   outcome,
		CheckedAt: time.Now().UTC(),
	}
	result.ProcessingTimeMs = sw.ElapsedMs()

	logrus.WithFields(sw.Fields()).WithFields(logrus.Fields{
		"id":        result.ID,
		"brand":     q.Brand,
		"outcome":   outcome,
		"viability": result.Analysis.Viability,
	}).Info("consultation completed")

	c.record(result)
	if c.onResult != nil {
		c.onResult(result)
	}
	return result
}

// Diagnose runs only the primary registry probe.
func (c *Checker) Diagnose(ctx context.Context, brand string) Diagnosis {
	return Diagnosis{
		Brand:     brand,
		Outcome:   guard(c.prober.Probe(ctx, brand)),
		Timestamp: time.Now().UTC(),
	}
}

func (c *Checker) probe(ctx context.Context, brand string) impi.Outcome {
	outcome := guard(c.prober.Probe(ctx, brand))
	if !outcome.IsError() || c.fallback == nil {
		return outcome
	}

	if c.fallbackDelay > 0 {
		timer := time.NewTimer(c.fallbackDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return outcome
		case <-timer.C:
		}
	}
	logrus.WithFields(logrus.Fields{
		"brand":   brand,
		"primary": outcome,
	}).Info("primary registry lookup failed, trying secondary")
	return guard(c.fallback.Probe(ctx, brand))
}

func (c *Checker) record(result Result) {
	if c.recorder == nil {
		return
	}
	row := &store.Consultation{
		ID:               result.ID,
		Brand:            result.Query.Brand,
		Description:      result.Query.Description,
		Viability:        result.Analysis.Viability,
		Status:           string(result.Outcome),
		Note:             result.Analysis.Note,
		AIEnabled:        c.advisor.Enabled(),
		ProcessingTimeMs: result.ProcessingTimeMs,
		CreatedAt:        result.CheckedAt,
	}
	row.SetClasses(result.Analysis.Classes)
	row.SetRecommendations(result.Analysis.Recommendations)
	if err := c.recorder.SaveConsultation(row); err != nil {
		logrus.WithError(err).WithField("id", result.ID).Warn("record consultation")
	}
}

// guard keeps unrecognized prober output inside the outcome enumeration.
func guard(outcome impi.Outcome) impi.Outcome {
	if !outcome.Valid() {
		return impi.OutcomeUnknownError
	}
	return outcome
}
