package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned when every strategy in a chain failed.
var ErrExhausted = errors.New("ai strategies exhausted")

// Strategy is one named attempt at producing an Analysis for a prompt.
type Strategy interface {
	Name() string
	Analyze(ctx context.Context, prompt string) (Analysis, error)
}

// Chain tries its strategies in order and stops at the first success.
type Chain struct {
	strategies []Strategy
}

// NewChain returns a chain over the non-nil strategies, preserving priority order.
func NewChain(strategies ...Strategy) *Chain {
	chain := &Chain{}
	for _, s := range strategies {
		if s != nil {
			chain.strategies = append(chain.strategies, s)
		}
	}
	return chain
}

// Len reports how many strategies the chain holds.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.strategies)
}

// Analyze returns the first successful result and the name of the strategy that produced it.
func (c *Chain) Analyze(ctx context.Context, prompt string) (Analysis, string, error) {
	if c.Len() == 0 {
		return Analysis{}, "", ErrDisabled
	}
	var errs []error
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		analysis, err := s.Analyze(ctx, prompt)
		if err == nil {
			return analysis, s.Name(), nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return Analysis{}, "", fmt.Errorf("%w: %w", ErrExhausted, errors.Join(errs...))
}

// modelStrategy asks a single model through a Generator.
type modelStrategy struct {
	generator Generator
	model     string
	opts      GenerateOptions
	timeout   time.Duration
}

// ModelStrategy wraps one model identifier as a Strategy.
func ModelStrategy(generator Generator, model string, opts GenerateOptions, timeout time.Duration) Strategy {
	return &modelStrategy{generator: generator, model: model, opts: opts, timeout: timeout}
}

func (m *modelStrategy) Name() string {
	return m.model
}

func (m *modelStrategy) Analyze(ctx context.Context, prompt string) (Analysis, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	text, err := m.generator.Generate(ctx, m.model, prompt, m.opts)
	if err != nil {
		return Analysis{}, err
	}
	return parseAnalysis(text)
}
