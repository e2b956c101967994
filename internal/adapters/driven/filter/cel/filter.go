// Package cel provides a candidate filter backed by Common Expression Language.
//
// Expressions see a single variable, item, with the fields:
//
//	item.url, item.title, item.site, item.category, item.source  (string)
//	item.score                                                   (int)
//	item.similarity, item.price                                  (double)
//	item.has_price                                               (bool)
//	item.pros, item.cons                                         (list of aspect names)
//
// A candidate without a price has has_price false and price 0.
//
// Example:
//
//	item.score >= 70 && item.site == "amazon" && (!item.has_price || item.price < 500.0)
package cel

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

// Ensure Filter implements the interface.
var _ driven.CandidateFilter = (*Filter)(nil)

var (
	env     *cel.Env
	envErr  error
	envOnce sync.Once
)

func environment() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(cel.Variable("item", cel.DynType))
	})
	return env, envErr
}

// Filter is a compiled boolean expression over a candidate. The compiled
// program is safe for concurrent evaluation.
type Filter struct {
	expr string
	prg  cel.Program
}

// New compiles expr. An expression that does not compile is rejected with
// domain.ErrInvalidInput.
func New(expr string) (*Filter, error) {
	e, err := environment()
	if err != nil {
		return nil, fmt.Errorf("creating cel environment: %w", err)
	}

	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compiling filter %q: %v: %w", expr, issues.Err(), domain.ErrInvalidInput)
	}

	prg, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("building filter program: %w", err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// Match evaluates the expression for the candidate. A non-boolean result
// is an error.
func (f *Filter) Match(candidate domain.Candidate) (bool, error) {
	out, _, err := f.prg.Eval(map[string]any{"item": itemOf(candidate)})
	if err != nil {
		return false, fmt.Errorf("evaluating filter: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter must return bool, got %T: %w", out.Value(), domain.ErrInvalidInput)
	}
	return result, nil
}

// Expression returns the source expression.
func (f *Filter) Expression() string {
	return f.expr
}

func itemOf(c domain.Candidate) map[string]any {
	price := 0.0
	if c.Price != nil {
		price = *c.Price
	}
	return map[string]any{
		"url":        c.URL,
		"title":      c.Title,
		"site":       c.Site.String(),
		"category":   c.Category.String(),
		"source":     string(c.Source),
		"score":      int64(c.Score),
		"similarity": c.EffectiveSimilarity(),
		"price":      price,
		"has_price":  c.Price != nil,
		"pros":       domain.AspectNames(c.Pros),
		"cons":       domain.AspectNames(c.Cons),
	}
}
