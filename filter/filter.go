// Package filter narrows scored reviews with boolean expr-lang expressions such as
//
//	Label == "Negative" && Rated && Rating <= 4
//	Compound > 0.5 || Text contains "masterpiece"
package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aluiziolira/cinesent/models"
)

// CompilationError reports an expression that does not compile against the review environment.
type CompilationError struct {
	Expression string
	Reason     string
	Err        error
}

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("filter %q: %s: %v", e.Expression, e.Reason, e.Err)
	}
	return fmt.Sprintf("filter %q: %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// Filter is a compiled expression. It is safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
}

// Compile checks expression against the review variables and requires a boolean result.
func Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression"}
	}

	program, err := expr.Compile(expression,
		expr.Env(environment(models.SentimentResult{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}
	return &Filter{expression: expression, program: program}, nil
}

// Expression returns the source expression.
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter for one result. Runtime errors count as no match.
func (f *Filter) Match(r models.SentimentResult) bool {
	out, err := expr.Run(f.program, environment(r))
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// Apply returns the matching results in their original order.
// A nil Filter matches everything.
func (f *Filter) Apply(results []models.SentimentResult) []models.SentimentResult {
	if f == nil {
		return results
	}
	out := make([]models.SentimentResult, 0, len(results))
	for _, r := range results {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// environment exposes a result to expressions. Rating is 0 when unknown; use Rated to tell.
func environment(r models.SentimentResult) map[string]any {
	rating := 0.0
	if r.Rating != nil {
		rating = *r.Rating
	}
	return map[string]any{
		"Text":     r.Text,
		"Rating":   rating,
		"Rated":    r.HasRating(),
		"Label":    string(r.Label),
		"Compound": r.Compound,
		"Positive": r.Positive,
		"Negative": r.Negative,
		"Neutral":  r.Neutral,
		"Words":    len(strings.Fields(r.Text)),
	}
}
