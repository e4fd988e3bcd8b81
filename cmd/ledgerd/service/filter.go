package service

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/remixlabs/ledger/common/models"
)

// FilterEvaluator evaluates advanced search filters using CEL
// (Common Expression Language). Expressions see the artifact document,
// e.g. `artifact.tier == 'mythic' && artifact.crowned`.
type FilterEvaluator struct {
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewFilterEvaluator creates a new filter evaluator with caching
func NewFilterEvaluator() *FilterEvaluator {
	return &FilterEvaluator{
		cache: make(map[string]cel.Program),
	}
}

// Matches evaluates the expression against one artifact
func (e *FilterEvaluator) Matches(expr string, artifact *models.Artifact) (bool, error) {
	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}

	// Round-trip through JSON so the expression sees the wire-format
	// field names.
	doc, err := json.Marshal(artifact)
	if err != nil {
		return false, fmt.Errorf("marshal artifact: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false, fmt.Errorf("unmarshal artifact: %w", err)
	}

	out, _, err := prg.Eval(map[string]any{
		"artifact": fields,
	})
	if err != nil {
		return false, fmt.Errorf("filter evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter expression did not return boolean, got %T", out.Value())
	}

	return result, nil
}

// program returns the compiled program for expr, compiling and caching on
// first use
func (e *FilterEvaluator) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, exists := e.cache[expr]
	e.mu.RUnlock()

	if exists {
		return prg, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("artifact", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter compilation error: %w", issues.Err())
	}

	prg, err = env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter program: %w", err)
	}

	e.mu.Lock()
	e.cache[expr] = prg
	e.mu.Unlock()

	return prg, nil
}
