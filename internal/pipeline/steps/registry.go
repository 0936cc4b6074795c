// Package steps defines the steps of a site update run and their ordering.
package steps

import (
	"fmt"
	"strings"
)

// Step names
const (
	ReadReference = "read_reference"
	Generate      = "generate"
	Normalize     = "normalize"
	Apply         = "apply"
	Evaluate      = "evaluate"
)

// Step categories
const (
	CategoryInput   = "input"
	CategoryModel   = "model"
	CategoryOutput  = "output"
	CategoryOutcome = "outcome"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	ReadReference: {
		Name:         ReadReference,
		Category:     CategoryInput,
		Dependencies: []string{},
	},
	Generate: {
		Name:         Generate,
		Category:     CategoryModel,
		Dependencies: []string{ReadReference},
	},
	Normalize: {
		Name:         Normalize,
		Category:     CategoryModel,
		Dependencies: []string{Generate},
	},
	Apply: {
		Name:         Apply,
		Category:     CategoryOutput,
		Dependencies: []string{Normalize},
	},
	Evaluate: {
		Name:         Evaluate,
		Category:     CategoryOutcome,
		Dependencies: []string{Apply},
	},
}

// Order lists the steps in execution order.
var Order = []string{ReadReference, Generate, Normalize, Apply, Evaluate}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step    string
	Missing []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s is missing dependencies: %s", e.Step, strings.Join(e.Missing, ", "))
}

// ValidateDependencies checks that every dependency of stepName is in completed.
func ValidateDependencies(completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Step: stepName, Missing: missing}
	}
	return nil
}

// Tracker records completed steps for one run.
type Tracker struct {
	completed map[string]bool
}

// NewTracker returns a Tracker with the given steps already marked complete.
func NewTracker(done ...string) *Tracker {
	t := &Tracker{completed: make(map[string]bool, len(Order))}
	for _, s := range done {
		t.completed[s] = true
	}
	return t
}

// Begin validates that stepName may run now.
func (t *Tracker) Begin(stepName string) error {
	return ValidateDependencies(t.completed, stepName)
}

// Done marks stepName complete.
func (t *Tracker) Done(stepName string) {
	t.completed[stepName] = true
}
