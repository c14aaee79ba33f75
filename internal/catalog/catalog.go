// Package catalog defines the static, ordered question sequence the wizard
// walks a user through.
//
// The catalog is loaded once at process start and treated as read-only for
// the process lifetime; adding, removing or reordering steps is a
// deployment-time change.
package catalog

import (
	"errors"
	"fmt"
)

// StepKind distinguishes free-text questions from fixed-choice questions.
type StepKind string

const (
	// KindFreeText asks for a typed answer and offers a skip affordance.
	KindFreeText StepKind = "free_text"
	// KindChoice offers a fixed set of options as buttons.
	KindChoice StepKind = "choice"
)

// Error variables for catalog lookups and validation.
var (
	ErrOutOfRange      = errors.New("step index out of range")
	ErrDuplicateKey    = errors.New("duplicate step key")
	ErrEmptyKey        = errors.New("step key cannot be empty")
	ErrMissingOptions  = errors.New("choice step requires at least one option")
	ErrSpuriousOptions = errors.New("free-text step must not define options")
)

// Step is one immutable question definition. Options is present iff
// Kind == KindChoice. Label is the short human-readable name used in the
// answer summary.
type Step struct {
	Key     string
	Label   string
	Kind    StepKind
	Prompt  string
	Options []string
}

// Catalog is an ordered, validated sequence of steps. Catalog order defines
// the only valid traversal order.
type Catalog struct {
	steps []Step
	byKey map[string]int
}

// New builds a catalog from the given steps, validating that keys are unique
// and non-empty and that options are present exactly for choice steps.
func New(steps []Step) (*Catalog, error) {
	byKey := make(map[string]int, len(steps))
	for i, s := range steps {
		if s.Key == "" {
			return nil, fmt.Errorf("step %d: %w", i, ErrEmptyKey)
		}
		if _, exists := byKey[s.Key]; exists {
			return nil, fmt.Errorf("step %d (%s): %w", i, s.Key, ErrDuplicateKey)
		}
		switch s.Kind {
		case KindChoice:
			if len(s.Options) == 0 {
				return nil, fmt.Errorf("step %d (%s): %w", i, s.Key, ErrMissingOptions)
			}
		case KindFreeText:
			if len(s.Options) != 0 {
				return nil, fmt.Errorf("step %d (%s): %w", i, s.Key, ErrSpuriousOptions)
			}
		default:
			return nil, fmt.Errorf("step %d (%s): unknown step kind %q", i, s.Key, s.Kind)
		}
		byKey[s.Key] = i
	}
	return &Catalog{steps: steps, byKey: byKey}, nil
}

// Len returns the number of steps in the catalog.
func (c *Catalog) Len() int {
	return len(c.steps)
}

// At returns the step at the given index, or ErrOutOfRange when the index is
// outside the catalog.
func (c *Catalog) At(index int) (Step, error) {
	if index < 0 || index >= len(c.steps) {
		return Step{}, fmt.Errorf("index %d of %d: %w", index, len(c.steps), ErrOutOfRange)
	}
	return c.steps[index], nil
}

// IndexOf returns the position of the step with the given key, or -1 when the
// key is not part of the catalog.
func (c *Catalog) IndexOf(key string) int {
	if i, ok := c.byKey[key]; ok {
		return i
	}
	return -1
}

// Steps returns a copy of the ordered step definitions, mainly for summaries.
func (c *Catalog) Steps() []Step {
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}
