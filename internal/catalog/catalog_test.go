package catalog

import (
	"errors"
	"testing"
)

func validSteps() []Step {
	return []Step{
		{Key: "color", Label: "Колір", Kind: KindChoice, Prompt: "Який колір?", Options: []string{"червоний", "синій"}},
		{Key: "notes", Label: "Нотатки", Kind: KindFreeText, Prompt: "Додаткові нотатки?"},
	}
}

func TestNewValidCatalog(t *testing.T) {
	c, err := New(validSteps())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 steps, got %d", c.Len())
	}
}

func TestNewRejectsDuplicateKeys(t *testing.T) {
	steps := validSteps()
	steps[1].Key = steps[0].Key
	_, err := New(steps)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestNewRejectsEmptyKey(t *testing.T) {
	steps := validSteps()
	steps[0].Key = ""
	_, err := New(steps)
	if !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
}

func TestNewRejectsChoiceWithoutOptions(t *testing.T) {
	steps := validSteps()
	steps[0].Options = nil
	_, err := New(steps)
	if !errors.Is(err, ErrMissingOptions) {
		t.Errorf("expected ErrMissingOptions, got %v", err)
	}
}

func TestNewRejectsFreeTextWithOptions(t *testing.T) {
	steps := validSteps()
	steps[1].Options = []string{"a"}
	_, err := New(steps)
	if !errors.Is(err, ErrSpuriousOptions) {
		t.Errorf("expected ErrSpuriousOptions, got %v", err)
	}
}

func TestAtOutOfRange(t *testing.T) {
	c, err := New(validSteps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.At(0); err != nil {
		t.Errorf("expected step at index 0, got error %v", err)
	}
	if _, err := c.At(2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for index 2, got %v", err)
	}
	if _, err := c.At(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for index -1, got %v", err)
	}
}

func TestIndexOf(t *testing.T) {
	c, err := New(validSteps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.IndexOf("notes"); got != 1 {
		t.Errorf("expected index 1 for notes, got %d", got)
	}
	if got := c.IndexOf("missing"); got != -1 {
		t.Errorf("expected -1 for unknown key, got %d", got)
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	if c.Len() == 0 {
		t.Fatal("default catalog is empty")
	}

	for i := 0; i < c.Len(); i++ {
		step, err := c.At(i)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if step.Prompt == "" {
			t.Errorf("step %s has empty prompt", step.Key)
		}
		if step.Label == "" {
			t.Errorf("step %s has empty label", step.Key)
		}
		if c.IndexOf(step.Key) != i {
			t.Errorf("step %s: IndexOf disagrees with position %d", step.Key, i)
		}
	}
}
