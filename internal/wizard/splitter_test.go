package wizard

import (
	"reflect"
	"testing"
)

func TestSplitVariantsTwoMarkers(t *testing.T) {
	input := "## Варіант 1\nA\n## Варіант 2\nB"
	got := SplitVariants(input)
	want := []string{"A", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSplitVariantsNoMarkers(t *testing.T) {
	input := "  Просто один текст без заголовків.\n"
	got := SplitVariants(input)
	want := []string{"Просто один текст без заголовків."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSplitVariantsBoldMarkers(t *testing.T) {
	input := "**Варіант 1:**\nПерший текст 🏠\n\n**Варіант 2:**\nДругий текст"
	got := SplitVariants(input)
	want := []string{"Перший текст 🏠", "Другий текст"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSplitVariantsDropsEmptySegments(t *testing.T) {
	input := "## Варіант 1\n\n## Варіант 2\nтільки другий"
	got := SplitVariants(input)
	want := []string{"тільки другий"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSplitVariantsPreservesModelOrder(t *testing.T) {
	input := "## Варіант 1\nссс\n## Варіант 2\nааа\n## Варіант 3\nббб"
	got := SplitVariants(input)
	want := []string{"ссс", "ааа", "ббб"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected model order preserved %v, got %v", want, got)
	}
}

func TestSplitVariantsLowercaseMarker(t *testing.T) {
	input := "варіант 1\nперший\nваріант 2\nдругий"
	got := SplitVariants(input)
	want := []string{"перший", "другий"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
