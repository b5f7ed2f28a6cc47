package main

import "testing"

func TestClassifyDefaults(t *testing.T) {
	classifier := NewColorClassifier(nil)

	tests := []struct {
		name    string
		classes []string
		want    ColorBand
	}{
		{"green with noise", []string{"text-green", "bold"}, ColorGreen},
		{"amber suffix", []string{"amber-cell"}, ColorAmber},
		{"orange counts as amber", []string{"bg-orange"}, ColorAmber},
		{"yellow counts as amber", []string{"YELLOW"}, ColorAmber},
		{"red", []string{"cell-red"}, ColorRed},
		{"no match", []string{"foo"}, ColorNone},
		{"empty", nil, ColorNone},
		{"case insensitive", []string{"Text-GREEN"}, ColorGreen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.Classify(tt.classes); got != tt.want {
				t.Fatalf("Classify(%v) = %q, want %q", tt.classes, got, tt.want)
			}
		})
	}
}

func TestClassifyCategoryPrecedence(t *testing.T) {
	classifier := NewColorClassifier(nil)

	// Green beats red beats amber, regardless of class order on the cell.
	if got := classifier.Classify([]string{"cell-red", "cell-green"}); got != ColorGreen {
		t.Fatalf("green must win over red, got %q", got)
	}
	if got := classifier.Classify([]string{"cell-amber", "cell-red"}); got != ColorRed {
		t.Fatalf("red must win over amber, got %q", got)
	}
}

func TestClassifyInjectedMapping(t *testing.T) {
	classifier := NewColorClassifier(map[string][]string{
		"green": {"ok-band"},
		"amber": {"warn-band"},
	})

	if got := classifier.Classify([]string{"ok-band"}); got != ColorGreen {
		t.Fatalf("expected green from injected mapping, got %q", got)
	}
	if got := classifier.Classify([]string{"warn-band"}); got != ColorAmber {
		t.Fatalf("expected amber from injected mapping, got %q", got)
	}
	// Overriding green drops the default substring.
	if got := classifier.Classify([]string{"text-green"}); got != ColorNone {
		t.Fatalf("expected none after override, got %q", got)
	}
	// Red keeps its default when not overridden.
	if got := classifier.Classify([]string{"cell-red"}); got != ColorRed {
		t.Fatalf("expected default red to survive, got %q", got)
	}
}
