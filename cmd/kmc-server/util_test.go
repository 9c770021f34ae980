package main

import "testing"

func TestAtoiOrDefault(t *testing.T) {
	if got := atoiOrDefault("42", 0); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := atoiOrDefault("not-a-number", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
}

func TestAtofOrDefault(t *testing.T) {
	if got := atofOrDefault("3.5", 0); got != 3.5 {
		t.Errorf("expected 3.5, got %v", got)
	}
	if got := atofOrDefault("not-a-number", 1.5); got != 1.5 {
		t.Errorf("expected fallback 1.5, got %v", got)
	}
}
