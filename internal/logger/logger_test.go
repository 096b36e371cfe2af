package logger

import "testing"

func TestNew_FallsBackToInfo(t *testing.T) {
	log, err := New("development", "not-a-level")
	if err != nil {
		t.Fatalf("expected logger, got %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Fatalf("debug should be disabled at the info fallback")
	}
}

func TestNew_Production(t *testing.T) {
	log, err := New("production", "warn")
	if err != nil {
		t.Fatalf("expected logger, got %v", err)
	}
	if log.Core().Enabled(0) {
		t.Fatalf("info should be disabled at warn level")
	}
}
