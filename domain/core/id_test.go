package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	// Generate many IDs
	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDString tests ID string conversion
func TestIDString(t *testing.T) {
	id := ID("test-123")
	if id.String() != "test-123" {
		t.Errorf("Expected String() to return 'test-123', got '%s'", id.String())
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	emptyID := ID("")
	if !emptyID.IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}

	nonEmptyID := ID("not-empty")
	if nonEmptyID.IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseLessonID tests lesson ID parsing
func TestParseLessonID(t *testing.T) {
	tests := []struct {
		input    string
		expected LessonID
		hasError bool
	}{
		{"matching", LessonID("matching"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseLessonID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{"run-123", RunID("run-123"), false},
		{"", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestDeriveSeedStability tests that seed derivation is stable and stream-separated
func TestDeriveSeedStability(t *testing.T) {
	a := DeriveSeed(42, "matching")
	b := DeriveSeed(42, "matching")
	if a != b {
		t.Errorf("Expected identical seeds for identical inputs, got %d and %d", a, b)
	}
	if a < 0 {
		t.Errorf("Expected non-negative derived seed, got %d", a)
	}

	c := DeriveSeed(42, "imputation")
	if a == c {
		t.Error("Expected different streams to derive different seeds")
	}

	d := DeriveSeed(43, "matching")
	if a == d {
		t.Error("Expected different base seeds to derive different seeds")
	}
}

// TestErrorHelpers tests sentinel error classification
func TestErrorHelpers(t *testing.T) {
	if !IsInvalidInput(NewValidationError("treatment", "non-binary value")) {
		t.Error("Expected validation error to classify as invalid input")
	}
	if !IsInvalidInput(NewInvalidInputError("length mismatch: %d vs %d", 3, 4)) {
		t.Error("Expected constructed invalid-input error to classify as invalid input")
	}
	if !IsNotFoundError(NewNotFoundError("lesson", "unknown")) {
		t.Error("Expected not-found error to classify as not found")
	}
	if IsNoCandidate(ErrInvalidInput) {
		t.Error("Expected invalid input to not classify as no-candidate")
	}
	if !IsNoCandidate(ErrNoCandidate) {
		t.Error("Expected no-candidate sentinel to classify as no-candidate")
	}
}
