package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID      ID
	LessonID   ID
	ArtifactID ID
)

// String conversions for domain IDs
func (id RunID) String() string      { return ID(id).String() }
func (id LessonID) String() string   { return ID(id).String() }
func (id ArtifactID) String() string { return ID(id).String() }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseLessonID parses a string into LessonID
func ParseLessonID(s string) (LessonID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("lesson ID cannot be empty")
	}
	return LessonID(s), nil
}

// Artifact represents any output of the system
type Artifact struct {
	ID        ID           `json:"id"`
	Kind      ArtifactKind `json:"kind"`
	Payload   interface{}  `json:"payload"`
	CreatedAt Timestamp    `json:"created_at"`
}

// ArtifactKind defines types of artifacts
type ArtifactKind string

const (
	// ArtifactRunManifest captures the replay metadata for a run (seed, lessons, fingerprint).
	ArtifactRunManifest ArtifactKind = "run_manifest"
	// ArtifactLessonReport is the narrated output of a single lesson.
	ArtifactLessonReport ArtifactKind = "lesson_report"
	// ArtifactMatchResult records the per-unit output of the greedy matcher.
	ArtifactMatchResult ArtifactKind = "match_result"
)
