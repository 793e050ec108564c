package effect

import (
	"fmt"
	"strings"

	"gocausal/domain/core"
)

// Manifest is the truth source for replaying a run: everything that
// determines the output, fingerprinted.
type Manifest struct {
	RunID       core.RunID     `json:"run_id"`
	Seed        int64          `json:"seed"`
	Lessons     []string       `json:"lessons"`
	CodeVersion string         `json:"code_version"`
	Fingerprint core.Hash      `json:"fingerprint"`
	CreatedAt   core.Timestamp `json:"created_at"`
}

// NewManifest builds a manifest and computes its fingerprint. Two runs
// with the same seed, lesson list and code version fingerprint equally.
func NewManifest(runID core.RunID, seed int64, lessons []string, codeVersion string) *Manifest {
	fingerprint := core.FingerprintParts(
		fmt.Sprintf("seed=%d", seed),
		"lessons="+strings.Join(lessons, ","),
		"code="+codeVersion,
	)
	return &Manifest{
		RunID:       runID,
		Seed:        seed,
		Lessons:     append([]string(nil), lessons...),
		CodeVersion: codeVersion,
		Fingerprint: fingerprint,
		CreatedAt:   core.Now(),
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewValidationError("manifest", "run_id cannot be empty")
	}
	if len(m.Lessons) == 0 {
		return core.NewValidationError("manifest", "lessons cannot be empty")
	}
	if m.CodeVersion == "" {
		return core.NewValidationError("manifest", "code_version cannot be empty")
	}
	if m.Fingerprint.IsEmpty() {
		return core.NewValidationError("manifest", "fingerprint cannot be empty")
	}
	return nil
}

// ToArtifact converts the manifest for storage or transport.
func (m *Manifest) ToArtifact() core.Artifact {
	return core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactRunManifest,
		Payload:   m,
		CreatedAt: m.CreatedAt,
	}
}
