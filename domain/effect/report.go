package effect

import (
	"time"

	"gocausal/domain/core"
)

// Report is the narrated output of one lesson run.
type Report struct {
	LessonName string         `json:"lesson_name"`
	Title      string         `json:"title"`
	RunID      core.RunID     `json:"run_id"`
	Seed       int64          `json:"seed"`
	Narrative  []string       `json:"narrative"`
	Estimates  []Estimate     `json:"estimates"`
	Tables     []Table        `json:"tables"`
	StartedAt  core.Timestamp `json:"started_at"`
	Duration   time.Duration  `json:"duration"`
	Err        string         `json:"error,omitempty"`
}

// NewReport starts a report for a lesson execution.
func NewReport(lessonName, title string, runID core.RunID, seed int64) *Report {
	return &Report{
		LessonName: lessonName,
		Title:      title,
		RunID:      runID,
		Seed:       seed,
		StartedAt:  core.Now(),
	}
}

// Say appends a narrative paragraph.
func (r *Report) Say(paragraph string) {
	r.Narrative = append(r.Narrative, paragraph)
}

// AddEstimate validates and appends an estimate.
func (r *Report) AddEstimate(e Estimate) error {
	if err := e.Validate(); err != nil {
		return err
	}
	r.Estimates = append(r.Estimates, e)
	return nil
}

// AddTable validates and appends a table.
func (r *Report) AddTable(t Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.Tables = append(r.Tables, t)
	return nil
}

// Failed reports whether the lesson ended with an error.
func (r *Report) Failed() bool {
	return r.Err != ""
}

// Estimate returns the first estimate produced by the given method.
func (r *Report) Estimate(method Method) (Estimate, bool) {
	for _, e := range r.Estimates {
		if e.Method == method {
			return e, true
		}
	}
	return Estimate{}, false
}

// Validate checks a completed report: a successful lesson must carry at
// least one estimate and one table.
func (r *Report) Validate() error {
	if r.LessonName == "" {
		return core.NewValidationError("report", "lesson name cannot be empty")
	}
	if r.Failed() {
		return nil
	}
	if len(r.Estimates) == 0 {
		return core.NewValidationError("report", "successful lesson must produce an estimate")
	}
	if len(r.Tables) == 0 {
		return core.NewValidationError("report", "successful lesson must produce a table")
	}
	return nil
}

// ToArtifact converts the report for storage or transport.
func (r *Report) ToArtifact() core.Artifact {
	return core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactLessonReport,
		Payload:   r,
		CreatedAt: r.StartedAt,
	}
}
