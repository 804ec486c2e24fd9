package domain

import (
	"strings"
	"time"
)

// DocumentKind classifies the document a job was started on.
type DocumentKind string

const (
	DocumentKindPart     DocumentKind = "part"
	DocumentKindAssembly DocumentKind = "assembly"
	DocumentKindOther    DocumentKind = "other"
)

// ParseDocumentKind maps free-form kind names onto a DocumentKind. Unknown
// values are DocumentKindOther.
func ParseDocumentKind(value string) DocumentKind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "part", "ipt":
		return DocumentKindPart
	case "assembly", "iam":
		return DocumentKindAssembly
	default:
		return DocumentKindOther
	}
}

// JobStatus is the overall result derived from a finalized report.
type JobStatus string

const (
	JobStatusSkipped            JobStatus = "skipped"
	JobStatusSucceeded          JobStatus = "succeeded"
	JobStatusPartiallySucceeded JobStatus = "partially_succeeded"
	JobStatusFailed             JobStatus = "failed"
)

// JobReport is the terminal state of one batch parameter update job.
type JobReport struct {
	JobID          string             `json:"job_id"`
	Document       string             `json:"document,omitempty"`
	Kind           DocumentKind       `json:"kind"`
	Outcomes       []ParameterOutcome `json:"outcomes"`
	ArtifactPath   string             `json:"artifact_path,omitempty"`
	ArtifactSHA256 string             `json:"artifact_sha256,omitempty"`
	ArtifactSize   int64              `json:"artifact_size,omitempty"`
	FatalError     string             `json:"fatal_error,omitempty"`
	StartedAt      time.Time          `json:"started_at"`
	FinishedAt     time.Time          `json:"finished_at"`
}

func (r JobReport) Status() JobStatus {
	if r.FatalError != "" {
		return JobStatusFailed
	}
	if r.Kind != DocumentKindAssembly {
		return JobStatusSkipped
	}
	for _, outcome := range r.Outcomes {
		if !outcome.Applied {
			return JobStatusPartiallySucceeded
		}
	}
	return JobStatusSucceeded
}

// FailedCount returns the number of parameters that were not applied.
func (r JobReport) FailedCount() int {
	n := 0
	for _, outcome := range r.Outcomes {
		if !outcome.Applied {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so a finalized report cannot be mutated through
// shared slices.
func (r JobReport) Clone() JobReport {
	out := r
	if r.Outcomes != nil {
		out.Outcomes = make([]ParameterOutcome, len(r.Outcomes))
		copy(out.Outcomes, r.Outcomes)
	}
	return out
}
