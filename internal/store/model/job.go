package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Stage is the position of a job in the conversion pipeline.
type Stage string

const (
	StageReceived   Stage = "received"
	StageStored     Stage = "stored"
	StageExtracted  Stage = "extracted"
	StageSummarized Stage = "summarized"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// stageRank orders the forward-only progression. Failed is reachable from
// any non-terminal stage and is not part of the ordering.
var stageRank = map[Stage]int{
	StageReceived:   0,
	StageStored:     1,
	StageExtracted:  2,
	StageSummarized: 3,
	StageCompleted:  4,
}

// Terminal reports whether no further transitions are permitted.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// CanTransitionTo reports whether moving from s to next preserves the
// forward-only ordering. Staying on the same stage is allowed so that
// non-stage fields can be updated in place.
func (s Stage) CanTransitionTo(next Stage) bool {
	if s.Terminal() {
		return false
	}
	if next == StageFailed {
		return true
	}
	cur, ok := stageRank[s]
	if !ok {
		return false
	}
	nxt, ok := stageRank[next]
	if !ok {
		return false
	}
	return nxt >= cur
}

// ErrorKind classifies job-level failures persisted with the job.
type ErrorKind string

const (
	ErrorKindExtractionFailed   ErrorKind = "ExtractionFailed"
	ErrorKindSummaryUnavailable ErrorKind = "SummaryUnavailable"
	ErrorKindStorageFailure     ErrorKind = "StorageFailure"
)

// Job is one document conversion request and its derived state.
type Job struct {
	ID           uuid.UUID `gorm:"primaryKey;"`
	Filename     string    `gorm:"not null"`
	MimeType     string
	SizeBytes    int64
	Stage        Stage `gorm:"not null;index"`
	Markdown     *string
	Summary      *string
	Pages        *int
	ErrorKind    *string
	ErrorMessage *string
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

type JobList []Job

func (j Job) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}

// SetError records a failure classification on the job.
func (j *Job) SetError(kind ErrorKind, message string) {
	k := string(kind)
	j.ErrorKind = &k
	j.ErrorMessage = &message
}
