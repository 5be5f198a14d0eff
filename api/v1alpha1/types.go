package v1alpha1

import (
	"net/http"
	"time"
)

// Job is the wire representation of a conversion job.
type Job struct {
	Id        string    `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mimeType,omitempty"`
	SizeBytes int64     `json:"sizeBytes"`
	Stage     string    `json:"stage"`
	Markdown  *string   `json:"markdown,omitempty"`
	Summary   *string   `json:"summary,omitempty"`
	Pages     *int      `json:"pages,omitempty"`
	Error     *JobError `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobError communicates what failed without implying the whole job failed:
// a completed job may carry a SummaryUnavailable annotation.
type JobError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// JobSummary is the list-view projection of a job.
type JobSummary struct {
	Id        string    `json:"id"`
	Filename  string    `json:"filename"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"createdAt"`
}

type JobList struct {
	Jobs []JobSummary `json:"jobs"`
}

// Error is the generic error reply body.
type Error struct {
	Message   string  `json:"message"`
	RequestId *string `json:"requestId,omitempty"`
}

func (j Job) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (l JobList) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (e Error) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
