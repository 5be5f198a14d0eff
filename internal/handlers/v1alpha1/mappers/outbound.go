package mappers

import (
	api "github.com/fridadocs/docflow/api/v1alpha1"
	"github.com/fridadocs/docflow/internal/store/model"
)

func JobToApi(job *model.Job) api.Job {
	out := api.Job{
		Id:        job.ID.String(),
		Filename:  job.Filename,
		MimeType:  job.MimeType,
		SizeBytes: job.SizeBytes,
		Stage:     string(job.Stage),
		Markdown:  job.Markdown,
		Summary:   job.Summary,
		Pages:     job.Pages,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.ErrorKind != nil {
		out.Error = &api.JobError{Kind: *job.ErrorKind}
		if job.ErrorMessage != nil {
			out.Error.Message = *job.ErrorMessage
		}
	}
	return out
}

func JobListToApi(jobs model.JobList) api.JobList {
	out := api.JobList{Jobs: make([]api.JobSummary, 0, len(jobs))}
	for _, job := range jobs {
		out.Jobs = append(out.Jobs, api.JobSummary{
			Id:        job.ID.String(),
			Filename:  job.Filename,
			Stage:     string(job.Stage),
			CreatedAt: job.CreatedAt,
		})
	}
	return out
}
