package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"

	"github.com/fridadocs/docflow/internal/extractor"
	"github.com/fridadocs/docflow/internal/storage"
	"github.com/fridadocs/docflow/internal/store"
	"github.com/fridadocs/docflow/internal/store/model"
	"github.com/fridadocs/docflow/internal/summarizer"
	"github.com/fridadocs/docflow/pkg/metrics"
)

// Upload is one submitted file with its declared metadata.
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// PipelineConfig bounds the pipeline: admission limits, per-adapter
// timeouts, and the retention window for finished jobs.
type PipelineConfig struct {
	MaxUploadBytes    int64
	SupportedFormats  []string
	ExtractionTimeout time.Duration
	SummaryTimeout    time.Duration
	JobTTL            time.Duration
	EvictionInterval  time.Duration
}

// JobService drives a job through the conversion pipeline:
// validate, store, extract, summarize, finalize. Jobs always end in a
// terminal stage and artifact storage is released on every exit path.
type JobService struct {
	store      store.Store
	artifacts  *storage.Store
	extractors *extractor.Registry
	summarizer summarizer.Summarizer
	cfg        PipelineConfig
	supported  map[string]struct{}
	log        *zap.SugaredLogger
}

func NewJobService(
	st store.Store,
	artifacts *storage.Store,
	extractors *extractor.Registry,
	sum summarizer.Summarizer,
	cfg PipelineConfig,
) *JobService {
	supported := make(map[string]struct{}, len(cfg.SupportedFormats))
	for _, f := range cfg.SupportedFormats {
		supported[f] = struct{}{}
	}
	return &JobService{
		store:      st,
		artifacts:  artifacts,
		extractors: extractors,
		summarizer: sum,
		cfg:        cfg,
		supported:  supported,
		log:        zap.S().Named("service"),
	}
}

// MaxUploadBytes returns the admission size limit so the transport layer can
// bound how much of a request body it buffers.
func (s *JobService) MaxUploadBytes() int64 {
	return s.cfg.MaxUploadBytes
}

// Submit admits an upload and runs it through the pipeline, returning the
// finalized job. Validation failures return a typed error and never create
// a job; once a job exists, adapter failures are recorded in job state and
// the job itself is returned.
func (s *JobService) Submit(ctx context.Context, upload Upload) (*model.Job, error) {
	if upload.ContentType == "" && upload.Filename == "" {
		return nil, NewErrUnsupportedFormat(upload.ContentType, upload.Filename)
	}
	if int64(len(upload.Data)) > s.cfg.MaxUploadBytes {
		return nil, NewErrFileTooLarge(int64(len(upload.Data)), s.cfg.MaxUploadBytes)
	}

	format, ok := extractor.Format(upload.ContentType, upload.Filename)
	if !ok {
		return nil, NewErrUnsupportedFormat(upload.ContentType, upload.Filename)
	}
	if _, ok := s.supported[format]; !ok {
		return nil, NewErrUnsupportedFormat(upload.ContentType, upload.Filename)
	}
	ext, ok := s.extractors.For(format)
	if !ok {
		return nil, NewErrUnsupportedFormat(upload.ContentType, upload.Filename)
	}

	job := &model.Job{
		ID:        uuid.New(),
		Filename:  upload.Filename,
		MimeType:  upload.ContentType,
		SizeBytes: int64(len(upload.Data)),
		Stage:     model.StageReceived,
	}
	if err := s.store.Job().Insert(ctx, job); err != nil {
		return nil, err
	}

	start := time.Now()
	outcome := "completed"
	defer func() {
		metrics.IncreaseJobsTotalMetric(outcome, format)
		metrics.ObserveJobDurationMetric(outcome, time.Since(start).Seconds())
	}()

	// Finalization must run even when the client goes away mid-request:
	// the job still has to reach a terminal stage and the artifact must be
	// cleaned up.
	cleanupCtx := context.WithoutCancel(ctx)

	artifact, err := s.artifacts.Acquire(ctx, upload.Data, upload.Filename, upload.ContentType)
	if err != nil {
		// Storage faults are infrastructure errors, not document errors: the
		// job is failed for the record but the error itself goes back to the
		// transport layer.
		outcome = "failed"
		if _, ferr := s.fail(cleanupCtx, job.ID, model.ErrorKindStorageFailure, err); ferr != nil {
			s.log.Errorw("failed to record storage failure", "job_id", job.ID, "error", ferr)
		}
		return nil, err
	}
	defer func() {
		_ = s.artifacts.Release(cleanupCtx, artifact)
	}()

	job, err = s.advance(cleanupCtx, job.ID, func(j *model.Job) error {
		j.Stage = model.StageStored
		return nil
	})
	if err != nil {
		outcome = "failed"
		return nil, err
	}

	extractCtx, cancelExtract := context.WithTimeout(ctx, s.cfg.ExtractionTimeout)
	rc, err := artifact.Open(extractCtx)
	if err != nil {
		cancelExtract()
		// An unreadable artifact is an infrastructure fault, not a fault of
		// the document, so it is not classified as an extraction failure.
		outcome = "failed"
		if _, ferr := s.fail(cleanupCtx, job.ID, model.ErrorKindStorageFailure, err); ferr != nil {
			s.log.Errorw("failed to record storage failure", "job_id", job.ID, "error", ferr)
		}
		return nil, err
	}

	result, err := ext.Extract(extractCtx, rc)
	rc.Close()
	cancelExtract()
	if err != nil {
		s.log.Warnw("extraction failed", "job_id", job.ID, "format", format, "error", err)
		outcome = "failed"
		return s.fail(cleanupCtx, job.ID, model.ErrorKindExtractionFailed, err)
	}

	job, err = s.advance(cleanupCtx, job.ID, func(j *model.Job) error {
		j.Stage = model.StageExtracted
		j.Markdown = &result.Markdown
		j.Pages = &result.Pages
		return nil
	})
	if err != nil {
		outcome = "failed"
		return nil, err
	}

	summaryCtx, cancel := context.WithTimeout(ctx, s.cfg.SummaryTimeout)
	summary, sumErr := s.summarizer.Summarize(summaryCtx, result.Markdown, summarizer.Metadata{
		Filename: upload.Filename,
		MimeType: upload.ContentType,
		Pages:    result.Pages,
	})
	cancel()

	if sumErr != nil {
		// A conversion without a summary is still a successful conversion.
		s.log.Warnw("summary unavailable", "job_id", job.ID, "error", sumErr)
		metrics.IncreaseSummaryFallbacksMetric()
		outcome = "degraded"
		return s.advance(cleanupCtx, job.ID, func(j *model.Job) error {
			j.Stage = model.StageCompleted
			j.SetError(model.ErrorKindSummaryUnavailable, sumErr.Error())
			return nil
		})
	}

	job, err = s.advance(cleanupCtx, job.ID, func(j *model.Job) error {
		j.Stage = model.StageSummarized
		j.Summary = &summary
		return nil
	})
	if err != nil {
		outcome = "failed"
		return nil, err
	}

	return s.advance(cleanupCtx, job.ID, func(j *model.Job) error {
		j.Stage = model.StageCompleted
		return nil
	})
}

// Get returns the job for id or ErrJobNotFound.
func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(id)
		}
		return nil, err
	}
	return job, nil
}

// List returns all jobs, most recent first.
func (s *JobService) List(ctx context.Context) (model.JobList, error) {
	return s.store.Job().List(ctx, store.NewJobQueryOptions().WithSortOrder(store.SortByCreatedTimeDesc))
}

// RunEviction deletes jobs older than the configured TTL until ctx is done.
// The interval is jittered so replicas sharing a database do not sweep in
// lockstep.
func (s *JobService) RunEviction(ctx context.Context) {
	if s.cfg.JobTTL <= 0 {
		return
	}
	ticker := jitterbug.New(s.cfg.EvictionInterval, &jitterbug.Norm{Stdev: 30 * time.Second})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.cfg.JobTTL)
			removed, err := s.store.Job().DeleteExpired(ctx, cutoff)
			if err != nil {
				s.log.Errorw("job eviction failed", "error", err)
				continue
			}
			if removed > 0 {
				s.log.Infow("evicted expired jobs", "count", removed, "cutoff", cutoff)
			}
		}
	}
}

// advance applies a stage mutation through the store. A rejected transition
// here is a pipeline bug, so it is logged loudly before being returned.
func (s *JobService) advance(ctx context.Context, id uuid.UUID, mutate func(*model.Job) error) (*model.Job, error) {
	job, err := s.store.Job().Update(ctx, id, mutate)
	if err != nil {
		if errors.Is(err, store.ErrInvalidTransition) {
			s.log.Errorw("invalid stage transition", "job_id", id, "error", err)
		}
		return nil, err
	}
	return job, nil
}

// fail moves the job to the failed stage with the given classification and
// returns the failed job. The original error stays in the job record, not
// in the return value: once a job exists, pipeline errors are state.
func (s *JobService) fail(ctx context.Context, id uuid.UUID, kind model.ErrorKind, cause error) (*model.Job, error) {
	job, err := s.advance(ctx, id, func(j *model.Job) error {
		j.Stage = model.StageFailed
		j.SetError(kind, cause.Error())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}
