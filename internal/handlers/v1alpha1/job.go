package v1alpha1

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/fridadocs/docflow/api/v1alpha1"
	"github.com/fridadocs/docflow/internal/handlers/v1alpha1/mappers"
	"github.com/fridadocs/docflow/internal/handlers/validator"
	"github.com/fridadocs/docflow/internal/service"
	"github.com/fridadocs/docflow/pkg/requestid"
)

type ServiceHandler struct {
	jobSrv    *service.JobService
	validator *validator.Validator
}

func NewServiceHandler(jobSrv *service.JobService) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewSubmissionValidationRules()...)
	return &ServiceHandler{jobSrv: jobSrv, validator: v}
}

func (h *ServiceHandler) RegisterRoutes(router chi.Router) {
	router.Post("/api/v1alpha1/jobs", h.CreateJob)
	router.Get("/api/v1alpha1/jobs", h.ListJobs)
	router.Get("/api/v1alpha1/jobs/{id}", h.GetJob)
	router.Get("/health", h.Health)
}

type submissionForm struct {
	Filename    string `validate:"upload_filename"`
	ContentType string `validate:"content_type"`
}

func (h *ServiceHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	logger := zap.S().Named("job_handler")

	reader, err := r.MultipartReader()
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "request body must be multipart/form-data")
		return
	}

	var fileData []byte
	var form submissionForm
	for {
		part, err := reader.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			logger.Warnw("failed to read multipart form", "error", err)
			h.renderError(w, r, http.StatusBadRequest, "failed to read multipart form")
			return
		}

		switch part.FormName() {
		case "file":
			if form.Filename == "" {
				form.Filename = part.FileName()
			}
			if form.ContentType == "" {
				form.ContentType = part.Header.Get("Content-Type")
			}
			// One byte past the limit is enough for the size check to reject
			// the upload without buffering an unbounded body.
			fileData, err = io.ReadAll(io.LimitReader(part, h.jobSrv.MaxUploadBytes()+1))
			if err != nil {
				logger.Warnw("failed to read file part", "error", err)
				h.renderError(w, r, http.StatusBadRequest, "failed to read file")
				return
			}
		case "filename":
			value, err := io.ReadAll(part)
			if err == nil {
				form.Filename = string(value)
			}
		case "contentType":
			value, err := io.ReadAll(part)
			if err == nil {
				form.ContentType = string(value)
			}
		}
	}

	if len(fileData) == 0 {
		h.renderError(w, r, http.StatusBadRequest, "file is required")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid submission metadata")
		return
	}
	if form.Filename == "" {
		form.Filename = "upload"
	}

	job, err := h.jobSrv.Submit(r.Context(), service.Upload{
		Data:        fileData,
		Filename:    form.Filename,
		ContentType: form.ContentType,
	})
	if err != nil {
		switch err.(type) {
		case *service.ErrFileTooLarge, *service.ErrUnsupportedFormat:
			h.renderError(w, r, http.StatusBadRequest, err.Error())
		default:
			logger.Errorw("failed to process job", "error", err)
			h.renderError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	// Terminal jobs render as 200 whether they completed or failed: the
	// outcome lives in the job body.
	_ = render.Render(w, r, mappers.JobToApi(job))
}

func (h *ServiceHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := h.jobSrv.Get(r.Context(), id)
	if err != nil {
		switch err.(type) {
		case *service.ErrJobNotFound:
			h.renderError(w, r, http.StatusNotFound, err.Error())
		default:
			zap.S().Named("job_handler").Errorw("failed to get job", "job_id", id, "error", err)
			h.renderError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	_ = render.Render(w, r, mappers.JobToApi(job))
}

func (h *ServiceHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobSrv.List(r.Context())
	if err != nil {
		zap.S().Named("job_handler").Errorw("failed to list jobs", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = render.Render(w, r, mappers.JobListToApi(jobs))
}

func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *ServiceHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	_ = render.Render(w, r, api.Error{Message: message, RequestId: requestid.FromContextPtr(r.Context())})
}
