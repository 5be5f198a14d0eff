package v1alpha1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	api "github.com/fridadocs/docflow/api/v1alpha1"
	"github.com/fridadocs/docflow/internal/config"
	"github.com/fridadocs/docflow/internal/extractor"
	handlers "github.com/fridadocs/docflow/internal/handlers/v1alpha1"
	"github.com/fridadocs/docflow/internal/service"
	"github.com/fridadocs/docflow/internal/storage"
	st "github.com/fridadocs/docflow/internal/store"
	"github.com/fridadocs/docflow/internal/summarizer"
)

type staticSummarizer struct {
	summary string
	err     error
}

func (s *staticSummarizer) Summarize(ctx context.Context, markdown string, meta summarizer.Metadata) (string, error) {
	return s.summary, s.err
}

type brokenExtractor struct{}

func (brokenExtractor) Extract(ctx context.Context, r io.Reader) (extractor.Result, error) {
	return extractor.Result{}, errors.New("corrupt document")
}

func newTestRouter(t *testing.T, sum summarizer.Summarizer, registry *extractor.Registry) *chi.Mux {
	t.Helper()

	db, err := st.InitDB(config.NewDefault())
	require.NoError(t, err)

	store := st.NewStore(db)
	require.NoError(t, store.InitialMigration())
	t.Cleanup(func() { _ = store.Close() })

	backend, err := storage.NewLocalBackend(t.TempDir())
	require.NoError(t, err)

	jobSrv := service.NewJobService(store, storage.NewStore(backend), registry, sum, service.PipelineConfig{
		MaxUploadBytes:    1024,
		SupportedFormats:  []string{"pdf", "txt", "md", "html", "csv", "xlsx"},
		ExtractionTimeout: 5 * time.Second,
		SummaryTimeout:    5 * time.Second,
		JobTTL:            24 * time.Hour,
		EvictionInterval:  time.Hour,
	})

	router := chi.NewRouter()
	handlers.NewServiceHandler(jobSrv).RegisterRoutes(router)
	return router
}

func multipartUpload(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	if contentType != "" {
		require.NoError(t, writer.WriteField("contentType", contentType))
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestCreateJobCompleted(t *testing.T) {
	router := newTestRouter(t, &staticSummarizer{summary: "a short summary"}, extractor.NewRegistry())

	body, contentType := multipartUpload(t, "report.txt", "text/plain", []byte("quarterly revenue grew"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var job api.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	require.Equal(t, "completed", job.Stage)
	require.Equal(t, "report.txt", job.Filename)
	require.NotNil(t, job.Markdown)
	require.Contains(t, *job.Markdown, "quarterly revenue")
	require.NotNil(t, job.Summary)
	require.Equal(t, "a short summary", *job.Summary)
	require.Nil(t, job.Error)
}

func TestCreateJobSummaryUnavailable(t *testing.T) {
	router := newTestRouter(t, summarizer.NewDisabled(), extractor.NewRegistry())

	body, contentType := multipartUpload(t, "report.txt", "text/plain", []byte("some text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var job api.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	require.Equal(t, "completed", job.Stage)
	require.NotNil(t, job.Markdown)
	require.Nil(t, job.Summary)
	require.NotNil(t, job.Error)
	require.Equal(t, "SummaryUnavailable", job.Error.Kind)
}

func TestCreateJobExtractionFailureReturnsFailedJob(t *testing.T) {
	registry := extractor.NewRegistry()
	registry.Register("txt", brokenExtractor{})
	router := newTestRouter(t, &staticSummarizer{summary: "unused"}, registry)

	body, contentType := multipartUpload(t, "report.txt", "text/plain", []byte("some text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Adapter failures are job state, not transport errors.
	require.Equal(t, http.StatusOK, rec.Code)

	var job api.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	require.Equal(t, "failed", job.Stage)
	require.Nil(t, job.Markdown)
	require.NotNil(t, job.Error)
	require.Equal(t, "ExtractionFailed", job.Error.Kind)
}

func TestCreateJobTooLarge(t *testing.T) {
	router := newTestRouter(t, &staticSummarizer{summary: "unused"}, extractor.NewRegistry())

	body, contentType := multipartUpload(t, "big.txt", "text/plain", make([]byte, 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJobUnsupportedFormat(t *testing.T) {
	router := newTestRouter(t, &staticSummarizer{summary: "unused"}, extractor.NewRegistry())

	body, contentType := multipartUpload(t, "pixel.gif", "image/gif", []byte("GIF89a"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJobMissingFile(t *testing.T) {
	router := newTestRouter(t, &staticSummarizer{summary: "unused"}, extractor.NewRegistry())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("filename", "orphan.txt"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/jobs", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJobRejectsPathTraversalFilename(t *testing.T) {
	router := newTestRouter(t, &staticSummarizer{summary: "unused"}, extractor.NewRegistry())

	// The multipart file part strips directory components, so the override
	// field is the only way a hostile name reaches the validator.
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "report.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("filename", "../../etc/passwd.txt"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/jobs", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJob(t *testing.T) {
	router := newTestRouter(t, &staticSummarizer{summary: "ok"}, extractor.NewRegistry())

	body, contentType := multipartUpload(t, "report.txt", "text/plain", []byte("text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var created api.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req = httptest.NewRequest(http.MethodGet, "/api/v1alpha1/jobs/"+created.Id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got api.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, created.Id, got.Id)
	require.Equal(t, "completed", got.Stage)
}

func TestGetJobNotFound(t *testing.T) {
	router := newTestRouter(t, &staticSummarizer{summary: "ok"}, extractor.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/jobs/6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetJobInvalidId(t *testing.T) {
	router := newTestRouter(t, &staticSummarizer{summary: "ok"}, extractor.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/jobs/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListJobs(t *testing.T) {
	router := newTestRouter(t, &staticSummarizer{summary: "ok"}, extractor.NewRegistry())

	for i := 0; i < 2; i++ {
		body, contentType := multipartUpload(t, "report.txt", "text/plain", []byte("text"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/jobs", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/jobs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var list api.JobList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Jobs, 2)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, &staticSummarizer{summary: "ok"}, extractor.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
