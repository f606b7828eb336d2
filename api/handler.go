package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/format"
	"github.com/kbukum/podscribe/jobs"
	"github.com/kbukum/podscribe/pipeline"
	"github.com/kbukum/podscribe/server"
	"github.com/kbukum/podscribe/timeline"
)

// Form fields of POST /transcriptions.
const (
	FieldFile         = "file"
	FieldOutputFormat = "output_format"
	FieldWebhookURL   = "webhook_url"
)

// BasePath is the collection path for transcription jobs.
const BasePath = "/transcriptions"

// JobService runs transcription jobs. *pipeline.Service implements it.
type JobService interface {
	Submit(ctx context.Context, sub pipeline.Submission) (jobs.Job, error)
	Get(id string) (jobs.Job, error)
}

// SubmitResponse is the body of a 202 from POST /transcriptions.
type SubmitResponse struct {
	JobID     string      `json:"job_id"`
	Status    jobs.Status `json:"status"`
	StatusURL string      `json:"status_url"`
}

// JobResponse is the body of GET /transcriptions/:id. Transcript is a list
// of units for json and rendered text for txt and srt.
type JobResponse struct {
	JobID       string      `json:"job_id"`
	Status      jobs.Status `json:"status"`
	DurationSec float64     `json:"duration_sec,omitempty"`
	Transcript  any         `json:"transcript,omitempty"`
	Error       string      `json:"error,omitempty"`
	ErrorCode   string      `json:"error_code,omitempty"`
}

// Handler serves the transcription endpoints.
type Handler struct {
	jobs JobService
}

// NewHandler creates a Handler backed by svc.
func NewHandler(svc JobService) *Handler {
	return &Handler{jobs: svc}
}

// Register mounts the endpoints on r. mws run before both handlers, e.g.
// authentication and rate limiting.
func (h *Handler) Register(r gin.IRouter, mws ...gin.HandlerFunc) {
	g := r.Group(BasePath, mws...)
	g.POST("", h.Submit)
	g.GET("/:id", h.Get)
}

// Submit accepts a multipart upload and starts a job.
func (h *Handler) Submit(c *gin.Context) {
	fh, err := c.FormFile(FieldFile)
	if err != nil {
		server.RespondWithError(c, uploadError(err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		server.RespondWithError(c, errors.InputError(fh.Filename, err))
		return
	}
	defer f.Close()

	job, err := h.jobs.Submit(c.Request.Context(), pipeline.Submission{
		FileName:   fh.Filename,
		Body:       f,
		WebhookURL: c.PostForm(FieldWebhookURL),
		Format:     c.PostForm(FieldOutputFormat),
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	statusURL := BasePath + "/" + job.ID
	server.RespondAccepted(c, statusURL, SubmitResponse{
		JobID:     job.ID,
		Status:    job.Status,
		StatusURL: statusURL,
	})
}

// Get reports a job. The format query parameter overrides the format chosen
// at submission.
func (h *Handler) Get(c *gin.Context) {
	job, err := h.jobs.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	requested := c.Query("format")
	if requested == "" {
		requested = job.Format
	}
	f, err := format.Parse(requested)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	resp, err := jobResponse(job, f)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, resp)
}

func jobResponse(job jobs.Job, f format.Format) (JobResponse, error) {
	resp := JobResponse{JobID: job.ID, Status: job.Status}
	switch job.Status {
	case jobs.StatusCompleted:
		resp.DurationSec = job.DurationSec
		if f == format.JSON {
			units := job.Transcript
			if units == nil {
				units = []timeline.Unit{}
			}
			resp.Transcript = units
			break
		}
		text, err := format.Render(f, job.Transcript)
		if err != nil {
			return JobResponse{}, err
		}
		resp.Transcript = text
	case jobs.StatusFailed:
		resp.Error = job.Error
		resp.ErrorCode = job.ErrorCode
	}
	return resp, nil
}

// uploadError maps multipart parsing failures to client errors.
func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case stderrors.As(err, &maxErr):
		return errors.New(errors.ErrCodeInvalidInput, "The upload exceeds the maximum request size.", http.StatusRequestEntityTooLarge).
			WithDetail("limit_bytes", maxErr.Limit)
	case stderrors.Is(err, http.ErrMissingFile):
		return errors.MissingField(FieldFile)
	default:
		return errors.Validation("The request must be multipart/form-data with a file field.").WithCause(err)
	}
}
