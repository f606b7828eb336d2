package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/format"
	"github.com/kbukum/podscribe/jobs"
	"github.com/kbukum/podscribe/pipeline"
	"github.com/kbukum/podscribe/timeline"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeJobs struct {
	submitted []pipeline.Submission
	body      string
	submitErr error
	jobs      map[string]jobs.Job
}

func (f *fakeJobs) Submit(_ context.Context, sub pipeline.Submission) (jobs.Job, error) {
	if f.submitErr != nil {
		return jobs.Job{}, f.submitErr
	}
	data, _ := io.ReadAll(sub.Body)
	f.body = string(data)
	f.submitted = append(f.submitted, sub)
	return jobs.Job{ID: "job-1", Status: jobs.StatusProcessing}, nil
}

func (f *fakeJobs) Get(id string) (jobs.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return jobs.Job{}, errors.NotFound("job", id)
	}
	return job, nil
}

func newRouter(svc JobService) *gin.Engine {
	r := gin.New()
	NewHandler(svc).Register(r)
	return r
}

func multipartRequest(t *testing.T, fields map[string]string, file string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if file != "" {
		part, err := w.CreateFormFile(FieldFile, "episode.mp3")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write([]byte(file))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, BasePath, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) errors.ErrorCode {
	t.Helper()
	var resp errors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body %q: %v", rr.Body.String(), err)
	}
	return resp.Error.Code
}

func TestSubmit(t *testing.T) {
	svc := &fakeJobs{}
	rr := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rr, multipartRequest(t, map[string]string{
		FieldOutputFormat: "srt",
		FieldWebhookURL:   "https://hooks.example.com/done",
	}, "RIFF"))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp SubmitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := SubmitResponse{JobID: "job-1", Status: jobs.StatusProcessing, StatusURL: "/transcriptions/job-1"}
	if resp != want {
		t.Errorf("response = %+v, want %+v", resp, want)
	}
	if loc := rr.Header().Get("Location"); loc != want.StatusURL {
		t.Errorf("Location = %q", loc)
	}

	if len(svc.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(svc.submitted))
	}
	sub := svc.submitted[0]
	if sub.FileName != "episode.mp3" || sub.Format != "srt" || sub.WebhookURL != "https://hooks.example.com/done" || svc.body != "RIFF" {
		t.Errorf("unexpected submission: %+v body=%q", sub, svc.body)
	}
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		svcErr   error
		wantCode int
		wantErr  errors.ErrorCode
	}{
		{
			name:     "missing file",
			req:      func(t *testing.T) *http.Request { return multipartRequest(t, map[string]string{"x": "y"}, "") },
			wantCode: http.StatusBadRequest,
			wantErr:  errors.ErrCodeMissingField,
		},
		{
			name: "not multipart",
			req: func(*testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, BasePath, strings.NewReader(`{"file":"x"}`))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			wantCode: http.StatusBadRequest,
			wantErr:  errors.ErrCodeInvalidInput,
		},
		{
			name:     "service rejects format",
			req:      func(t *testing.T) *http.Request { return multipartRequest(t, nil, "RIFF") },
			svcErr:   errors.UnsupportedFormat("docx", format.Supported()),
			wantCode: http.StatusBadRequest,
			wantErr:  errors.ErrCodeUnsupportedFormat,
		},
		{
			name:     "shutting down",
			req:      func(t *testing.T) *http.Request { return multipartRequest(t, nil, "RIFF") },
			svcErr:   errors.ServiceUnavailable("The service is shutting down."),
			wantCode: http.StatusServiceUnavailable,
			wantErr:  errors.ErrCodeServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			newRouter(&fakeJobs{submitErr: tt.svcErr}).ServeHTTP(rr, tt.req(t))
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if code := errorCode(t, rr); code != tt.wantErr {
				t.Errorf("error code = %s, want %s", code, tt.wantErr)
			}
		})
	}
}

func TestGet(t *testing.T) {
	transcript := []timeline.Unit{
		{Start: 0, End: 2.5, Speaker: "A", Kind: timeline.KindSpeech, Text: "Hello."},
		timeline.Event(2.5, 2.5, "*an image is shown*"),
	}
	svc := &fakeJobs{jobs: map[string]jobs.Job{
		"running":  {ID: "running", Status: jobs.StatusProcessing},
		"done":     {ID: "done", Status: jobs.StatusCompleted, Format: "json", DurationSec: 2.5, Transcript: transcript},
		"done-txt": {ID: "done-txt", Status: jobs.StatusCompleted, Format: "txt", DurationSec: 2.5, Transcript: transcript},
		"empty":    {ID: "empty", Status: jobs.StatusCompleted, DurationSec: 1},
		"broken":   {ID: "broken", Status: jobs.StatusFailed, Error: "EXTERNAL_SERVICE_ERROR: quota", ErrorCode: "EXTERNAL_SERVICE_ERROR"},
	}}
	r := newRouter(svc)

	get := func(t *testing.T, path string) (int, map[string]any) {
		t.Helper()
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		var body map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid body %q: %v", rr.Body.String(), err)
		}
		return rr.Code, body
	}

	t.Run("processing", func(t *testing.T) {
		code, body := get(t, "/transcriptions/running")
		if code != http.StatusOK || body["status"] != "processing" || len(body) != 2 {
			t.Errorf("unexpected %d %v", code, body)
		}
	})

	t.Run("completed json", func(t *testing.T) {
		code, body := get(t, "/transcriptions/done")
		if code != http.StatusOK || body["duration_sec"] != 2.5 {
			t.Fatalf("unexpected %d %v", code, body)
		}
		units, ok := body["transcript"].([]any)
		if !ok || len(units) != 2 {
			t.Fatalf("transcript = %v", body["transcript"])
		}
		first := units[0].(map[string]any)
		if first["speaker"] != "A" || first["type"] != "speech" {
			t.Errorf("first unit = %v", first)
		}
	})

	t.Run("completed without units", func(t *testing.T) {
		_, body := get(t, "/transcriptions/empty")
		units, ok := body["transcript"].([]any)
		if !ok || len(units) != 0 {
			t.Errorf("expected an empty list, got %v", body["transcript"])
		}
	})

	t.Run("submitted format", func(t *testing.T) {
		_, body := get(t, "/transcriptions/done-txt")
		want := "[00:00:00] A: Hello.\n[00:00:02] *an image is shown*\n"
		if body["transcript"] != want {
			t.Errorf("transcript = %q, want %q", body["transcript"], want)
		}
	})

	t.Run("format override", func(t *testing.T) {
		_, body := get(t, "/transcriptions/done?format=SRT")
		text, _ := body["transcript"].(string)
		if !strings.HasPrefix(text, "1\n00:00:00,000 --> 00:00:02,500\nA: Hello.\n") {
			t.Errorf("unexpected srt %q", text)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		code, body := get(t, "/transcriptions/done?format=docx")
		if code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d %v", code, body)
		}
	})

	t.Run("failed", func(t *testing.T) {
		code, body := get(t, "/transcriptions/broken")
		if code != http.StatusOK || body["status"] != "failed" || body["error_code"] != "EXTERNAL_SERVICE_ERROR" || body["transcript"] != nil {
			t.Errorf("unexpected %d %v", code, body)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		code, body := get(t, "/transcriptions/nope")
		if code != http.StatusNotFound {
			t.Errorf("expected 404, got %d %v", code, body)
		}
	})
}
