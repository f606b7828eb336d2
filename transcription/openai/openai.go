// Package openai is a transcription backend for the hosted OpenAI audio
// transcription API. It requests verbose_json output with segment-level
// timestamps.
package openai

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/httpclient"
	"github.com/kbukum/podscribe/timeline"
	"github.com/kbukum/podscribe/transcription"
)

const (
	// ProviderName is the registered name for the OpenAI provider.
	ProviderName = "openai"

	// APIKeyEnv is consulted when no key is configured.
	APIKeyEnv = "OPENAI_API_KEY"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "whisper-1"
	defaultTimeout = 10 * time.Minute
)

// Provider implements transcription.Provider against the OpenAI API.
type Provider struct {
	cfg    transcription.OpenAIConfig
	client *httpclient.Client
}

// NewProvider creates the provider. A missing API key is not an error here;
// Transcribe reports it as UNAUTHORIZED so the failure lands on the job.
func NewProvider(cfg transcription.Config) (*Provider, error) {
	oc := cfg.OpenAI
	if oc.APIKey == "" {
		oc.APIKey = os.Getenv(APIKeyEnv)
	}
	if oc.BaseURL == "" {
		oc.BaseURL = defaultBaseURL
	}
	if oc.Model == "" {
		oc.Model = defaultModel
	}
	if oc.Timeout == 0 {
		oc.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		Service: ProviderName,
		BaseURL: oc.BaseURL,
		Timeout: oc.Timeout,
		Auth:    httpclient.BearerAuth(oc.APIKey),
		Retry:   cfg.Retry,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: oc, client: client}, nil
}

// Factory builds the provider for a transcription.Registry.
func Factory(cfg transcription.Config) (transcription.Provider, error) {
	p, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether a credential is configured.
func (p *Provider) IsAvailable(context.Context) bool { return p.cfg.APIKey != "" }

// Transcribe uploads one audio file.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	if p.cfg.APIKey == "" {
		return nil, errors.Unauthorized(APIKeyEnv + " is not set.")
	}
	if _, err := os.Stat(req.AudioPath); err != nil {
		return nil, errors.InputError(req.AudioPath, err)
	}

	fields := []httpclient.Field{
		{Name: "model", Value: p.cfg.Model},
		{Name: "response_format", Value: "verbose_json"},
		{Name: "timestamp_granularities[]", Value: "segment"},
	}
	if req.Language != "" {
		fields = append(fields, httpclient.Field{Name: "language", Value: req.Language})
	}
	if req.Prompt != "" {
		fields = append(fields, httpclient.Field{Name: "prompt", Value: req.Prompt})
	}

	var result verboseResponse
	err := p.client.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/audio/transcriptions",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files:  []httpclient.FileField{{FieldName: "file", Path: req.AudioPath, ContentType: "audio/wav"}},
		},
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.toResponse(), nil
}

type verboseResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []verboseSegment `json:"segments"`
}

type verboseSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func (r *verboseResponse) toResponse() *transcription.Response {
	segments := make([]timeline.Segment, len(r.Segments))
	for i, seg := range r.Segments {
		segments[i] = timeline.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}
	return &transcription.Response{
		Text:     r.Text,
		Segments: segments,
		Language: r.Language,
		Duration: r.Duration,
	}
}
