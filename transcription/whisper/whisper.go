// Package whisper is a transcription backend for a self-hosted
// faster-whisper HTTP sidecar.
package whisper

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
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultModel   = "base"
	defaultTimeout = 120 * time.Second
)

// Provider implements transcription.Provider against the sidecar.
type Provider struct {
	cfg    transcription.WhisperConfig
	client *httpclient.Client
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg transcription.Config) (*Provider, error) {
	wc := cfg.Whisper
	if wc.URL == "" {
		wc.URL = defaultURL
	}
	if wc.Model == "" {
		wc.Model = defaultModel
	}
	if wc.Timeout == 0 {
		wc.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		Service: ProviderName,
		BaseURL: wc.URL,
		Timeout: wc.Timeout,
		Retry:   cfg.Retry,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: wc, client: client}, nil
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

// IsAvailable checks if the sidecar answers its health endpoint.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.Ping(ctx, "/health")
}

// Transcribe uploads the audio file to the sidecar.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	if _, err := os.Stat(req.AudioPath); err != nil {
		return nil, errors.InputError(req.AudioPath, err)
	}

	fields := []httpclient.Field{{Name: "model", Value: p.cfg.Model}}
	if req.Language != "" {
		fields = append(fields, httpclient.Field{Name: "language", Value: req.Language})
	}
	if req.Prompt != "" {
		fields = append(fields, httpclient.Field{Name: "initial_prompt", Value: req.Prompt})
	}

	var result whisperResponse
	err := p.client.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files:  []httpclient.FileField{{FieldName: "audio", FileName: "audio.wav", Path: req.AudioPath}},
		},
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.toResponse(), nil
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (r *whisperResponse) toResponse() *transcription.Response {
	segments := make([]timeline.Segment, len(r.Segments))
	for i, seg := range r.Segments {
		segments[i] = timeline.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}

	duration := r.Duration
	if duration == 0 && len(r.Segments) > 0 {
		duration = r.Segments[len(r.Segments)-1].End
	}
	return &transcription.Response{
		Text:     r.Text,
		Segments: segments,
		Duration: duration,
		Language: r.Language,
	}
}
