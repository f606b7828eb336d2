// Package pyannote is a diarization backend for a pyannote.audio HTTP
// sidecar.
package pyannote

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/kbukum/podscribe/diarization"
	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/httpclient"
	"github.com/kbukum/podscribe/timeline"
)

const (
	// ProviderName is the registered name for the Pyannote provider.
	ProviderName = "pyannote"

	defaultURL     = "http://localhost:8388"
	defaultTimeout = 300 * time.Second
)

// Provider implements diarization.Provider using the sidecar.
type Provider struct {
	client *httpclient.Client
}

// NewProvider creates a new Pyannote diarization provider.
func NewProvider(cfg diarization.Config) (*Provider, error) {
	pc := cfg.Pyannote
	if pc.URL == "" {
		pc.URL = defaultURL
	}
	if pc.Timeout == 0 {
		pc.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		Service: ProviderName,
		BaseURL: pc.URL,
		Timeout: pc.Timeout,
		Retry:   cfg.Retry,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{client: client}, nil
}

// Factory builds the provider for a diarization.Registry.
func Factory(cfg diarization.Config) (diarization.Provider, error) {
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

// Diarize uploads the recording and returns its speaker turns.
func (p *Provider) Diarize(ctx context.Context, req diarization.Request) (*diarization.Response, error) {
	if _, err := os.Stat(req.AudioPath); err != nil {
		return nil, errors.InputError(req.AudioPath, err)
	}

	var fields []httpclient.Field
	addCount := func(name string, v int) {
		if v > 0 {
			fields = append(fields, httpclient.Field{Name: name, Value: strconv.Itoa(v)})
		}
	}
	addCount("num_speakers", req.NumSpeakers)
	addCount("min_speakers", req.MinSpeakers)
	addCount("max_speakers", req.MaxSpeakers)

	var result pyannoteResponse
	err := p.client.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/diarize",
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

type pyannoteResponse struct {
	Segments    []pyannoteSegment `json:"segments"`
	NumSpeakers int               `json:"num_speakers"`
}

type pyannoteSegment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

func (r *pyannoteResponse) toResponse() *diarization.Response {
	turns := make([]timeline.Turn, len(r.Segments))
	speakers := make(map[string]struct{})
	for i, seg := range r.Segments {
		turns[i] = timeline.Turn{Start: seg.Start, End: seg.End, SpeakerID: seg.Speaker}
		speakers[seg.Speaker] = struct{}{}
	}

	n := r.NumSpeakers
	if n == 0 {
		n = len(speakers)
	}
	return &diarization.Response{Turns: turns, NumSpeakers: n}
}
