// Package classifier is an acoustic tagging backend for an audio event
// classifier HTTP sidecar (YAMNet, PANNs and similar).
//
// The sidecar receives the normalized recording and the non-speech spans
// and answers with labelled events in recording time.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/httpclient"
	"github.com/kbukum/podscribe/tagging"
	"github.com/kbukum/podscribe/timeline"
)

const (
	// ProviderName is the registered name for the classifier backend.
	ProviderName = "classifier"

	defaultURL     = "http://localhost:8389"
	defaultTimeout = 120 * time.Second
)

// Tagger implements tagging.AcousticTagger using the sidecar.
type Tagger struct {
	client        *httpclient.Client
	minConfidence float64
	minDuration   float64
}

// New creates a classifier tagger.
func New(cfg tagging.Config) (*Tagger, error) {
	cc := cfg.Acoustic.Classifier
	if cc.URL == "" {
		cc.URL = defaultURL
	}
	if cc.Timeout == 0 {
		cc.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		Service: ProviderName,
		BaseURL: cc.URL,
		Timeout: cc.Timeout,
		Retry:   cc.Retry,
	})
	if err != nil {
		return nil, err
	}
	return &Tagger{client: client, minConfidence: cc.MinConfidence, minDuration: cfg.Acoustic.MinDuration}, nil
}

// Factory builds the tagger for a tagging.AcousticRegistry.
func Factory(cfg tagging.Config) (tagging.AcousticTagger, error) {
	t, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tagger) Name() string { return ProviderName }

// IsAvailable checks if the sidecar answers its health endpoint.
func (t *Tagger) IsAvailable(ctx context.Context) bool {
	return t.client.Ping(ctx, "/health")
}

// Tag classifies the non-speech spans of audioPath. No request is made when
// there are no spans long enough to classify.
func (t *Tagger) Tag(ctx context.Context, audioPath string, nonSpeech []timeline.Span) ([]timeline.Unit, error) {
	spans := make([]timeline.Span, 0, len(nonSpeech))
	for _, s := range nonSpeech {
		if s.Duration() >= t.minDuration {
			spans = append(spans, s)
		}
	}
	if len(spans) == 0 {
		return nil, nil
	}
	if _, err := os.Stat(audioPath); err != nil {
		return nil, errors.InputError(audioPath, err)
	}

	spansJSON, err := json.Marshal(spans)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("encode spans: %w", err))
	}

	var result classifyResponse
	err = t.client.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/classify",
		Body: &httpclient.MultipartBody{
			Fields: []httpclient.Field{{Name: "spans", Value: string(spansJSON)}},
			Files:  []httpclient.FileField{{FieldName: "audio", FileName: "audio.wav", ContentType: "audio/wav", Path: audioPath}},
		},
	}, &result)
	if err != nil {
		return nil, err
	}

	events := make([]timeline.Unit, 0, len(result.Events))
	for _, e := range result.Events {
		if e.Confidence < t.minConfidence || e.Label == "" {
			continue
		}
		events = append(events, timeline.Event(e.Start, e.End, "*"+e.Label+"*"))
	}
	return events, nil
}

type classifyResponse struct {
	Events []classifiedEvent `json:"events"`
}

type classifiedEvent struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}
