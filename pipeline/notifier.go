package pipeline

import (
	"context"
	"net/http"
	"time"

	"github.com/kbukum/podscribe/httpclient"
	"github.com/kbukum/podscribe/jobs"
	"github.com/kbukum/podscribe/logger"
)

// Notifier posts terminal job snapshots to submitter webhooks. Delivery
// failures are logged and never affect the job.
type Notifier struct {
	client *httpclient.Client
	log    *logger.Logger
}

// NewNotifier creates a Notifier whose deliveries time out after timeout.
func NewNotifier(timeout time.Duration, log *logger.Logger) (*Notifier, error) {
	client, err := httpclient.New(httpclient.Config{
		Service: "webhook",
		Timeout: timeout,
		Headers: map[string]string{"User-Agent": "podscribe-webhook"},
	})
	if err != nil {
		return nil, err
	}
	return &Notifier{client: client, log: log.WithComponent("webhook")}, nil
}

// Notify delivers job to job.WebhookURL.
func (n *Notifier) Notify(ctx context.Context, job jobs.Job) {
	_, err := n.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   job.WebhookURL,
		Body:   job,
	})
	fields := logger.Fields(logger.FieldJobID, job.ID, logger.FieldStatus, string(job.Status), "url", job.WebhookURL)
	if err != nil {
		fields[logger.FieldError] = err.Error()
		n.log.Warn("webhook delivery failed", fields)
		return
	}
	n.log.Debug("webhook delivered", fields)
}
