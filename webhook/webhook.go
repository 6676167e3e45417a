// Package webhook notifies batch import callers when their job ends.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/a-thread/elysia-sub000/models"
	"github.com/go-resty/resty/v2"
)

// SignatureHeader carries the HMAC-SHA256 signature of the request body.
const SignatureHeader = "X-Elysia-Signature"

// EventBatchCompleted is sent once per batch job, after its last URL.
const EventBatchCompleted = "batch.completed"

// Event is the envelope posted to webhook endpoints.
type Event struct {
	Type      string              `json:"type"`
	JobID     string              `json:"job_id"`
	Timestamp int64               `json:"timestamp"`
	Data      *BatchCompletedData `json:"data"`
}

// BatchCompletedData summarises a finished batch. Full recipes stay on the
// batch status endpoint; the webhook only says what happened to each URL.
type BatchCompletedData struct {
	Status    string          `json:"status"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []RecipeOutcome `json:"results"`
}

// RecipeOutcome is the per-URL entry of BatchCompletedData.
type RecipeOutcome struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Ingredients int    `json:"ingredients,omitempty"`
	Steps       int    `json:"steps,omitempty"`
	ErrorCode   string `json:"error_code,omitempty"`
}

// NewBatchCompleted builds the batch.completed event for a finished job.
func NewBatchCompleted(job models.BatchStatusResponse, at time.Time) *Event {
	data := &BatchCompletedData{
		Status:  job.Status,
		Total:   job.Total,
		Results: make([]RecipeOutcome, 0, len(job.Results)),
	}
	for _, r := range job.Results {
		if r == nil {
			data.Failed++
			continue
		}
		out := RecipeOutcome{URL: r.URL}
		switch {
		case r.Success && r.Recipe != nil:
			data.Succeeded++
			out.Title = r.Recipe.Title
			out.Ingredients = len(r.Recipe.Ingredients)
			out.Steps = len(r.Recipe.Steps)
		default:
			data.Failed++
			out.ErrorCode = models.ErrCodeInternal
			if r.Error != nil {
				out.ErrorCode = r.Error.Code
			}
		}
		data.Results = append(data.Results, out)
	}

	return &Event{
		Type:      EventBatchCompleted,
		JobID:     job.ID,
		Timestamp: at.Unix(),
		Data:      data,
	}
}

// Sign returns the signature header value for body: "sha256=<hex>".
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Notifier posts signed events. Its zero value is not usable; use New.
type Notifier struct {
	client *resty.Client
	delays []time.Duration
}

// New creates a Notifier that retries failed deliveries after 1s, 5s and 30s.
func New() *Notifier {
	client := resty.New()
	client.SetHeader("User-Agent", "Elysia-Webhook/1.0")
	client.SetTimeout(10 * time.Second)
	return &Notifier{
		client: client,
		delays: []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second},
	}
}

// Send delivers one event. The body is signed when secret is non-empty.
func (n *Notifier) Send(ctx context.Context, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if secret != "" {
		req.SetHeader(SignatureHeader, Sign(secret, body))
	}

	res, err := req.Post(url)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("webhook: endpoint returned status %d", res.StatusCode())
	}
	return nil
}

// Notify delivers event in the background, retrying on failure until the
// attempts run out or ctx is done. The returned channel receives the final
// error (nil on success) and is then closed.
func (n *Notifier) Notify(ctx context.Context, url, secret string, event *Event) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- n.deliverWithRetry(ctx, url, secret, event)
	}()
	return done
}

func (n *Notifier) deliverWithRetry(ctx context.Context, url, secret string, event *Event) error {
	log := slog.With("url", url, "event", event.Type, "job_id", event.JobID)

	var err error
	for attempt, delay := range n.delays {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				log.Warn("webhook delivery abandoned", "attempt", attempt+1, "error", ctx.Err())
				return ctx.Err()
			}
		}
		if err = n.Send(ctx, url, secret, event); err == nil {
			log.Info("webhook delivered", "attempt", attempt+1)
			return nil
		}
		log.Warn("webhook delivery failed", "attempt", attempt+1, "error", err)
	}
	log.Error("webhook delivery exhausted all retries")
	return err
}
