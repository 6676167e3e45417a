package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/a-thread/elysia-sub000/config"
	"github.com/a-thread/elysia-sub000/models"
	"github.com/a-thread/elysia-sub000/scraper"
	"github.com/a-thread/elysia-sub000/webhook"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// batchTTL is how long a batch job stays queryable after creation.
const batchTTL = time.Hour

// BatchStore holds all in-flight and completed batch jobs. Running jobs
// are bound to the store's context, which Stop cancels.
type BatchStore struct {
	jobs     sync.Map // id → *models.BatchJob
	ctx      context.Context
	cancel   context.CancelFunc
	running  sync.WaitGroup
	notifier *webhook.Notifier
	once     sync.Once
	now      func() time.Time
}

// NewBatchStore creates a store and starts a background goroutine that
// expires jobs older than one hour.
func NewBatchStore(notifier *webhook.Notifier) *BatchStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &BatchStore{ctx: ctx, cancel: cancel, notifier: notifier, now: time.Now}
	go s.cleanupLoop(5 * time.Minute)
	return s
}

// Load returns the job with the given id.
func (s *BatchStore) Load(id string) (*models.BatchJob, bool) {
	v, ok := s.jobs.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*models.BatchJob), true
}

func (s *BatchStore) store(job *models.BatchJob) {
	s.jobs.Store(job.ID, job)
}

// Stop cancels every running job, waits for their workers to record the
// cancellation, and terminates the cleanup goroutine. Safe to call more
// than once.
func (s *BatchStore) Stop() {
	s.once.Do(s.cancel)
	s.running.Wait()
}

func (s *BatchStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.expire()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *BatchStore) expire() {
	cutoff := s.now().Add(-batchTTL).Unix()
	s.jobs.Range(func(key, value any) bool {
		if value.(*models.BatchJob).CreatedAt < cutoff {
			s.jobs.Delete(key)
		}
		return true
	})
}

// PostBatch returns a handler for POST /api/v1/recipes/batch.
// It validates the request, creates a batch job, and scrapes the URLs in
// the background with bounded concurrency.
func PostBatch(sc *scraper.Scraper, store *BatchStore, cfg config.BatchConfig, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.BatchResponse{
				Status: models.BatchFailed,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		if cfg.MaxURLs > 0 && len(req.URLs) > cfg.MaxURLs {
			c.JSON(http.StatusBadRequest, models.BatchResponse{
				Status: models.BatchFailed,
				Total:  len(req.URLs),
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: fmt.Sprintf("maximum %d URLs per batch", cfg.MaxURLs),
				},
			})
			return
		}

		job := models.NewBatchJob("batch-"+uuid.NewString(), len(req.URLs), store.now().Unix())
		store.store(job)

		store.running.Add(1)
		go func() {
			defer store.running.Done()
			runBatch(store.ctx, sc, store.notifier, job, req, cfg.Concurrency, timeout)
		}()

		c.JSON(http.StatusAccepted, models.BatchResponse{
			ID:     job.ID,
			Status: models.BatchProcessing,
			Total:  job.Total,
		})
	}
}

// GetBatch returns a handler for GET /api/v1/recipes/batch/:id.
func GetBatch(store *BatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := store.Load(c.Param("id"))
		if !ok {
			respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "batch job not found", nil))
			return
		}
		c.JSON(http.StatusOK, job.Snapshot())
	}
}

// runBatch scrapes every URL of a job with concurrency limited by a
// semaphore, then fires the completion webhook if one was requested. URLs
// still waiting for a slot when ctx is cancelled are recorded as failed.
func runBatch(ctx context.Context, sc *scraper.Scraper, notifier *webhook.Notifier, job *models.BatchJob, req models.BatchRequest, concurrency int, timeout time.Duration) {
	if concurrency <= 0 {
		concurrency = 4
	}
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	for i, rawURL := range req.URLs {
		wg.Add(1)
		go func(idx int, targetURL string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				job.Record(idx, cancelledResponse(targetURL))
				return
			}
			defer func() { <-sem }()

			job.Record(idx, scrapeOne(ctx, sc, targetURL, timeout))
		}(i, rawURL)
	}
	wg.Wait()

	status := job.Finish()
	slog.Info("batch job finished",
		"id", job.ID,
		"status", status,
		"total", job.Total,
		"cancelled", ctx.Err() != nil,
	)

	if req.WebhookURL != "" && notifier != nil {
		notifier.Notify(ctx, req.WebhookURL, req.WebhookSecret, webhook.NewBatchCompleted(job.Snapshot(), time.Now()))
	}
}

func cancelledResponse(targetURL string) *models.ScrapeResponse {
	return &models.ScrapeResponse{
		Success: false,
		URL:     targetURL,
		Error: models.NewScrapeError(models.ErrCodeInternal, "batch cancelled: server shutting down", nil).ToDetail(),
	}
}
