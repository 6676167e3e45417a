package models

import "sync"

// BatchRequest is the payload for POST /api/v1/recipes/batch.
type BatchRequest struct {
	// URLs is the list of recipe pages to import. Required.
	URLs []string `json:"urls" binding:"required,min=1,dive,required,url"`

	// WebhookURL, if set, receives a "batch.completed" event when the job ends.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs the webhook body with HMAC-SHA256.
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// BatchResponse is the immediate response for POST /api/v1/recipes/batch.
type BatchResponse struct {
	ID     string       `json:"id,omitempty"`
	Status string       `json:"status"`
	Total  int          `json:"total"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// BatchStatusResponse is the response for GET /api/v1/recipes/batch/:id.
type BatchStatusResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Results   []*ScrapeResponse `json:"results,omitempty"`
}

// Batch job states.
const (
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
	BatchPartial    = "partial"
	BatchFailed     = "failed"
)

// BatchJob tracks an in-progress batch import. Readers must go through
// Snapshot; workers update it through Record and Finish.
type BatchJob struct {
	mu        sync.Mutex
	ID        string
	Status    string
	Total     int
	Completed int
	Results   []*ScrapeResponse
	CreatedAt int64 // unix timestamp
}

// NewBatchJob creates a job in the processing state.
func NewBatchJob(id string, total int, createdAt int64) *BatchJob {
	return &BatchJob{
		ID:        id,
		Status:    BatchProcessing,
		Total:     total,
		Results:   make([]*ScrapeResponse, total),
		CreatedAt: createdAt,
	}
}

// Record stores the result for the URL at idx.
func (j *BatchJob) Record(idx int, resp *ScrapeResponse) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Results[idx] = resp
	j.Completed++
}

// Finish derives the terminal status from the recorded results and returns it.
func (j *BatchJob) Finish() string {
	j.mu.Lock()
	defer j.mu.Unlock()

	failed := 0
	for _, r := range j.Results {
		if r == nil || !r.Success {
			failed++
		}
	}

	switch {
	case failed == j.Total:
		j.Status = BatchFailed
	case failed > 0:
		j.Status = BatchPartial
	default:
		j.Status = BatchCompleted
	}
	return j.Status
}

// Snapshot returns a consistent copy of the job state.
func (j *BatchJob) Snapshot() BatchStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()

	results := make([]*ScrapeResponse, len(j.Results))
	copy(results, j.Results)
	return BatchStatusResponse{
		ID:        j.ID,
		Status:    j.Status,
		Completed: j.Completed,
		Total:     j.Total,
		Results:   results,
	}
}
