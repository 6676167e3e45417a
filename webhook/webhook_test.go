package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-thread/elysia-sub000/models"
)

func fastNotifier(delays ...time.Duration) *Notifier {
	n := New()
	n.delays = delays
	return n
}

func finishedJob() models.BatchStatusResponse {
	return models.BatchStatusResponse{
		ID:        "batch-1",
		Status:    models.BatchPartial,
		Completed: 2,
		Total:     2,
		Results: []*models.ScrapeResponse{
			{
				Success: true,
				URL:     "https://example.com/soup",
				Recipe: &models.ScrapedRecipe{
					Title:       "Soup",
					Ingredients: []models.RecipeLine{{Text: "1 onion"}, {Text: "2 carrots"}},
					Steps:       []models.RecipeLine{{Text: "Simmer."}},
				},
			},
			{
				URL:   "https://example.com/gone",
				Error: &models.ErrorDetail{Code: models.ErrCodeFetch, Message: "failed to fetch"},
			},
		},
	}
}

func TestNewBatchCompleted(t *testing.T) {
	event := NewBatchCompleted(finishedJob(), time.Unix(1_700_000_000, 0))

	want := &Event{
		Type:      EventBatchCompleted,
		JobID:     "batch-1",
		Timestamp: 1_700_000_000,
		Data: &BatchCompletedData{
			Status:    models.BatchPartial,
			Total:     2,
			Succeeded: 1,
			Failed:    1,
			Results: []RecipeOutcome{
				{URL: "https://example.com/soup", Title: "Soup", Ingredients: 2, Steps: 1},
				{URL: "https://example.com/gone", ErrorCode: models.ErrCodeFetch},
			},
		},
	}
	if diff := cmp.Diff(want, event); diff != "" {
		t.Errorf("NewBatchCompleted mismatch (-want +got):\n%s", diff)
	}
}

func TestSend_SignsBody(t *testing.T) {
	var (
		gotSig  string
		gotUA   string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotUA = r.Header.Get("User-Agent")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	event := NewBatchCompleted(finishedJob(), time.Unix(1_700_000_000, 0))
	require.NoError(t, New().Send(context.Background(), srv.URL, "s3cret", event))

	assert.Equal(t, Sign("s3cret", gotBody), gotSig)
	assert.Equal(t, "Elysia-Webhook/1.0", gotUA)

	var decoded Event
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "batch-1", decoded.JobID)
	assert.Equal(t, 1, decoded.Data.Succeeded)
}

func TestSend_NoSecretNoSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(SignatureHeader))
	}))
	defer srv.Close()

	require.NoError(t, New().Send(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted}))
}

func TestSend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	assert.Error(t, New().Send(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted}))
}

func TestNotify_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	n := fastNotifier(0, time.Millisecond, time.Millisecond)
	err := <-n.Notify(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted, JobID: "batch-2"})
	assert.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNotify_GivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := fastNotifier(0, time.Millisecond)
	assert.Error(t, <-n.Notify(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted}))
}

func TestNotify_StopsWhenCancelled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	n := fastNotifier(0, time.Hour)
	done := n.Notify(ctx, srv.URL, "", &Event{Type: EventBatchCompleted})

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Notify did not stop after cancellation")
	}
	assert.Equal(t, int32(1), calls.Load())
}
