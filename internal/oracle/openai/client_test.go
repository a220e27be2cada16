package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/study-planner-api/internal/models"
	"github.com/prepdeck/study-planner-api/internal/oracle"
)

func chatResponse(content string) string {
	body := map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
	encoded, _ := json.Marshal(body)
	return string(encoded)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, retries uint) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "test-key", "test-model", 5*time.Second, retries, nil)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestEstimateExamPrepParsesContract(t *testing.T) {
	payload := `{"estimatedHours": 24.5, "breakdown": {"algebra": 12, "geometry": 12.5}, "reasoning": "Two dense units.", "recommendation": "Start with algebra."}`
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse(payload))
	}, 0)

	estimate, err := client.EstimateExamPrep(context.Background(), oracle.EstimateRequest{
		Subject:   "Mathematics",
		PaperType: "Paper 2",
		Units:     []string{"algebra", "geometry"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.InDelta(t, 24.5, estimate.Hours, 0.0001)
	assert.InDelta(t, 12, estimate.Breakdown["algebra"], 0.0001)
	assert.Equal(t, "Two dense units.", estimate.Reasoning)
	assert.Equal(t, models.EstimateSourceOracle, estimate.Source)
}

func TestEstimateExamPrepTrimsSurroundingProse(t *testing.T) {
	payload := `Sure! Here is the estimate: {"estimatedHours": 10, "breakdown": {"algebra": 10}, "reasoning": "ok", "recommendation": "go"} Hope it helps.`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse(payload))
	}, 0)

	estimate, err := client.EstimateExamPrep(context.Background(), oracle.EstimateRequest{Subject: "Mathematics"})

	require.NoError(t, err)
	assert.InDelta(t, 10, estimate.Hours, 0.0001)
}

func TestEstimateExamPrepMissingFieldsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse(`{"estimatedHours": 10}`))
	}, 3)

	_, err := client.EstimateExamPrep(context.Background(), oracle.EstimateRequest{Subject: "Mathematics"})

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEstimateExamPrepRetriesServerErrors(t *testing.T) {
	payload := `{"estimatedHours": 8, "breakdown": {"algebra": 8}, "reasoning": "ok", "recommendation": "go"}`
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse(payload))
	}, 2)

	estimate, err := client.EstimateExamPrep(context.Background(), oracle.EstimateRequest{Subject: "Mathematics"})

	require.NoError(t, err)
	assert.InDelta(t, 8, estimate.Hours, 0.0001)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerateSessionsParsesStream(t *testing.T) {
	content := "tool_start\n" +
		`tool_data {"topic":"Algebra warm-up","difficulty":"easy"}` + "\n" +
		`tool_data {"topic":"Geometry proofs","difficulty":"hard"}` + "\n" +
		"tool_end"
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse(content))
	}, 0)

	events, err := client.GenerateSessions(context.Background(), oracle.GenerateRequest{
		Subject:      "Mathematics",
		SessionCount: 2,
	})

	require.NoError(t, err)
	drafts := oracle.Drafts(events)
	require.Len(t, drafts, 2)
	assert.Equal(t, "Algebra warm-up", drafts[0].Topic)
	assert.Equal(t, models.DifficultyHard, drafts[1].Difficulty)
}

func TestGenerateSessionsSurvivesMalformedLines(t *testing.T) {
	content := "Planning your sessions now.\n" +
		`tool_data {"topic":"Algebra","difficulty":"medium"}` + "\n" +
		"tool_data {oops\n" +
		"tool_end"
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse(content))
	}, 0)

	events, err := client.GenerateSessions(context.Background(), oracle.GenerateRequest{Subject: "Mathematics"})

	require.NoError(t, err)
	drafts := oracle.Drafts(events)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Algebra", drafts[0].Topic)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.True(t, isRetryableError(fmt.Errorf("response error 503: unavailable")))
	assert.True(t, isRetryableError(fmt.Errorf("response error 429: slow down")))
	assert.True(t, isRetryableError(fmt.Errorf("dial tcp: connection refused")))
	assert.True(t, isRetryableError(fmt.Errorf("unexpected end of JSON input")))
	assert.False(t, isRetryableError(fmt.Errorf("response error 400: bad request")))
}
