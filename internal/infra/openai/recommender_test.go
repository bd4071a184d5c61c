package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gpt "github.com/sashabaranov/go-openai"

	"mood-journal/internal/infra/openai"
)

func newTestRecommender(t *testing.T, handler http.HandlerFunc) *openai.Recommender {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := gpt.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	client := gpt.NewClientWithConfig(cfg)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return openai.NewRecommenderWithClient(client, "gpt-3.5-turbo", logger)
}

func TestRecommender_Recommend(t *testing.T) {
	var gotReq map[string]any
	recommender := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"  Recommendation 1:\nSleep earlier\nGo to bed by 22:30.  "}}]}`)
	})

	fitness := map[string]any{"activity": map[string]any{"steps": 8421}}
	got := recommender.Recommend(context.Background(), "felt anxious most of the day", fitness)

	want := "Recommendation 1:\nSleep earlier\nGo to bed by 22:30."
	if got != want {
		t.Errorf("recommendations: got %q, want %q", got, want)
	}

	if gotReq["model"] != "gpt-3.5-turbo" {
		t.Errorf("model: got %v", gotReq["model"])
	}
	if gotReq["max_tokens"] != float64(300) {
		t.Errorf("max_tokens: got %v", gotReq["max_tokens"])
	}
	if gotReq["temperature"] != 0.7 {
		t.Errorf("temperature: got %v", gotReq["temperature"])
	}

	messages, ok := gotReq["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("messages: got %v", gotReq["messages"])
	}
	user := messages[1].(map[string]any)
	content := user["content"].(string)
	if !strings.Contains(content, "felt anxious most of the day") || !strings.Contains(content, "8421") {
		t.Errorf("prompt missing inputs: %q", content)
	}
}

func TestRecommender_UpstreamFailure(t *testing.T) {
	recommender := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	got := recommender.Recommend(context.Background(), "some entry", map[string]any{})
	if got != openai.Fallback {
		t.Errorf("on failure: got %q, want fallback", got)
	}
}

func TestRecommender_EmptyChoices(t *testing.T) {
	recommender := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[]}`)
	})

	got := recommender.Recommend(context.Background(), "some entry", map[string]any{})
	if got != openai.Fallback {
		t.Errorf("on empty choices: got %q, want fallback", got)
	}
}
