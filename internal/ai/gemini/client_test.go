package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModelResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type modelCallRecord struct {
	model    string
	contents []*genai.Content
}

type fakeModels struct {
	mu    sync.Mutex
	calls []modelCallRecord
	queue []fakeModelResponse
}

func (f *fakeModels) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeModelResponse{resp: resp, err: err})
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, modelCallRecord{model: model, contents: contents})
	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func stubWait(t *testing.T) {
	t.Helper()
	original := waitFor
	waitFor = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { waitFor = original })
}

func TestGeneratorSendsSingleUserTurn(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse("first", "  ", "second"), nil)

	g := &Generator{models: models, model: "gemini-test", logger: zap.NewNop()}

	output, err := g.GenerateContent(context.Background(), genai.NewPartFromText("jd"), genai.NewPartFromText("prompt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != "first\nsecond" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.model != "gemini-test" {
		t.Fatalf("unexpected model: %s", call.model)
	}
	if len(call.contents) != 1 || call.contents[0].Role != string(genai.RoleUser) {
		t.Fatalf("expected a single user content, got %+v", call.contents)
	}
	if len(call.contents[0].Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(call.contents[0].Parts))
	}
}

func TestGeneratorSingleAttemptByDefault(t *testing.T) {
	stubWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	models.enqueue(textResponse("never"), nil)

	g := &Generator{models: models, model: "gemini-test", logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), genai.NewPartFromText("x")); err == nil {
		t.Fatal("expected error")
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected a single call, got %d", len(models.calls))
	}
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	stubWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"})
	models.enqueue(textResponse("retry ok"), nil)

	g := &Generator{models: models, model: "gemini-test", maxRetries: 2, logger: zap.NewNop()}

	output, err := g.GenerateContent(context.Background(), genai.NewPartFromText("x"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}
	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}
}

func TestGeneratorDoesNotRetryPermanentError(t *testing.T) {
	stubWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	g := &Generator{models: models, model: "gemini-test", maxRetries: 3, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), genai.NewPartFromText("x")); err == nil {
		t.Fatal("expected error")
	}
	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	stubWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	})

	g := &Generator{models: models, model: "gemini-test", maxRetries: 3, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), genai.NewPartFromText("x")); err == nil {
		t.Fatal("expected error when quota delay too long")
	}
	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestGeneratorEmptyResponse(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse("   "), nil)

	g := &Generator{models: models, model: "gemini-test", logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), genai.NewPartFromText("x")); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		retry  bool
		expect time.Duration
	}{
		{name: "plain error", err: errors.New("boom"), retry: false},
		{name: "server error", err: genai.APIError{Code: http.StatusBadGateway}, retry: true, expect: baseRetryDelay},
		{name: "short quota delay", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "retry in 5s"}, retry: true, expect: 5 * time.Second},
		{name: "quota without hint", err: genai.APIError{Code: http.StatusTooManyRequests}, retry: true, expect: baseRetryDelay},
		{name: "unauthenticated", err: genai.APIError{Code: http.StatusUnauthorized}, retry: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			delay, retry := retryDelay(tt.err, 1)
			if retry != tt.retry {
				t.Fatalf("expected retry=%v, got %v", tt.retry, retry)
			}
			if retry && delay != tt.expect {
				t.Fatalf("expected delay %s, got %s", tt.expect, delay)
			}
		})
	}
}

func TestClientConfig(t *testing.T) {
	if _, err := clientConfig(Config{}); err == nil {
		t.Fatal("expected error without api key")
	}

	cfg, err := clientConfig(Config{APIKey: " key "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "key" || cfg.Backend != genai.BackendGeminiAPI {
		t.Fatalf("unexpected gemini api config: %+v", cfg)
	}

	if _, err := clientConfig(Config{Backend: BackendVertexAI}); err == nil {
		t.Fatal("expected error without project")
	}

	cfg, err = clientConfig(Config{Backend: BackendVertexAI, Project: "proj"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Location != defaultLocation || cfg.Backend != genai.BackendVertexAI {
		t.Fatalf("unexpected vertex config: %+v", cfg)
	}

	if _, err := clientConfig(Config{Backend: "openai"}); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}
