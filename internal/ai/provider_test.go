package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestServer creates an httptest.Server that responds with the given status
// code and body bytes. The caller must call Close on the returned server.
func newTestServer(t *testing.T, statusCode int, body []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write(body)
	}))
}

// openAISuccessBody builds a JSON body matching the OpenAI chat completions
// response format with a single choice containing the given text.
func openAISuccessBody(text string) []byte {
	resp := openAIResponse{
		Choices: []openAIChoice{
			{Message: openAIMessage{Role: "assistant", Content: text}},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

// geminiSuccessBody builds a JSON body matching the Gemini generateContent
// response format with a single candidate containing the given text.
func geminiSuccessBody(text string) []byte {
	resp := geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{{Text: text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

func TestOpenAIGenerate_Success(t *testing.T) {
	want := "Uma receita deliciosa"
	srv := newTestServer(t, http.StatusOK, openAISuccessBody(want))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOpenAIGenerateJSON_SetsResponseFormat(t *testing.T) {
	var captured openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		w.Write(openAISuccessBody(`{"ok":true}`))
	}))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL})

	if _, err := p.GenerateJSON(context.Background(), "sys", "user"); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format not set: %+v", captured.ResponseFormat)
	}
}

func TestOpenAIGenerate_QuotaError(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, []byte(`{"error":{"code":"rate_limit_exceeded"}}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), "sys", "user")
	var qe *QuotaError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QuotaError, got %v", err)
	}
	if qe.Provider != "openai" {
		t.Errorf("provider: got %q, want openai", qe.Provider)
	}
}

func TestOpenAIGenerate_QuotaErrorFromBody(t *testing.T) {
	// Some quota failures come back as 400 with insufficient_quota in the body.
	srv := newTestServer(t, http.StatusBadRequest, []byte(`{"error":{"code":"insufficient_quota"}}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), "sys", "user")
	var qe *QuotaError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QuotaError, got %v", err)
	}
}

func TestOpenAIGenerate_APIError(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, []byte(`{"error":"boom"}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	var qe *QuotaError
	if errors.As(err, &qe) {
		t.Fatal("500 must not be classified as quota exhaustion")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error should mention status: %v", err)
	}
}

func TestOpenAIGenerate_NoChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"choices":[]}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL})

	if _, err := p.Generate(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAIGenerateImage_Success(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"data":[{"url":"https://img.example/abc.png"}]}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL})

	url, err := p.GenerateImage(context.Background(), "uma foto de bolo")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if url != "https://img.example/abc.png" {
		t.Errorf("url: got %q", url)
	}
}

func TestOpenAIGenerateImage_Empty(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"data":[]}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL})

	if _, err := p.GenerateImage(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty image data")
	}
}

func TestGeminiGenerate_Success(t *testing.T) {
	want := "Resposta do Gemini"
	srv := newTestServer(t, http.StatusOK, geminiSuccessBody(want))
	defer srv.Close()

	p := newGemini(ProviderConfig{APIKey: "test-key", Model: "gemini-2.5-flash", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGeminiGenerate_QuotaError(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, []byte(`{"error":{"status":"RESOURCE_EXHAUSTED"}}`))
	defer srv.Close()

	p := newGemini(ProviderConfig{APIKey: "test-key", Model: "gemini-2.5-flash", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), "sys", "user")
	var qe *QuotaError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QuotaError, got %v", err)
	}
	if qe.Provider != "gemini" {
		t.Errorf("provider: got %q, want gemini", qe.Provider)
	}
}

func TestRegistry_ActiveAndSwitch(t *testing.T) {
	reg := NewRegistry("openai", map[string]ProviderConfig{
		"openai": {APIKey: "k1", Model: "gpt-4o-mini"},
		"gemini": {APIKey: "k2", Model: "gemini-2.5-flash"},
	})

	if reg.ActiveName() != "openai" {
		t.Errorf("active: got %q, want openai", reg.ActiveName())
	}
	if !reg.HasProvider("gemini") {
		t.Error("gemini should be available")
	}
	if err := reg.SetActive("gemini"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if reg.ActiveName() != "gemini" {
		t.Errorf("active after switch: got %q", reg.ActiveName())
	}
	if err := reg.SetActive("claude"); err == nil {
		t.Error("SetActive should fail for unconfigured provider")
	}
}

func TestRegistry_SkipsProvidersWithoutKeys(t *testing.T) {
	reg := NewRegistry("openai", map[string]ProviderConfig{
		"openai": {APIKey: "", Model: "gpt-4o-mini"},
		"gemini": {APIKey: "k", Model: "gemini-2.5-flash"},
	})

	if reg.HasProvider("openai") {
		t.Error("openai without key should not be registered")
	}
	if _, err := reg.Active(); err == nil {
		t.Error("Active should fail when active provider has no key")
	}
}

func TestRegistry_ImageGenerationSupport(t *testing.T) {
	reg := NewRegistry("gemini", map[string]ProviderConfig{
		"openai": {APIKey: "k1", Model: "gpt-4o-mini"},
		"gemini": {APIKey: "k2", Model: "gemini-2.5-flash"},
	})

	// Gemini is text-only.
	if reg.SupportsImageGeneration() {
		t.Error("gemini must not report image generation support")
	}
	if _, err := reg.GenerateImage(context.Background(), "prompt"); err == nil {
		t.Error("GenerateImage should fail for a text-only provider")
	}

	if err := reg.SetActive("openai"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if !reg.SupportsImageGeneration() {
		t.Error("openai should report image generation support")
	}
}
