package extract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orgscan/internal/extract"
)

func TestHuggingFaceParsesRecordListResponse(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"generated_text":" Netflix "}]`))
	}))
	defer server.Close()

	client := extract.NewHuggingFace("hf-key", extract.WithHuggingFaceURL(server.URL))
	got, err := client.Extract(context.Background(), "streaming platform text")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got != "Netflix" {
		t.Fatalf("Extract = %q, want %q", got, "Netflix")
	}
	if gotAuth != "Bearer hf-key" {
		t.Fatalf("expected bearer credential, got %q", gotAuth)
	}
	inputs, _ := gotBody["inputs"].(string)
	if !strings.Contains(inputs, "streaming platform text") {
		t.Fatalf("request missing document text: %q", inputs)
	}
}

func TestHuggingFaceParsesBareStringResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"spotify"`))
	}))
	defer server.Close()

	client := extract.NewHuggingFace("", extract.WithHuggingFaceURL(server.URL))
	got, err := client.Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got != "spotify" {
		t.Fatalf("Extract = %q, want %q", got, "spotify")
	}
}

func TestHuggingFaceOmitsCredentialWhenUnset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("expected no Authorization header")
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := extract.NewHuggingFace("", extract.WithHuggingFaceURL(server.URL))
	got, err := client.Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty result for empty list, got %q", got)
	}
}

func TestHuggingFaceRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := extract.NewHuggingFace("", extract.WithHuggingFaceURL(server.URL))
	if _, err := client.Extract(context.Background(), "text"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestHuggingFaceBoundsPromptLength(t *testing.T) {
	var inputs string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Inputs string `json:"inputs"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		inputs = payload.Inputs
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := extract.NewHuggingFace("", extract.WithHuggingFaceURL(server.URL))
	long := strings.Repeat("x", 5000)
	if _, err := client.Extract(context.Background(), long); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	// prompt preamble plus at most 1000 characters of text
	if len(inputs) > 1200 {
		t.Fatalf("prompt not bounded, length %d", len(inputs))
	}
}
