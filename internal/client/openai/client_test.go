package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"post-composer/internal/config"
	"post-composer/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(url string) *Client {
	return NewClient(config.GeneratorConfig{
		BaseURL:     url + "/",
		Model:       "gpt-3.5-turbo",
		Temperature: 0.8,
		MaxTokens:   2000,
		Timeout:     5 * time.Second,
	})
}

func TestCompleteSendsExchange(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"prTexts\":[]}"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer srv.Close()

	content, usage, err := newTestClient(srv.URL).Complete(context.Background(), "sk-test", "sys", "usr")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	want := chatRequest{
		Model:       "gpt-3.5-turbo",
		Messages:    []chatMessage{{Role: "system", Content: "sys"}, {Role: "user", Content: "usr"}},
		Temperature: 0.8,
		MaxTokens:   2000,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if content != `{"prTexts":[]}` {
		t.Errorf("content = %q", content)
	}
	if diff := cmp.Diff(&domain.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, usage); diff != "" {
		t.Errorf("usage mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteMapsStatus(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrUnauthorized},
		{name: "rate limited", status: http.StatusTooManyRequests, want: ErrRateLimited},
		{name: "quota", status: http.StatusPaymentRequired, want: ErrQuotaExceeded},
		{name: "unavailable", status: http.StatusServiceUnavailable, want: ErrUpstreamUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"error":{"message":"nope","type":"x"}}`))
			}))
			defer srv.Close()

			_, _, err := newTestClient(srv.URL).Complete(context.Background(), "sk-test", "s", "u")
			if !errors.Is(err, tc.want) {
				t.Errorf("Complete() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCompleteEmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv.URL).Complete(context.Background(), "sk-test", "s", "u")
	if !errors.Is(err, ErrEmptyReply) {
		t.Errorf("Complete() error = %v, want ErrEmptyReply", err)
	}
}
