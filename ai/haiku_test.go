package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestParseHaiku(t *testing.T) {
	want := []string{"an old silent pond", "a frog jumps into the pond", "splash! silence again"}
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{
			name:    "plain JSON array",
			content: `["an old silent pond","a frog jumps into the pond","splash! silence again"]`,
			want:    want,
		},
		{
			name:    "code fence",
			content: "```\n[\"an old silent pond\",\"a frog jumps into the pond\",\"splash! silence again\"]\n```",
			want:    want,
		},
		{
			name:    "code fence with json tag",
			content: "```json\n[\"an old silent pond\",\"a frog jumps into the pond\",\"splash! silence again\"]\n```",
			want:    want,
		},
		{
			name:    "surrounding whitespace",
			content: "  [\"an old silent pond\",\"a frog jumps into the pond\",\"splash! silence again\"]\n",
			want:    want,
		},
		{
			name:    "two lines",
			content: `["only","two"]`,
			wantErr: true,
		},
		{
			name:    "four lines",
			content: `["one","two","three","four"]`,
			wantErr: true,
		},
		{
			name:    "prose instead of JSON",
			content: "Here is your haiku: an old silent pond...",
			wantErr: true,
		},
		{
			name:    "fenced prose",
			content: "```\nstill not JSON\n```",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHaiku(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHaiku() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseHaiku() = %v, want %v", got, tt.want)
			}
		})
	}
}

func haikuServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", r.Header.Get("Authorization"))
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request not decodable: %v", err)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestHaiku(t *testing.T) {
	srv := haikuServer(t, "```json\n[\"line one\",\"line two\",\"line three\"]\n```")
	defer srv.Close()

	client := NewOpenAIClient("test-key", "gpt-4o")
	client.apiURL = srv.URL
	lines, err := client.Haiku(context.Background(), []byte{0xff, 0xd8})
	if err != nil {
		t.Fatalf("Haiku() error = %v", err)
	}
	want := []string{"line one", "line two", "line three"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Haiku() = %v, want %v", lines, want)
	}
}

func TestHaikuAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("test-key", "gpt-4o")
	client.apiURL = srv.URL
	if _, err := client.Haiku(context.Background(), []byte{0xff, 0xd8}); err == nil {
		t.Error("Haiku() error = nil for API error response")
	}
}
