package summarizer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/fridadocs/docflow/internal/summarizer"
)

func newTestClient(url string) *summarizer.Client {
	return summarizer.NewClient(summarizer.ClientConfig{
		Model:       "test-model",
		APIKey:      "test-key",
		BaseURL:     url,
		Temperature: 0.2,
	})
}

func completionBody(content string) string {
	return `{"choices":[{"message":{"content":"` + content + `"}}]}`
}

func TestSummarize(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("  the document covers revenue  ")))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	summary, err := client.Summarize(context.Background(), "# Revenue\n\nUp 12%.", summarizer.Metadata{
		Filename: "report.pdf",
		MimeType: "application/pdf",
		Pages:    3,
	})
	require.NoError(t, err)
	require.Equal(t, "the document covers revenue", summary)

	require.Equal(t, "/chat/completions", gotPath)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "test-model", gotBody["model"])

	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)
	require.Equal(t, "user", user["role"])
	require.Contains(t, user["content"], "report.pdf")
	require.Contains(t, user["content"], "(3 pages)")
	require.Contains(t, user["content"], "Up 12%.")
}

func TestSummarizeTruncatesLongDocuments(t *testing.T) {
	var promptLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		promptLen = len(body.Messages[1].Content)
		_, _ = w.Write([]byte(completionBody("short")))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	long := strings.Repeat("a", 100*1024)
	_, err := client.Summarize(context.Background(), long, summarizer.Metadata{Filename: "big.txt"})
	require.NoError(t, err)
	require.Less(t, promptLen, len(long))
}

func TestSummarizeTruncationKeepsRunesIntact(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		prompt = body.Messages[1].Content
		_, _ = w.Write([]byte(completionBody("short")))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	long := strings.Repeat("é", 60*1024)
	_, err := client.Summarize(context.Background(), long, summarizer.Metadata{Filename: "utf8.txt"})
	require.NoError(t, err)
	require.True(t, utf8.ValidString(prompt))
	// A byte-split rune would survive json marshalling as U+FFFD.
	require.NotContains(t, prompt, string(utf8.RuneError))
	require.Less(t, len(prompt), len(long))
}

func TestSummarizeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Summarize(context.Background(), "text", summarizer.Metadata{Filename: "a.txt"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestSummarizeNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Summarize(context.Background(), "text", summarizer.Metadata{Filename: "a.txt"})
	require.Error(t, err)
}

func TestSummarizeEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionBody("   ")))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Summarize(context.Background(), "text", summarizer.Metadata{Filename: "a.txt"})
	require.Error(t, err)
}

func TestDisabledAlwaysFails(t *testing.T) {
	d := summarizer.NewDisabled()
	_, err := d.Summarize(context.Background(), "text", summarizer.Metadata{})
	require.Error(t, err)
}
