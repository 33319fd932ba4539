package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mise-backend/pkg/config"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Stream      bool    `json:"stream"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func writeChunk(w http.ResponseWriter, content string) {
	payload := fmt.Sprintf(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"test","choices":[{"index":0,"delta":{"content":%q}}]}`, content)
	fmt.Fprintf(w, "data: %s\n\n", payload)
	w.(http.Flusher).Flush()
}

func newTestClient(t *testing.T, srv *httptest.Server, timeout time.Duration) *Client {
	t.Helper()
	client, err := New(config.CompletionConfig{
		APIKey:        "sk-test",
		BaseURL:       srv.URL + "/v1",
		Model:         "test-model",
		StreamTimeout: timeout,
	})
	require.NoError(t, err)
	return client
}

func drain(t *testing.T, stream ChunkStream) ([]string, error) {
	t.Helper()
	var chunks []string
	for {
		chunk, err := stream.Recv()
		if err != nil {
			return chunks, err
		}
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
}

func TestStreamCompleteForwardsChunksInOrder(t *testing.T) {
	var got capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range []string{"Order ", "basil ", "today."} {
			writeChunk(w, c)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	stream, err := newTestClient(t, srv, 0).StreamComplete(context.Background(), "system brief", "user ask", Params{MaxTokens: 1500, Temperature: 0.7})
	require.NoError(t, err)
	defer stream.Close()

	chunks, err := drain(t, stream)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"Order ", "basil ", "today."}, chunks)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 1500, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	assert.True(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "system brief", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestStreamCompleteClassifiesSetupFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{name: "bad key", status: http.StatusUnauthorized},
		{name: "quota", status: http.StatusTooManyRequests, transient: true},
		{name: "upstream down", status: http.StatusBadGateway, transient: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"error":{"message":"nope","type":"invalid_request_error"}}`)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv, 0).StreamComplete(context.Background(), "s", "u", Params{})
			require.Error(t, err)
			assert.Equal(t, tt.transient, IsTransient(err))
			assert.Equal(t, !tt.transient, IsFatal(err))
		})
	}
}

func TestStreamCompleteMidStreamAbort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeChunk(w, "partial ")
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	stream, err := newTestClient(t, srv, 0).StreamComplete(context.Background(), "s", "u", Params{})
	require.NoError(t, err)
	defer stream.Close()

	chunks, err := drain(t, stream)
	assert.Equal(t, []string{"partial "}, chunks)
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF), "an aborted stream must not look like a clean end")
}

func TestStreamCompleteHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeChunk(w, "first ")
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := newTestClient(t, srv, 0).StreamComplete(ctx, "s", "u", Params{})
	require.NoError(t, err)
	defer stream.Close()

	first, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "first ", first)

	cancel()
	_, err = drain(t, stream)
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestStreamCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeChunk(w, "slow ")
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	stream, err := newTestClient(t, srv, 100*time.Millisecond).StreamComplete(context.Background(), "s", "u", Params{})
	require.NoError(t, err)
	defer stream.Close()

	_, err = drain(t, stream)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "deadline") || strings.Contains(err.Error(), "canceled"), err.Error())
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(config.CompletionConfig{Model: "m"})
	assert.Error(t, err)
	_, err = New(config.CompletionConfig{APIKey: "k"})
	assert.Error(t, err)
}
