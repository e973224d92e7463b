package tts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeConcatenatesChunks(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/translate_tts", r.URL.Path)
		assert.Equal(t, "hi", r.URL.Query().Get("tl"))
		_, _ = w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	text := strings.Repeat("नमस्ते दोस्त ", 30)
	audio, err := NewClient(srv.URL, time.Second, srv.Client()).Synthesize(context.Background(), text, "hi")
	require.NoError(t, err)

	n := int(atomic.LoadInt32(&calls))
	assert.Greater(t, n, 1)
	assert.Equal(t, strings.Repeat("mp3", n), string(audio))
}

func TestSynthesizeRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, srv.Client()).Synthesize(context.Background(), "hello", "en")
	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	assert.Equal(t, KindRateLimited, synthErr.Kind)
	assert.Equal(t, http.StatusForbidden, synthErr.StatusCode)
}

func TestSynthesizeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0, &http.Client{Timeout: 20 * time.Millisecond})
	_, err := client.Synthesize(context.Background(), "hello", "en")
	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	assert.Equal(t, KindTimeout, synthErr.Kind)
}

func TestSynthesizeNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).Synthesize(context.Background(), "hello", "en")
	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	assert.Equal(t, KindNetwork, synthErr.Kind)
}

func TestChunkRespectsLimit(t *testing.T) {
	text := "Walk 250m (4 min) from Computer Science and Engineering to Mechanical Engineering"
	chunks := Chunk(text, 20)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 20)
	}
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(chunks, " "))
	assert.Empty(t, Chunk("   ", 20))
}
