package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrorKind classifies synthesis failures so callers can decide how to degrade.
type ErrorKind string

const (
	KindNetwork     ErrorKind = "network"
	KindTimeout     ErrorKind = "timeout"
	KindRateLimited ErrorKind = "rate_limited"
	KindUnknown     ErrorKind = "unknown"
)

// SynthesisError is returned for every failed synthesis.
type SynthesisError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *SynthesisError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tts %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("tts %s: %v", e.Kind, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// maxChunkRunes is the longest text the endpoint accepts per request.
const maxChunkRunes = 200

// Client synthesizes MP3 speech through the Google Translate TTS endpoint.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient builds a TTS client.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = "https://translate.google.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "Mozilla/5.0 (compatible; campus-connect/1.0)",
		http:      httpClient,
	}
}

// Synthesize returns MP3 bytes for text in the given language ("en", "hi").
// Long text is split into chunks whose audio is concatenated.
func (c *Client) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	chunks := Chunk(text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, &SynthesisError{Kind: KindUnknown, Err: errors.New("empty text")}
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := c.fetch(ctx, &audio, chunk, lang, i, len(chunks)); err != nil {
			return nil, err
		}
	}
	return audio.Bytes(), nil
}

func (c *Client) fetch(ctx context.Context, dst *bytes.Buffer, chunk, lang string, idx, total int) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", lang)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))
	q.Set("client", "tw-ob")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return &SynthesisError{Kind: KindUnknown, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &SynthesisError{Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		kind := KindUnknown
		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
			kind = KindRateLimited
		}
		return &SynthesisError{Kind: kind, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	if _, err := io.Copy(dst, io.LimitReader(resp.Body, 8<<20)); err != nil {
		return &SynthesisError{Kind: classify(err), Err: err}
	}
	return nil
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) {
		return KindNetwork
	}
	return KindUnknown
}

// Chunk splits text into pieces of at most limit runes, breaking on whitespace when possible.
func Chunk(text string, limit int) []string {
	words := strings.Fields(text)
	chunks := make([]string, 0, 1)
	var current []rune
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, string(current))
			current = current[:0]
		}
	}
	for _, word := range words {
		w := []rune(word)
		for len(w) > limit {
			flush()
			chunks = append(chunks, string(w[:limit]))
			w = w[limit:]
		}
		extra := len(w)
		if len(current) > 0 {
			extra++
		}
		if len(current)+extra > limit {
			flush()
		}
		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, w...)
	}
	flush()
	return chunks
}
