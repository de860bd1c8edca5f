// Package transcription is the client for the external speech-to-text
// collaborator. It turns a finished recording into a transcript plus
// word-level timings. Retries live here, not in the scoring pipeline.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"speaking-confidence-go/internal/logger"
	"speaking-confidence-go/internal/types"
)

// Result is one turn's transcription output. Words may be empty even when
// Transcript is not; the metrics extractor has a fallback path for that.
type Result struct {
	Transcript string
	Words      []types.WordTiming
}

// Transcriber is the collaborator interface the session controller depends
// on. Implementations must support at most one in-flight call per turn.
type Transcriber interface {
	Transcribe(ctx context.Context, recordingRef string) (Result, error)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client against TRANSCRIBE_URL. Set
// USE_MOCK_TRANSCRIBE=true to run offline with a canned result.
func NewClient() (*Client, error) {
	if os.Getenv("USE_MOCK_TRANSCRIBE") == "true" {
		return &Client{}, nil
	}
	host := os.Getenv("TRANSCRIBE_URL")
	if host == "" {
		return nil, errors.New("TRANSCRIBE_URL not set")
	}
	return &Client{
		baseURL: strings.TrimRight(host, "/"),
		http:    &http.Client{Timeout: 12 * time.Second},
	}, nil
}

type publishResponse struct {
	Code int    `json:"code"`
	Data struct {
		MediaID string `json:"media_id"`
		Status  string `json:"status"`
	} `json:"data"`
	Reason string `json:"reason,omitempty"`
}

type statusResponse struct {
	Code int    `json:"code"`
	Data struct {
		Status     string             `json:"status"` // queued, processing, success, failed
		Transcript string             `json:"transcript"`
		Words      []types.WordTiming `json:"words"`
	} `json:"data"`
	Reason string `json:"reason,omitempty"`
}

// Transcribe publishes the recording, polls until the collaborator is done,
// and returns the transcript with word timings.
func (c *Client) Transcribe(ctx context.Context, recordingRef string) (Result, error) {
	if c.baseURL == "" {
		return mockResult(), nil
	}
	log := logger.New().WithComponent("transcription")

	mediaID, err := c.publish(ctx, recordingRef)
	if err != nil {
		return Result{}, err
	}
	log.WithField("media_id", mediaID).Info("recording published")

	return c.poll(ctx, mediaID)
}

func (c *Client) publish(ctx context.Context, recordingRef string) (string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	_ = w.WriteField("recordingRef", recordingRef)
	_ = w.WriteField("wordTimings", "true")
	_ = w.Close()

	var resp publishResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/transcribe", b.Bytes(), w.FormDataContentType(), &resp); err != nil {
		return "", fmt.Errorf("transcribe publish: %w", err)
	}
	if resp.Code != 200 {
		return "", fmt.Errorf("transcribe publish: code=%d reason=%s", resp.Code, resp.Reason)
	}
	return resp.Data.MediaID, nil
}

func (c *Client) poll(ctx context.Context, mediaID string) (Result, error) {
	u, _ := url.Parse(c.baseURL + "/getstatus")
	q := u.Query()
	q.Set("mediaId", mediaID)
	u.RawQuery = q.Encode()

	ticker := time.NewTicker(1500 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; i < 40; i++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-ticker.C:
		}

		var s statusResponse
		if err := c.doJSON(ctx, http.MethodGet, u.String(), nil, "", &s); err != nil {
			continue
		}
		switch strings.ToLower(s.Data.Status) {
		case "success":
			return Result{Transcript: s.Data.Transcript, Words: s.Data.Words}, nil
		case "queued", "processing":
			continue
		case "failed":
			return Result{}, fmt.Errorf("transcription failed: %s", s.Reason)
		}
	}
	return Result{}, errors.New("transcription timeout")
}

// doJSON issues one JSON call with backoff. Each attempt builds a fresh
// request: a consumed body must never be re-sent.
func (c *Client) doJSON(ctx context.Context, method, url string, payload []byte, contentType string, target interface{}) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 12 * time.Second
	var lastErr error
	op := func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %s", string(respBody))
			return lastErr
		}
		if err := json.Unmarshal(respBody, target); err != nil {
			lastErr = fmt.Errorf("decode: %v body=%s", err, string(respBody))
			return lastErr
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return lastErr
	}
	return nil
}

func mockResult() Result {
	return Result{
		Transcript: "I will handle the schedule change, could you confirm the new time works for everyone",
		Words: []types.WordTiming{
			{Word: "I", Start: 0.4, End: 0.5},
			{Word: "will", Start: 0.5, End: 0.7},
			{Word: "handle", Start: 0.7, End: 1.1},
			{Word: "the", Start: 1.1, End: 1.2},
			{Word: "schedule", Start: 1.2, End: 1.7},
			{Word: "change", Start: 1.7, End: 2.1},
		},
	}
}
