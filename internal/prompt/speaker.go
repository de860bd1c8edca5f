// Package prompt is the client for the external text-to-speech collaborator
// that voices scenario prompts.
package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Supported providers.
const (
	ProviderDeepgram   = "deepgram"
	ProviderElevenLabs = "elevenlabs"
)

// assumedWordsPerSecond estimates playback duration when the provider does
// not report one.
const assumedWordsPerSecond = 2.5

// Audio is one synthesized prompt, ready for playback.
type Audio struct {
	Data       []byte
	MimeType   string
	DurationMs int64
}

// Speaker is the collaborator interface the session controller depends on.
type Speaker interface {
	Synthesize(ctx context.Context, text string) (Audio, error)
}

type Client struct {
	provider string
	apiKey   string
	http     *http.Client
}

// NewClient builds a speaker from TTS_PROVIDER and TTS_API_KEY. Set
// USE_MOCK_TTS=true to run offline.
func NewClient() (*Client, error) {
	if os.Getenv("USE_MOCK_TTS") == "true" {
		return &Client{}, nil
	}
	provider := os.Getenv("TTS_PROVIDER")
	if provider == "" {
		provider = ProviderDeepgram
	}
	if provider != ProviderDeepgram && provider != ProviderElevenLabs {
		return nil, fmt.Errorf("unsupported TTS provider %q", provider)
	}
	key := os.Getenv("TTS_API_KEY")
	if key == "" {
		return nil, errors.New("TTS_API_KEY not set")
	}
	return &Client{
		provider: provider,
		apiKey:   key,
		http:     &http.Client{Timeout: 20 * time.Second},
	}, nil
}

// Synthesize voices one prompt. Retries transient failures with backoff; a
// final failure is terminal for the session (the controller never scores a
// session whose prompts did not play).
func (c *Client) Synthesize(ctx context.Context, text string) (Audio, error) {
	if c.provider == "" {
		return Audio{MimeType: "audio/mp3", DurationMs: estimateDurationMs(text)}, nil
	}

	endpoint, headers := c.request(text)
	payload, _ := json.Marshal(map[string]string{"text": text})

	var out Audio
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 20 * time.Second
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			return fmt.Errorf("tts server error: %s", string(body))
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("tts error %d: %s", resp.StatusCode, string(body)))
		}
		out = Audio{Data: body, MimeType: "audio/mp3", DurationMs: estimateDurationMs(text)}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return Audio{}, fmt.Errorf("synthesize prompt: %w", err)
	}
	return out, nil
}

func (c *Client) request(text string) (string, map[string]string) {
	switch c.provider {
	case ProviderElevenLabs:
		voice := os.Getenv("ELEVENLABS_VOICE_ID")
		return "https://api.elevenlabs.io/v1/text-to-speech/" + voice,
			map[string]string{"xi-api-key": c.apiKey, "Content-Type": "application/json"}
	default:
		return "https://api.deepgram.com/v1/speak?model=aura-asteria-en",
			map[string]string{"Authorization": "Token " + c.apiKey, "Content-Type": "application/json"}
	}
}

func estimateDurationMs(text string) int64 {
	words := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			inWord = false
		} else if !inWord {
			words++
			inWord = true
		}
	}
	return int64(float64(words) / assumedWordsPerSecond * 1000)
}
