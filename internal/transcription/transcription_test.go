package transcription

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTranscribe(t *testing.T) {
	t.Run("retried publish re-sends the full form body", func(t *testing.T) {
		var publishBodies [][]byte
		mux := http.NewServeMux()
		mux.HandleFunc("/transcribe", func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			publishBodies = append(publishBodies, body)
			if len(publishBodies) == 1 {
				http.Error(w, "transient", http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, `{"code":200,"data":{"media_id":"m-1","status":"queued"}}`)
		})
		mux.HandleFunc("/getstatus", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"status":"success","transcript":"all set","words":[{"word":"all","start":0.2,"end":0.5}]}}`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		c := &Client{baseURL: srv.URL, http: srv.Client()}
		res, err := c.Transcribe(context.Background(), "rec-99")
		if err != nil {
			t.Fatalf("transcribe: %v", err)
		}
		if res.Transcript != "all set" {
			t.Errorf("transcript = %q, want %q", res.Transcript, "all set")
		}
		if len(res.Words) != 1 {
			t.Errorf("words = %d, want 1", len(res.Words))
		}

		if len(publishBodies) < 2 {
			t.Fatalf("publish attempts = %d, want a retry", len(publishBodies))
		}
		for i, body := range publishBodies {
			if !bytes.Contains(body, []byte("rec-99")) {
				t.Errorf("publish attempt %d is missing the recording ref", i+1)
			}
		}
		if !bytes.Equal(publishBodies[0], publishBodies[1]) {
			t.Error("retried publish body differs from the first attempt")
		}
	})

	t.Run("failed status is terminal", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/transcribe", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"media_id":"m-2","status":"queued"}}`)
		})
		mux.HandleFunc("/getstatus", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"status":"failed"},"reason":"bad audio"}`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		c := &Client{baseURL: srv.URL, http: srv.Client()}
		if _, err := c.Transcribe(context.Background(), "rec-1"); err == nil {
			t.Error("expected error for failed transcription")
		}
	})

	t.Run("cancellation stops polling", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/transcribe", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"media_id":"m-3","status":"queued"}}`)
		})
		mux.HandleFunc("/getstatus", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"status":"processing"}}`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		c := &Client{baseURL: srv.URL, http: srv.Client()}
		if _, err := c.Transcribe(ctx, "rec-1"); err == nil {
			t.Error("expected error after cancellation")
		}
	})
}
