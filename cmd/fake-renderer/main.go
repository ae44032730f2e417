// ABOUTME: Minimal fake generation endpoint for local runs and end-to-end testing
// ABOUTME: Usage: fake-renderer [-addr 127.0.0.1:8088] [-delay 200ms] [-fail-every 0]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/2389/fitcheck-studio/internal/generation"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8088", "listen address")
	delay := flag.Duration("delay", 200*time.Millisecond, "simulated render latency")
	failEvery := flag.Int("fail-every", 0, "answer every Nth request with 429 (0 disables)")
	flag.Parse()

	if err := run(*addr, *delay, *failEvery); err != nil {
		log.Fatal(err)
	}
}

func run(addr string, delay time.Duration, failEvery int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRenderer(delay, failEvery),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("fake renderer listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newRenderer answers each request with its first input image and tags the
// operation in the X-Fake-Operation header.
func newRenderer(delay time.Duration, failEvery int) http.Handler {
	var count atomic.Int64

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req generation.APIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request: "+err.Error(), http.StatusBadRequest)
			return
		}

		n := count.Add(1)
		log.Printf("request %d: %s (%d images, model %s)", n, req.Operation, len(req.Images), req.Model)

		if failEvery > 0 && n%int64(failEvery) == 0 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Fake-Operation", string(req.Operation))

		resp := generation.APIResponse{}
		if len(req.Images) == 0 {
			resp.Text = "no input image"
		} else {
			img := req.Images[0]
			resp.Image = &img
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
}
