// ABOUTME: Tests for the HTTP generation transport using httptest servers
// ABOUTME: Covers the wire contract, auth header and every failure mapping

package generation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/fitcheck-studio/internal/config"
	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/metrics"
	"github.com/2389/fitcheck-studio/internal/scene"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *HTTPGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewHTTPGenerator(config.GenerationConfig{
		Endpoint: srv.URL,
		APIKey:   "test-key",
		Model:    "test-model",
		Timeout:  5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return g
}

func testRequest(t *testing.T) *Request {
	t.Helper()
	req, err := SceneRequest(baseURL, []string{"Briefs"}, "beach at dusk", scene.Defaults())
	require.NoError(t, err)
	return req
}

func TestHTTPGenerator_Success(t *testing.T) {
	var got APIRequest
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(APIResponse{Image: &Image{MimeType: "image/webp", Data: "b3V0"}})
	})

	out, err := g.Generate(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.Equal(t, "data:image/webp;base64,b3V0", out)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, OpReconstructScene, got.Operation)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "YmFzZQ==", got.Images[0].Data)
	assert.Equal(t, scene.FullBody, got.Settings.VisualMode)
}

func TestHTTPGenerator_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
		message string
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			want: ErrQuota,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model overloaded", http.StatusServiceUnavailable)
			},
			message: "unexpected status 503: model overloaded",
		},
		{
			name: "refusal text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"text":"cannot render that"}`)
			},
			want:    ErrNoImage,
			message: "cannot render that",
		},
		{
			name: "empty object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{}`)
			},
			want: ErrNoImage,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"image":`)
			},
			message: "decoding response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, tt.handler)

			_, err := g.Generate(context.Background(), testRequest(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, faults.ErrGeneration)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			if tt.message != "" {
				assert.True(t, strings.Contains(err.Error(), tt.message), "error %q should mention %q", err, tt.message)
			}
		})
	}
}

func TestHTTPGenerator_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	g, err := NewHTTPGenerator(config.GenerationConfig{Endpoint: srv.URL}, nil)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), testRequest(t))
	assert.ErrorIs(t, err, faults.ErrGeneration)
}

func TestNewHTTPGenerator_RequiresEndpoint(t *testing.T) {
	_, err := NewHTTPGenerator(config.GenerationConfig{}, nil)
	assert.ErrorContains(t, err, "endpoint")
}

func TestInstrument(t *testing.T) {
	assert.Nil(t, Instrument(nil, nil))

	m := metrics.New()
	calls := 0
	g := Instrument(GeneratorFunc(func(ctx context.Context, req *Request) (string, error) {
		calls++
		return "data:image/png;base64,eA==", nil
	}), m)

	out, err := g.Generate(context.Background(), &Request{Operation: OpBaseModel})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,eA==", out)
	assert.Equal(t, 1, calls)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `fitcheck_generation_requests_total{operation="base_model",status="success"} 1`)
}
