// ABOUTME: Tests for the fake renderer handler through the real HTTP generator
// ABOUTME: Confirms the wire contract both sides agree on

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/fitcheck-studio/internal/config"
	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/generation"
	"github.com/2389/fitcheck-studio/internal/scene"
)

func newClient(t *testing.T, failEvery int) *generation.HTTPGenerator {
	t.Helper()
	srv := httptest.NewServer(newRenderer(0, failEvery))
	t.Cleanup(srv.Close)

	g, err := generation.NewHTTPGenerator(config.GenerationConfig{Endpoint: srv.URL}, nil)
	require.NoError(t, err)
	return g
}

func TestRenderer_EchoesFirstImage(t *testing.T) {
	g := newClient(t, 0)
	source := generation.EncodeDataURL("image/jpeg", []byte("selfie"))

	req, err := generation.BaseModelRequest(source, scene.Neutral, scene.Regular, scene.Defaults())
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, source, out)
}

func TestRenderer_FailEvery(t *testing.T) {
	g := newClient(t, 2)
	source := generation.EncodeDataURL("image/png", []byte("x"))
	req, err := generation.BaseModelRequest(source, scene.Neutral, scene.Regular, scene.Defaults())
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), req)
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), req)
	assert.ErrorIs(t, err, generation.ErrQuota)
	assert.ErrorIs(t, err, faults.ErrGeneration)
}

func TestRenderer_RejectsBadRequests(t *testing.T) {
	h := newRenderer(0, 0)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"operation":"base_model","images":[]}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "base_model", rec.Header().Get("X-Fake-Operation"))
	assert.Contains(t, rec.Body.String(), "no input image")
}
