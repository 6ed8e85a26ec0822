package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

func newService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewEmbeddingService(Config{APIKey: "hf_test", BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
}

func TestEmbed_FlatVector(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+DefaultModel, r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Options.WaitForModel)

		_, _ = w.Write([]byte(`[0.5, 0.25]`))
	})

	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
	assert.Equal(t, 2, svc.Dimensions())
}

func TestEmbed_TokenMatrixIsMeanPooled(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[[1, 2], [3, 4]]`))
	})

	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3}, vec)
}

func TestEmbed_BatchOfOneMatrix(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[[[0, 0], [2, 4]]]`))
	})

	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)
}

func TestEmbed_TruncatesInput(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, MaxInputRunes, utf8.RuneCountInString(req.Inputs))
		_, _ = w.Write([]byte(`[1]`))
	})

	_, err := svc.Embed(context.Background(), strings.Repeat("é", MaxInputRunes+50))
	require.NoError(t, err)
}

func TestEmbed_UnexpectedShape(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"loading"}`))
	})

	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, domain.KindProvider, domain.KindOf(err))
}

func TestEmbed_ServiceUnavailable(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestMeanPool_Ragged(t *testing.T) {
	_, err := meanPool([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
}
