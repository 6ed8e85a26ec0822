package cached

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

type countingEmbedder struct {
	calls atomic.Int64
	err   error
	model string
}

func (m *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (m *countingEmbedder) Dimensions() int              { return 2 }
func (m *countingEmbedder) ModelName() string            { return m.model }
func (m *countingEmbedder) Ping(_ context.Context) error { return nil }
func (m *countingEmbedder) Close() error                 { return nil }

func TestEmbeddingService_ImplementsInterface(t *testing.T) {
	var _ driven.EmbeddingService = New(&countingEmbedder{}, 10)
}

func TestEmbed_CachesRepeatedText(t *testing.T) {
	inner := &countingEmbedder{model: "m"}
	c := New(inner, 10)

	first, err := c.Embed(context.Background(), "what is on page two")
	require.NoError(t, err)
	second, err := c.Embed(context.Background(), "what is on page two")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestEmbed_DistinctTextsMiss(t *testing.T) {
	inner := &countingEmbedder{model: "m"}
	c := New(inner, 10)

	_, _ = c.Embed(context.Background(), "a")
	_, _ = c.Embed(context.Background(), "b")

	assert.Equal(t, int64(2), inner.calls.Load())
}

func TestEmbed_ErrorsAreNotCached(t *testing.T) {
	inner := &countingEmbedder{model: "m", err: errors.New("down")}
	c := New(inner, 10)

	_, err := c.Embed(context.Background(), "a")
	require.Error(t, err)
	_, err = c.Embed(context.Background(), "a")
	require.Error(t, err)

	assert.Equal(t, int64(2), inner.calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestEmbed_ReturnedSliceIsNotShared(t *testing.T) {
	c := New(&countingEmbedder{model: "m"}, 10)

	vec, err := c.Embed(context.Background(), "abc")
	require.NoError(t, err)
	vec[0] = 99

	again, err := c.Embed(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, float32(3), again[0])
}

func TestEmbed_EvictsOldest(t *testing.T) {
	inner := &countingEmbedder{model: "m"}
	c := New(inner, 1)

	_, _ = c.Embed(context.Background(), "a")
	_, _ = c.Embed(context.Background(), "b")
	_, _ = c.Embed(context.Background(), "a")

	assert.Equal(t, int64(3), inner.calls.Load())
}

func TestPassthrough(t *testing.T) {
	inner := &countingEmbedder{model: "nomic-embed-text"}
	c := New(inner, 0)

	assert.Equal(t, 2, c.Dimensions())
	assert.Equal(t, "nomic-embed-text", c.ModelName())
	assert.NoError(t, c.Ping(context.Background()))
	assert.Same(t, inner, c.Inner())
	assert.NoError(t, c.Close())
}
