package flat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

func TestSearch_RanksByInnerProduct(t *testing.T) {
	idx := New(2)
	require.NoError(t, idx.Build([][]float32{{1, 0}, {0, 1}, {0.7, 0.7}}))

	hits, err := idx.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, 0, hits[0].Position)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, 2, hits[1].Position)
	assert.InDelta(t, 0.7, hits[1].Score, 1e-6)
}

func TestSearch_SelfIsTopHit(t *testing.T) {
	vectors := [][]float32{
		{0.6, 0.8, 0},
		{0, 0.6, 0.8},
		{0.8, 0, 0.6},
	}
	idx := New(3)
	require.NoError(t, idx.Build(vectors))

	for i, v := range vectors {
		hits, err := idx.Search(v, 1)
		require.NoError(t, err)
		assert.Equal(t, i, hits[0].Position)
	}
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	idx := New(2)
	require.NoError(t, idx.Build([][]float32{{1, 0}, {0, 1}}))

	hits, err := idx.Search([]float32{0, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Position)
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx := New(2)

	hits, err := idx.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	idx := New(2)
	require.NoError(t, idx.Build([][]float32{{1, 0}, {1, 0}, {1, 0}}))

	hits, err := idx.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{hits[0].Position, hits[1].Position, hits[2].Position})
}

func TestSearch_WrongQueryDimension(t *testing.T) {
	idx := New(3)

	_, err := idx.Search([]float32{1, 0}, 1)
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
}

func TestSearch_NonPositiveK(t *testing.T) {
	idx := New(2)

	_, err := idx.Search([]float32{1, 0}, 0)
	assert.Equal(t, domain.KindInputValidation, domain.KindOf(err))
}

func TestBuild_RejectsMixedDimensions(t *testing.T) {
	idx := New(2)

	err := idx.Build([][]float32{{1, 0}, {1, 0, 0}})
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
	assert.Equal(t, 0, idx.Len())
}

func TestBuild_ReplacesAndCopies(t *testing.T) {
	idx := New(2)
	input := [][]float32{{1, 0}}
	require.NoError(t, idx.Build(input))
	input[0][0] = -5

	hits, err := idx.Search([]float32{1, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)

	require.NoError(t, idx.Build([][]float32{{0, 1}, {1, 0}}))
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 2, idx.Dimensions())
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 11.0, Dot([]float32{1, 2}, []float32{3, 4}), 1e-6)
	assert.Equal(t, float32(0), Dot(nil, []float32{1}))
}
