package rank

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediascout/pkg/models"
)

func withPop(v float64) models.CatalogItem {
	return models.CatalogItem{PopularityRaw: &v}
}

func TestNormalizePopularityScalesRaw(t *testing.T) {
	scores := NormalizePopularity([]models.CatalogItem{
		withPop(8),
		withPop(0),
		withPop(10),
	})

	require.Len(t, scores, 3)
	assert.InDelta(t, 80, scores[0], 1e-9)
	assert.Equal(t, 0.0, scores[1])
	assert.Equal(t, 100.0, scores[2])
}

func TestNormalizePopularityClamps(t *testing.T) {
	scores := NormalizePopularity([]models.CatalogItem{
		withPop(12),
		withPop(-1),
	})

	assert.Equal(t, 100.0, scores[0])
	assert.Equal(t, 0.0, scores[1])
}

func TestNormalizePopularitySynopsisProxy(t *testing.T) {
	scores := NormalizePopularity([]models.CatalogItem{
		{Synopsis: strings.Repeat("a long synopsis. ", 40)},
		{Synopsis: "short"},
		{Synopsis: ""},
	})

	assert.Greater(t, scores[0], scores[1], "longer synopsis ranks above shorter")
	assert.Greater(t, scores[1], scores[2], "any synopsis ranks above none")
	assert.Equal(t, 0.0, scores[2])
}

func TestNormalizePopularityProxyNeverBeatsTopRaw(t *testing.T) {
	scores := NormalizePopularity([]models.CatalogItem{
		{Synopsis: strings.Repeat("x", 100000)},
		withPop(8),
	})

	assert.Less(t, scores[0], scores[1])
}
