package render_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrightBytes/insight-cli/internal/audit"
	"github.com/BrightBytes/insight-cli/internal/render"
	"github.com/BrightBytes/insight-cli/internal/stats"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func result(groups ...stats.CategoryTotal) *audit.Result {
	return &audit.Result{
		ChosenX:                "region",
		ChosenY:                "revenue",
		CategoricalAggregation: groups,
	}
}

func TestRenderProducesPNGSnapshot(t *testing.T) {
	c := render.NewChart(8)
	res := result(
		stats.CategoryTotal{Key: "East", Total: 600},
		stats.CategoryTotal{Key: "West", Total: 250},
		stats.CategoryTotal{Key: "North", Total: 150},
	)
	require.NoError(t, c.Render(res, nil))

	snap, ok := c.ChartSnapshot()
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(snap, pngHeader), "snapshot must be a PNG")
}

// A single group yields a flat value range, which the chart backend
// rejects unless the axis range is pinned explicitly.
func TestRenderSingleGroup(t *testing.T) {
	c := render.NewChart(8)
	require.NoError(t, c.Render(result(stats.CategoryTotal{Key: "East", Total: 600}), nil))

	snap, ok := c.ChartSnapshot()
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(snap, pngHeader))
}

func TestRenderWithEmptyAggregationClearsSnapshot(t *testing.T) {
	c := render.NewChart(8)
	require.NoError(t, c.Render(result(stats.CategoryTotal{Key: "East", Total: 1}), nil))
	if _, ok := c.ChartSnapshot(); !ok {
		t.Fatal("expected a snapshot after a non-empty render")
	}

	require.NoError(t, c.Render(result(), nil))
	_, ok := c.ChartSnapshot()
	assert.False(t, ok, "empty aggregation must clear the snapshot")
}

func TestSnapshotIsACopy(t *testing.T) {
	c := render.NewChart(8)
	require.NoError(t, c.Render(result(stats.CategoryTotal{Key: "East", Total: 10}), nil))
	first, ok := c.ChartSnapshot()
	require.True(t, ok)
	first[0] = 0

	second, ok := c.ChartSnapshot()
	require.True(t, ok)
	assert.Equal(t, byte(0x89), second[0])
}
