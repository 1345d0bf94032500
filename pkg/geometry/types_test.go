package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRectContainsEdgesInclusive(t *testing.T) {
	r := NewRect(10, 20, 100, 50)

	require.True(t, r.Contains(NewPoint2D(10, 20)))
	require.True(t, r.Contains(NewPoint2D(110, 70)))
	require.True(t, r.Contains(NewPoint2D(60, 45)))
	require.False(t, r.Contains(NewPoint2D(9.9, 45)))
	require.False(t, r.Contains(NewPoint2D(60, 70.1)))
}

func TestRectPixels(t *testing.T) {
	r := NewRect(0.4, 10.6, 99.4, 20)
	require.Equal(t, image.Rect(0, 11, 100, 31), r.Pixels())
	require.InDelta(t, 30.6, r.Bottom(), 1e-9)
	require.InDelta(t, 50.1, r.CenterX(), 1e-9)
}

func TestNearLineIsStrict(t *testing.T) {
	require.True(t, NearLine(119.9, 100, 20))
	require.False(t, NearLine(120, 100, 20))
	require.True(t, NearLine(80.1, 100, 20))
	require.False(t, NearLine(80, 100, 20))
}

func TestSizeFitWidth(t *testing.T) {
	tests := []struct {
		name     string
		in       Size
		maxWidth float64
		want     Size
	}{
		{"narrow", NewSize(800, 600), 1200, NewSize(800, 600)},
		{"exact", NewSize(1200, 300), 1200, NewSize(1200, 300)},
		{"wide", NewSize(2400, 1000), 1200, NewSize(1200, 500)},
		{"unbounded", NewSize(5000, 10), 0, NewSize(5000, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.in.FitWidth(tt.maxWidth))
		})
	}
}
