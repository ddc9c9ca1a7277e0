package safetystock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZScoreExactMatch(t *testing.T) {
	assert.Equal(t, 1.2816, zScore(0.90))
	assert.Equal(t, 1.6449, zScore(0.95))
	assert.Equal(t, 1.96, zScore(0.975))
	assert.Equal(t, 2.3263, zScore(0.99))
}

func TestZScoreNearestMatch(t *testing.T) {
	// 0.94 is closer to 0.95 than to 0.90
	assert.Equal(t, 1.6449, zScore(0.94))
	// 0.98 is closer to 0.975 than to 0.99
	assert.Equal(t, 1.96, zScore(0.98))
	// far outside the table still snaps to the nearest entry
	assert.Equal(t, 1.2816, zScore(0.50))
	assert.Equal(t, 2.3263, zScore(0.999))
}

func TestClampToP95CapsOutlier(t *testing.T) {
	series := make([]float64, 30)
	for i := range series {
		series[i] = 10
	}
	series[7] = 1000

	clamped := clampToP95(series)

	// floor(0.95*29) = 27, sorted[27] = 10, so the spike is capped at 10
	for _, v := range clamped {
		assert.Equal(t, 10.0, v)
	}
}

func TestClampToP95PreservesUniformSeries(t *testing.T) {
	series := []float64{3, 3, 3, 3}
	assert.Equal(t, series, clampToP95(series))
}

func TestClampToP95Empty(t *testing.T) {
	assert.Nil(t, clampToP95(nil))
}

func TestMeanStdDevSampleVariance(t *testing.T) {
	mean, sd := meanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	assert.Equal(t, 5.0, mean)
	// sample (n-1) deviation, not population
	assert.InDelta(t, 2.1381, sd, 0.0001)
}

func TestMeanStdDevSinglePoint(t *testing.T) {
	mean, sd := meanStdDev([]float64{42})
	assert.Equal(t, 42.0, mean)
	assert.Equal(t, 0.0, sd)
}

func TestMeanStdDevAllZero(t *testing.T) {
	mean, sd := meanStdDev(make([]float64, 30))
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, sd)
}
