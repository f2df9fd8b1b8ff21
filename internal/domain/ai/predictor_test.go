package ai

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, LabelLow},
		{0.4, LabelLow},
		{0.4000001, LabelMedium},
		{0.55, LabelMedium},
		{0.7, LabelMedium},
		{0.7000001, LabelHigh},
		{1, LabelHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelFor(tt.score), "score %v", tt.score)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(math.NaN()))
	assert.Equal(t, 0.0, ClampScore(-3))
	assert.Equal(t, 1.0, ClampScore(1.5))
	assert.Equal(t, 1.0, ClampScore(math.Inf(1)))
	assert.Equal(t, 0.25, ClampScore(0.25))
}

func TestFeatures_Complete(t *testing.T) {
	f := Features{}
	for _, c := range FeatureColumns {
		f[c] = 1
	}
	assert.True(t, f.Complete())

	delete(f, "isWeekend")
	assert.False(t, f.Complete())
}
