package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterHighs(t *testing.T) {
	tests := []struct {
		name  string
		highs []float64
		cands []int
		lows  []int
		want  []int
	}{
		{
			name:  "greater first skips the next",
			highs: []float64{15, 12, 10},
			cands: []int{0, 1, 2},
			want:  []int{0, 2},
		},
		{
			name:  "greater second is compared onward",
			highs: []float64{12, 18, 16, 14},
			cands: []int{0, 1, 2, 3},
			want:  []int{1, 3},
		},
		{
			name:  "separating low keeps both",
			highs: []float64{15, 1, 12},
			cands: []int{0, 2},
			lows:  []int{1},
			want:  []int{0, 2},
		},
		{
			name:  "low outside the pair does not separate",
			highs: []float64{1, 15, 12, 1},
			cands: []int{1, 2},
			lows:  []int{0, 3},
			want:  []int{1, 2},
		},
		{
			name:  "last candidate is always kept",
			highs: []float64{15, 12},
			cands: []int{0, 1},
			want:  []int{0, 1},
		},
		{
			name:  "equal highs keep the later one",
			highs: []float64{15, 15, 15},
			cands: []int{0, 1, 2},
			want:  []int{2},
		},
		{
			name:  "single candidate",
			highs: []float64{15},
			cands: []int{0},
			want:  []int{0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lows := make([]float64, len(tt.highs))
			b := mkBars(tt.highs, lows)
			assert.Equal(t, tt.want, FilterHighs(b, tt.cands, tt.lows))
		})
	}
}

func TestFilterHighs_Empty(t *testing.T) {
	assert.Nil(t, FilterHighs(nil, nil, []int{1, 2}))
}

func TestFilterLows(t *testing.T) {
	tests := []struct {
		name  string
		lows  []float64
		cands []int
		highs []int
		want  []int
	}{
		{
			name:  "lesser first skips the next",
			lows:  []float64{5, 8, 9},
			cands: []int{0, 1, 2},
			want:  []int{0, 2},
		},
		{
			name:  "lesser second is compared onward",
			lows:  []float64{8, 3, 4, 6},
			cands: []int{0, 1, 2, 3},
			want:  []int{1, 3},
		},
		{
			name:  "separating high keeps both",
			lows:  []float64{5, 20, 8},
			cands: []int{0, 2},
			highs: []int{1},
			want:  []int{0, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			highs := make([]float64, len(tt.lows))
			for i, l := range tt.lows {
				highs[i] = l + 100
			}
			b := mkBars(highs, tt.lows)
			assert.Equal(t, tt.want, FilterLows(b, tt.cands, tt.highs))
		})
	}
}

func TestFilter_IdempotentOnAlternatingAndCollapsedRuns(t *testing.T) {
	b := mkBars([]float64{15, 12, 10, 14, 11}, []float64{0, 0, 0, 0, 0})
	cases := [][]int{
		{0, 1, 2},
		{0, 2, 4},
		{3, 4},
	}
	lows := []int{}
	for _, cands := range cases {
		once := FilterHighs(b, cands, lows)
		assert.Equal(t, once, FilterHighs(b, once, lows), "%v", cands)
	}

	s, err := AnalyzeWindow(zigzag(risingMids), 2)
	if assert.NoError(t, err) {
		bs := s.Bars()
		highs, lows := s.ValidHighs(), s.ValidLows()
		assert.Equal(t, highs, FilterHighs(bs, highs, lows))
		assert.Equal(t, lows, FilterLows(bs, lows, highs))
	}
}
