package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoints(t *testing.T) {
	tests := []struct {
		name      string
		finish    int
		handicap  int
		isAllStar bool
		expected  int
	}{
		{
			name:     "winner no handicap doubles",
			finish:   1,
			expected: 50,
		},
		{
			name:      "winner all-star never doubles",
			finish:    1,
			isAllStar: true,
			expected:  25,
		},
		{
			name:     "handicap moves finish into podium",
			finish:   8,
			handicap: 5,
			expected: 40, // adjusted 3 -> 20 base, doubled
		},
		{
			name:      "all-star with handicap to first",
			finish:    3,
			handicap:  2,
			isAllStar: true,
			expected:  25, // adjusted 1 -> 25, not doubled
		},
		{
			name:     "adjusted outside top ten does not double",
			finish:   15,
			handicap: 3,
			expected: 10, // adjusted 12 -> 10 base
		},
		{
			name:     "handicap floors at position one",
			finish:   2,
			handicap: 10,
			expected: 50, // adjusted clamps to 1
		},
		{
			name:     "tenth place doubles",
			finish:   10,
			expected: 24,
		},
		{
			name:     "eleventh place does not double",
			finish:   11,
			expected: 11,
		},
		{
			name:     "last scored position",
			finish:   22,
			expected: 0,
		},
		{
			name:     "negative handicap pushes rider back",
			finish:   5,
			handicap: -10,
			expected: 7, // adjusted 15
		},
		{
			name:     "position beyond table scores zero",
			finish:   30,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Points(tt.finish, tt.handicap, tt.isAllStar))
		})
	}
}

func TestPointsDeterminism(t *testing.T) {
	for finish := 1; finish <= 25; finish++ {
		for handicap := -5; handicap <= 10; handicap++ {
			first := Points(finish, handicap, false)
			second := Points(finish, handicap, false)
			assert.Equal(t, first, second)
		}
	}
}

func TestDoublingInvariant(t *testing.T) {
	for finish := 1; finish <= MaxScoredPosition; finish++ {
		for handicap := 0; handicap <= 8; handicap++ {
			adjusted := AdjustedPosition(finish, handicap)
			base := BasePoints(adjusted)

			nonAllStar := Points(finish, handicap, false)
			allStar := Points(finish, handicap, true)

			assert.Equal(t, base, allStar, "all-stars never double")
			if adjusted <= 10 {
				assert.Equal(t, 2*base, nonAllStar, "non-all-star in top ten doubles")
			} else {
				assert.Equal(t, base, nonAllStar)
			}
		}
	}
}

func TestBasePointsTable(t *testing.T) {
	expected := map[int]int{
		1: 25, 2: 22, 3: 20, 4: 18, 5: 17,
		6: 16, 7: 15, 8: 14, 9: 13, 10: 12,
		11: 11, 12: 10, 13: 9, 14: 8, 15: 7,
		16: 6, 17: 5, 18: 4, 19: 3, 20: 2,
		21: 1, 22: 0,
	}
	for pos, pts := range expected {
		assert.Equal(t, pts, BasePoints(pos), "position %d", pos)
	}
	assert.Equal(t, 0, BasePoints(0))
	assert.Equal(t, 0, BasePoints(23))
	assert.Equal(t, 0, BasePoints(-1))
}
