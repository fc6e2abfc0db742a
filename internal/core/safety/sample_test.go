package safety_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/safepath/internal/core/safety"
)

func TestSampleStep(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 9: 1, 10: 1, 19: 1, 20: 2, 99: 9, 137: 13, 1000: 100}
	for n, want := range cases {
		assert.Equal(t, want, safety.SampleStep(n), "n=%d", n)
	}
}

func TestSamplePath(t *testing.T) {
	t.Run("long path uses stride", func(t *testing.T) {
		path := make([]int, 137)
		for i := range path {
			path[i] = i
		}

		got := safety.SamplePath(path)

		// step 13 over 137 points starts at 0 and ends at 130
		require.Len(t, got, 11)
		for i, v := range got {
			assert.Equal(t, i*13, v)
		}
	})

	t.Run("short path is fully sampled", func(t *testing.T) {
		assert.Equal(t, []int{4, 5, 6}, safety.SamplePath([]int{4, 5, 6}))
	})

	t.Run("empty path", func(t *testing.T) {
		assert.Empty(t, safety.SamplePath([]int(nil)))
	})
}
