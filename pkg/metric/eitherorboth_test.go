package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEitherOrBoth_Constructors(t *testing.T) {
	l := Left(1)
	assert.True(t, l.HasLeft())
	assert.False(t, l.HasRight())
	assert.False(t, l.IsBoth())

	r := Right(2)
	assert.False(t, r.HasLeft())
	assert.True(t, r.HasRight())

	b := Both(1, 2)
	assert.True(t, b.HasLeft())
	assert.True(t, b.HasRight())
	assert.True(t, b.IsBoth())
}

func TestCombine_TruthTable(t *testing.T) {
	add := func(a, b int) int { return a + b }

	// left + left
	assert.Equal(t, Left(3), Combine(Left(1), Left(2), add))
	// left + right -> both
	assert.Equal(t, Both(1, 2), Combine(Left(1), Right(2), add))
	// right + right
	assert.Equal(t, Right(3), Combine(Right(1), Right(2), add))
	// both + left
	assert.Equal(t, Both(4, 20), Combine(Both(1, 20), Left(3), add))
	// both + right
	assert.Equal(t, Both(1, 23), Combine(Both(1, 20), Right(3), add))
	// both + both
	assert.Equal(t, Both(4, 24), Combine(Both(1, 20), Both(3, 4), add))
}

func TestZip_PreservesOrder(t *testing.T) {
	left := []string{"a", "b", "c"}
	right := []string{"b", "c", "d"}

	zipped := Zip(left, right)

	var got []string
	for _, z := range zipped {
		if lv, ok := z.LeftValue(); ok {
			got = append(got, "L:"+lv)
		}
		if rv, ok := z.RightValue(); ok {
			got = append(got, "R:"+rv)
		}
	}

	assert.True(t, zipped[0].HasLeft() && !zipped[0].HasRight())
	assert.True(t, zipped[len(zipped)-1].HasRight() && !zipped[len(zipped)-1].HasLeft())

	var keys []string
	for _, z := range zipped {
		if lv, ok := z.LeftValue(); ok {
			keys = append(keys, lv)
		} else if rv, ok := z.RightValue(); ok {
			keys = append(keys, rv)
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, keys)
}

func TestZip_EmptySides(t *testing.T) {
	zipped := Zip([]int{}, []int{1, 2})
	assert.Len(t, zipped, 2)
	for _, z := range zipped {
		assert.True(t, z.HasRight())
		assert.False(t, z.HasLeft())
	}
}
