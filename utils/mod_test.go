package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindIndex(t *testing.T) {
	assert.Equal(t, 1, FindIndex([]string{"a", "b", "b"}, "b"))
	assert.Equal(t, -1, FindIndex([]int{1, 2}, 3))
	assert.Equal(t, -1, FindIndex(nil, 0))
}

func TestRotate(t *testing.T) {
	in := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2, 3}, Rotate(in, 0))
	assert.Equal(t, []int{3, 1, 2}, Rotate(in, 1))
	assert.Equal(t, []int{2, 3, 1}, Rotate(in, -1))
	assert.Equal(t, []int{3, 1, 2}, Rotate(in, 4))
	assert.Equal(t, []int{1, 2, 3}, in, "input untouched")
	assert.Empty(t, Rotate([]int{}, 2))
}
