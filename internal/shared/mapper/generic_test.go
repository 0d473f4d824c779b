package mapper

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapSlice(t *testing.T) {
	assert.Nil(t, MapSlice[int, string](nil, strconv.Itoa))
	assert.Equal(t, []string{"1", "2"}, MapSlice([]int{1, 2}, strconv.Itoa))
	assert.Equal(t, []string{}, MapSlice([]int{}, strconv.Itoa))
}

func TestMapList(t *testing.T) {
	got := MapList[int, string](nil, strconv.Itoa)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, []string{"3"}, MapList([]int{3}, strconv.Itoa))
}

func TestMapValid(t *testing.T) {
	var skipped []string
	got := MapValid([]string{"7", "x", "8", ""}, strconv.Atoi, func(s string, err error) {
		assert.Error(t, err)
		skipped = append(skipped, s)
	})

	assert.Equal(t, []int{7, 8}, got)
	assert.Equal(t, []string{"x", ""}, skipped)
}

func TestMapValidNilSkip(t *testing.T) {
	got := MapValid([]string{"x"}, strconv.Atoi, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
