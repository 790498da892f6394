package linters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffsetOf(t *testing.T) {
	assert.Equal(t, uint32(0), offsetOf(0))
	assert.Equal(t, uint32(42), offsetOf(42))
	assert.Equal(t, uint32(math.MaxUint32), offsetOf(math.MaxUint32))

	assert.Panics(t, func() { offsetOf(-1) })
	assert.Panics(t, func() { offsetOf(math.MaxUint32 + 1) })
}
