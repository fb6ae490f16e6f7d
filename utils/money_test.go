package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(3000), ToMinorUnits(30.00))
	assert.Equal(t, int64(3000), ToMinorUnits(29.999999999))
	assert.Equal(t, int64(1290), ToMinorUnits(12.90))
	assert.Equal(t, int64(0), ToMinorUnits(0))
	assert.Equal(t, int64(1), ToMinorUnits(0.01))
}
