package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiter(t *testing.T) {
	l := NewLimiter(2)
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
	assert.Equal(t, 2, l.InUse())

	l.Revert()
	assert.Equal(t, 1, l.InUse())
	assert.True(t, l.Allow())
}
