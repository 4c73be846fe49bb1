package delay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTempDelayDoublesUpToMax(t *testing.T) {
	d := NewTempDelay(time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, time.Millisecond, d.GetDelay())
	assert.Equal(t, 2*time.Millisecond, d.GetDelay())
	assert.Equal(t, 4*time.Millisecond, d.GetDelay())
	assert.Equal(t, 5*time.Millisecond, d.GetDelay())
	assert.Equal(t, 5*time.Millisecond, d.GetDelay())

	d.Reset()
	assert.Equal(t, time.Millisecond, d.GetDelay())
}

func TestTempDelayDefaults(t *testing.T) {
	d := NewTempDelay(0, 0)
	assert.Equal(t, time.Millisecond, d.GetDelay())

	inverted := NewTempDelay(time.Second, time.Millisecond)
	assert.Equal(t, time.Millisecond, inverted.GetDelay())
	assert.Equal(t, time.Millisecond, inverted.GetDelay())
}
