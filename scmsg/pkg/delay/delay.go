package delay

import (
	"time"
)

type Delay interface {
	GetDelay() time.Duration
	Reset()
}

// double delay in [min, max]
type tempDelay struct {
	d   time.Duration // d *= 2
	min time.Duration // default 1ms
	max time.Duration // default 10ms
}

// NewTempDelay returns a Delay starting at min and doubling up to max on
// every call until Reset. Zero bounds fall back to the accept loop defaults.
func NewTempDelay(min, max time.Duration) Delay {
	if min <= 0 {
		min = time.Millisecond
	}
	if max <= 0 {
		max = 10 * time.Millisecond
	}
	if min > max {
		min = max
	}
	return &tempDelay{
		d:   0,
		min: min,
		max: max,
	}
}

func (d *tempDelay) GetDelay() time.Duration {
	switch d.d {
	case 0:
		d.d = d.min
	case d.max:
	default:
		d.d <<= 1
		if d.d > d.max {
			d.d = d.max
		}
	}
	return d.d
}

func (d *tempDelay) Reset() {
	d.d = 0
}
