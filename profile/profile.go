// Package profile estimates soil temperatures at arbitrary depths from one
// reading's fixed-depth sensor values.
//
// Sensors sit at a small fixed set of depths while peat cores are sampled
// over contiguous depth intervals, so the temperature at a depth between two
// sensors is estimated by linear interpolation between them, and an
// interval's temperature is the mean of estimates taken at every whole
// centimeter in the interval.
package profile

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDepthOutOfRange reports a requested depth outside the range
	// covered by the sensors.
	ErrDepthOutOfRange = errors.New("depth outside sensor range")

	// ErrMissingSample reports that a sensor value needed for interpolation
	// is missing from the reading.
	ErrMissingSample = errors.New("sensor value missing")
)

// Interval is a closed range of depths in centimeters below the peat
// surface. Top is the shallower bound and Bottom the deeper one; both are
// included.
type Interval struct {
	Top    int
	Bottom int
}

func (iv Interval) String() string {
	return fmt.Sprintf("%d-%d cm", iv.Top, iv.Bottom)
}

// Profile pairs the deployment's sensor depths with one reading's
// temperatures.
type Profile struct {
	depths []int
	temps  []*float64
}

// New returns a Profile over the given sensor depths and temperatures.
// The slices must have the same length, with temps[i] measured at
// depths[i], and depths must be strictly ascending.
func New(depths []int, temps []*float64) (Profile, error) {
	if len(depths) == 0 {
		return Profile{}, errors.New("profile: no sensor depths")
	}
	if len(depths) != len(temps) {
		return Profile{}, fmt.Errorf("profile: %d depths but %d temperatures", len(depths), len(temps))
	}
	for i := 1; i < len(depths); i++ {
		if depths[i-1] >= depths[i] {
			return Profile{}, fmt.Errorf("profile: sensor depths not ascending at %d cm", depths[i])
		}
	}

	return Profile{depths: depths, temps: temps}, nil
}

// At estimates the temperature at the given depth. The shallowest sensor's
// value is returned as-is at its own depth; anywhere else the estimate is a
// linear interpolation between the two sensors straddling the depth. At
// returns ErrDepthOutOfRange when the depth lies outside the sensor range
// and ErrMissingSample when a sensor value it needs is absent.
func (p Profile) At(depth int) (float64, error) {
	if depth == p.depths[0] {
		if p.temps[0] == nil {
			return 0, fmt.Errorf("%w at %d cm", ErrMissingSample, depth)
		}
		return *p.temps[0], nil
	}

	// First sensor at or below the requested depth, where "below" means
	// deeper: depths[i-1] < depth <= depths[i].
	i := sort.SearchInts(p.depths, depth)
	if i == 0 || i == len(p.depths) {
		return 0, fmt.Errorf("%w: %d cm not in [%d, %d]",
			ErrDepthOutOfRange, depth, p.depths[0], p.depths[len(p.depths)-1])
	}

	lo, hi := p.temps[i-1], p.temps[i]
	if lo == nil || hi == nil {
		return 0, fmt.Errorf("%w between %d and %d cm", ErrMissingSample, p.depths[i-1], p.depths[i])
	}

	span := float64(p.depths[i] - p.depths[i-1])
	return *lo + float64(depth-p.depths[i-1])*(*hi-*lo)/span, nil
}

// IntervalMean returns the mean of temperatures estimated at every whole
// centimeter from iv.Top through iv.Bottom. It returns nil when any of the
// estimates fails, i.e. when the interval reaches outside the sensor range
// or a sensor value needed by one of the samples is missing.
func (p Profile) IntervalMean(iv Interval) *float64 {
	if iv.Top > iv.Bottom {
		return nil
	}

	var sum float64
	for d := iv.Top; d <= iv.Bottom; d++ {
		t, err := p.At(d)
		if err != nil {
			return nil
		}
		sum += t
	}

	mean := sum / float64(iv.Bottom-iv.Top+1)
	return &mean
}
