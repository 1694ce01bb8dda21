package geom

import (
	"fmt"
	"math"
	"runtime"
)

// Defaults for Config.
const (
	DefaultEpsilon       = 1e-9
	DefaultClipperScale  = 1e6
	DefaultMaxDepth      = 100
	DefaultWeldTolerance = 1e-6
	DefaultSegments      = 32
)

// Config carries the numeric tolerances used by the kernel. It is passed
// by value; there is no package-level mutable state.
type Config struct {
	// Epsilon is the half-width of the on-plane band for every point and
	// polygon classification.
	Epsilon float64
	// ClipperScale converts float coordinates to the integer grid used by
	// the 2D polygon clipper.
	ClipperScale float64
	// MaxDepth bounds BSP recursion.
	MaxDepth int
	// WeldTolerance is the distance under which hull input and boolean
	// output vertices are merged. Booleans scale it by the largest extent of
	// the result when that exceeds 1.
	WeldTolerance float64
	// Segments resolves fragment counts for curved primitives whose IR node
	// leaves them unspecified.
	Segments SegmentParams
}

// DefaultConfig returns the standard tolerances.
func DefaultConfig() Config {
	return Config{
		Epsilon:       DefaultEpsilon,
		ClipperScale:  DefaultClipperScale,
		MaxDepth:      DefaultMaxDepth,
		WeldTolerance: DefaultWeldTolerance,
		Segments:      DefaultSegmentParams(),
	}
}

// HighPrecisionConfig tightens tolerances for small-scale models.
func HighPrecisionConfig() Config {
	c := DefaultConfig()
	c.Epsilon = 1e-12
	c.ClipperScale = 1e9
	return c
}

// FastConfig loosens tolerances for coarse previews.
func FastConfig() Config {
	c := DefaultConfig()
	c.Epsilon = 1e-6
	c.ClipperScale = 1e5
	return c
}

// Validate rejects non-positive tolerances.
func (c Config) Validate() error {
	switch {
	case !(c.Epsilon > 0):
		return fmt.Errorf("geom: epsilon must be positive, got %g", c.Epsilon)
	case !(c.ClipperScale > 0):
		return fmt.Errorf("geom: clipper scale must be positive, got %g", c.ClipperScale)
	case c.MaxDepth <= 0:
		return fmt.Errorf("geom: max depth must be positive, got %d", c.MaxDepth)
	case !(c.WeldTolerance > 0):
		return fmt.Errorf("geom: weld tolerance must be positive, got %g", c.WeldTolerance)
	}
	return c.Segments.Validate()
}

// Workers returns n if positive, otherwise the number of CPUs.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Fragment defaults.
const (
	DefaultFa    = 12.0
	DefaultFs    = 2.0
	MinFragments = 3
)

// SegmentParams mirrors the $fn, $fa and $fs special variables that
// control how finely curves are approximated.
type SegmentParams struct {
	Fn int     // fixed fragment count; 0 means derive from Fa and Fs
	Fa float64 // minimum angle per fragment, degrees
	Fs float64 // minimum fragment length
}

// DefaultSegmentParams returns $fn=0, $fa=12, $fs=2.
func DefaultSegmentParams() SegmentParams {
	return SegmentParams{Fa: DefaultFa, Fs: DefaultFs}
}

// Validate rejects non-positive angle or size limits.
func (s SegmentParams) Validate() error {
	if s.Fn < 0 {
		return fmt.Errorf("geom: $fn must not be negative, got %d", s.Fn)
	}
	if s.Fn == 0 && (!(s.Fa > 0) || !(s.Fs > 0)) {
		return fmt.Errorf("geom: $fa and $fs must be positive, got %g and %g", s.Fa, s.Fs)
	}
	return nil
}

// Fragments returns the number of segments used to approximate a circle
// of radius r: $fn when set, otherwise the smaller of the $fa and $fs
// counts, and never fewer than MinFragments.
func (s SegmentParams) Fragments(r float64) int {
	if s.Fn > 0 {
		return max(s.Fn, MinFragments)
	}
	fa, fs := s.Fa, s.Fs
	if !(fa > 0) {
		fa = DefaultFa
	}
	if !(fs > 0) {
		fs = DefaultFs
	}
	fromFa := int(math.Ceil(360 / fa))
	fromFs := int(math.Ceil(2 * math.Pi * math.Abs(r) / fs))
	return max(min(fromFa, fromFs), MinFragments)
}
