// SPDX-License-Identifier: MIT
// Package mask provides masked-array helpers for flight-data analysis:
// numeric series where individual samples are flagged invalid (sensor
// dropout, loss of sync) and statistics must be computed over the valid
// remainder only.
package mask

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Array pairs a sample series with a validity mask. A true mask entry
// marks the corresponding sample as invalid. The zero value is an empty
// array.
type Array struct {
	data []float64
	mask []bool
}

// New builds an Array over data with the given mask. A nil mask marks
// every sample valid. The lengths must match.
func New(data []float64, mask []bool) (*Array, error) {
	if mask == nil {
		mask = make([]bool, len(data))
	}
	if len(mask) != len(data) {
		return nil, fmt.Errorf("mask length %d does not match data length %d", len(mask), len(data))
	}
	return &Array{data: data, mask: mask}, nil
}

// FromInvalid builds an Array masking every sample for which invalid
// returns true.
func FromInvalid(data []float64, invalid func(float64) bool) *Array {
	m := make([]bool, len(data))
	for i, v := range data {
		m[i] = invalid(v)
	}
	return &Array{data: data, mask: m}
}

// Len returns the total sample count, masked or not.
func (a *Array) Len() int {
	return len(a.data)
}

// MaskedCount returns the number of invalid samples.
func (a *Array) MaskedCount() int {
	n := 0
	for _, m := range a.mask {
		if m {
			n++
		}
	}
	return n
}

// Coverage returns the fraction of samples that are valid, in [0, 1].
// An empty array has coverage 0.
func (a *Array) Coverage() float64 {
	if len(a.data) == 0 {
		return 0
	}
	return float64(len(a.data)-a.MaskedCount()) / float64(len(a.data))
}

// Compressed returns a new slice holding only the valid samples, in order.
func (a *Array) Compressed() []float64 {
	out := make([]float64, 0, len(a.data)-a.MaskedCount())
	for i, v := range a.data {
		if !a.mask[i] {
			out = append(out, v)
		}
	}
	return out
}

// FillMasked returns a copy of the series with invalid samples replaced
// by fill.
func (a *Array) FillMasked(fill float64) []float64 {
	out := make([]float64, len(a.data))
	for i, v := range a.data {
		if a.mask[i] {
			out[i] = fill
		} else {
			out[i] = v
		}
	}
	return out
}

// Mean returns the arithmetic mean of the valid samples. ok is false when
// no valid sample exists.
func (a *Array) Mean() (mean float64, ok bool) {
	c := a.Compressed()
	if len(c) == 0 {
		return math.NaN(), false
	}
	return stat.Mean(c, nil), true
}

// StdDev returns the sample standard deviation of the valid samples. ok is
// false with fewer than two valid samples.
func (a *Array) StdDev() (sd float64, ok bool) {
	c := a.Compressed()
	if len(c) < 2 {
		return math.NaN(), false
	}
	return stat.StdDev(c, nil), true
}

// Min returns the smallest valid sample. ok is false when no valid sample
// exists.
func (a *Array) Min() (min float64, ok bool) {
	c := a.Compressed()
	if len(c) == 0 {
		return math.NaN(), false
	}
	return floats.Min(c), true
}

// Max returns the largest valid sample. ok is false when no valid sample
// exists.
func (a *Array) Max() (max float64, ok bool) {
	c := a.Compressed()
	if len(c) == 0 {
		return math.NaN(), false
	}
	return floats.Max(c), true
}

// Run is a half-open [Start, Stop) range of consecutive invalid samples.
type Run struct {
	Start int
	Stop  int
}

// Len returns the run length.
func (r Run) Len() int {
	return r.Stop - r.Start
}

// MaskedRuns returns the contiguous runs of invalid samples, in order.
// Used to report sync-loss gaps in a scanned stream.
func (a *Array) MaskedRuns() []Run {
	var runs []Run
	start := -1
	for i, m := range a.mask {
		switch {
		case m && start < 0:
			start = i
		case !m && start >= 0:
			runs = append(runs, Run{Start: start, Stop: i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, Stop: len(a.mask)})
	}
	return runs
}

// LongestMaskedRun returns the longest run of invalid samples, or a zero
// Run when every sample is valid.
func (a *Array) LongestMaskedRun() Run {
	var longest Run
	for _, r := range a.MaskedRuns() {
		if r.Len() > longest.Len() {
			longest = r
		}
	}
	return longest
}
