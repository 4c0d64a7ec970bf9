/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// estimate.go: Search-time projection for go-wskdf
package core

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// Estimate projects the wall-clock cost of searching one bit length, given
// a measured per-derivation time and a worker count. All durations are in
// seconds.
//
// For a space of N = 2^(bits-1) candidates and T workers:
//
//   - systematic worst case is ceil(N/T)*t: the target sits at the end of
//     the longest partition;
//   - systematic expected is ceil(N/(2T))*t: the target is uniform within
//     whichever partition holds it;
//   - random search is a geometric process with per-trial success
//     probability 1/N across the union of workers, so the expected time is
//     (N/T)*t and the p-th percentile is -ln(1-p)*(N/T)*t. Half of random
//     searches finish by 0.69x the expectation; one in a hundred needs
//     more than 4.6x.
type Estimate struct {
	Bits      int
	SpaceSize uint64

	SystematicWorst    float64
	SystematicExpected float64
	RandomExpected     float64
	RandomP99          float64
	RandomP999         float64
}

// EstimateBits computes the projection for a single bit length.
func EstimateBits(perDerivation time.Duration, threads, bits int) Estimate {
	t := perDerivation.Seconds()
	size := uint64(1) << (bits - 1)
	n := float64(size)
	w := float64(threads)

	return Estimate{
		Bits:               bits,
		SpaceSize:          size,
		SystematicWorst:    math.Ceil(n/w) * t,
		SystematicExpected: math.Ceil(n/(2*w)) * t,
		RandomExpected:     n / w * t,
		RandomP99:          -math.Log(1-0.99) * n / w * t,
		RandomP999:         -math.Log(1-0.999) * n / w * t,
	}
}

// EstimateTable computes projections for every bit length in [1, maxBits].
func EstimateTable(perDerivation time.Duration, threads, maxBits int) []Estimate {
	out := make([]Estimate, 0, maxBits)
	for bits := 1; bits <= maxBits; bits++ {
		out = append(out, EstimateBits(perDerivation, threads, bits))
	}
	return out
}

const (
	minuteSecs = 60
	hourSecs   = 60 * minuteSecs
	daySecs    = 24 * hourSecs
	yearSecs   = 365 * daySecs
)

// FormatSeconds renders a duration with its two most significant units:
// "45s", "3min 05s", "7h 12min", "364d 2h", "4y 216d". Seconds are
// zero-padded when a larger unit precedes them; below one minute only the
// seconds appear.
func FormatSeconds(s float64) string {
	if s < 0 {
		s = 0
	}
	switch {
	case s < minuteSecs:
		return fmt.Sprintf("%.0fs", math.Round(s))
	case s < hourSecs:
		m := math.Floor(s / minuteSecs)
		sec := math.Floor(math.Mod(s, minuteSecs))
		return fmt.Sprintf("%.0fmin %02.0fs", m, sec)
	case s < daySecs:
		h := math.Floor(s / hourSecs)
		m := math.Floor(math.Mod(s, hourSecs) / minuteSecs)
		return fmt.Sprintf("%.0fh %.0fmin", h, m)
	case s < yearSecs:
		d := math.Floor(s / daySecs)
		h := math.Floor(math.Mod(s, daySecs) / hourSecs)
		return fmt.Sprintf("%.0fd %.0fh", d, h)
	default:
		y := math.Floor(s / yearSecs)
		d := math.Floor(math.Mod(s, yearSecs) / daySecs)
		return fmt.Sprintf("%.0fy %.0fd", y, d)
	}
}

// WriteTable renders the projection table for bit lengths 1..maxBits. The
// layout is stable output for humans, not an API contract.
func WriteTable(w io.Writer, perDerivation time.Duration, threads, maxBits int) error {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "bits\tspace\tsyst worst\tsyst expected\trandom expected\trandom 99%%\trandom 99.9%%\t\n")
	for _, est := range EstimateTable(perDerivation, threads, maxBits) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			est.Bits,
			humanize.Comma(int64(est.SpaceSize)),
			FormatSeconds(est.SystematicWorst),
			FormatSeconds(est.SystematicExpected),
			FormatSeconds(est.RandomExpected),
			FormatSeconds(est.RandomP99),
			FormatSeconds(est.RandomP999),
		)
	}
	return tw.Flush()
}
