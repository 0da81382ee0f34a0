// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package search

// Tracker accumulates the best point seen during a search.  Points are ranked
// by the target metric, then by lowest energy-delay product, then by lowest
// assignment identifier, so the outcome does not depend on the order in which
// points are offered.  Throughputs within a relative tolerance of each other
// are considered equal.
type Tracker struct {
	target    Target
	tolerance float64
	best      Point
	// Number of points offered
	count uint
}

// NewTracker constructs an empty tracker for a given target.
func NewTracker(target Target, tolerance float64) *Tracker {
	return &Tracker{target: target, tolerance: tolerance}
}

// Offer a point to this tracker, returning true if it is the new best.
func (p *Tracker) Offer(point Point) bool {
	p.count++
	//
	if p.count == 1 || compare(p.target, p.tolerance, point, p.best) < 0 {
		p.best = point
		return true
	}
	//
	return false
}

// Best returns the best point offered so far, or false if none was.
func (p *Tracker) Best() (Point, bool) {
	return p.best, p.count > 0
}

// Count returns the number of points offered so far.
func (p *Tracker) Count() uint {
	return p.count
}

// Compare two points, returning a negative value if the first is better.
func compare(target Target, tolerance float64, a, b Point) int {
	var (
		am    = a.Metrics
		bm    = b.Metrics
		delta = tolerance * max(am.Throughput, bm.Throughput)
	)
	//
	switch {
	case target == Performance && am.Throughput-bm.Throughput > delta:
		return -1
	case target == Performance && bm.Throughput-am.Throughput > delta:
		return 1
	case am.EDP < bm.EDP:
		return -1
	case am.EDP > bm.EDP:
		return 1
	}
	//
	return a.Modes.Compare(b.Modes)
}

// Determine whether a candidate improves on the current point by more than a
// relative tolerance, with respect to the given target.
func improves(target Target, candidate, current Point, tolerance float64) bool {
	var (
		cm = candidate.Metrics
		m  = current.Metrics
	)
	//
	if target == Performance {
		return cm.Throughput-m.Throughput > tolerance*m.Throughput
	}
	//
	return m.EDP-cm.EDP > tolerance*m.EDP
}
