/*
 * DPS8 - Associative memory
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package assoc

import (
	"errors"
	"fmt"
)

/*
   Fully associative memory of 16 lines as used for the SDWAM and PTWAM.

   Every line carries a USE counter. Across all lines the counters are a
   permutation of 0..15, 15 being the most recently used line and 0 the
   line that will be replaced next. A cleared memory has every line empty
   with USE equal to the line number.

   On a hit every line whose USE is greater than that of the hit line is
   aged by one and the hit line becomes 15. On a load the line with USE 0
   receives the new entry, every other line is aged by one and the new
   line becomes 15.
*/

// Number of lines in each associative memory.
const Lines = 16

var (
	ErrMultipleMatch = errors.New("associative memory multiple match")
	ErrUseOrder      = errors.New("associative memory use counters corrupt")
)

// One line of associative memory.
type Line[K comparable, V any] struct {
	Valid bool  // Line full
	Key   K     // Key line was loaded for
	Use   uint8 // Recency counter
	Entry V     // Descriptor held in line
}

type Memory[K comparable, V any] struct {
	lines [Lines]Line[K, V]
}

// Create an empty associative memory.
func New[K comparable, V any]() *Memory[K, V] {
	m := &Memory[K, V]{}
	m.Clear()
	return m
}

// Invalidate all lines and reset use counters.
func (m *Memory[K, V]) Clear() {
	var zero V
	for i := range m.lines {
		m.lines[i].Valid = false
		m.lines[i].Use = uint8(i)
		m.lines[i].Entry = zero
	}
}

// Find entry for key. On a hit the line becomes most recently used.
// Returns index of line or -1 on a miss.
func (m *Memory[K, V]) Lookup(key K) (*V, int, error) {
	hit := -1
	for i := range m.lines {
		if !m.lines[i].Valid || m.lines[i].Key != key {
			continue
		}
		if hit >= 0 {
			return nil, -1, fmt.Errorf("%w: lines %d and %d", ErrMultipleMatch, hit, i)
		}
		hit = i
	}
	if hit < 0 {
		return nil, -1, nil
	}
	m.touch(hit)
	return &m.lines[hit].Entry, hit, nil
}

// Load entry into the least recently used line.
func (m *Memory[K, V]) Load(key K, entry V) (*V, int) {
	victim := 0
	for i := range m.lines {
		if m.lines[i].Use < m.lines[victim].Use {
			victim = i
		}
	}
	old := m.lines[victim].Use
	for i := range m.lines {
		if i != victim && m.lines[i].Use > old {
			m.lines[i].Use--
		}
	}
	m.lines[victim] = Line[K, V]{Valid: true, Key: key, Use: Lines - 1, Entry: entry}
	return &m.lines[victim].Entry, victim
}

// Make line most recently used.
func (m *Memory[K, V]) touch(n int) {
	old := m.lines[n].Use
	for i := range m.lines {
		if m.lines[i].Use > old {
			m.lines[i].Use--
		}
	}
	m.lines[n].Use = Lines - 1
}

// Return copy of line n.
func (m *Memory[K, V]) Line(n int) Line[K, V] {
	return m.lines[n]
}

// Number of full lines.
func (m *Memory[K, V]) Len() int {
	n := 0
	for i := range m.lines {
		if m.lines[i].Valid {
			n++
		}
	}
	return n
}

// Verify use counters form a permutation of 0..15.
func (m *Memory[K, V]) Check() error {
	var seen [Lines]bool
	for i := range m.lines {
		u := m.lines[i].Use
		if u >= Lines || seen[u] {
			return fmt.Errorf("%w: line %d use %d", ErrUseOrder, i, u)
		}
		seen[u] = true
	}
	return nil
}
