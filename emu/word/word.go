/*
 * DPS8 - 36 bit word helpers
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

package word

import "fmt"

/*
   Words are 36 bits held in the low bits of a uint64. Bits are numbered
   the way the processor manual numbers them: bit 0 is the most significant
   bit of the word and bit 35 the least significant.

      0                17 18               35
      +------------------+------------------+
      |   upper half     |   lower half     |
      +------------------+------------------+
*/

const (
	DMASK  uint64 = 0777777777777 // 36 bit word
	HMASK  uint64 = 0777777000000 // Upper half word
	LMASK  uint64 = 0000000777777 // Lower half word
	MASK18 uint32 = 0777777       // 18 bit address
	MASK24 uint32 = 077777777     // 24 bit absolute address
	MASK15 uint32 = 077777        // Segment number
	MASK14 uint32 = 037777        // Bound and entry fields
	MASK12 uint32 = 07777         // Tally
	MASK6  uint32 = 077           // Tag and delta
	MASK3  uint32 = 07            // Ring number
	SIGN15 uint32 = 040000        // Sign of PR offset
)

// Return n bits starting at bit pos.
func GetBits(w uint64, pos, n uint) uint64 {
	return (w >> (36 - pos - n)) & ((uint64(1) << n) - 1)
}

// Replace n bits starting at bit pos with v.
func SetBits(w uint64, pos, n uint, v uint64) uint64 {
	shift := 36 - pos - n
	mask := ((uint64(1) << n) - 1) << shift
	return ((w &^ mask) | ((v << shift) & mask)) & DMASK
}

// Test a single bit.
func GetBit(w uint64, pos uint) bool {
	return GetBits(w, pos, 1) != 0
}

// Set or clear a single bit.
func SetBit(w uint64, pos uint, on bool) uint64 {
	if on {
		return SetBits(w, pos, 1, 1)
	}
	return SetBits(w, pos, 1, 0)
}

// Upper 18 bits.
func GetHi(w uint64) uint32 {
	return uint32((w >> 18) & LMASK)
}

// Lower 18 bits.
func GetLo(w uint64) uint32 {
	return uint32(w & LMASK)
}

// Replace upper 18 bits.
func PutHi(w uint64, v uint32) uint64 {
	return (w & LMASK) | ((uint64(v) & LMASK) << 18)
}

// Replace lower 18 bits.
func PutLo(w uint64, v uint32) uint64 {
	return (w & HMASK) | (uint64(v) & LMASK)
}

// Sign extend 15 bit offset to 18 bits.
func SignExt15(v uint32) uint32 {
	v &= MASK15
	if (v & SIGN15) != 0 {
		v |= 0700000
	}
	return v
}

// Format word as 12 octal digits.
func Octal(w uint64) string {
	return fmt.Sprintf("%012o", w&DMASK)
}
