/*
 * DPS8 - 36 bit word helper tests
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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBits(t *testing.T) {
	w := uint64(0123456701234)
	assert.Equal(t, uint64(01), GetBits(w, 0, 3))
	assert.Equal(t, uint64(03), GetBits(w, 30, 3))
	assert.Equal(t, uint64(034), GetBits(w, 30, 6))
	assert.Equal(t, uint64(0123456), GetBits(w, 0, 18))
	assert.Equal(t, uint64(0701234), GetBits(w, 18, 18))
	assert.True(t, GetBit(DMASK, 0))
	assert.False(t, GetBit(0, 35))
}

func TestSetBits(t *testing.T) {
	w := SetBits(0, 30, 6, 043)
	assert.Equal(t, uint64(043), w)
	w = SetBits(w, 0, 18, 01777777)
	assert.Equal(t, uint64(0777777000043), w, "value wider than field must be truncated")
	w = SetBit(w, 35, false)
	assert.Equal(t, uint64(0777777000042), w)
	w = SetBit(w, 18, true)
	assert.Equal(t, uint64(0777777400042), w)
}

func TestHalves(t *testing.T) {
	w := uint64(0111111222222)
	assert.Equal(t, uint32(0111111), GetHi(w))
	assert.Equal(t, uint32(0222222), GetLo(w))
	assert.Equal(t, uint64(0333333222222), PutHi(w, 0333333))
	assert.Equal(t, uint64(0111111444444), PutLo(w, 0444444))
}

func TestSignExt15(t *testing.T) {
	assert.Equal(t, uint32(0), SignExt15(0))
	assert.Equal(t, uint32(037777), SignExt15(037777))
	assert.Equal(t, uint32(0777777), SignExt15(077777))
	assert.Equal(t, uint32(0740000), SignExt15(040000))
}

func TestOctal(t *testing.T) {
	assert.Equal(t, "000000000017", Octal(017))
	assert.Equal(t, "777777777777", Octal(^uint64(0)))
}
