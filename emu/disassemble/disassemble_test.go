/*
 * DPS8 - DPS8 instruction disassembler, tests.
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

package disassemble

import (
	"testing"

	"github.com/stretchr/testify/assert"

	op "github.com/rcornwell/DPS8/emu/opcodemap"
)

// Build instruction word.
func inst(y uint32, opc uint16, tag uint8, a bool) uint64 {
	w := uint64(y&0777777)<<18 | uint64(opc&0777)<<9 | uint64(opc>>9)<<8 | uint64(tag&077)
	if a {
		w |= 1 << 6
	}
	return w
}

func TestDisassembleModifiers(t *testing.T) {
	tests := []struct {
		word  uint64
		match string
	}{
		{inst(01234, op.OpLDA, 0, false), "lda    1234"},
		{inst(01234, op.OpLDA, 011, false), "lda    1234,x1"},
		{inst(5, op.OpLDQ, 007, false), "ldq    5,dl"},
		{inst(0100, op.OpSTA, 020, false), "sta    100,*"},
		{inst(0100, op.OpSTA, 022, false), "sta    100,qu*"},
		{inst(0100, op.OpTRA, 064, false), "tra    100,*ic"},
		{inst(0100, op.OpLDA, 040, false), "lda    100,f1"},
		{inst(0100, op.OpLDA, 055, false), "lda    100,dic"},
		{inst(0100, op.OpLDA, 043, false), "lda    100,its"},
	}
	for _, test := range tests {
		assert.Equal(t, test.match, Disassemble(test.word))
	}
}

func TestDisassemblePointer(t *testing.T) {
	// pr2 with offset 5.
	assert.Equal(t, "call6  pr2|5", Disassemble(inst(2<<15|5, op.OpCALL6, 0, true)))
	// pr6 with offset -3.
	assert.Equal(t, "rtcd   pr6|-3,x7", Disassemble(inst(6<<15|(0100000-3), op.OpRTCD, 017, true)))
}

func TestDisassembleGroups(t *testing.T) {
	assert.Equal(t, "ldx3   10", Disassemble(inst(010, op.OpLDX0+3, 0, false)))
	assert.Equal(t, "tsx7   10", Disassemble(inst(010, op.OpTSX0+7, 0, false)))
	assert.Equal(t, "eax0   0,ql", Disassemble(inst(0, op.OpEAX0, 006, false)))
	assert.Equal(t, "sxl5   77", Disassemble(inst(077, op.OpSXL0+5, 0, false)))
}

func TestDisassembleExtended(t *testing.T) {
	// Tag ignored on cache clear.
	assert.Equal(t, "cams   4", Disassemble(inst(4, op.OpCAMS, 011, false)))
	assert.Equal(t, "camp   4", Disassemble(inst(4, op.OpCAMP, 011, false)))
	assert.Equal(t, op.OpCAMP, int(Opcode(inst(4, op.OpCAMP, 0, false))))
}

func TestDisassembleUndefined(t *testing.T) {
	w := inst(0, 0777, 0, false)
	assert.Equal(t, "oct    000000777000", Disassemble(w))
	assert.Equal(t, "", Name(0777))
	assert.Equal(t, "lda", Name(op.OpLDA))
}
