/*
 * DPS8 - CPU test helpers
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

package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcornwell/DPS8/emu/memory"
)

// Memory counting references.
type countMem struct {
	*memory.Memory
	reads  int
	writes int
}

func (m *countMem) GetWord(addr uint32) (uint64, bool) {
	m.reads++
	return m.Memory.GetWord(addr)
}

func (m *countMem) PutWord(addr uint32, data uint64) bool {
	m.writes++
	return m.Memory.PutWord(addr, data)
}

// Executor from a function.
type execFunc func(*CPU)

func (f execFunc) Execute(c *CPU) {
	f(c)
}

// Executor ending fault cycles and doing nothing else.
var nopExec = execFunc(func(c *CPU) {
	if c.CycleState() == FaultExecCycle {
		c.EndFaultCycle()
	}
})

func newTestCPU(cfg Config) (*CPU, *countMem) {
	mem := &countMem{Memory: memory.New(256)}
	return New(cfg, mem, nil), mem
}

// Run fn and return fault raised, nil if none.
func catchFault(t *testing.T, c *CPU, fn func()) *Fault {
	t.Helper()
	f, err := c.Try(fn)
	require.NoError(t, err)
	return f
}

// Indirect word.
func ind(y uint32, tag uint8) uint64 {
	return uint64(y)<<18 | uint64(tag)
}

// Tally word.
func tallyWord(y, tally uint32, low uint8) uint64 {
	return uint64(y)<<18 | uint64(tally&07777)<<6 | uint64(low&077)
}

// Instruction word with opcode 0235.
func inst(y uint32, tag uint8) uint64 {
	return uint64(y)<<18 | 0235<<9 | uint64(tag)
}

// Descriptor segment base used by tests.
const dsBase = 01000

// Build unpaged descriptor segment and enter append mode.
func setupSegments(c *CPU, mem *countMem, sdws map[uint16]SDW) {
	for seg, sdw := range sdws {
		even, odd := sdw.Encode()
		mem.SetMemory(dsBase+2*uint32(seg), even)
		mem.SetMemory(dsBase+2*uint32(seg)+1, odd)
	}
	c.LoadDSBR(DSBR{ADDR: dsBase, BND: 037, U: true})
	c.SetAbsolute(false)
}

// Unpaged segment open to every ring.
func openSDW(addr uint32) SDW {
	return SDW{ADDR: addr, R1: 7, R2: 7, R3: 7, BOUND: 0777, R: true, E: true, W: true, U: true, DF: true}
}
