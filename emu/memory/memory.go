/*
 * DPS8 - Main memory
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

package memory

import (
	"sync/atomic"
)

// Word addressable store shared by all CPUs. Every word is accessed
// atomically so processors on different goroutines never see torn words.
type Memory struct {
	mem  []atomic.Uint64
	size uint32
}

const (
	AMASK uint32 = 077777777 // Mask address bits
	WMASK uint64 = 0777777777777
	MaxK         = 16 * 1024 // Largest memory in K words
)

// Create memory of k K words.
func New(k int) *Memory {
	m := &Memory{}
	m.SetSize(k)
	return m
}

// Set size in K words, contents are cleared.
func (m *Memory) SetSize(k int) {
	if k > MaxK {
		k = MaxK
	}
	if k < 0 {
		k = 0
	}
	m.size = uint32(k * 1024)
	m.mem = make([]atomic.Uint64, m.size)
}

// Return size of memory in words.
func (m *Memory) GetSize() uint32 {
	return m.size
}

// Check if address out of range.
func (m *Memory) CheckAddr(addr uint32) bool {
	return addr < m.size
}

// Get memory value, addresses past the end read as zero.
func (m *Memory) GetMemory(addr uint32) uint64 {
	addr &= AMASK
	if addr >= m.size {
		return 0
	}
	return m.mem[addr].Load()
}

// Set memory to a value, addresses past the end are ignored.
func (m *Memory) SetMemory(addr uint32, data uint64) {
	addr &= AMASK
	if addr < m.size {
		m.mem[addr].Store(data & WMASK)
	}
}

// Get a word from memory.
func (m *Memory) GetWord(addr uint32) (value uint64, error bool) {
	if addr >= m.size {
		return 0, true
	}
	return m.mem[addr].Load(), false
}

// Put a word to memory.
func (m *Memory) PutWord(addr uint32, data uint64) bool {
	if addr >= m.size {
		return true
	}
	m.mem[addr].Store(data & WMASK)
	return false
}

// Load a block of words starting at addr.
func (m *Memory) Load(addr uint32, data []uint64) bool {
	for i, w := range data {
		if m.PutWord(addr+uint32(i), w) {
			return true
		}
	}
	return false
}
