/*
 * DPS8 - System controller, group 7 faults
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
	"fmt"
	"sync"

	"github.com/rcornwell/DPS8/util/debug"
)

// Group 7 faults, in the order they are taken.
var g7Order = [...]FaultNumber{FaultCON, FaultTRO, FaultEXF}

// System controller shared by all processors. The only state one CPU
// may change in another is the group 7 fault word, which is only touched
// with the controller locked.
type System struct {
	mu   sync.Mutex
	cpus []*CPU
}

// Create an empty system.
func NewSystem() *System {
	return &System{}
}

// Attach a processor to the system, returns processor number.
func (sys *System) attach(cpu *CPU) int {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	sys.cpus = append(sys.cpus, cpu)
	return len(sys.cpus) - 1
}

// Number of processors.
func (sys *System) NumCPUs() int {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	return len(sys.cpus)
}

// Return processor n.
func (sys *System) CPU(n int) (*CPU, error) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	if n < 0 || n >= len(sys.cpus) {
		return nil, fmt.Errorf("%w: %d", ErrNoCPU, n)
	}
	return sys.cpus[n], nil
}

// Post a group 7 fault to processor n. Connect faults carry the channel
// number in the subtype.
func (sys *System) SetG7Fault(n int, num FaultNumber, sub Subtype) error {
	if num != FaultCON && num != FaultTRO && num != FaultEXF {
		return fmt.Errorf("%w: %s", ErrNotGroup7, num)
	}
	sys.mu.Lock()
	if n < 0 || n >= len(sys.cpus) {
		sys.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNoCPU, n)
	}
	cpu := sys.cpus[n]
	cpu.g7Faults |= 1 << uint(num)
	if num == FaultCON {
		cpu.g7ConChan = uint8(sub) & 07
	}
	sys.mu.Unlock()
	debug.Debugf(cpu.module, cpu.debugMsk, debugG7, "post %s", num)
	sys.Wake(n)
	return nil
}

// Wake processor n if it is waiting.
func (sys *System) Wake(n int) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	if n < 0 || n >= len(sys.cpus) {
		return
	}
	select {
	case sys.cpus[n].wake <- struct{}{}:
	default:
	}
}

// Pending group 7 fault mask of processor n.
func (sys *System) G7Pending(n int) uint32 {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	if n < 0 || n >= len(sys.cpus) {
		return 0
	}
	return sys.cpus[n].g7Faults
}

// Remove the highest precedence pending group 7 fault.
func (sys *System) takeG7(cpu *CPU) (FaultNumber, Subtype, bool) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	if cpu.g7Faults == 0 {
		return 0, 0, false
	}
	for _, num := range g7Order {
		bit := uint32(1) << uint(num)
		if (cpu.g7Faults & bit) == 0 {
			continue
		}
		cpu.g7Faults &^= bit
		var sub Subtype
		if num == FaultCON {
			sub = Subtype(cpu.g7ConChan)
		}
		return num, sub, true
	}
	return 0, 0, false
}
