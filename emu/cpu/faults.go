/*
 * DPS8 - Fault dispatcher
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
	"errors"
	"fmt"
	"log/slog"

	"github.com/rcornwell/DPS8/util/debug"
)

/*
   Faults are raised by calling doFault. It records the fault in the
   control unit and then unwinds the instruction in progress with
   panic(*Fault). Cycle recovers the fault at the instruction boundary and
   enters the fault cycle. Nothing between the point of detection and Cycle
   may recover a *Fault.

   A fault while the fault pair of a previous fault is being executed is a
   trouble fault. A fault while the trouble fault pair is being executed
   can not be handled, the CPU halts with ErrFaultCascade.
*/

// Subtype of fault, meaning depends on fault number.
type Subtype uint32

// Fault raised by address preparation or instruction execution.
type Fault struct {
	Number  FaultNumber // Fault number
	Subtype Subtype     // Fault subtype
	Msg     string      // Reason for fault
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s fault subtype %o: %s", f.Number, uint32(f.Subtype), f.Msg)
}

var (
	ErrFaultCascade = errors.New("fault cascade")
	ErrNoFaultPair  = errors.New("fault pair not in memory")
	ErrHalted       = errors.New("cpu halted")
	ErrNotGroup7    = errors.New("not a group 7 fault")
	ErrNoCPU        = errors.New("no such cpu")
)

// Simulation can not continue.
type Halt struct {
	Fault *Fault // Fault that could not be taken
	Err   error  // Reason for halt
}

func (h *Halt) Error() string {
	if h.Fault == nil {
		return h.Err.Error()
	}
	return h.Err.Error() + ": " + h.Fault.Error()
}

func (h *Halt) Unwrap() error {
	return h.Err
}

type faultDef struct {
	name     string // Name of fault
	mnemonic string // Short name
	group    int    // Priority group
	priority int    // Priority in group
}

var faultTable = [NumFaults]faultDef{
	FaultSDF:  {"Shutdown", "SDF", 1, 27},
	FaultSTR:  {"Store", "STR", 4, 10},
	FaultMME:  {"Master mode entry 1", "MME", 5, 11},
	FaultF1:   {"Fault tag 1", "F1", 5, 17},
	FaultTRO:  {"Timer runout", "TRO", 7, 26},
	FaultCMD:  {"Command", "CMD", 4, 9},
	FaultDRL:  {"Derail", "DRL", 5, 15},
	FaultLUF:  {"Lockup", "LUF", 4, 5},
	FaultCON:  {"Connect", "CON", 7, 25},
	FaultPAR:  {"Parity", "PAR", 4, 8},
	FaultIPR:  {"Illegal procedure", "IPR", 5, 16},
	FaultONC:  {"Operation not complete", "ONC", 2, 4},
	FaultSUF:  {"Startup", "SUF", 1, 1},
	FaultOFL:  {"Overflow", "OFL", 3, 7},
	FaultDIV:  {"Divide check", "DIV", 3, 6},
	FaultEXF:  {"Execute", "EXF", 7, 2},
	FaultDF0:  {"Directed fault 0", "DF0", 6, 20},
	FaultDF1:  {"Directed fault 1", "DF1", 6, 21},
	FaultDF2:  {"Directed fault 2", "DF2", 6, 22},
	FaultDF3:  {"Directed fault 3", "DF3", 6, 23},
	FaultACV:  {"Access violation", "ACV", 6, 24},
	FaultMME2: {"Master mode entry 2", "ME2", 5, 12},
	FaultMME3: {"Master mode entry 3", "ME3", 5, 13},
	FaultMME4: {"Master mode entry 4", "ME4", 5, 14},
	FaultF2:   {"Fault tag 2", "F2", 5, 18},
	FaultF3:   {"Fault tag 3", "F3", 5, 19},
	FaultUN1:  {"Unknown fault 1", "UN1", 0, 0},
	FaultUN2:  {"Unknown fault 2", "UN2", 0, 0},
	FaultUN3:  {"Unknown fault 3", "UN3", 0, 0},
	FaultUN4:  {"Unknown fault 4", "UN4", 0, 0},
	FaultUN5:  {"Unknown fault 5", "UN5", 0, 0},
	FaultTRB:  {"Trouble", "TRB", 2, 3},
}

func (n FaultNumber) String() string {
	if n < 0 || n >= NumFaults {
		return fmt.Sprintf("Fault(%d)", int(n))
	}
	return faultTable[n].mnemonic
}

// Long name of fault.
func (n FaultNumber) Name() string {
	if n < 0 || n >= NumFaults {
		return "Invalid fault"
	}
	return faultTable[n].name
}

// Priority group of fault, 0 if unassigned.
func (n FaultNumber) Group() int {
	if n < 0 || n >= NumFaults {
		return 0
	}
	return faultTable[n].group
}

// Priority of fault.
func (n FaultNumber) Priority() int {
	if n < 0 || n >= NumFaults {
		return 0
	}
	return faultTable[n].priority
}

// Raise a fault. Never returns.
func (cpu *CPU) doFault(num FaultNumber, sub Subtype, msg string) {
	if num < 0 || num >= NumFaults {
		slog.Error(fmt.Sprintf("CPU%d fault number %d out of range: %s", cpu.num, int(num), msg))
		num = FaultTRB
	}

	cpu.faultCount[num]++
	debug.Debugf(cpu.module, cpu.debugMsk, debugFault, "%s fault subtype %o at %05o|%06o: %s",
		num, uint32(sub), cpu.PPR.PSR, cpu.PPR.IC, msg)

	// Cache to register mode is always reset by a fault.
	cpu.cacheToReg = false

	cpu.cu.FCT = (cpu.cu.FCT + 1) & 07
	cpu.setFaultIndicators(num, sub)
	cpu.cu.FIADDR = uint8(num)
	cpu.cu.FLTINT = true

	if cpu.cycle != ExecCycle {
		if cpu.troubleFault {
			f := &Fault{Number: num, Subtype: sub, Msg: msg}
			panic(&Halt{Fault: f, Err: ErrFaultCascade})
		}
		debug.Debugf(cpu.module, cpu.debugMsk, debugFault, "%s fault during fault cycle, trouble", num)
		cpu.troubleFault = true
		num = FaultTRB
		cpu.cu.FIADDR = uint8(num)
		cpu.faultCount[num]++
	}
	panic(&Fault{Number: num, Subtype: sub, Msg: msg})
}

// Set the indicator bits of CU word 1 for fault.
func (cpu *CPU) setFaultIndicators(num FaultNumber, sub Subtype) {
	cpu.cu.Flags = 0
	switch num {
	case FaultIPR:
		if (sub & IllegalOpcode) != 0 {
			cpu.cu.Flags |= 1 << cuOEB
		}
		if (sub & IllegalModifier) != 0 {
			cpu.cu.Flags |= 1 << cuEOFF
		}
		if (sub & IllegalSlave) != 0 {
			cpu.cu.Flags |= 1 << cuORB
		}
		if (sub & (IllegalDigit | IllegalProc)) != 0 {
			cpu.cu.Flags |= 1 << cuROFF
		}
	case FaultONC:
		if sub == OncNEM {
			cpu.cu.Flags |= 1 << cuOWB
		}
	case FaultSTR:
		switch sub {
		case StoreOOB:
			cpu.cu.Flags |= 1 << cuWOFF
		case StoreNotMem:
			cpu.cu.Flags |= 1 << cuOWB
		}
	case FaultCON:
		cpu.cu.CNCHN = uint8(sub) & 07
	case FaultACV:
		// ACV0 to ACV15 occupy bits 0 to 15.
		cpu.cu.Flags = uint32(sub) & 0177777
	}
}

// Take fault recovered at the instruction boundary.
func (cpu *CPU) enterFault(f *Fault) error {
	cpu.lastFault = f
	cpu.cycle = FaultCycle
	cpu.scuData = cpu.SaveCU()

	// Fault pair is fetched from absolute memory.
	addr := (uint32(cpu.faultBase) << 5) + (uint32(f.Number) << 1)
	even, err1 := cpu.mem.GetWord(addr)
	odd, err2 := cpu.mem.GetWord(addr + 1)
	if err1 || err2 {
		return &Halt{Fault: f, Err: ErrNoFaultPair}
	}
	cpu.faultPair = [2]uint64{even, odd}
	cpu.cu.IWB = even
	cpu.cu.IRODD = odd
	cpu.cycle = FaultExecCycle
	debug.Debugf(cpu.module, cpu.debugMsk, debugFault, "fault pair %08o: %012o %012o", addr, even, odd)
	return nil
}

// Fault pair has completed its transfer, return to normal execution.
func (cpu *CPU) EndFaultCycle() {
	cpu.cycle = ExecCycle
	cpu.troubleFault = false
}

// Drain pending group 7 faults, connect first, then timer runout, then
// execute.
func (cpu *CPU) doG7Fault() {
	num, sub, ok := cpu.sys.takeG7(cpu)
	if !ok {
		return
	}
	cpu.doFault(num, sub, "group 7 "+num.Name())
}

// Fault recorded by last fault cycle.
func (cpu *CPU) LastFault() *Fault {
	return cpu.lastFault
}

// Count of each fault taken.
func (cpu *CPU) FaultCounts() [NumFaults]uint64 {
	return cpu.faultCount
}

// Fault pair being executed.
func (cpu *CPU) FaultPair() [2]uint64 {
	return cpu.faultPair
}

// Fault pair address for fault.
func (cpu *CPU) FaultVector(num FaultNumber) uint32 {
	return (uint32(cpu.faultBase) << 5) + (uint32(num) << 1)
}

// Current processor cycle.
func (cpu *CPU) CycleState() Cycle {
	return cpu.cycle
}

// Trouble fault being handled.
func (cpu *CPU) InTroubleFault() bool {
	return cpu.troubleFault
}
