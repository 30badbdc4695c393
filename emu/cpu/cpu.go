/*
 * DPS8 - Central processor
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
	"strconv"

	"github.com/rcornwell/DPS8/emu/assoc"
	"github.com/rcornwell/DPS8/emu/word"
	"github.com/rcornwell/DPS8/util/debug"
)

/*
   Address preparation of the DPS8 processor.

   Every operand address starts as an 18 bit word offset taken from the
   instruction. The address modifier resolver applies the tag of the
   instruction to produce the computed address (CA), following indirect
   words and updating tally words as required. In append mode the appending
   unit then translates segment number and CA into a 24 bit absolute
   address through the descriptor segment and page tables.

   Instruction word:

      0                17 18      26 27 28 29 30   35
      +------------------+----------+--+--+--+------+
      |        y         |  opcode  |X |I |A | tag  |
      +------------------+----------+--+--+--+------+

   The opcode semantics are supplied by an Executor, this package only
   prepares addresses and takes faults.
*/

// Word store used by the processor.
type Memory interface {
	GetWord(addr uint32) (uint64, bool)
	PutWord(addr uint32, data uint64) bool
}

// Instruction execution, called once per instruction boundary.
type Executor interface {
	Execute(cpu *CPU)
}

// Processor options.
type Config struct {
	LockupLimit int   // Maximum passes through the address modifier
	SDWAM       bool  // SDW associative memory enabled
	PTWAM       bool  // PTW associative memory enabled
	FaultBase   uint8 // Fault vector switches
}

// Default lockup limit, about 2ms of real time.
const DefaultLockup = 4096

// Default processor options.
func DefaultConfig() Config {
	return Config{LockupLimit: DefaultLockup, SDWAM: true, PTWAM: true, FaultBase: 1}
}

type CPU struct {
	num    int     // Processor number
	module string  // Name for debug messages
	mem    Memory  // Main memory
	sys    *System // System controller

	TPR  TPR        // Temporary pointer register
	PPR  PPR        // Procedure pointer register
	PR   [8]PtrReg  // Pointer registers
	DSBR DSBR       // Descriptor segment base
	A    uint64     // Accumulator
	Q    uint64     // Quotient register
	X    [8]uint32  // Index registers
	IR   uint32     // Indicator register
	RALR uint8      // Ring alarm register
	TR   uint32     // Timer register
	Abs  bool       // Absolute addressing mode

	sdw   *SDW // Working SDW
	sdw0  SDW  // SDW fetched from memory
	ptw0  PTW  // PTW fetched from memory
	sdwam *assoc.Memory[uint16, SDW]
	ptwam *assoc.Memory[ptwKey, PTW]

	sdwamEnb    bool  // SDWAM enabled
	ptwamEnb    bool  // PTWAM enabled
	lockupLimit int   // Limit of address modifier passes
	faultBase   uint8 // Fault vector base switches
	cacheToReg  bool  // Cache to register mode

	// Result of address preparation.
	DirectOperand bool   // Operand is in Operand
	Operand       uint64 // Direct operand
	CharOperand   bool   // Character addressing
	CharSize      uint8  // Character size 6 or 9
	CharPos       uint8  // Character position

	cu           cuState            // Control unit
	cycle        Cycle              // Current cycle
	troubleFault bool               // Trouble fault being handled
	halted       bool               // Fault cascade stopped processor
	scuData      [8]uint64          // CU data saved at fault
	faultPair    [2]uint64          // Current fault pair
	faultCount   [NumFaults]uint64  // Faults taken
	lastFault    *Fault             // Last fault taken
	g7Faults     uint32             // Pending group 7 faults, system lock
	g7ConChan    uint8              // Connect channel, system lock
	wake         chan struct{}      // Wake from idle
	idle         bool               // Waiting for interrupt
	debugMsk     int                // Debug option mask
}

const (
	debugInst = 1 << iota
	debugAddrMod
	debugAppend
	debugFault
	debugCache
	debugG7
)

var debugOption = map[string]int{
	"INST":    debugInst,
	"ADDRMOD": debugAddrMod,
	"APPEND":  debugAppend,
	"FAULT":   debugFault,
	"CACHE":   debugCache,
	"G7":      debugG7,
}

// Debug options applied to every processor created after they are set.
var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("CPU debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

// Enable debug options on one processor.
func (cpu *CPU) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("CPU debug option invalid: " + opt)
	}
	cpu.debugMsk |= flag
	return nil
}

// Create processor attached to system sys. A nil sys creates a single
// processor system.
func New(cfg Config, mem Memory, sys *System) *CPU {
	if sys == nil {
		sys = NewSystem()
	}
	if cfg.LockupLimit <= 0 {
		cfg.LockupLimit = DefaultLockup
	}
	cpu := &CPU{
		mem:         mem,
		sys:         sys,
		sdwam:       assoc.New[uint16, SDW](),
		ptwam:       assoc.New[ptwKey, PTW](),
		sdwamEnb:    cfg.SDWAM,
		ptwamEnb:    cfg.PTWAM,
		lockupLimit: cfg.LockupLimit,
		faultBase:   cfg.FaultBase & 0177,
		wake:        make(chan struct{}, 1),
		debugMsk:    debugMsk,
	}
	cpu.num = sys.attach(cpu)
	cpu.module = "CPU" + strconv.Itoa(cpu.num)
	cpu.Initialize()
	return cpu
}

// Initialize processor to basic state.
func (cpu *CPU) Initialize() {
	cpu.TPR = TPR{}
	cpu.PPR = PPR{P: true}
	cpu.PR = [8]PtrReg{}
	cpu.DSBR = DSBR{}
	cpu.A = 0
	cpu.Q = 0
	cpu.X = [8]uint32{}
	cpu.IR = IAbs
	cpu.RALR = 0
	cpu.TR = 0
	cpu.Abs = true
	cpu.sdw = nil
	cpu.sdwam.Clear()
	cpu.ptwam.Clear()
	cpu.cu = cuState{SDON: cpu.sdwamEnb, PTON: cpu.ptwamEnb, CPUNum: uint8(cpu.num) & 07}
	cpu.cycle = ExecCycle
	cpu.troubleFault = false
	cpu.halted = false
	cpu.idle = false
	cpu.clearOperand()
}

// Processor number.
func (cpu *CPU) Number() int {
	return cpu.num
}

// System processor is attached to.
func (cpu *CPU) System() *System {
	return cpu.sys
}

// Channel signalled when processor should wake.
func (cpu *CPU) WakeChan() <-chan struct{} {
	return cpu.wake
}

// Wait for a group 7 fault, the core stops cycling the processor until
// it is woken.
func (cpu *CPU) SetIdle() {
	cpu.idle = true
}

// Processor waiting for interrupt.
func (cpu *CPU) Idle() bool {
	return cpu.idle
}

// Leave idle state if a group 7 fault is pending.
func (cpu *CPU) Resume() bool {
	if cpu.sys.G7Pending(cpu.num) != 0 {
		cpu.idle = false
	}
	return !cpu.idle
}

// Processor stopped by a fault cascade.
func (cpu *CPU) Halted() bool {
	return cpu.halted
}

// Execute one instruction or take a fault. Faults raised during the
// instruction are taken before returning. Returns an error only when the
// processor can not continue.
func (cpu *CPU) Cycle(exec Executor) (err error) {
	if cpu.halted {
		return ErrHalted
	}
	defer func() {
		r := recover()
		switch r := r.(type) {
		case nil:
		case *Fault:
			err = cpu.enterFault(r)
		case *Halt:
			err = r
		default:
			panic(r)
		}
		if err != nil {
			cpu.halted = true
			slog.Error(fmt.Sprintf("CPU%d halted: %s", cpu.num, err.Error()))
		}
	}()

	if cpu.cycle == ExecCycle {
		cpu.doG7Fault()
	}
	exec.Execute(cpu)
	return nil
}

// Run function with fault recovery, used for operations started outside
// of the instruction loop. Returns fault raised, if any.
func (cpu *CPU) Try(fn func()) (fault *Fault, err error) {
	defer func() {
		r := recover()
		switch r := r.(type) {
		case nil:
		case *Fault:
			fault = r
		case *Halt:
			err = r
		default:
			panic(r)
		}
	}()
	fn()
	return nil, nil
}

// Run fn for the operator leaving the processor as it was. Control unit
// data, fault state and fault counts are restored along with TPR and PPR.
// fn runs as in the execute cycle so a fault it raises is reported as
// itself, and still unwinds to the caller.
func (cpu *CPU) Preserve(fn func()) {
	cu := cpu.cu
	cycle := cpu.cycle
	trouble := cpu.troubleFault
	counts := cpu.faultCount
	cacheToReg := cpu.cacheToReg
	tpr := cpu.TPR
	ppr := cpu.PPR
	defer func() {
		cpu.cu = cu
		cpu.cycle = cycle
		cpu.troubleFault = trouble
		cpu.faultCount = counts
		cpu.cacheToReg = cacheToReg
		cpu.TPR = tpr
		cpu.PPR = ppr
	}()
	cpu.cycle = ExecCycle
	fn()
}

// Raise a fault from instruction execution. Never returns.
func (cpu *CPU) Fault(num FaultNumber, sub Subtype, msg string) {
	cpu.doFault(num, sub, msg)
}

// Read word from absolute memory.
func (cpu *CPU) readAbs(addr uint32) uint64 {
	addr &= word.MASK24
	v, err := cpu.mem.GetWord(addr)
	if err {
		cpu.doFault(FaultSTR, StoreNotMem, fmt.Sprintf("read nonexistent address %08o", addr))
	}
	return v
}

// Write word to absolute memory.
func (cpu *CPU) writeAbs(addr uint32, data uint64) {
	addr &= word.MASK24
	if cpu.mem.PutWord(addr, data&word.DMASK) {
		cpu.doFault(FaultSTR, StoreNotMem, fmt.Sprintf("write nonexistent address %08o", addr))
	}
}

// Load descriptor segment base register, clears both associative memories.
func (cpu *CPU) LoadDSBR(dsbr DSBR) {
	dsbr.ADDR &= word.MASK24
	dsbr.BND &= uint16(word.MASK14)
	dsbr.STACK &= 07777
	cpu.DSBR = dsbr
	cpu.ClearSDWAM()
	cpu.ClearPTWAM()
}

// Clear SDW associative memory.
func (cpu *CPU) ClearSDWAM() {
	cpu.sdwam.Clear()
	cpu.sdw = nil
	debug.Debugf(cpu.module, cpu.debugMsk, debugCache, "clear SDWAM")
}

// Clear PTW associative memory.
func (cpu *CPU) ClearPTWAM() {
	cpu.ptwam.Clear()
	debug.Debugf(cpu.module, cpu.debugMsk, debugCache, "clear PTWAM")
}

// Enable or disable associative memories.
func (cpu *CPU) EnableAM(sdw, ptw bool) {
	cpu.sdwamEnb = sdw
	cpu.ptwamEnb = ptw
	cpu.cu.SDON = sdw
	cpu.cu.PTON = ptw
}

// Line n of SDWAM.
func (cpu *CPU) SDWAMLine(n int) assoc.Line[uint16, SDW] {
	return cpu.sdwam.Line(n)
}

// Line n of PTWAM, returns segment and page number the line was loaded for.
func (cpu *CPU) PTWAMLine(n int) (assoc.Line[uint16, PTW], uint16) {
	l := cpu.ptwam.Line(n)
	return assoc.Line[uint16, PTW]{Valid: l.Valid, Key: l.Key.seg, Use: l.Use, Entry: l.Entry}, l.Key.page
}

// Set absolute or append mode.
func (cpu *CPU) SetAbsolute(abs bool) {
	cpu.Abs = abs
	if abs {
		cpu.IR |= IAbs
	} else {
		cpu.IR &^= IAbs
	}
}

// Set instruction word buffer for instruction being executed.
func (cpu *CPU) SetIWB(even, odd uint64) {
	cpu.cu.IWB = even & word.DMASK
	cpu.cu.IRODD = odd & word.DMASK
}

// Return instruction word buffer.
func (cpu *CPU) IWB() uint64 {
	return cpu.cu.IWB
}

// Return last working SDW.
func (cpu *CPU) WorkingSDW() *SDW {
	return cpu.sdw
}

// Return APU status of last translation.
func (cpu *CPU) APUStatus() APUStatus {
	return cpu.cu.APU
}

// Set or clear indicator bits.
func (cpu *CPU) setIndicator(bit uint32, on bool) {
	if on {
		cpu.IR |= bit
	} else {
		cpu.IR &^= bit
	}
}
