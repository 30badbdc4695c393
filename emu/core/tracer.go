/*
 * DPS8 - Address tracing executor
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

package core

import (
	"github.com/rcornwell/DPS8/emu/cpu"
	dis "github.com/rcornwell/DPS8/emu/disassemble"
	op "github.com/rcornwell/DPS8/emu/opcodemap"
	"github.com/rcornwell/DPS8/emu/word"
	"github.com/rcornwell/DPS8/util/debug"
)

/*
   AddressTracer runs the address preparation half of instruction
   execution. Each instruction is fetched, its address formed and the
   operand translated with the access kind of the opcode. No operation is
   performed on the operand.

   The fault pair is taken as an SCU followed by a TRA, both executed in
   absolute mode: the CU data is stored at the even word's address and
   control passes to the odd word's address.
*/

var defaultKinds = map[uint16]cpu.AccessKind{
	op.OpLDA:   cpu.OperandRead,
	op.OpSTA:   cpu.OperandStore,
	op.OpSTQ:   cpu.OperandStore,
	op.OpSTAQ:  cpu.OperandStore,
	op.OpSTZ:   cpu.OperandStore,
	op.OpRTCD:  cpu.RTCDOperandFetch,
	op.OpTRA:   cpu.TransferOperand,
	op.OpTSS:   cpu.TransferOperand,
	op.OpCALL6: cpu.Call6Operand,
	op.OpRET:   cpu.ReturnTransfer,
}

// One traced instruction.
type Step struct {
	Seg     uint16         // Segment of instruction
	IC      uint32         // Location of instruction
	Inst    uint64         // Instruction word
	Kind    cpu.AccessKind // Access made for operand
	CA      uint32         // Computed address
	Address uint32         // Absolute address of operand
	Direct  bool           // Direct operand, no memory access
}

type AddressTracer struct {
	Kinds map[uint16]cpu.AccessKind // Access kind by opcode, read if missing
	Log   func(Step)                // Called for each instruction
	Last  Step                      // Last instruction traced
}

// Create tracer with the default opcode table.
func NewTracer() *AddressTracer {
	return &AddressTracer{Kinds: defaultKinds}
}

func (t *AddressTracer) record(c *cpu.CPU, step Step) {
	t.Last = step
	debug.Debugf("CORE", debugMsk, debugCycle, "CPU%d %05o|%06o %s %-20s %s CA %06o -> %08o",
		c.Number(), step.Seg, step.IC, word.Octal(step.Inst), dis.Disassemble(step.Inst), step.Kind, step.CA, step.Address)
	if t.Log != nil {
		t.Log(step)
	}
}

// Execute one instruction.
func (t *AddressTracer) Execute(c *cpu.CPU) {
	if c.CycleState() == cpu.FaultExecCycle {
		t.faultPair(c)
		return
	}

	ic := c.PPR.IC
	step := Step{Seg: c.PPR.PSR, IC: ic}
	step.Inst = c.FetchInstruction()
	opc := dis.Opcode(step.Inst)
	next := (ic + 1) & word.MASK18

	if opc == op.OpDIS {
		c.SetIdle()
		c.PPR.IC = next
		t.record(c, step)
		return
	}

	c.FormAddress(step.Inst)
	step.Kind = cpu.OperandRead
	if k, ok := t.Kinds[opc]; ok {
		step.Kind = k
	}
	step.CA = c.TPR.CA
	if c.DirectOperand {
		step.Direct = true
	} else {
		res := c.Translate(step.Kind)
		step.Address = res.Address
		if res.PChanged || (c.Abs && isTransfer(step.Kind)) {
			next = c.TPR.CA
		}
	}
	c.PPR.IC = next
	t.record(c, step)
}

func isTransfer(k cpu.AccessKind) bool {
	return k == cpu.TransferOperand || k == cpu.ReturnTransfer || k == cpu.Call6Operand
}

// Execute fault pair.
func (t *AddressTracer) faultPair(c *cpu.CPU) {
	pair := c.FaultPair()
	c.SetAbsolute(true)

	c.FormAddress(pair[0])
	base := c.TPR.CA &^ 07
	for i, w := range c.SCUData() {
		c.TPR.CA = base + uint32(i)
		c.WriteOperand(w)
	}

	c.FormAddress(pair[1])
	c.PPR.IC = c.TPR.CA
	c.EndFaultCycle()
	t.record(c, Step{IC: c.PPR.IC, Inst: pair[1], Kind: cpu.TransferOperand, CA: c.TPR.CA, Address: c.TPR.CA})
}
