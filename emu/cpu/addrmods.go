/*
 * DPS8 - Address modifier resolver
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

	"github.com/rcornwell/DPS8/emu/word"
	"github.com/rcornwell/DPS8/util/debug"
)

/*
   The tag of an instruction or indirect word selects how the computed
   address is formed.

      30 31 32      35
      +-----+---------+
      | Tm  |   Td    |
      +-----+---------+

   Tm R:  CA = y + register selected by Td. DU and DL give a direct operand.
   Tm RI: CA = y + register, fetch the indirect word at CA and continue
          with its address and tag.
   Tm IR: Fetch the indirect word at CA and continue with its address and
          tag, the final register modification uses the Td of the first IR
          tag (CT_HOLD).
   Tm IT: Indirect then tally, Td selects a special indirect word.

   An even word fetched by RI or IR with tag ITS or ITP starts a pointer
   pair which loads segment, ring, bit offset and word offset from the
   pair.

   Tally word:

      0                17 18          29 30      35
      +------------------+--------------+---------+
      |     address      |    tally     |  tag    |
      +------------------+--------------+---------+

   For character modifiers bit 30 is the character size (0 six bit,
   1 nine bit) and bits 33-35 the character position. For AD and SD bits
   30-35 are the delta.
*/

type modPhase int

const (
	phaseR modPhase = iota
	phaseRI
	phaseIT
	phaseIR
)

var phaseName = [...]string{"R", "RI", "IT", "IR"}

// Tally field is 12 bits.
const tallyMask = 07777

// Form the computed address for instruction word iword and resolve its tag.
func (cpu *CPU) FormAddress(iword uint64) {
	iword &= word.DMASK
	cpu.cu.IWB = iword
	y := word.GetHi(iword)
	cpu.TPR.TSR = cpu.PPR.PSR
	cpu.TPR.TRR = cpu.PPR.PRR
	cpu.TPR.TBR = 0

	// Pointer register relative.
	if word.GetBit(iword, 29) {
		pr := &cpu.PR[(y>>15)&07]
		cpu.TPR.TSR = pr.SNR
		cpu.TPR.TRR = max(pr.RNR, cpu.PPR.PRR)
		cpu.TPR.TBR = pr.BITNO
		y = (pr.WORDNO + word.SignExt15(y)) & word.MASK18
	}
	cpu.TPR.CA = y
	cpu.ResolveTag(uint8(iword & 077))
}

// Resolve tag against the current computed address. On return TPR.CA holds
// the final computed address, or DirectOperand/CharOperand describe the
// operand.
func (cpu *CPU) ResolveTag(tag uint8) {
	cpu.clearOperand()
	cpu.cu.ITS = false
	cpu.cu.ITP = false
	cpu.cu.CTHold = 0
	tag &= 077
	irChain := false

	for pass := 0; ; pass++ {
		if pass >= cpu.lockupLimit {
			cpu.doFault(FaultLUF, 0, fmt.Sprintf("lockup after %d modifications at %06o", pass, cpu.TPR.CA))
		}

		tm := tag & tmMask
		td := tag & tdMask
		phase := modPhase(tm >> 4)

		// Word reached by an IR chain.
		if irChain {
			switch tm {
			case TmR:
				td = cpu.cu.CTHold
			case TmIT:
				switch td {
				case ItF2:
					cpu.doFault(FaultF2, 0, "fault tag 2 in IR chain")
				case ItF3:
					cpu.doFault(FaultF3, 0, "fault tag 3 in IR chain")
				case ItITS, ItITP:
					cpu.illegalModifier(tag, "pointer pair tag not in pair")
				}
				phase = phaseR
				td = cpu.cu.CTHold
			}
		}

		debug.Debugf(cpu.module, cpu.debugMsk, debugAddrMod, "%s tag %02o CA %06o", phaseName[phase], tag, cpu.TPR.CA)

		switch phase {
		case phaseR:
			cpu.regMod(td)
			return

		case phaseRI:
			if td == TdDU || td == TdDL {
				cpu.illegalModifier(tag, "DU/DL with RI")
			}
			cpu.TPR.CA = (cpu.TPR.CA + cpu.regValue(td)) & word.MASK18
			tag = cpu.indirect()

		case phaseIR:
			cpu.cu.CTHold = td
			irChain = true
			tag = cpu.indirect()

		case phaseIT:
			next, more := cpu.tallyMod(tag)
			if !more {
				return
			}
			tag = next
		}
	}
}

// Register modification, terminates address formation.
func (cpu *CPU) regMod(td uint8) {
	switch td {
	case TdDU:
		cpu.DirectOperand = true
		cpu.Operand = uint64(cpu.TPR.CA) << 18
	case TdDL:
		cpu.DirectOperand = true
		cpu.Operand = uint64(cpu.TPR.CA)
	default:
		cpu.TPR.CA = (cpu.TPR.CA + cpu.regValue(td)) & word.MASK18
	}
}

// Value of register selected by td.
func (cpu *CPU) regValue(td uint8) uint32 {
	switch td {
	case TdN:
		return 0
	case TdAU:
		return word.GetHi(cpu.A)
	case TdQU:
		return word.GetHi(cpu.Q)
	case TdIC:
		return cpu.PPR.IC & word.MASK18
	case TdAL:
		return word.GetLo(cpu.A)
	case TdQL:
		return word.GetLo(cpu.Q)
	case TdDU, TdDL:
		return 0
	}
	return cpu.X[td&07] & word.MASK18
}

// Fetch indirect word at CA and return its tag. Pointer pairs are expanded.
func (cpu *CPU) indirect() uint8 {
	ca := cpu.TPR.CA
	iw := cpu.ReadIndirect()
	tag := uint8(iw & 077)
	if (ca&1) == 0 && (tag == tagITS || tag == tagITP) {
		return cpu.pointerPair(iw, tag)
	}
	cpu.TPR.CA = word.GetHi(iw)
	return tag
}

// Expand ITS or ITP pair whose even word is even. Returns tag of odd word.
func (cpu *CPU) pointerPair(even uint64, tag uint8) uint8 {
	cpu.TPR.CA |= 1
	odd := cpu.ReadIndirect()

	// Ring of segment holding the pair.
	var r1 uint8
	if !cpu.Abs && cpu.sdw != nil {
		r1 = cpu.sdw.R1
	}

	if tag == tagITS {
		cpu.cu.ITS = true
		cpu.TPR.TSR = uint16(word.GetBits(even, 3, 15))
		rn := uint8(word.GetBits(even, 18, 3))
		cpu.TPR.TRR = max(rn, r1, cpu.TPR.TRR)
		cpu.TPR.CA = word.GetHi(odd)
	} else {
		cpu.cu.ITP = true
		pr := &cpu.PR[word.GetBits(even, 0, 3)]
		cpu.TPR.TSR = pr.SNR
		cpu.TPR.TRR = max(pr.RNR, r1, cpu.TPR.TRR)
		cpu.TPR.CA = (pr.WORDNO + word.GetHi(odd)) & word.MASK18
	}
	cpu.TPR.TBR = uint8(word.GetBits(odd, 21, 6))
	debug.Debugf(cpu.module, cpu.debugMsk, debugAddrMod, "pointer pair %05o|%06o(%d) ring %d",
		cpu.TPR.TSR, cpu.TPR.CA, cpu.TPR.TBR, cpu.TPR.TRR)
	return uint8(odd & 077)
}

// Indirect then tally modification. Returns the tag to continue with
// and true if the chain continues.
func (cpu *CPU) tallyMod(tag uint8) (uint8, bool) {
	td := tag & tdMask
	switch td {
	case ItF1:
		cpu.doFault(FaultF1, 0, "fault tag 1")
	case ItF2:
		cpu.doFault(FaultF2, 0, "fault tag 2")
	case ItF3:
		cpu.doFault(FaultF3, 0, "fault tag 3")
	case ItITP, ItITS:
		cpu.illegalModifier(tag, "pointer pair tag not in pair")
	case ItRSV:
		cpu.illegalModifier(tag, "reserved IT modifier")
	}

	addr := cpu.TPR.CA
	w := cpu.ReadIndirect()
	y := word.GetHi(w)
	tally := uint32(word.GetBits(w, 18, 12))

	switch td {
	case ItI:
		cpu.TPR.CA = y
		return 0, false

	case ItCI:
		size, pos := cpu.charFields(w, tag)
		cpu.setChar(size, pos)
		cpu.TPR.CA = y
		return 0, false

	case ItSC:
		size, pos := cpu.charFields(w, tag)
		cpu.setChar(size, pos)
		ca := y
		pos++
		if pos > maxCharPos(size) {
			pos = 0
			y++
		}
		w = word.SetBits(w, 33, 3, uint64(pos))
		cpu.putTally(addr, w, y, tally-1)
		cpu.TPR.CA = ca

	case ItSCR:
		size, pos := cpu.charFields(w, tag)
		if pos == 0 {
			pos = maxCharPos(size)
			y--
		} else {
			pos--
		}
		w = word.SetBits(w, 33, 3, uint64(pos))
		y = cpu.putTally(addr, w, y, tally+1)
		cpu.setChar(size, pos)
		cpu.TPR.CA = y

	case ItAD:
		delta := uint32(w & 077)
		cpu.putTally(addr, w, y+delta, tally-1)
		cpu.TPR.CA = y

	case ItSD:
		delta := uint32(w & 077)
		y = cpu.putTally(addr, w, y-delta, tally+1)
		cpu.TPR.CA = y

	case ItDI:
		y = cpu.putTally(addr, w, y-1, tally+1)
		cpu.TPR.CA = y

	case ItID:
		cpu.putTally(addr, w, y+1, tally-1)
		cpu.TPR.CA = y

	case ItDIC, ItIDC:
		if td == ItDIC {
			y = cpu.putTally(addr, w, y-1, tally+1)
			cpu.TPR.CA = y
		} else {
			cpu.putTally(addr, w, y+1, tally-1)
			cpu.TPR.CA = y
		}
		next := uint8(w & 077)
		if (next & tmMask) != TmIT {
			next &= tmMask
		}
		cpu.updateIWB(cpu.TPR.CA, next)
		return next, true
	}
	return 0, false
}

// Character size and position of a character tally word.
func (cpu *CPU) charFields(w uint64, tag uint8) (uint8, uint8) {
	size := uint8(6)
	if word.GetBit(w, 30) {
		size = 9
	}
	pos := uint8(word.GetBits(w, 33, 3))
	if pos > maxCharPos(size) {
		cpu.illegalModifier(tag, fmt.Sprintf("character position %d for %d bit characters", pos, size))
	}
	return size, pos
}

// Largest character position in a word.
func maxCharPos(size uint8) uint8 {
	if size == 9 {
		return 3
	}
	return 5
}

func (cpu *CPU) setChar(size, pos uint8) {
	cpu.CharOperand = true
	cpu.CharSize = size
	cpu.CharPos = pos
}

// Write back tally word held at addr and set tally runout. Returns the
// masked address field.
func (cpu *CPU) putTally(addr uint32, w uint64, y, tally uint32) uint32 {
	y &= word.MASK18
	tally &= tallyMask
	w = word.PutHi(w, y)
	w = word.SetBits(w, 18, 12, uint64(tally))
	cpu.TPR.CA = addr
	cpu.WriteOperand(w)
	cpu.setIndicator(ITally, tally == 0)
	debug.Debugf(cpu.module, cpu.debugMsk, debugAddrMod, "tally word %06o: %s", addr, word.Octal(w))
	return y
}

// Rewrite address and tag of instruction buffer so a restarted
// instruction continues the chain.
func (cpu *CPU) updateIWB(addr uint32, tag uint8) {
	iwb := word.PutHi(cpu.cu.IWB, addr)
	cpu.cu.IWB = word.SetBits(iwb, 30, 6, uint64(tag))
}

func (cpu *CPU) illegalModifier(tag uint8, msg string) {
	cpu.doFault(FaultIPR, IllegalModifier, fmt.Sprintf("tag %02o: %s", tag, msg))
}

// Reset operand description before address formation.
func (cpu *CPU) clearOperand() {
	cpu.DirectOperand = false
	cpu.Operand = 0
	cpu.CharOperand = false
	cpu.CharSize = 0
	cpu.CharPos = 0
}
