/*
 * DPS8 - Appending unit
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
   The appending unit translates TPR.TSR and TPR.CA into an absolute
   address. The SDW for the segment comes from the SDWAM or from the
   descriptor segment, which may itself be paged. Ring brackets and
   access bits are checked according to the kind of access, every
   violation found is collected and a single access violation fault is
   raised with all of them. A paged segment then needs its PTW from the
   PTWAM or the page table.

   SDW even word:
      0                    23 24 26 27 29 30 32 33 34 35
      +----------------------+-----+-----+-----+--+-----+
      |         ADDR         | R1  | R2  | R3  |DF| FC  |
      +----------------------+-----+-----+-----+--+-----+

   SDW odd word:
      0 1          14 15 16 17 18 19 20 21 22             35
      +-+------------+--+--+--+--+--+--+--+----------------+
      | |   BOUND    |R |E |W |P |U |G |C |       EB       |
      +-+------------+--+--+--+--+--+--+--+----------------+

   PTW: ADDR 0-17 in 64 word blocks, U 26, M 29, DF 33, FC 34-35.
*/

// Words in a page.
const pageSize = 1024

// Result of a translation.
type AppendResult struct {
	Address    uint32    // Absolute address
	Privileged bool      // Target segment privileged
	PChanged   bool      // PPR loaded from TPR
	Status     APUStatus // Cycles performed
}

// Decode SDW pair.
func DecodeSDW(even, odd uint64) SDW {
	return SDW{
		ADDR:  uint32(word.GetBits(even, 0, 24)),
		R1:    uint8(word.GetBits(even, 24, 3)),
		R2:    uint8(word.GetBits(even, 27, 3)),
		R3:    uint8(word.GetBits(even, 30, 3)),
		DF:    word.GetBit(even, 33),
		FC:    uint8(word.GetBits(even, 34, 2)),
		BOUND: uint16(word.GetBits(odd, 1, 14)),
		R:     word.GetBit(odd, 15),
		E:     word.GetBit(odd, 16),
		W:     word.GetBit(odd, 17),
		P:     word.GetBit(odd, 18),
		U:     word.GetBit(odd, 19),
		G:     word.GetBit(odd, 20),
		C:     word.GetBit(odd, 21),
		EB:    uint16(word.GetBits(odd, 22, 14)),
	}
}

// Encode SDW as memory pair.
func (sdw SDW) Encode() (uint64, uint64) {
	even := word.SetBits(0, 0, 24, uint64(sdw.ADDR))
	even = word.SetBits(even, 24, 3, uint64(sdw.R1))
	even = word.SetBits(even, 27, 3, uint64(sdw.R2))
	even = word.SetBits(even, 30, 3, uint64(sdw.R3))
	even = word.SetBit(even, 33, sdw.DF)
	even = word.SetBits(even, 34, 2, uint64(sdw.FC))
	odd := word.SetBits(0, 1, 14, uint64(sdw.BOUND))
	odd = word.SetBit(odd, 15, sdw.R)
	odd = word.SetBit(odd, 16, sdw.E)
	odd = word.SetBit(odd, 17, sdw.W)
	odd = word.SetBit(odd, 18, sdw.P)
	odd = word.SetBit(odd, 19, sdw.U)
	odd = word.SetBit(odd, 20, sdw.G)
	odd = word.SetBit(odd, 21, sdw.C)
	odd = word.SetBits(odd, 22, 14, uint64(sdw.EB))
	return even, odd
}

// Decode PTW.
func DecodePTW(w uint64) PTW {
	return PTW{
		ADDR: uint32(word.GetBits(w, 0, 18)),
		U:    word.GetBit(w, 26),
		M:    word.GetBit(w, 29),
		DF:   word.GetBit(w, 33),
		FC:   uint8(word.GetBits(w, 34, 2)),
	}
}

// Encode PTW as memory word.
func (ptw PTW) Encode() uint64 {
	w := word.SetBits(0, 0, 18, uint64(ptw.ADDR))
	w = word.SetBit(w, 26, ptw.U)
	w = word.SetBit(w, 29, ptw.M)
	w = word.SetBit(w, 33, ptw.DF)
	return word.SetBits(w, 34, 2, uint64(ptw.FC))
}

// Translate TPR into an absolute address for an access of kind.
func (cpu *CPU) Translate(kind AccessKind) AppendResult {
	cpu.TPR.CA &= word.MASK18
	cpu.cu.APU = 0
	cpu.cu.SDWAMM = false
	cpu.cu.PTWAMM = false

	if cpu.Abs {
		cpu.cu.APU = apuFABS
		return AppendResult{Address: cpu.TPR.CA, Status: apuFABS}
	}

	if kind == InstructionFetch {
		cpu.cu.APU |= apuPIAP
	}
	cpu.TPR.TSR &= uint16(word.MASK15)
	cpu.TPR.TRR &= uint8(word.MASK3)

	cpu.loadSDW()

	acv := cpu.checkAccess(kind)
	if acv != 0 {
		cpu.doFault(FaultACV, acv, fmt.Sprintf("%s %05o|%06o ring %d", kind, cpu.TPR.TSR, cpu.TPR.CA, cpu.TPR.TRR))
	}

	res := AppendResult{Privileged: cpu.sdw.P}
	if cpu.sdw.U {
		cpu.cu.APU |= apuFANP
		res.Address = (cpu.sdw.ADDR + cpu.TPR.CA) & word.MASK24
	} else {
		ptw := cpu.loadPTW(kind)
		cpu.cu.APU |= apuFAP
		res.Address = ((ptw.ADDR << 6) + (cpu.TPR.CA & (pageSize - 1))) & word.MASK24
	}

	// PPR is only loaded once the target page is known to be present.
	if kind == Call6Operand && cpu.TPR.TRR > cpu.sdw.R2 {
		cpu.TPR.TRR = cpu.sdw.R2
	}
	if kind.isTransfer() || kind == Call6Operand {
		cpu.PPR.PSR = cpu.TPR.TSR
		cpu.PPR.PRR = cpu.TPR.TRR
		cpu.PPR.P = cpu.PPR.PRR == 0 && cpu.sdw.P
		res.PChanged = true
	}
	res.Status = cpu.cu.APU
	debug.Debugf(cpu.module, cpu.debugMsk, debugAppend, "%s %05o|%06o -> %08o", kind, cpu.TPR.TSR, cpu.TPR.CA, res.Address)
	return res
}

// Select working SDW for TPR.TSR.
func (cpu *CPU) loadSDW() {
	seg := cpu.TPR.TSR
	if cpu.sdwamEnb {
		sdw, line, err := cpu.sdwam.Lookup(seg)
		if err != nil {
			cpu.doFault(FaultACV, ACV14, err.Error())
		}
		if sdw != nil {
			cpu.cu.SDWAMM = true
			cpu.sdw = sdw
			debug.Debugf(cpu.module, cpu.debugMsk, debugCache, "SDWAM hit segment %05o line %d", seg, line)
			return
		}
	}

	cpu.fetchSDW(seg)
	if !cpu.sdwamEnb || !cpu.sdw0.ringsOrdered() {
		cpu.sdw = &cpu.sdw0
		return
	}
	sdw, line := cpu.sdwam.Load(seg, cpu.sdw0)
	if err := cpu.sdwam.Check(); err != nil {
		cpu.doFault(FaultACV, ACV14, err.Error())
	}
	cpu.sdw = sdw
	debug.Debugf(cpu.module, cpu.debugMsk, debugCache, "SDWAM load segment %05o line %d", seg, line)
}

// Fetch SDW for seg from descriptor segment into sdw0.
func (cpu *CPU) fetchSDW(seg uint16) {
	off := 2 * uint32(seg)
	if off >= 16*(uint32(cpu.DSBR.BND)+1) {
		cpu.doFault(FaultACV, ACV15, fmt.Sprintf("segment %05o outside descriptor segment", seg))
	}

	var addr uint32
	if cpu.DSBR.U {
		cpu.cu.APU |= apuSDWNP
		addr = cpu.DSBR.ADDR + off
	} else {
		cpu.cu.APU |= apuDSPTW
		ptwAddr := (cpu.DSBR.ADDR + (off >> 10)) & word.MASK24
		pw := cpu.readAbs(ptwAddr)
		ptw := DecodePTW(pw)
		if !ptw.DF {
			cpu.doFault(FaultDF0+FaultNumber(ptw.FC), 0, fmt.Sprintf("descriptor segment page for segment %05o", seg))
		}
		if !ptw.U {
			cpu.cu.APU |= apuMDSPTW
			cpu.writeAbs(ptwAddr, word.SetBit(pw, 26, true))
		}
		cpu.cu.APU |= apuSDWP
		addr = (ptw.ADDR << 6) + (off & (pageSize - 1))
	}

	even := cpu.readAbs(addr)
	odd := cpu.readAbs(addr + 1)
	cpu.sdw0 = DecodeSDW(even, odd)
	debug.Debugf(cpu.module, cpu.debugMsk, debugAppend, "SDW %05o at %08o: %s %s", seg, addr&word.MASK24,
		word.Octal(even), word.Octal(odd))

	if !cpu.sdw0.DF {
		cpu.doFault(FaultDF0+FaultNumber(cpu.sdw0.FC), 0, fmt.Sprintf("segment %05o missing", seg))
	}
}

// Ring brackets satisfy R1 <= R2 <= R3.
func (sdw SDW) ringsOrdered() bool {
	return sdw.R1 <= sdw.R2 && sdw.R2 <= sdw.R3
}

// Check access rights of working SDW, returns violations found.
func (cpu *CPU) checkAccess(kind AccessKind) Subtype {
	sdw := cpu.sdw
	trr := cpu.TPR.TRR
	var acv Subtype

	if !sdw.ringsOrdered() {
		acv |= ACV0
	}
	if (cpu.TPR.CA >> 4) > uint32(sdw.BOUND) {
		acv |= ACV15
	}

	switch kind {
	case OperandRead, IndirectWordFetch, RTCDOperandFetch:
		if trr > sdw.R2 {
			acv |= ACV3
		}
		if !sdw.R && cpu.PPR.PSR != cpu.TPR.TSR {
			acv |= ACV4
		}

	case OperandStore:
		// Write bracket taken as 0 to R1.
		if trr > sdw.R1 {
			acv |= ACV5
		}
		if !sdw.W {
			acv |= ACV6
		}

	case InstructionFetch, TransferOperand, ReturnTransfer:
		if trr < sdw.R1 || trr > sdw.R2 {
			acv |= ACV1
		}
		if !sdw.E {
			acv |= ACV2
		}
		if kind == TransferOperand && trr != cpu.PPR.PRR {
			acv |= ACV12
		}
		if kind == ReturnTransfer && trr < cpu.PPR.PRR {
			acv |= ACV11
		}

	case Call6Operand:
		if !sdw.E {
			acv |= ACV2
		}
		if !sdw.G && cpu.PPR.PSR != cpu.TPR.TSR && (cpu.TPR.CA&word.MASK14) >= uint32(sdw.EB) {
			acv |= ACV7
		}
		if trr > sdw.R3 {
			acv |= ACV8
		}
		if trr < sdw.R1 {
			acv |= ACV9
		}
		if trr > cpu.PPR.PRR && cpu.PPR.PRR < sdw.R2 {
			acv |= ACV10
		}
	}

	if kind != InstructionFetch && cpu.RALR != 0 && cpu.PPR.PRR >= cpu.RALR {
		acv |= ACV13
	}
	return acv
}

// Find PTW for page of TPR.CA, update used and modified bits.
func (cpu *CPU) loadPTW(kind AccessKind) *PTW {
	sdw := cpu.sdw
	page := uint16(cpu.TPR.CA >> 10)
	key := ptwKey{seg: cpu.TPR.TSR, page: page}
	addr := (sdw.ADDR + uint32(page)) & word.MASK24

	var ptw *PTW
	if cpu.ptwamEnb {
		p, line, err := cpu.ptwam.Lookup(key)
		if err != nil {
			cpu.doFault(FaultACV, ACV14, err.Error())
		}
		if p != nil {
			cpu.cu.PTWAMM = true
			ptw = p
			debug.Debugf(cpu.module, cpu.debugMsk, debugCache, "PTWAM hit %05o page %o line %d", key.seg, page, line)
		}
	}

	if ptw == nil {
		cpu.cu.APU |= apuPTW
		pw := cpu.readAbs(addr)
		cpu.ptw0 = DecodePTW(pw)
		if !cpu.ptw0.DF {
			cpu.doFault(FaultDF0+FaultNumber(cpu.ptw0.FC), 0,
				fmt.Sprintf("page %o of segment %05o missing", page, key.seg))
		}
		if !cpu.ptw0.U {
			cpu.ptw0.U = true
			cpu.writeAbs(addr, word.SetBit(pw, 26, true))
		}
		if cpu.ptwamEnb {
			var line int
			ptw, line = cpu.ptwam.Load(key, cpu.ptw0)
			if err := cpu.ptwam.Check(); err != nil {
				cpu.doFault(FaultACV, ACV14, err.Error())
			}
			debug.Debugf(cpu.module, cpu.debugMsk, debugCache, "PTWAM load %05o page %o line %d", key.seg, page, line)
		} else {
			ptw = &cpu.ptw0
		}
	}

	if kind == OperandStore && !ptw.M {
		cpu.cu.APU |= apuMPTW
		ptw.M = true
		cpu.writeAbs(addr, word.SetBit(cpu.readAbs(addr), 29, true))
	}
	return ptw
}

// Read word of kind at TPR.
func (cpu *CPU) Read(kind AccessKind) uint64 {
	res := cpu.Translate(kind)
	return cpu.readAbs(res.Address)
}

// Write word of kind at TPR.
func (cpu *CPU) Write(kind AccessKind, data uint64) {
	res := cpu.Translate(kind)
	cpu.writeAbs(res.Address, data)
}

// Read operand at TPR, or the direct operand.
func (cpu *CPU) ReadOperand() uint64 {
	if cpu.DirectOperand {
		return cpu.Operand
	}
	return cpu.Read(OperandRead)
}

// Store operand at TPR.
func (cpu *CPU) WriteOperand(data uint64) {
	cpu.Write(OperandStore, data)
}

// Read indirect word at TPR.
func (cpu *CPU) ReadIndirect() uint64 {
	return cpu.Read(IndirectWordFetch)
}

// Fetch instruction at PPR.IC.
func (cpu *CPU) FetchInstruction() uint64 {
	cpu.TPR.TSR = cpu.PPR.PSR
	cpu.TPR.TRR = cpu.PPR.PRR
	cpu.TPR.TBR = 0
	cpu.TPR.CA = cpu.PPR.IC & word.MASK18
	cpu.cu.FIF = true
	w := cpu.Read(InstructionFetch)
	cpu.cu.FIF = false
	cpu.cu.IWB = w
	return w
}
