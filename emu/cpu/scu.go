/*
 * DPS8 - Control unit save and restore
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
	"github.com/rcornwell/DPS8/emu/word"
)

/*
   Control unit data, eight words saved when a fault is taken.

   Word 0: PRR, PSR, P, XSF, SDWAMM, SDON, PTWAMM, PTON, APU cycles, FCT.
   Word 1: Fault indicators, IA, IACHN, CNCHN, FI address, FLT/INT.
   Word 2: TRR, TSR, CPU number, repeat delta.
   Word 3: Transfer history TSNA, TSNB, TSNC, TBR.
   Word 4: IC, IR.
   Word 5: CA, repeat and modification flags, CT_HOLD.
   Word 6: Instruction word buffer.
   Word 7: Odd instruction of pair.
*/

// Word 5 flag bits, starting at bit 18.
var cuWord5 = [...]struct {
	bit uint
	get func(cu *cuState) *bool
}{
	{18, func(cu *cuState) *bool { return &cu.RF }},
	{19, func(cu *cuState) *bool { return &cu.RPT }},
	{20, func(cu *cuState) *bool { return &cu.RD }},
	{21, func(cu *cuState) *bool { return &cu.RL }},
	{22, func(cu *cuState) *bool { return &cu.POT }},
	{23, func(cu *cuState) *bool { return &cu.PON }},
	{24, func(cu *cuState) *bool { return &cu.XDE }},
	{25, func(cu *cuState) *bool { return &cu.XDO }},
	{26, func(cu *cuState) *bool { return &cu.ITP }},
	{27, func(cu *cuState) *bool { return &cu.RFI }},
	{28, func(cu *cuState) *bool { return &cu.ITS }},
	{29, func(cu *cuState) *bool { return &cu.FIF }},
}

// Save control unit state.
func (cpu *CPU) SaveCU() [8]uint64 {
	var data [8]uint64
	cu := &cpu.cu

	w := word.SetBits(0, 0, 3, uint64(cpu.PPR.PRR))
	w = word.SetBits(w, 3, 15, uint64(cpu.PPR.PSR))
	w = word.SetBit(w, 18, cpu.PPR.P)
	w = word.SetBit(w, 19, cu.XSF)
	w = word.SetBit(w, 20, cu.SDWAMM)
	w = word.SetBit(w, 21, cu.SDON)
	w = word.SetBit(w, 22, cu.PTWAMM)
	w = word.SetBit(w, 23, cu.PTON)
	for _, b := range apuBits {
		if (cu.APU & b.flag) != 0 {
			w = word.SetBit(w, b.bit, true)
		}
	}
	data[0] = word.SetBits(w, 33, 3, uint64(cu.FCT))

	w = word.SetBits(0, 0, 20, uint64(cu.Flags))
	w = word.SetBits(w, 20, 4, uint64(cu.IA))
	w = word.SetBits(w, 24, 3, uint64(cu.IACHN))
	w = word.SetBits(w, 27, 3, uint64(cu.CNCHN))
	w = word.SetBits(w, 30, 5, uint64(cu.FIADDR))
	data[1] = word.SetBit(w, 35, cu.FLTINT)

	w = word.SetBits(0, 0, 3, uint64(cpu.TPR.TRR))
	w = word.SetBits(w, 3, 15, uint64(cpu.TPR.TSR))
	w = word.SetBits(w, 27, 3, uint64(cu.CPUNum))
	data[2] = word.SetBits(w, 30, 6, uint64(cu.Delta))

	w = word.SetBits(0, 18, 3, uint64(cu.TSNA))
	w = word.SetBit(w, 21, cu.TSNAV)
	w = word.SetBits(w, 22, 3, uint64(cu.TSNB))
	w = word.SetBit(w, 25, cu.TSNBV)
	w = word.SetBits(w, 26, 3, uint64(cu.TSNC))
	w = word.SetBit(w, 29, cu.TSNCV)
	data[3] = word.SetBits(w, 30, 6, uint64(cpu.TPR.TBR))

	data[4] = word.PutLo(word.PutHi(0, cpu.PPR.IC), cpu.IR)

	w = word.PutHi(0, cpu.TPR.CA)
	for _, f := range cuWord5 {
		w = word.SetBit(w, f.bit, *f.get(cu))
	}
	data[5] = word.SetBits(w, 30, 6, uint64(cu.CTHold))

	data[6] = cu.IWB & word.DMASK
	data[7] = cu.IRODD & word.DMASK
	return data
}

// Restore control unit state saved by SaveCU.
func (cpu *CPU) RestoreCU(data [8]uint64) {
	cu := &cpu.cu

	w := data[0]
	cpu.PPR.PRR = uint8(word.GetBits(w, 0, 3))
	cpu.PPR.PSR = uint16(word.GetBits(w, 3, 15))
	cpu.PPR.P = word.GetBit(w, 18)
	cu.XSF = word.GetBit(w, 19)
	cu.SDWAMM = word.GetBit(w, 20)
	cu.SDON = word.GetBit(w, 21)
	cu.PTWAMM = word.GetBit(w, 22)
	cu.PTON = word.GetBit(w, 23)
	cu.APU = 0
	// MDSPTW and MPTW can not be told from DSPTW and PTW.
	for _, b := range apuBits[:9] {
		if word.GetBit(w, b.bit) {
			cu.APU |= b.flag
		}
	}
	cu.FCT = uint8(word.GetBits(w, 33, 3))

	w = data[1]
	cu.Flags = uint32(word.GetBits(w, 0, 20))
	cu.IA = uint8(word.GetBits(w, 20, 4))
	cu.IACHN = uint8(word.GetBits(w, 24, 3))
	cu.CNCHN = uint8(word.GetBits(w, 27, 3))
	cu.FIADDR = uint8(word.GetBits(w, 30, 5))
	cu.FLTINT = word.GetBit(w, 35)

	w = data[2]
	cpu.TPR.TRR = uint8(word.GetBits(w, 0, 3))
	cpu.TPR.TSR = uint16(word.GetBits(w, 3, 15))
	cu.CPUNum = uint8(word.GetBits(w, 27, 3))
	cu.Delta = uint8(word.GetBits(w, 30, 6))

	w = data[3]
	cu.TSNA = uint8(word.GetBits(w, 18, 3))
	cu.TSNAV = word.GetBit(w, 21)
	cu.TSNB = uint8(word.GetBits(w, 22, 3))
	cu.TSNBV = word.GetBit(w, 25)
	cu.TSNC = uint8(word.GetBits(w, 26, 3))
	cu.TSNCV = word.GetBit(w, 29)
	cpu.TPR.TBR = uint8(word.GetBits(w, 30, 6))

	cpu.PPR.IC = word.GetHi(data[4])
	cpu.IR = word.GetLo(data[4])
	cpu.Abs = (cpu.IR & IAbs) != 0

	w = data[5]
	cpu.TPR.CA = word.GetHi(w)
	for _, f := range cuWord5 {
		*f.get(cu) = word.GetBit(w, f.bit)
	}
	cu.CTHold = uint8(word.GetBits(w, 30, 6))

	cu.IWB = data[6] & word.DMASK
	cu.IRODD = data[7] & word.DMASK
}

// CU data saved by the last fault.
func (cpu *CPU) SCUData() [8]uint64 {
	return cpu.scuData
}
