/*
 * DPS8 - DPS8 opcode definitions.
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

package opcodemap

// Opcodes are the 9 bit opcode field with the extension bit (word bit 27)
// as bit 9.
const (
	OpExt = 01000 // Opcode extension bit

	// Load and store.
	OpLDA  = 0235
	OpLDQ  = 0236
	OpLDAQ = 0237
	OpLCA  = 0335
	OpLCQ  = 0336
	OpLDI  = 0634
	OpLDX0 = 0220 // ldx0 to ldx7 follow
	OpLXL0 = 0720 // lxl0 to lxl7 follow
	OpSTA  = 0755
	OpSTQ  = 0756
	OpSTAQ = 0757
	OpSTZ  = 0450
	OpSTI  = 0754
	OpSTX0 = 0740 // stx0 to stx7 follow
	OpSXL0 = 0440 // sxl0 to sxl7 follow
	OpEAA  = 0635
	OpEAQ  = 0636
	OpEAX0 = 0620 // eax0 to eax7 follow

	// Arithmetic and logic.
	OpADA  = 0075
	OpADQ  = 0076
	OpADAQ = 0077
	OpSBA  = 0175
	OpSBQ  = 0176
	OpSBAQ = 0177
	OpAOS  = 0054
	OpASA  = 0055
	OpASQ  = 0056
	OpCMPA = 0115
	OpCMPQ = 0116
	OpORA  = 0275
	OpORQ  = 0276
	OpCANA = 0315
	OpCANQ = 0316
	OpANA  = 0375
	OpANQ  = 0376
	OpERA  = 0675
	OpERQ  = 0676

	// Transfer of control.
	OpTZE   = 0600
	OpTNZ   = 0601
	OpTNC   = 0602
	OpTRC   = 0603
	OpTMI   = 0604
	OpTPL   = 0605
	OpTOV   = 0617
	OpTSX0  = 0700 // tsx0 to tsx7 follow
	OpTRA   = 0710
	OpCALL6 = 0713
	OpTSS   = 0715
	OpRTCD  = 0610
	OpRET   = 0630
	OpXEC   = 0716
	OpXED   = 0717

	// Miscellaneous and privileged.
	OpNOP  = 0011
	OpDIS  = 0616
	OpSCU  = 0657
	OpRCU  = 0613
	OpLDBR = 0232
	OpSDBR = 0154
	OpCAMS = 0532
	OpCAMP = 0532 | OpExt
)
