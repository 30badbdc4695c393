/*
 * DPS8 - CPU register and constant definitions
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

// Temporary pointer register, built up during address preparation.
type TPR struct {
	TSR uint16 // Segment number
	TRR uint8  // Effective ring
	TBR uint8  // Bit offset
	CA  uint32 // Computed address
}

// Procedure pointer register.
type PPR struct {
	PSR uint16 // Procedure segment
	PRR uint8  // Ring of execution
	IC  uint32 // Instruction counter
	P   bool   // Privileged
}

// Pointer register.
type PtrReg struct {
	SNR    uint16 // Segment number
	RNR    uint8  // Ring number
	WORDNO uint32 // Word offset
	BITNO  uint8  // Bit offset
}

// Descriptor segment base register.
type DSBR struct {
	ADDR  uint32 // Base of descriptor segment or its page table
	BND   uint16 // Bound in 16 word blocks
	U     bool   // Descriptor segment unpaged
	STACK uint16 // Stack base segment
}

// Segment descriptor word.
type SDW struct {
	ADDR  uint32 // Base of segment or page table
	R1    uint8  // Write bracket
	R2    uint8  // Read bracket
	R3    uint8  // Call bracket
	BOUND uint16 // Last 16 word block in segment
	R     bool   // Read permission
	E     bool   // Execute permission
	W     bool   // Write permission
	P     bool   // Privileged
	U     bool   // Unpaged
	G     bool   // Any location may be called
	C     bool   // Cacheable
	EB    uint16 // Call limiter
	DF    bool   // Descriptor valid
	FC    uint8  // Directed fault number
}

// Page table word.
type PTW struct {
	ADDR uint32 // Page frame in 64 word blocks
	U    bool   // Page used
	M    bool   // Page modified
	DF   bool   // Page in memory
	FC   uint8  // Directed fault number
}

// Key of page table associative memory.
type ptwKey struct {
	seg  uint16
	page uint16
}

// Kind of memory reference, selects the validation done by the appending unit.
type AccessKind int

const (
	OperandRead       AccessKind = iota // Read of an operand
	OperandStore                        // Write of an operand
	InstructionFetch                    // Fetch of instruction
	IndirectWordFetch                   // Fetch of indirect or tally word
	RTCDOperandFetch                    // Fetch of return control double operand
	TransferOperand                     // Target of transfer instruction
	ReturnTransfer                      // Target of return
	Call6Operand                        // Target of CALL6
)

var accessName = [...]string{
	"OperandRead", "OperandStore", "InstructionFetch", "IndirectWordFetch",
	"RTCDOperandFetch", "TransferOperand", "ReturnTransfer", "Call6Operand",
}

func (k AccessKind) String() string {
	if k < 0 || int(k) >= len(accessName) {
		return "Unknown"
	}
	return accessName[k]
}

// Access loads PPR from TPR.
func (k AccessKind) isTransfer() bool {
	return k == InstructionFetch || k == TransferOperand || k == ReturnTransfer
}

// APU cycles executed during last translation.
type APUStatus uint16

const (
	apuPIAP   APUStatus = 1 << iota // Instruction fetch, append
	apuDSPTW                        // Fetch descriptor segment PTW
	apuSDWNP                        // Fetch SDW, descriptor segment unpaged
	apuSDWP                         // Fetch SDW, descriptor segment paged
	apuPTW                          // Fetch PTW
	apuPTW2                         // Fetch PTW of next page
	apuFAP                          // Final address, paged
	apuFANP                         // Final address, not paged
	apuFABS                         // Final address, absolute
	apuMDSPTW                       // Modify descriptor segment PTW
	apuMPTW                         // Modify PTW
)

// Position of status bits in word 0 of the CU data, MDSPTW and MPTW
// share the DSPTW and PTW positions.
var apuBits = [...]struct {
	flag APUStatus
	bit  uint
}{
	{apuPIAP, 24}, {apuDSPTW, 25}, {apuSDWNP, 26}, {apuSDWP, 27},
	{apuPTW, 28}, {apuPTW2, 29}, {apuFAP, 30}, {apuFANP, 31}, {apuFABS, 32},
	{apuMDSPTW, 25}, {apuMPTW, 28},
}

var apuName = [...]string{
	"PI-AP", "DSPTW", "SDWNP", "SDWP", "PTW", "PTW2", "FAP", "FANP", "FABS",
	"MDSPTW", "MPTW",
}

func (s APUStatus) String() string {
	str := ""
	for i, name := range apuName {
		if (s & (1 << i)) == 0 {
			continue
		}
		if str != "" {
			str += ","
		}
		str += name
	}
	return str
}

// Tag field.
const (
	TmR  uint8 = 000 // Register
	TmRI uint8 = 020 // Register then indirect
	TmIT uint8 = 040 // Indirect then tally
	TmIR uint8 = 060 // Indirect then register

	tmMask uint8 = 060
	tdMask uint8 = 017
)

// Register designators.
const (
	TdN  uint8 = 000 // None
	TdAU uint8 = 001 // A upper
	TdQU uint8 = 002 // Q upper
	TdDU uint8 = 003 // Direct upper
	TdIC uint8 = 004 // Instruction counter
	TdAL uint8 = 005 // A lower
	TdQL uint8 = 006 // Q lower
	TdDL uint8 = 007 // Direct lower
	TdX0 uint8 = 010 // Index registers X0 to X7
)

// Indirect then tally designators.
const (
	ItF1  uint8 = 000 // Fault tag 1
	ItITP uint8 = 001 // ITP pair, only valid in indirect word
	ItRSV uint8 = 002 // Undefined
	ItITS uint8 = 003 // ITS pair, only valid in indirect word
	ItSD  uint8 = 004 // Subtract delta
	ItSCR uint8 = 005 // Sequence character reverse
	ItF2  uint8 = 006 // Fault tag 2
	ItF3  uint8 = 007 // Fault tag 3
	ItCI  uint8 = 010 // Character indirect
	ItI   uint8 = 011 // Indirect
	ItSC  uint8 = 012 // Sequence character
	ItAD  uint8 = 013 // Add delta
	ItDI  uint8 = 014 // Decrement address, increment tally
	ItDIC uint8 = 015 // Decrement address, increment tally, continue
	ItID  uint8 = 016 // Increment address, decrement tally
	ItIDC uint8 = 017 // Increment address, decrement tally, continue

	tagITP uint8 = TmIT | ItITP
	tagITS uint8 = TmIT | ItITS
)

// Indicator register bits, held right justified.
const (
	IZero   uint32 = 0400000 // Zero
	INeg    uint32 = 0200000 // Negative
	ICarry  uint32 = 0100000 // Carry
	IOvfl   uint32 = 0040000 // Overflow
	IEOvfl  uint32 = 0020000 // Exponent overflow
	IEUfl   uint32 = 0010000 // Exponent underflow
	IOflm   uint32 = 0004000 // Overflow mask
	ITally  uint32 = 0002000 // Tally runout
	IParity uint32 = 0001000 // Parity error
	IPmask  uint32 = 0000400 // Parity mask
	INbar   uint32 = 0000200 // Not BAR mode
	ITrunc  uint32 = 0000100 // Truncation
	IMif    uint32 = 0000040 // Multiword instruction interrupted
	IAbs    uint32 = 0000020 // Absolute mode
	IHex    uint32 = 0000010 // Hex exponent
)

// Fault numbers.
type FaultNumber int

const (
	FaultSDF  FaultNumber = iota // Shutdown
	FaultSTR                     // Store
	FaultMME                     // Master mode entry 1
	FaultF1                      // Fault tag 1
	FaultTRO                     // Timer runout
	FaultCMD                     // Command
	FaultDRL                     // Derail
	FaultLUF                     // Lockup
	FaultCON                     // Connect
	FaultPAR                     // Parity
	FaultIPR                     // Illegal procedure
	FaultONC                     // Operation not complete
	FaultSUF                     // Startup
	FaultOFL                     // Overflow
	FaultDIV                     // Divide check
	FaultEXF                     // Execute
	FaultDF0                     // Directed fault 0
	FaultDF1                     // Directed fault 1
	FaultDF2                     // Directed fault 2
	FaultDF3                     // Directed fault 3
	FaultACV                     // Access violation
	FaultMME2                    // Master mode entry 2
	FaultMME3                    // Master mode entry 3
	FaultMME4                    // Master mode entry 4
	FaultF2                      // Fault tag 2
	FaultF3                      // Fault tag 3
	FaultUN1                     // Unassigned
	FaultUN2                     // Unassigned
	FaultUN3                     // Unassigned
	FaultUN4                     // Unassigned
	FaultUN5                     // Unassigned
	FaultTRB                     // Trouble

	NumFaults = 32
)

// Access violation subtypes.
const (
	ACV0  Subtype = 1 << iota // IRO: Illegal ring order
	ACV1                      // OEB: Out of execute bracket
	ACV2                      // E-OFF: No execute permission
	ACV3                      // ORB: Out of read bracket
	ACV4                      // R-OFF: No read permission
	ACV5                      // OWB: Out of write bracket
	ACV6                      // W-OFF: No write permission
	ACV7                      // NO-GA: Not a gate
	ACV8                      // OCB: Out of call bracket
	ACV9                      // OCALL: Outward call
	ACV10                     // BOC: Bad outward call
	ACV11                     // INRET: Inward return
	ACV12                     // CRT: Cross ring transfer
	ACV13                     // RALR: Ring alarm
	ACV14                     // AME: Associative memory error
	ACV15                     // OOSB: Out of segment bounds
)

// Illegal procedure subtypes.
const (
	IllegalOpcode   Subtype = 1 << iota // Illegal op code
	IllegalModifier                     // Illegal address modifier
	IllegalSlave                        // Illegal slave procedure
	IllegalDigit                        // Illegal decimal digit
	IllegalProc                         // Illegal procedure
)

// Store and operation not complete subtypes.
const (
	StoreOOB    Subtype = 1 // Out of bounds
	StoreNotMem Subtype = 2 // Nonexistent address
	OncNEM      Subtype = 1 // Nonexistent address
)

// Processor cycle.
type Cycle int

const (
	ExecCycle      Cycle = iota // Normal execution
	FaultCycle                  // Fault being taken
	FaultExecCycle              // Executing fault pair
)

// Control unit data saved on a fault.
type cuState struct {
	// Word 0
	XSF    bool      // Extra segment flag
	SDWAMM bool      // Match in SDWAM
	SDON   bool      // SDWAM enabled
	PTWAMM bool      // Match in PTWAM
	PTON   bool      // PTWAM enabled
	APU    APUStatus // Cycles of last translation
	FCT    uint8     // Fault counter

	// Word 1
	Flags   uint32 // ACV and IPR indicator bits 0-19
	IA      uint8  // Illegal action
	IACHN   uint8  // Illegal action channel
	CNCHN   uint8  // Connect channel
	FIADDR  uint8  // Fault or interrupt number
	FLTINT  bool   // Fault, not interrupt
	CPUNum  uint8  // Word 2 processor number
	Delta   uint8  // Word 2 repeat delta
	TSNA    uint8  // Word 3 transfer history, pointer register number
	TSNB    uint8  //
	TSNC    uint8  //
	TSNAV   bool   // History valid
	TSNBV   bool   //
	TSNCV   bool   //
	RF      bool   // Word 5 repeat first
	RPT     bool   // Repeat
	RD      bool   // Repeat double
	RL      bool   // Repeat link
	POT     bool   // Prepare operand tally
	PON     bool   // Prepare operand no tally
	XDE     bool   // Execute double even
	XDO     bool   // Execute double odd
	ITP     bool   // ITP modification in progress
	RFI     bool   // Restart this instruction
	ITS     bool   // ITS modification in progress
	FIF     bool   // Fault during instruction fetch
	CTHold  uint8  // Count hold for IR modification
	IWB     uint64 // Word 6 instruction word buffer
	IRODD   uint64 // Word 7 odd instruction
}

// Word 1 indicator bit numbers.
const (
	cuIRO  = 0  // IRO / ISN
	cuOEB  = 1  // OEB / IOC
	cuEOFF = 2  // E-OFF / IA+IM
	cuORB  = 3  // ORB / ISP
	cuROFF = 4  // R-OFF / IPR
	cuOWB  = 5  // OWB / NEA
	cuWOFF = 6  // W-OFF / OOB
)
