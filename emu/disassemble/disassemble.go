/*
 * DPS8 - DPS8 instruction disassembler.
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

package disassemble

import (
	"fmt"

	op "github.com/rcornwell/DPS8/emu/opcodemap"
	"github.com/rcornwell/DPS8/emu/word"
)

const (
	tyMem  = 1 + iota // Address and modifier
	tyAddr            // Address only, modifier ignored
)

type opcode struct {
	opName string // Opcode string.
	opType int    // Opcode type.
}

var opMap = map[uint16]opcode{
	op.OpLDA:   {"lda", tyMem},
	op.OpLDQ:   {"ldq", tyMem},
	op.OpLDAQ:  {"ldaq", tyMem},
	op.OpLCA:   {"lca", tyMem},
	op.OpLCQ:   {"lcq", tyMem},
	op.OpLDI:   {"ldi", tyMem},
	op.OpSTA:   {"sta", tyMem},
	op.OpSTQ:   {"stq", tyMem},
	op.OpSTAQ:  {"staq", tyMem},
	op.OpSTZ:   {"stz", tyMem},
	op.OpSTI:   {"sti", tyMem},
	op.OpEAA:   {"eaa", tyMem},
	op.OpEAQ:   {"eaq", tyMem},
	op.OpADA:   {"ada", tyMem},
	op.OpADQ:   {"adq", tyMem},
	op.OpADAQ:  {"adaq", tyMem},
	op.OpSBA:   {"sba", tyMem},
	op.OpSBQ:   {"sbq", tyMem},
	op.OpSBAQ:  {"sbaq", tyMem},
	op.OpAOS:   {"aos", tyMem},
	op.OpASA:   {"asa", tyMem},
	op.OpASQ:   {"asq", tyMem},
	op.OpCMPA:  {"cmpa", tyMem},
	op.OpCMPQ:  {"cmpq", tyMem},
	op.OpORA:   {"ora", tyMem},
	op.OpORQ:   {"orq", tyMem},
	op.OpCANA:  {"cana", tyMem},
	op.OpCANQ:  {"canq", tyMem},
	op.OpANA:   {"ana", tyMem},
	op.OpANQ:   {"anq", tyMem},
	op.OpERA:   {"era", tyMem},
	op.OpERQ:   {"erq", tyMem},
	op.OpTZE:   {"tze", tyMem},
	op.OpTNZ:   {"tnz", tyMem},
	op.OpTNC:   {"tnc", tyMem},
	op.OpTRC:   {"trc", tyMem},
	op.OpTMI:   {"tmi", tyMem},
	op.OpTPL:   {"tpl", tyMem},
	op.OpTOV:   {"tov", tyMem},
	op.OpTRA:   {"tra", tyMem},
	op.OpCALL6: {"call6", tyMem},
	op.OpTSS:   {"tss", tyMem},
	op.OpRTCD:  {"rtcd", tyMem},
	op.OpRET:   {"ret", tyMem},
	op.OpXEC:   {"xec", tyMem},
	op.OpXED:   {"xed", tyMem},
	op.OpNOP:   {"nop", tyMem},
	op.OpDIS:   {"dis", tyMem},
	op.OpSCU:   {"scu", tyMem},
	op.OpRCU:   {"rcu", tyMem},
	op.OpLDBR:  {"ldbr", tyMem},
	op.OpSDBR:  {"sdbr", tyMem},
	op.OpCAMS:  {"cams", tyAddr},
	op.OpCAMP:  {"camp", tyAddr},
}

// Register modifier names, also used for the register part of RI and IR.
var regMod = [16]string{
	"n", "au", "qu", "du", "ic", "al", "ql", "dl",
	"x0", "x1", "x2", "x3", "x4", "x5", "x6", "x7",
}

// Indirect then tally modifier names.
var tallyMod = [16]string{
	"f1", "itp", "it2", "its", "sd", "scr", "f2", "f3",
	"ci", "i", "sc", "ad", "di", "dic", "id", "idc",
}

// Fill in the indexed register groups.
func init() {
	groups := []struct {
		base uint16
		name string
	}{
		{op.OpLDX0, "ldx"}, {op.OpLXL0, "lxl"}, {op.OpSTX0, "stx"},
		{op.OpSXL0, "sxl"}, {op.OpEAX0, "eax"}, {op.OpTSX0, "tsx"},
	}
	for _, g := range groups {
		for n := range uint16(8) {
			opMap[g.base+n] = opcode{fmt.Sprintf("%s%d", g.name, n), tyMem}
		}
	}
}

// Opcode with extension bit.
func Opcode(inst uint64) uint16 {
	return uint16(word.GetBits(inst, 18, 9)) | uint16(word.GetBits(inst, 27, 1))<<9
}

// Name of opcode, empty if not known.
func Name(opc uint16) string {
	return opMap[opc].opName
}

// Modifier suffix for tag.
func Modifier(tag uint8) string {
	td := tag & 017
	switch tag & 060 {
	case 000:
		if td == 0 {
			return ""
		}
		return "," + regMod[td]
	case 020:
		if td == 0 {
			return ",*"
		}
		return "," + regMod[td] + "*"
	case 040:
		return "," + tallyMod[td]
	default:
		return ",*" + regMod[td]
	}
}

// Address field, pointer register relative if A bit set.
func address(inst uint64) string {
	y := uint32(word.GetBits(inst, 0, 18))
	if word.GetBits(inst, 29, 1) == 0 {
		return fmt.Sprintf("%o", y)
	}
	pr := y >> 15
	offset := y & 077777
	if offset&040000 != 0 {
		return fmt.Sprintf("pr%d|-%o", pr, 0100000-offset)
	}
	return fmt.Sprintf("pr%d|%o", pr, offset)
}

// Disassemble one instruction word.
func Disassemble(inst uint64) string {
	opc, ok := opMap[Opcode(inst)]
	if !ok {
		return "oct    " + word.Octal(inst)
	}

	// Make opcode align
	text := opc.opName + "       "
	text = text[:7]
	text += address(inst)
	if opc.opType == tyMem {
		text += Modifier(uint8(word.GetBits(inst, 30, 6)))
	}
	return text
}
