/*
 * DPS8 - Monitor commands
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

package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	command "github.com/rcornwell/DPS8/command/command"
	"github.com/rcornwell/DPS8/emu/cpu"
	dis "github.com/rcornwell/DPS8/emu/disassemble"
	"github.com/rcornwell/DPS8/emu/master"
	"github.com/rcornwell/DPS8/emu/word"
)

// Largest number of words examine will print.
const maxExamine = 4096

var cpuOption = command.Options{Name: "cpu", OptionType: command.OptionNumber}

var instOption = command.Options{Name: "inst", OptionType: command.OptionSwitch}

var kindNames = map[string]cpu.AccessKind{
	"read":     cpu.OperandRead,
	"write":    cpu.OperandStore,
	"fetch":    cpu.InstructionFetch,
	"indirect": cpu.IndirectWordFetch,
	"rtcd":     cpu.RTCDOperandFetch,
	"transfer": cpu.TransferOperand,
	"return":   cpu.ReturnTransfer,
	"call":     cpu.Call6Operand,
}

var g7Names = map[string]cpu.FaultNumber{
	"con": cpu.FaultCON,
	"tro": cpu.FaultTRO,
	"exf": cpu.FaultEXF,
}

var showItems = map[string]func(io.Writer, *cpu.CPU){
	"registers": showRegisters,
	"pointers":  showPointers,
	"sdwam":     showSDWAM,
	"ptwam":     showPTWAM,
	"faults":    showFaults,
	"cu":        showCU,
}

var translateOptions = []command.Options{
	cpuOption,
	{Name: "ring", OptionType: command.OptionNumber},
	{Name: "kind", OptionType: command.OptionList, OptionList: keys(kindNames)},
}

var signalOptions = []command.Options{cpuOption, {Name: "chan", OptionType: command.OptionNumber}}

var cmdList = []cmd{
	{Name: "quit", Min: 4, Process: quit},
	{Name: "stop", Min: 3, Process: stop, Options: []command.Options{cpuOption}},
	{Name: "start", Min: 3, Process: start, Options: []command.Options{cpuOption}},
	{Name: "continue", Min: 1, Process: start, Options: []command.Options{cpuOption}},
	{Name: "step", Min: 3, Process: step, Options: []command.Options{cpuOption}},
	{Name: "examine", Min: 2, Process: examine, Options: []command.Options{instOption}},
	{Name: "deposit", Min: 1, Process: deposit},
	{
		Name: "show", Min: 2, Process: show, Options: []command.Options{cpuOption},
		Complete: func(line *cmdLine) []string { return line.matchItem(keys(showItems)) },
	},
	{Name: "translate", Min: 2, Process: translate, Options: translateOptions},
	{
		Name: "signal", Min: 2, Process: signal, Options: signalOptions,
		Complete: func(line *cmdLine) []string { return line.matchItem(keys(g7Names)) },
	},
	{
		Name: "clear", Min: 2, Process: clearAM, Options: []command.Options{cpuOption},
		Complete: func(line *cmdLine) []string { return line.matchItem([]string{"all", "ptwam", "sdwam"}) },
	},
}

func init() {
	cmdList = append(cmdList, cmd{Name: "help", Min: 1, Process: help})
}

// Handle commands that quit simulation.
func quit(line *cmdLine, _ command.Core) (bool, error) {
	slog.Debug("Command Quit")
	return true, line.checkEOL()
}

// Processor option of start and stop, all processors if not given.
func cpuOrAll(line *cmdLine, opts []command.Options) (int, error) {
	optlist, err := line.getOptions(opts)
	if err != nil {
		return 0, err
	}
	if opt, ok := optlist["cpu"]; ok {
		return int(opt.Value), nil
	}
	return master.AllCPUs, nil
}

// Stop processors.
func stop(line *cmdLine, core command.Core) (bool, error) {
	slog.Debug("Command Stop")
	n, err := cpuOrAll(line, []command.Options{cpuOption})
	if err != nil {
		return false, err
	}
	return false, core.SendStop(n)
}

// Start processors.
func start(line *cmdLine, core command.Core) (bool, error) {
	slog.Debug("Command Start")
	n, err := cpuOrAll(line, []command.Options{cpuOption})
	if err != nil {
		return false, err
	}
	return false, core.SendStart(n)
}

// Execute some instructions and wait for them to finish.
func step(line *cmdLine, core command.Core) (bool, error) {
	slog.Debug("Command Step")
	count := uint32(1)
	line.skipSpace()
	if by := line.peek(); by >= '0' && by <= '9' {
		var err error
		count, err = line.getNumber()
		if err != nil {
			return false, err
		}
	}
	optlist, err := line.getOptions([]command.Options{cpuOption})
	if err != nil {
		return false, err
	}
	n, err := selectCPU(optlist, core)
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, errors.New("step count must be positive")
	}
	err = core.SendStep(n, int(count))
	if err != nil {
		return false, err
	}
	return false, core.Do(n, func(c *cpu.CPU) {
		fmt.Fprintf(line.out, "CPU%d %05o|%06o\n", n, c.PPR.PSR, c.PPR.IC)
	})
}

// Get address or range of addresses.
func (line *cmdLine) getRange() (uint32, uint32, error) {
	low, err := line.getOctal()
	if err != nil {
		return 0, 0, err
	}
	high := low
	if line.peek() == '-' {
		line.pos++
		high, err = line.getOctal()
		if err != nil {
			return 0, 0, err
		}
	}
	if high < low {
		return 0, 0, errors.New("address range reversed")
	}
	if high-low >= maxExamine {
		return 0, 0, fmt.Errorf("range larger than %d words", maxExamine)
	}
	return uint32(low), uint32(high), nil
}

// Display memory, octal absolute addresses. With inst each word is
// also shown as an instruction.
func examine(line *cmdLine, core command.Core) (bool, error) {
	slog.Debug("Command Examine")
	low, high, err := line.getRange()
	if err != nil {
		return false, err
	}
	optlist, err := line.getOptions([]command.Options{instOption})
	if err != nil {
		return false, err
	}
	_, inst := optlist["inst"]

	mem := core.Memory()
	for addr := low; addr <= high; addr++ {
		if !mem.CheckAddr(addr) {
			return false, fmt.Errorf("address %08o outside memory", addr)
		}
		value := mem.GetMemory(addr)
		if inst {
			fmt.Fprintf(line.out, "%08o: %s  %s\n", addr, word.Octal(value), dis.Disassemble(value))
			continue
		}
		fmt.Fprintf(line.out, "%08o: %s\n", addr, word.Octal(value))
	}
	return false, nil
}

// Change a memory word.
func deposit(line *cmdLine, core command.Core) (bool, error) {
	slog.Debug("Command Deposit")
	addr, err := line.getOctal()
	if err != nil {
		return false, err
	}
	value, err := line.getOctal()
	if err != nil {
		return false, err
	}
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	mem := core.Memory()
	if !mem.CheckAddr(uint32(addr)) {
		return false, fmt.Errorf("address %08o outside memory", addr)
	}
	mem.SetMemory(uint32(addr), value)
	return false, nil
}

// Display processor state.
func show(line *cmdLine, core command.Core) (bool, error) {
	slog.Debug("Command Show")
	item := line.getWord(false)
	fn, ok := showItems[item]
	if !ok {
		return false, fmt.Errorf("show what? %s", strings.Join(keys(showItems), ", "))
	}
	optlist, err := line.getOptions([]command.Options{cpuOption})
	if err != nil {
		return false, err
	}
	n, err := selectCPU(optlist, core)
	if err != nil {
		return false, err
	}
	return false, core.Do(n, func(c *cpu.CPU) { fn(line.out, c) })
}

func showRegisters(out io.Writer, c *cpu.CPU) {
	fmt.Fprintf(out, "CPU%d A=%s Q=%s IR=%06o\n", c.Number(), word.Octal(c.A), word.Octal(c.Q), c.IR)
	for i, x := range c.X {
		fmt.Fprintf(out, "X%d=%06o ", i, x)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "PPR %05o|%06o ring %d P=%t\n", c.PPR.PSR, c.PPR.IC, c.PPR.PRR, c.PPR.P)
	fmt.Fprintf(out, "TPR %05o|%06o ring %d bit %d\n", c.TPR.TSR, c.TPR.CA, c.TPR.TRR, c.TPR.TBR)
	fmt.Fprintf(out, "DSBR addr=%08o bound=%05o U=%t stack=%04o\n", c.DSBR.ADDR, c.DSBR.BND, c.DSBR.U, c.DSBR.STACK)
	fmt.Fprintf(out, "RALR=%o TR=%09o absolute=%t\n", c.RALR, c.TR, c.Abs)
}

func showPointers(out io.Writer, c *cpu.CPU) {
	for i, pr := range c.PR {
		fmt.Fprintf(out, "PR%d %05o|%06o(%d) ring %d\n", i, pr.SNR, pr.WORDNO, pr.BITNO, pr.RNR)
	}
}

func showSDWAM(out io.Writer, c *cpu.CPU) {
	for i := range 16 {
		l := c.SDWAMLine(i)
		if !l.Valid {
			fmt.Fprintf(out, "%2d use %2d empty\n", i, l.Use)
			continue
		}
		sdw := l.Entry
		fmt.Fprintf(out, "%2d use %2d seg %05o addr %08o rings %d,%d,%d bound %05o %s\n",
			i, l.Use, l.Key, sdw.ADDR, sdw.R1, sdw.R2, sdw.R3, sdw.BOUND, sdwFlags(sdw))
	}
}

// Access flags of SDW.
func sdwFlags(sdw cpu.SDW) string {
	flags := []byte("-------")
	for i, on := range []bool{sdw.R, sdw.E, sdw.W, sdw.P, sdw.U, sdw.G, sdw.C} {
		if on {
			flags[i] = "REWPUGC"[i]
		}
	}
	return string(flags)
}

func showPTWAM(out io.Writer, c *cpu.CPU) {
	for i := range 16 {
		l, page := c.PTWAMLine(i)
		if !l.Valid {
			fmt.Fprintf(out, "%2d use %2d empty\n", i, l.Use)
			continue
		}
		fmt.Fprintf(out, "%2d use %2d seg %05o page %04o frame %08o U=%t M=%t\n",
			i, l.Use, l.Key, page, l.Entry.ADDR<<6, l.Entry.U, l.Entry.M)
	}
}

func showFaults(out io.Writer, c *cpu.CPU) {
	for n, count := range c.FaultCounts() {
		if count != 0 {
			fmt.Fprintf(out, "%-4s %d\n", cpu.FaultNumber(n), count)
		}
	}
	if f := c.LastFault(); f != nil {
		fmt.Fprintf(out, "last: %s\n", f.Error())
	}
}

func showCU(out io.Writer, c *cpu.CPU) {
	for i, w := range c.SCUData() {
		fmt.Fprintf(out, "%d: %s\n", i, word.Octal(w))
	}
	fmt.Fprintf(out, "APU: %s\n", c.APUStatus())
}

// Translate segment|offset as the processor would.
func translate(line *cmdLine, core command.Core) (bool, error) {
	slog.Debug("Command Translate")
	seg, err := line.getOctal()
	if err != nil {
		return false, err
	}
	if line.getCurrent() != '|' {
		return false, fmt.Errorf("%w: address must be segment|offset", ErrSyntax)
	}
	offset, err := line.getOctal()
	if err != nil {
		return false, err
	}
	optlist, err := line.getOptions(translateOptions)
	if err != nil {
		return false, err
	}
	n, err := selectCPU(optlist, core)
	if err != nil {
		return false, err
	}
	kind := cpu.OperandRead
	if opt, ok := optlist["kind"]; ok {
		kind = kindNames[opt.EqualOpt]
	}

	return false, core.Do(n, func(c *cpu.CPU) {
		ring := c.PPR.PRR
		if opt, ok := optlist["ring"]; ok {
			ring = uint8(opt.Value & 07)
		}
		c.Preserve(func() {
			c.TPR = cpu.TPR{TSR: uint16(seg), TRR: ring, CA: uint32(offset)}
			res := c.Translate(kind)
			fmt.Fprintf(line.out, "%05o|%06o %s -> %08o %s\n", seg, offset, kind, res.Address, res.Status)
		})
	})
}

// Post group 7 fault.
func signal(line *cmdLine, core command.Core) (bool, error) {
	slog.Debug("Command Signal")
	name := line.getWord(false)
	num, ok := g7Names[name]
	if !ok {
		return false, errors.New("signal must be con, tro or exf")
	}
	optlist, err := line.getOptions(signalOptions)
	if err != nil {
		return false, err
	}
	n, err := selectCPU(optlist, core)
	if err != nil {
		return false, err
	}
	var sub cpu.Subtype
	if opt, ok := optlist["chan"]; ok {
		sub = cpu.Subtype(opt.Value & 07)
	}
	return false, core.SendSignal(n, num, sub)
}

// Clear associative memories.
func clearAM(line *cmdLine, core command.Core) (bool, error) {
	slog.Debug("Command Clear")
	item := line.getWord(false)
	if item != "sdwam" && item != "ptwam" && item != "all" {
		return false, errors.New("clear must be sdwam, ptwam or all")
	}
	optlist, err := line.getOptions([]command.Options{cpuOption})
	if err != nil {
		return false, err
	}
	n, err := selectCPU(optlist, core)
	if err != nil {
		return false, err
	}
	return false, core.Do(n, func(c *cpu.CPU) {
		if item != "ptwam" {
			c.ClearSDWAM()
		}
		if item != "sdwam" {
			c.ClearPTWAM()
		}
	})
}

// List commands.
func help(line *cmdLine, _ command.Core) (bool, error) {
	for _, c := range cmdList {
		fmt.Fprintf(line.out, "%-10s", c.Name)
		for _, opt := range c.Options {
			if opt.OptionType == command.OptionSwitch {
				fmt.Fprintf(line.out, " %s", opt.Name)
				continue
			}
			fmt.Fprintf(line.out, " %s=", opt.Name)
		}
		fmt.Fprintln(line.out)
	}
	return false, line.checkEOL()
}

// Sorted names of map.
func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
