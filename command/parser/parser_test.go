/*
 * DPS8 - Command parser tests
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
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcornwell/DPS8/emu/cpu"
	"github.com/rcornwell/DPS8/emu/master"
	"github.com/rcornwell/DPS8/emu/memory"
)

type signalReq struct {
	cpu int
	num cpu.FaultNumber
	sub cpu.Subtype
}

// Core run on the calling goroutine.
type fakeCore struct {
	mem     *memory.Memory
	cpus    []*cpu.CPU
	started []int
	stopped []int
	steps   map[int]int
	signals []signalReq
}

func newFakeCore() *fakeCore {
	f := &fakeCore{mem: memory.New(16), steps: map[int]int{}}
	sys := cpu.NewSystem()
	for range 2 {
		f.cpus = append(f.cpus, cpu.New(cpu.DefaultConfig(), f.mem, sys))
	}
	return f
}

func (f *fakeCore) NumCPUs() int              { return len(f.cpus) }
func (f *fakeCore) Memory() *memory.Memory    { return f.mem }
func (f *fakeCore) SendStart(n int) error     { f.started = append(f.started, n); return nil }
func (f *fakeCore) SendStop(n int) error      { f.stopped = append(f.stopped, n); return nil }
func (f *fakeCore) SendStep(n, count int) error { f.steps[n] += count; return nil }

func (f *fakeCore) SendSignal(n int, num cpu.FaultNumber, sub cpu.Subtype) error {
	f.signals = append(f.signals, signalReq{n, num, sub})
	return nil
}

func (f *fakeCore) Do(n int, fn func(*cpu.CPU)) error {
	c := f.cpus[n]
	flt, err := c.Try(func() { fn(c) })
	if err != nil {
		return err
	}
	if flt != nil {
		return flt
	}
	return nil
}

// Run command discarding output.
func run(line string, core *fakeCore) (bool, error) {
	return ProcessCommand(line, core, io.Discard)
}

func TestCommandMatch(t *testing.T) {
	core := newFakeCore()

	quit, err := run("", core)
	assert.False(t, quit)
	assert.NoError(t, err)

	_, err = run("   # comment", core)
	assert.NoError(t, err)

	_, err = run("frob", core)
	assert.ErrorContains(t, err, "command not found")

	// Shorter than the minimum abbreviation.
	_, err = run("st", core)
	assert.ErrorContains(t, err, "command not found")

	_, err = run("=x", core)
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = run("qui", core)
	assert.ErrorContains(t, err, "command not found")

	quit, err = run("quit", core)
	assert.True(t, quit)
	assert.NoError(t, err)
}

func TestStartStop(t *testing.T) {
	core := newFakeCore()

	_, err := run("start", core)
	require.NoError(t, err)
	_, err = run("c cpu=1", core)
	require.NoError(t, err)
	_, err = run("STOP cpu=1", core)
	require.NoError(t, err)
	assert.Equal(t, []int{master.AllCPUs, 1}, core.started)
	assert.Equal(t, []int{1}, core.stopped)

	_, err = run("start cpu", core)
	assert.ErrorContains(t, err, "must be followed by number")
	_, err = run("start speed=1", core)
	assert.ErrorContains(t, err, "unknown option")
}

func TestStep(t *testing.T) {
	core := newFakeCore()
	out := &bytes.Buffer{}

	_, err := ProcessCommand("step 5 cpu=1", core, out)
	require.NoError(t, err)
	_, err = ProcessCommand("step", core, out)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 1, 1: 5}, core.steps)
	assert.Contains(t, out.String(), "CPU1 00000|000000")

	_, err = ProcessCommand("step 0", core, out)
	assert.Error(t, err)
	_, err = ProcessCommand("step cpu=4", core, out)
	assert.ErrorContains(t, err, "no cpu 4")
}

func TestExamineDeposit(t *testing.T) {
	core := newFakeCore()
	out := &bytes.Buffer{}

	_, err := ProcessCommand("deposit 100 123456701234", core, out)
	require.NoError(t, err)
	assert.Equal(t, uint64(0123456701234), core.mem.GetMemory(0100))

	_, err = ProcessCommand("ex 100-102", core, out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "00000100: 123456701234", lines[0])
	assert.Equal(t, "00000102: 000000000000", lines[2])

	_, err = ProcessCommand("ex 102-100", core, out)
	assert.ErrorContains(t, err, "reversed")
	_, err = ProcessCommand("ex 100000", core, out)
	assert.ErrorContains(t, err, "outside memory")
	_, err = ProcessCommand("deposit 100", core, out)
	assert.Error(t, err)
	_, err = ProcessCommand("ex 100 junk", core, out)
	assert.ErrorContains(t, err, "unknown option")

	// Instruction form: lda 1234,x1.
	core.mem.SetMemory(0200, 01234<<18|0235<<9|011)
	out.Reset()
	_, err = ProcessCommand("ex 200 inst", core, out)
	require.NoError(t, err)
	assert.Equal(t, "00000200: 001234235011  lda    1234,x1\n", out.String())
	_, err = ProcessCommand("deposit 9 1", core, out)
	assert.Error(t, err)
}

func TestTranslate(t *testing.T) {
	core := newFakeCore()
	out := &bytes.Buffer{}

	_, err := ProcessCommand("translate 5|123 kind=write", core, out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "00005|000123 OperandStore -> 00000123 FABS")

	c := core.cpus[1]
	c.LoadDSBR(cpu.DSBR{U: true})
	c.SetAbsolute(false)
	c.TPR.CA = 0777
	_, err = ProcessCommand("tr 100|0 cpu=1 ring=4", core, out)
	var f *cpu.Fault
	require.True(t, errors.As(err, &f))
	assert.Equal(t, cpu.FaultACV, f.Number)
	assert.Equal(t, cpu.ACV15, f.Subtype)
	assert.Equal(t, uint32(0777), c.TPR.CA)
	assert.Zero(t, c.FaultCounts()[cpu.FaultACV], "translate left a fault count")
	assert.Zero(t, c.APUStatus())
	assert.Equal(t, cpu.ExecCycle, c.CycleState())

	_, err = ProcessCommand("translate 5", core, out)
	assert.ErrorIs(t, err, ErrSyntax)
	_, err = ProcessCommand("translate 5|1 kind=jump", core, out)
	assert.ErrorContains(t, err, "not valid")
}

func TestSignal(t *testing.T) {
	core := newFakeCore()

	_, err := run("signal con chan=3 cpu=1", core)
	require.NoError(t, err)
	_, err = run("si tro", core)
	require.NoError(t, err)
	assert.Equal(t, []signalReq{{1, cpu.FaultCON, 3}, {0, cpu.FaultTRO, 0}}, core.signals)

	_, err = run("signal acv", core)
	assert.Error(t, err)
}

func TestShowClear(t *testing.T) {
	core := newFakeCore()
	out := &bytes.Buffer{}

	_, err := ProcessCommand("show registers", core, out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "PPR 00000|000000")

	out.Reset()
	_, err = ProcessCommand("show sdwam cpu=1", core, out)
	require.NoError(t, err)
	assert.Equal(t, 16, strings.Count(out.String(), "empty"))

	_, err = ProcessCommand("show nothing", core, out)
	assert.ErrorContains(t, err, "show what")

	_, err = ProcessCommand("clear all", core, out)
	assert.NoError(t, err)
	_, err = ProcessCommand("clear tlb", core, out)
	assert.Error(t, err)
}

func TestHelp(t *testing.T) {
	out := &bytes.Buffer{}
	_, err := ProcessCommand("help", newFakeCore(), out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "translate")
	assert.Contains(t, out.String(), "kind=")
	assert.Contains(t, out.String(), "examine    inst\n")
}

func TestComplete(t *testing.T) {
	assert.Equal(t, []string{"show ", "signal ", "start ", "step ", "stop "}, CompleteCmd("s"))
	assert.Equal(t, []string{"show sdwam "}, CompleteCmd("show sd"))
	assert.Equal(t, []string{"signal tro "}, CompleteCmd("signal t"))
	assert.Equal(t, []string{"step cpu="}, CompleteCmd("step "))
	assert.Equal(t, []string{"translate 1|2 kind="}, CompleteCmd("translate 1|2 k"))
	assert.Nil(t, CompleteCmd("show sdwam cpu=1"))
	assert.Nil(t, CompleteCmd("zz "))
}
