/*
 * DPS8 - System controller tests
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
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcornwell/DPS8/emu/memory"
)

func TestGroup7Precedence(t *testing.T) {
	c, mem := newTestCPU(DefaultConfig())
	loadVectors(c, mem)
	sys := c.System()

	require.NoError(t, sys.SetG7Fault(0, FaultEXF, 0))
	require.NoError(t, sys.SetG7Fault(0, FaultTRO, 0))
	require.NoError(t, sys.SetG7Fault(0, FaultCON, 5))
	assert.Equal(t, uint32(1<<FaultCON|1<<FaultTRO|1<<FaultEXF), sys.G7Pending(0))

	want := []FaultNumber{FaultCON, FaultTRO, FaultEXF}
	for _, num := range want {
		require.NoError(t, c.Cycle(nopExec))
		assert.Equal(t, num, c.LastFault().Number)
		assert.Equal(t, FaultExecCycle, c.CycleState())
		require.NoError(t, c.Cycle(nopExec))
		assert.Equal(t, ExecCycle, c.CycleState())
	}
	assert.Zero(t, sys.G7Pending(0))
	assert.Equal(t, uint8(5), c.cu.CNCHN)

	// Nothing pending, instruction executes.
	ran := false
	require.NoError(t, c.Cycle(execFunc(func(*CPU) { ran = true })))
	assert.True(t, ran)
}

func TestGroup7Errors(t *testing.T) {
	c, _ := newTestCPU(DefaultConfig())
	sys := c.System()

	assert.ErrorIs(t, sys.SetG7Fault(0, FaultACV, 0), ErrNotGroup7)
	assert.ErrorIs(t, sys.SetG7Fault(3, FaultCON, 0), ErrNoCPU)
	_, err := sys.CPU(2)
	assert.ErrorIs(t, err, ErrNoCPU)
	got, err := sys.CPU(0)
	require.NoError(t, err)
	assert.Same(t, c, got)
	assert.Zero(t, sys.G7Pending(7))
}

func TestGroup7Concurrent(t *testing.T) {
	sys := NewSystem()
	mem := memory.New(64)
	c0 := New(DefaultConfig(), mem, sys)
	c1 := New(DefaultConfig(), mem, sys)
	assert.Equal(t, 0, c0.Number())
	assert.Equal(t, 1, c1.Number())
	assert.Equal(t, 2, sys.NumCPUs())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.NoError(t, sys.SetG7Fault(1, FaultTRO, 0))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint32(1<<FaultTRO), sys.G7Pending(1))
	assert.Zero(t, sys.G7Pending(0))
}

func TestWake(t *testing.T) {
	c, _ := newTestCPU(DefaultConfig())
	c.SetIdle()
	assert.True(t, c.Idle())
	assert.False(t, c.Resume())

	require.NoError(t, c.System().SetG7Fault(0, FaultEXF, 0))
	select {
	case <-c.WakeChan():
	case <-time.After(time.Second):
		t.Fatal("processor not woken")
	}
	assert.True(t, c.Resume())
	assert.False(t, c.Idle())

	// Wakes do not block when nobody listens.
	c.System().Wake(0)
	c.System().Wake(0)
	c.System().Wake(5)
}

func TestTimerRunout(t *testing.T) {
	c, _ := newTestCPU(DefaultConfig())
	c.LoadTimer(10)
	c.UpdateTimer(5)
	assert.Equal(t, uint32(5), c.TR)
	assert.Zero(t, c.System().G7Pending(0))

	c.UpdateTimer(6)
	assert.Equal(t, TimerMask, c.TR)
	assert.Equal(t, uint32(1<<FaultTRO), c.System().G7Pending(0))

	c.LoadTimer(0xffffffff)
	assert.Equal(t, TimerMask, c.TR)
}

func TestTimerRunoutNotPosted(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(old)

	c, _ := newTestCPU(DefaultConfig())
	c.num = 3
	c.LoadTimer(2)
	c.UpdateTimer(2)
	assert.Zero(t, c.TR)
	assert.Zero(t, c.System().G7Pending(0))
	assert.Contains(t, buf.String(), "timer runout not posted")
	assert.Contains(t, buf.String(), ErrNoCPU.Error())
}
