/*
 * DPS8 - Regular timer pulse tests
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

package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rcornwell/DPS8/emu/master"
)

// Count pulses received until done is closed.
func countPulses(t *testing.T, ch chan master.Packet, done chan struct{}, counter *atomic.Int32) {
	for {
		select {
		case v := <-ch:
			if v.Msg != master.TimeClock || v.Ticks != TicksPerPulse {
				t.Errorf("Did not receive correct message from timer: %s", v.Msg)
				return
			}
			counter.Add(1)
		case <-done:
			return
		}
	}
}

func TestTimer(t *testing.T) {
	masterChannel := make(chan master.Packet)
	timer := NewTimer(masterChannel)
	defer timer.Shutdown()

	done := make(chan struct{})
	defer close(done)
	var counter atomic.Int32
	go countPulses(t, masterChannel, done, &counter)

	// 200 pulses a second, allow for a slow host.
	timer.Start()
	time.Sleep(500 * time.Millisecond)
	n := counter.Load()
	assert.Greater(t, n, int32(50))
	assert.LessOrEqual(t, n, int32(102))

	timer.Stop()
	time.Sleep(20 * time.Millisecond)
	counter.Store(0)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), counter.Load())
}
