/*
 * DPS8 - Control packets
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

package master

import (
	"github.com/rcornwell/DPS8/emu/cpu"
)

// Messages sent to the simulation core.
type Msg int

const (
	Start     Msg = iota // Start processor running
	Stop                 // Stop processor
	Step                 // Execute Count instructions
	TimeClock            // Timer pulse of Ticks
	Signal               // Post group 7 fault Fault to processor
	Do                   // Run Fn on processor goroutine
)

// All processors.
const AllCPUs = -1

var msgName = [...]string{"Start", "Stop", "Step", "TimeClock", "Signal", "Do"}

func (m Msg) String() string {
	if m < 0 || int(m) >= len(msgName) {
		return "Unknown"
	}
	return msgName[m]
}

// Packet on the master channel.
type Packet struct {
	Msg     Msg             // Message type
	CPU     int             // Target processor or AllCPUs
	Count   int             // Instructions for Step
	Ticks   uint32          // Timer ticks for TimeClock
	Fault   cpu.FaultNumber // Fault for Signal
	Subtype cpu.Subtype     // Fault subtype for Signal
	Fn      func(*cpu.CPU)  // Function for Do
	Reply   chan error      // Optional completion reply
}
