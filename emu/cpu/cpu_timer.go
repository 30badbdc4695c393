/*
 * DPS8 - Timer register
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
	"log/slog"

	"github.com/rcornwell/DPS8/util/debug"
)

const (
	// Timer register is 27 bits.
	TimerMask uint32 = 0777777777

	// Timer ticks per second.
	TimerRate = 512000
)

// Load timer register.
func (cpu *CPU) LoadTimer(v uint32) {
	cpu.TR = v & TimerMask
}

// Count down timer register by ticks. Reaching zero posts timer runout.
func (cpu *CPU) UpdateTimer(ticks uint32) {
	if ticks == 0 {
		return
	}
	old := cpu.TR
	cpu.TR = (old - ticks) & TimerMask
	if old != 0 && ticks >= old {
		debug.Debugf(cpu.module, cpu.debugMsk, debugG7, "timer runout")
		if err := cpu.sys.SetG7Fault(cpu.num, FaultTRO, 0); err != nil {
			slog.Error(fmt.Sprintf("CPU%d timer runout not posted: %s", cpu.num, err.Error()))
		}
	}
}
