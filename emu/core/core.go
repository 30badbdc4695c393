/*
 * DPS8 - Simulation core
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

package core

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rcornwell/DPS8/config/cpuconfig"
	"github.com/rcornwell/DPS8/emu/cpu"
	"github.com/rcornwell/DPS8/emu/master"
	"github.com/rcornwell/DPS8/emu/memory"
	"github.com/rcornwell/DPS8/util/debug"
)

/*
   Each processor runs on its own goroutine and owns all of its state.
   Packets from the master channel are routed to the processors by the
   core goroutine. Group 7 faults are posted directly through the system
   controller, every other request is handled by the processor goroutine
   between instructions.
*/

const (
	debugPacket = 1 << iota
	debugCycle
)

var debugOption = map[string]int{
	"PACKET": debugPacket,
	"CYCLE":  debugCycle,
}

var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("Core debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

var ErrShutdown = errors.New("core shut down")

// Processor and the state of its goroutine.
type unit struct {
	cpu       *cpu.CPU
	exec      cpu.Executor
	cmd       chan master.Packet
	running   bool
	steps     int
	stepReply chan error
}

type Core struct {
	wg     sync.WaitGroup
	done   chan struct{} // Signal to shutdown simulator.
	Master chan master.Packet
	sys    *cpu.System
	mem    *memory.Memory
	units  []*unit
}

// Create processors and memory from settings. newExec supplies the
// instruction executor of each processor.
func New(settings cpuconfig.Settings, masterChannel chan master.Packet, newExec func() cpu.Executor) *Core {
	core := &Core{
		Master: masterChannel,
		done:   make(chan struct{}),
		sys:    cpu.NewSystem(),
		mem:    memory.New(settings.MemoryK),
	}
	for _, n := range settings.Numbers() {
		c := cpu.New(settings.CPUs[n], core.mem, core.sys)
		core.units = append(core.units, &unit{
			cpu:  c,
			exec: newExec(),
			cmd:  make(chan master.Packet, 16),
		})
	}
	return core
}

// Main memory.
func (core *Core) Memory() *memory.Memory {
	return core.mem
}

// System controller.
func (core *Core) System() *cpu.System {
	return core.sys
}

// Number of processors.
func (core *Core) NumCPUs() int {
	return len(core.units)
}

// Start processor goroutines and route packets until stopped.
func (core *Core) Start() {
	core.wg.Add(1 + len(core.units))
	defer core.wg.Done()
	for _, u := range core.units {
		go core.runCPU(u)
	}
	for {
		select {
		case <-core.done:
			return
		case packet := <-core.Master:
			core.processPacket(packet)
		}
	}
}

// Stop a running core.
func (core *Core) Stop() {
	slog.Info("Shutting down CPU")
	close(core.done)
	done := make(chan struct{})
	go func() {
		core.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for CPU to finish.")
		return
	}
}

// Send reply if requested.
func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}

// Route a packet to its processors.
func (core *Core) processPacket(packet master.Packet) {
	debug.Debugf("CORE", debugMsk, debugPacket, "%s cpu %d", packet.Msg, packet.CPU)
	if packet.Msg == master.Signal {
		reply(packet.Reply, core.sys.SetG7Fault(packet.CPU, packet.Fault, packet.Subtype))
		return
	}

	if packet.CPU == master.AllCPUs {
		p := packet
		p.Reply = nil
		for _, u := range core.units {
			if !core.send(u, p) {
				return
			}
		}
		reply(packet.Reply, nil)
		return
	}

	if packet.CPU < 0 || packet.CPU >= len(core.units) {
		reply(packet.Reply, fmt.Errorf("%w: %d", cpu.ErrNoCPU, packet.CPU))
		return
	}
	core.send(core.units[packet.CPU], packet)
}

// Queue packet for processor, false if core shut down.
func (core *Core) send(u *unit, packet master.Packet) bool {
	select {
	case u.cmd <- packet:
		return true
	case <-core.done:
		reply(packet.Reply, ErrShutdown)
		return false
	}
}

// Processor goroutine.
func (core *Core) runCPU(u *unit) {
	defer core.wg.Done()
	for {
		if u.running && !u.cpu.Idle() {
			core.cycle(u)
			select {
			case <-core.done:
				return
			case packet := <-u.cmd:
				core.cpuPacket(u, packet)
			default:
			}
			continue
		}

		select {
		case <-core.done:
			return
		case packet := <-u.cmd:
			core.cpuPacket(u, packet)
		case <-u.cpu.WakeChan():
			if u.cpu.Idle() && u.cpu.Resume() {
				debug.Debugf("CORE", debugMsk, debugCycle, "CPU%d resumed", u.cpu.Number())
			}
		}
	}
}

// Execute one instruction.
func (core *Core) cycle(u *unit) {
	err := u.cpu.Cycle(u.exec)
	if err != nil {
		slog.Error(fmt.Sprintf("CPU%d stopped: %s", u.cpu.Number(), err.Error()))
		u.running = false
		u.steps = 0
		reply(u.stepReply, err)
		u.stepReply = nil
		return
	}
	if u.steps > 0 {
		u.steps--
		if u.steps == 0 {
			u.running = false
			reply(u.stepReply, nil)
			u.stepReply = nil
		}
	}
}

// Handle packet on processor goroutine.
func (core *Core) cpuPacket(u *unit, packet master.Packet) {
	switch packet.Msg {
	case master.Start:
		if u.cpu.Halted() {
			reply(packet.Reply, cpu.ErrHalted)
			return
		}
		u.running = true
		reply(packet.Reply, nil)
	case master.Stop:
		u.running = false
		u.steps = 0
		reply(u.stepReply, nil)
		u.stepReply = nil
		reply(packet.Reply, nil)
	case master.Step:
		if packet.Count <= 0 || u.cpu.Halted() {
			reply(packet.Reply, fmt.Errorf("can't step CPU%d", u.cpu.Number()))
			return
		}
		reply(u.stepReply, nil)
		u.running = true
		u.steps = packet.Count
		u.stepReply = packet.Reply
	case master.TimeClock:
		u.cpu.UpdateTimer(packet.Ticks)
	case master.Do:
		var err error
		f, herr := u.cpu.Try(func() { packet.Fn(u.cpu) })
		switch {
		case herr != nil:
			err = herr
		case f != nil:
			err = f
		}
		reply(packet.Reply, err)
	default:
		reply(packet.Reply, fmt.Errorf("unknown packet %s", packet.Msg))
	}
}

// Send packet and wait for reply.
func (core *Core) request(packet master.Packet) error {
	packet.Reply = make(chan error, 1)
	select {
	case core.Master <- packet:
	case <-core.done:
		return ErrShutdown
	}
	select {
	case err := <-packet.Reply:
		return err
	case <-core.done:
		return ErrShutdown
	}
}

// Start processor n or all processors.
func (core *Core) SendStart(n int) error {
	return core.request(master.Packet{Msg: master.Start, CPU: n})
}

// Stop processor n or all processors.
func (core *Core) SendStop(n int) error {
	return core.request(master.Packet{Msg: master.Stop, CPU: n})
}

// Execute count instructions on processor n, waits for completion.
func (core *Core) SendStep(n int, count int) error {
	return core.request(master.Packet{Msg: master.Step, CPU: n, Count: count})
}

// Post a group 7 fault to processor n.
func (core *Core) SendSignal(n int, num cpu.FaultNumber, sub cpu.Subtype) error {
	return core.request(master.Packet{Msg: master.Signal, CPU: n, Fault: num, Subtype: sub})
}

// Run fn on the goroutine of processor n. A fault raised by fn is
// returned as the error.
func (core *Core) Do(n int, fn func(*cpu.CPU)) error {
	return core.request(master.Packet{Msg: master.Do, CPU: n, Fn: fn})
}
