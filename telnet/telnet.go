/*
 * DPS8 - telnet server
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

package telnet

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"strings"

	command "github.com/rcornwell/DPS8/command/command"
	"github.com/rcornwell/DPS8/command/parser"
)

// Telnet protocol constants.
const (
	tnIAC  byte = 255 // protocol delim
	tnDONT byte = 254 // dont
	tnDO   byte = 253 // do
	tnWONT byte = 252 // wont
	tnWILL byte = 251 // will
	tnSB   byte = 250 // Sub negotiations begin
	tnIP   byte = 244 // Interrupt process
	tnBRK  byte = 243 // break
	tnSE   byte = 240 // Sub negotiations end

	// Telnet line states.
	tnStateData int = 1 + iota // normal
	tnStateIAC                 // IAC seen
	tnStateWILL                // WILL seen
	tnStateDO                  // DO seen
	tnStateDONT                // DONT seen
	tnStateWONT                // WONT seen
	tnStateSKIP                // skip next cmd
	tnStateSB                  // Sub negotiation, wait for SE

	// Telnet options.
	tnOptionBinary byte = 0  // Binary data transfer
	tnOptionEcho   byte = 1  // Echo
	tnOptionSGA    byte = 3  // Send Go Ahead
	tnOptionLINE   byte = 34 // line mode

	// Telnet flags.
	tnFlagDo   uint8 = 0x01 // Do received
	tnFlagDont uint8 = 0x02 // Don't received
	tnFlagWill uint8 = 0x04 // Will received
	tnFlagWont uint8 = 0x08 // Wont received
)

// Server echoes and suppresses go ahead, client stays in character mode.
var initString = []byte{
	tnIAC, tnWONT, tnOptionLINE,
	tnIAC, tnWILL, tnOptionEcho,
	tnIAC, tnWILL, tnOptionSGA,
}

// Monitor prompt.
const prompt = "DPS8> "

type tnState struct {
	optionState [256]uint8   // Current state of telnet session
	state       int          // Current line State
	conn        net.Conn     // Client connection.
	core        command.Core // Simulator commands act on.
	line        []byte       // Command being typed.
	lastCR      bool         // Last character was carriage return.
	quit        bool         // Session ended by command.
}

// Writer converting newlines and escaping IAC.
type tnWriter struct {
	conn io.Writer
}

func (w tnWriter) Write(p []byte) (int, error) {
	var buf bytes.Buffer
	for _, by := range p {
		switch by {
		case '\n':
			buf.WriteString("\r\n")
		case tnIAC:
			buf.Write([]byte{tnIAC, tnIAC})
		default:
			buf.WriteByte(by)
		}
	}
	_, err := w.conn.Write(buf.Bytes())
	return len(p), err
}

// Send a response to client.
func (state *tnState) sendOption(setState, option byte) {
	data := []byte{tnIAC, setState, option}
	_, _ = state.conn.Write(data)
	switch setState {
	case tnWILL:
		state.optionState[option] |= tnFlagWill
	case tnWONT:
		state.optionState[option] |= tnFlagWont
	case tnDO:
		state.optionState[option] |= tnFlagDo
	case tnDONT:
		state.optionState[option] |= tnFlagDont
	}
}

// Handle DO request.
func (state *tnState) handleDO(input byte) {
	switch input {
	case tnOptionEcho, tnOptionSGA:
		state.optionState[input] |= tnFlagDo
	case tnOptionBinary:
		if (state.optionState[input] & tnFlagWill) == 0 {
			state.sendOption(tnWILL, input)
		}
	default:
		if (state.optionState[input] & tnFlagWont) == 0 {
			state.sendOption(tnWONT, input)
		}
	}
}

// Handle WILL offer.
func (state *tnState) handleWILL(input byte) {
	switch input {
	case tnOptionSGA, tnOptionBinary:
		if (state.optionState[input] & tnFlagDo) == 0 {
			state.sendOption(tnDO, input)
		}
	default:
		if (state.optionState[input] & tnFlagDont) == 0 {
			state.sendOption(tnDONT, input)
		}
	}
}

// Handle a character typed by the user.
func (state *tnState) receiveChar(input byte) {
	lastCR := state.lastCR
	state.lastCR = false
	switch {
	case input == '\r':
		state.lastCR = true
		state.execute()
	case input == '\n':
		if !lastCR {
			state.execute()
		}
	case input == 0:
	case input == '\b' || input == 0x7f:
		if len(state.line) != 0 {
			state.line = state.line[:len(state.line)-1]
			_, _ = state.conn.Write([]byte("\b \b"))
		}
	case input == 0x15: // Control U, kill line.
		for range state.line {
			_, _ = state.conn.Write([]byte("\b \b"))
		}
		state.line = state.line[:0]
	case input >= ' ' && input < 0x7f:
		state.line = append(state.line, input)
		_, _ = state.conn.Write([]byte{input})
	}
}

// Run command typed.
func (state *tnState) execute() {
	out := tnWriter{conn: state.conn}
	_, _ = out.Write([]byte("\n"))
	text := strings.TrimSpace(string(state.line))
	state.line = state.line[:0]
	slog.Debug("Telnet command: " + text)
	quit, err := parser.ProcessCommand(text, state.core, out)
	if err != nil {
		_, _ = out.Write([]byte("Error: " + err.Error() + "\n"))
	}
	if quit {
		state.quit = true
		return
	}
	_, _ = out.Write([]byte(prompt))
}

// Process data received from client.
func (state *tnState) receive(data []byte) {
	for _, input := range data {
		switch state.state {
		case tnStateData: // normal
			if input == tnIAC {
				state.state = tnStateIAC
			} else {
				state.receiveChar(input)
			}

		case tnStateIAC: // IAC seen
			state.state = tnStateData
			switch input {
			case tnIAC:
				state.receiveChar(input)
			case tnBRK, tnIP:
				state.line = state.line[:0]
				_, _ = tnWriter{conn: state.conn}.Write([]byte("\n" + prompt))
			case tnWILL:
				state.state = tnStateWILL
			case tnWONT:
				state.state = tnStateWONT
			case tnDO:
				state.state = tnStateDO
			case tnDONT:
				state.state = tnStateDONT
			case tnSB:
				state.state = tnStateSB
			default:
				state.state = tnStateSKIP
			}

		case tnStateWILL: // WILL seen
			state.handleWILL(input)
			state.state = tnStateData

		case tnStateWONT: // WONT seen
			if (state.optionState[input] & tnFlagWont) == 0 {
				state.sendOption(tnDONT, input)
				state.optionState[input] |= tnFlagWont
			}
			state.state = tnStateData

		case tnStateDO: // DO seen
			state.handleDO(input)
			state.state = tnStateData

		case tnStateDONT, tnStateSKIP:
			state.state = tnStateData

		case tnStateSB: // Sub negotiation ignored up to SE
			if input == tnSE {
				state.state = tnStateData
			}
		}
		if state.quit {
			return
		}
	}
}

// Handle client connection.
func handleClient(conn net.Conn, core command.Core) {
	defer conn.Close()

	state := tnState{conn: conn, state: tnStateData, core: core}
	buffer := make([]byte, 1024)

	_, _ = state.conn.Write(initString)
	_, _ = tnWriter{conn: conn}.Write([]byte("DPS8 monitor\n" + prompt))
	for !state.quit {
		num, err := state.conn.Read(buffer)
		if err != nil {
			if err != io.EOF {
				slog.Debug("Telnet read error: " + err.Error())
			}
			return
		}
		state.receive(buffer[:num])
	}
}
