/*
 * DPS8 - Command parser
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
	"strings"
	"unicode"

	command "github.com/rcornwell/DPS8/command/command"
)

type cmd struct {
	Name     string // Command name.
	Min      int    // Minimum match size.
	Process  func(*cmdLine, command.Core) (bool, error)
	Options  []command.Options
	Complete func(*cmdLine) []string
}

type cmdLine struct {
	line string    // Current command.
	pos  int       // Position in line.
	out  io.Writer // Where command output goes.
}

var ErrSyntax = errors.New("syntax error")

// Execute the command line given, writing output to out. Returns true if
// the monitor should exit.
func ProcessCommand(commandLine string, core command.Core, out io.Writer) (bool, error) {
	line := cmdLine{line: commandLine, out: out}
	name := line.getWord(false)
	if name == "" {
		if !line.isEOL() {
			return false, fmt.Errorf("%w: %s", ErrSyntax, commandLine)
		}
		return false, nil
	}

	match := matchList(name)
	if len(match) == 0 {
		return false, errors.New("command not found: " + name)
	}

	if len(match) > 1 {
		return false, errors.New("unique command not found: " + name)
	}

	return match[0].Process(&line, core)
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, command string) bool {
	if len(command) > len(match.Name) {
		return false
	}
	if !strings.HasPrefix(match.Name, command) {
		return false
	}
	return len(command) >= match.Min
}

// Check if command matches one of the commands.
func matchList(command string) []cmd {
	// If command empty just return.
	if command == "" {
		return []cmd{}
	}

	var match []cmd
	for _, m := range cmdList {
		if m.Name == command {
			return []cmd{m}
		}
		if matchCommand(m, command) {
			match = append(match, m)
		}
	}
	return match
}

// Match list of options.
func matchOption(option string, optList []command.Options) command.Options {
	for _, opt := range optList {
		if opt.Name == option {
			return opt
		}
	}
	return command.Options{OptionType: -1}
}

// Skip forward over line until none whitespace character found.
func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// Check if at end of line.
func (line *cmdLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// Return current character and advance to next.
func (line *cmdLine) getCurrent() byte {
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	line.pos++
	return by
}

// Peek at current character.
func (line *cmdLine) peek() byte {
	if line.isEOL() {
		return 0
	}
	return line.line[line.pos]
}

// Check if character ends a token.
func isSeparator(by byte) bool {
	return by == 0 || unicode.IsSpace(rune(by))
}

// Parse decimal number.
func (line *cmdLine) getNumber() (uint32, error) {
	line.skipSpace()
	pos := line.pos
	value := uint32(0)
	digits := 0
	for unicode.IsDigit(rune(line.peek())) {
		value = (value * 10) + uint32(line.getCurrent()-'0')
		digits++
	}
	if digits == 0 || !isSeparator(line.peek()) {
		line.pos = pos
		return 0, errors.New("not a number")
	}
	return value, nil
}

// Parse octal number, stops at any non octal digit.
func (line *cmdLine) getOctal() (uint64, error) {
	line.skipSpace()
	pos := line.pos
	value := uint64(0)
	digits := 0
	for {
		by := line.peek()
		if by < '0' || by > '7' {
			break
		}
		value = (value << 3) + uint64(by-'0')
		line.pos++
		digits++
	}
	if digits == 0 || digits > 12 {
		line.pos = pos
		return 0, errors.New("not an octal number")
	}
	return value, nil
}

// Parse name, stopping at = if equal is set.
func (line *cmdLine) getWord(equal bool) string {
	line.skipSpace()

	// Characters must be alphabetic
	value := ""
	pos := line.pos
	for {
		by := line.peek()
		if isSeparator(by) || (by == '=' && equal) {
			break
		}
		if !unicode.IsLetter(rune(by)) && !unicode.IsDigit(rune(by)) {
			line.pos = pos
			return ""
		}
		value += string([]byte{by})
		line.pos++
	}
	if value != "" && !unicode.IsLetter(rune(value[0])) {
		line.pos = pos
		return ""
	}
	return strings.ToLower(value)
}

// Get an option, nil at end of line.
func (line *cmdLine) getOption(opts []command.Options) (*command.CmdOption, error) {
	line.skipSpace()
	if line.isEOL() {
		return nil, nil
	}
	name := line.getWord(true)
	if name == "" {
		return nil, fmt.Errorf("%w: option expected at %q", ErrSyntax, line.line[line.pos:])
	}

	opt := command.CmdOption{Name: name}
	match := matchOption(name, opts)
	switch match.OptionType {
	case -1:
		return nil, errors.New("unknown option: " + name)
	case command.OptionSwitch:
		if !isSeparator(line.peek()) {
			return nil, errors.New("switch option can't have arguments: " + name)
		}
	case command.OptionNumber:
		if line.getCurrent() != '=' {
			return nil, errors.New("number options must be followed by number: " + name)
		}
		num, err := line.getNumber()
		if err != nil {
			return nil, errors.New("number options must be followed by number: " + name)
		}
		opt.Value = num
	case command.OptionName, command.OptionList:
		if line.getCurrent() != '=' {
			return nil, errors.New("option must be followed by name: " + name)
		}
		value := line.getWord(false)
		if value == "" {
			return nil, errors.New("option must be followed by name: " + name)
		}
		opt.EqualOpt = value
		if match.OptionType == command.OptionName {
			return &opt, nil
		}
		for _, v := range match.OptionList {
			if v == value {
				return &opt, nil
			}
		}
		return nil, errors.New("option not valid for " + name + ": " + value)
	default:
		return nil, errors.New("invalid option type: " + name)
	}
	return &opt, nil
}

// Scan options to end of line.
func (line *cmdLine) getOptions(opts []command.Options) (map[string]*command.CmdOption, error) {
	optlist := map[string]*command.CmdOption{}
	for {
		opt, err := line.getOption(opts)
		if err != nil {
			return nil, err
		}
		if opt == nil {
			return optlist, nil
		}
		if _, ok := optlist[opt.Name]; ok {
			return nil, errors.New("option given twice: " + opt.Name)
		}
		optlist[opt.Name] = opt
	}
}

// Processor selected by cpu= option, 0 by default.
func selectCPU(opts map[string]*command.CmdOption, core command.Core) (int, error) {
	opt, ok := opts["cpu"]
	if !ok {
		return 0, nil
	}
	if int(opt.Value) >= core.NumCPUs() {
		return 0, fmt.Errorf("no cpu %d", opt.Value)
	}
	return int(opt.Value), nil
}

// Check nothing but a comment remains.
func (line *cmdLine) checkEOL() error {
	line.skipSpace()
	if !line.isEOL() {
		return fmt.Errorf("%w: extra text %q", ErrSyntax, line.line[line.pos:])
	}
	return nil
}
