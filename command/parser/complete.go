/*
 * DPS8 - Command completion
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
	"slices"
	"strings"

	command "github.com/rcornwell/DPS8/command/command"
)

// Called to complete a command line, during line editing.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord(false)

	// We have a command, let it try and complete it.
	if !line.isEOL() && isSeparator(line.peek()) {
		match := matchList(name)
		if len(match) != 1 {
			return nil
		}
		line.skipSpace()
		if match[0].Complete != nil && !line.afterWord() {
			return match[0].Complete(&line)
		}
		return line.matchOptions(match[0].Options)
	}
	if !line.isEOL() {
		return nil
	}

	// Try and match one command.
	var matches []string
	for _, m := range cmdList {
		if strings.HasPrefix(m.Name, name) {
			matches = append(matches, m.Name+" ")
		}
	}
	slices.Sort(matches)
	return matches
}

// Check if a complete word precedes the cursor.
func (line *cmdLine) afterWord() bool {
	rest := line.line[line.pos:]
	return strings.ContainsFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' })
}

// Complete last word of line from items.
func (line *cmdLine) matchItem(items []string) []string {
	line.skipSpace()
	leading := line.line[:line.pos]
	prefix := strings.ToLower(line.line[line.pos:])
	var matches []string
	for _, item := range items {
		if strings.HasPrefix(item, prefix) {
			matches = append(matches, leading+item+" ")
		}
	}
	return matches
}

// Complete option name of last word.
func (line *cmdLine) matchOptions(opts []command.Options) []string {
	end := strings.LastIndexAny(line.line, " \t") + 1
	leading := line.line[:end]
	prefix := strings.ToLower(line.line[end:])
	if strings.Contains(prefix, "=") {
		return nil
	}
	var matches []string
	for _, opt := range opts {
		if !strings.HasPrefix(opt.Name, prefix) {
			continue
		}
		if opt.OptionType == command.OptionSwitch {
			matches = append(matches, leading+opt.Name+" ")
		} else {
			matches = append(matches, leading+opt.Name+"=")
		}
	}
	return matches
}
