/*
 * DPS8 - Debug configuration
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

package debugconfig

import (
	"fmt"
	"strings"

	config "github.com/rcornwell/DPS8/config/configparser"
	"github.com/rcornwell/DPS8/emu/core"
	"github.com/rcornwell/DPS8/emu/cpu"
)

// register a device on initialize.
func init() {
	config.RegisterModel("DEBUG", config.TypeOptions, setDebug)
}

// Apply fn to every option name and value.
func eachOption(options []config.Option, fn func(string) error) error {
	for _, opt := range options {
		if opt.EqualOpt != "" {
			return fmt.Errorf("%w: debug option %s can't have equals", config.ErrConfig, opt.Name)
		}
		if err := fn(strings.ToUpper(opt.Name)); err != nil {
			return fmt.Errorf("%w: %w", config.ErrConfig, err)
		}
		for _, value := range opt.Value {
			if err := fn(strings.ToUpper(value)); err != nil {
				return fmt.Errorf("%w: %w", config.ErrConfig, err)
			}
		}
	}
	return nil
}

// Set debug options of a package.
func setDebug(_ uint16, module string, options []config.Option) error {
	switch strings.ToUpper(module) {
	case "CPU":
		return eachOption(options, cpu.Debug)
	case "CORE":
		return eachOption(options, core.Debug)
	}
	return fmt.Errorf("%w: debug option invalid: %s", config.ErrConfig, module)
}

// Enable debug option given as module:option.
func Enable(text string) error {
	module, opt, ok := strings.Cut(text, ":")
	if !ok || opt == "" {
		return fmt.Errorf("%w: debug option must be module:option: %s", config.ErrConfig, text)
	}
	return setDebug(0, module, []config.Option{{Name: opt}})
}
