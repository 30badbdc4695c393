/*
 * DPS8 - CPU and memory configuration
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

package cpuconfig

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	config "github.com/rcornwell/DPS8/config/configparser"
	"github.com/rcornwell/DPS8/emu/cpu"
	"github.com/rcornwell/DPS8/emu/memory"
)

// Largest number of processors.
const MaxCPUs = 8

// Default memory size in K words.
const DefaultMemoryK = 1024

// System configuration built from the configuration file.
type Settings struct {
	MemoryK   int                // Memory size in K words
	FaultBase uint8              // Fault base switches
	CPUs      map[int]cpu.Config // Processors by number
}

var (
	mu       sync.Mutex
	settings = defaultSettings()
)

func defaultSettings() Settings {
	return Settings{MemoryK: DefaultMemoryK, FaultBase: 1, CPUs: map[int]cpu.Config{}}
}

// register models on initialize.
func init() {
	config.RegisterModel("CPU", config.TypeModel, createCPU)
	config.RegisterOption("MEMORY", setMemory)
	config.RegisterOption("FLTBASE", setFaultBase)
}

// Return copy of current settings. With no CPU configured processor 0
// is supplied with defaults.
func Current() Settings {
	mu.Lock()
	defer mu.Unlock()
	s := Settings{MemoryK: settings.MemoryK, FaultBase: settings.FaultBase, CPUs: map[int]cpu.Config{}}
	for n, c := range settings.CPUs {
		c.FaultBase = s.FaultBase
		s.CPUs[n] = c
	}
	if len(s.CPUs) == 0 {
		c := cpu.DefaultConfig()
		c.FaultBase = s.FaultBase
		s.CPUs[0] = c
	}
	return s
}

// Processor numbers in order.
func (s Settings) Numbers() []int {
	nums := make([]int, 0, len(s.CPUs))
	for n := range s.CPUs {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Add processors 0 to n-1 not already configured.
func AddCPUs(n int) error {
	if n < 1 || n > MaxCPUs {
		return fmt.Errorf("%w: cpu count %d", config.ErrConfig, n)
	}
	mu.Lock()
	defer mu.Unlock()
	for i := range n {
		if _, ok := settings.CPUs[i]; !ok {
			settings.CPUs[i] = cpu.DefaultConfig()
		}
	}
	return nil
}

// Restore default settings.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	settings = defaultSettings()
}

// Parse ON or OFF.
func onOff(opt config.Option) (bool, error) {
	switch strings.ToUpper(opt.EqualOpt) {
	case "ON", "":
		return true, nil
	case "OFF":
		return false, nil
	}
	return false, fmt.Errorf("%w: %s must be ON or OFF: %s", config.ErrConfig, opt.Name, opt.EqualOpt)
}

// Create a processor.
func createCPU(unit uint16, _ string, options []config.Option) error {
	if int(unit) >= MaxCPUs {
		return fmt.Errorf("%w: cpu number %d too large", config.ErrConfig, unit)
	}
	cfg := cpu.DefaultConfig()
	for _, opt := range options {
		if len(opt.Value) != 0 {
			return fmt.Errorf("%w: cpu option %s takes one value", config.ErrConfig, opt.Name)
		}
		var err error
		switch strings.ToUpper(opt.Name) {
		case "LOCKUP":
			var v uint64
			v, err = strconv.ParseUint(opt.EqualOpt, 10, 31)
			if err == nil && v == 0 {
				err = errors.New("must be positive")
			}
			cfg.LockupLimit = int(v)
		case "SDWAM":
			cfg.SDWAM, err = onOff(opt)
		case "PTWAM":
			cfg.PTWAM, err = onOff(opt)
		default:
			return fmt.Errorf("%w: cpu option invalid: %s", config.ErrConfig, opt.Name)
		}
		if err != nil {
			return fmt.Errorf("%w: cpu %d %s: %w", config.ErrConfig, unit, opt.Name, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if _, ok := settings.CPUs[int(unit)]; ok {
		return fmt.Errorf("%w: cpu %d defined twice", config.ErrConfig, unit)
	}
	settings.CPUs[int(unit)] = cfg
	return nil
}

// Set memory size, number of K words or M words.
func setMemory(_ uint16, value string, _ []config.Option) error {
	v := strings.ToUpper(value)
	mult := 1
	switch {
	case strings.HasSuffix(v, "K"):
		v = v[:len(v)-1]
	case strings.HasSuffix(v, "M"):
		v = v[:len(v)-1]
		mult = 1024
	}
	size, err := strconv.Atoi(v)
	if err != nil || size <= 0 || size*mult > memory.MaxK {
		return fmt.Errorf("%w: memory size invalid: %s", config.ErrConfig, value)
	}
	mu.Lock()
	settings.MemoryK = size * mult
	mu.Unlock()
	return nil
}

// Set fault base switches, octal.
func setFaultBase(_ uint16, value string, _ []config.Option) error {
	base, err := strconv.ParseUint(value, 8, 7)
	if err != nil {
		return fmt.Errorf("%w: fault base invalid: %s", config.ErrConfig, value)
	}
	mu.Lock()
	settings.FaultBase = uint8(base)
	mu.Unlock()
	return nil
}
