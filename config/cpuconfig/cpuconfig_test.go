/*
 * DPS8 - CPU configuration tests
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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/rcornwell/DPS8/config/configparser"
	"github.com/rcornwell/DPS8/emu/cpu"
)

func TestDefaults(t *testing.T) {
	Reset()
	s := Current()
	assert.Equal(t, DefaultMemoryK, s.MemoryK)
	require.Len(t, s.CPUs, 1)
	assert.Equal(t, cpu.DefaultLockup, s.CPUs[0].LockupLimit)
	assert.True(t, s.CPUs[0].SDWAM)
}

func TestLoadCPUs(t *testing.T) {
	Reset()
	conf := `
MEMORY 2M
FLTBASE 2
CPU 0 LOCKUP=100 SDWAM=OFF
CPU 1 PTWAM=off
`
	require.NoError(t, config.LoadConfig(strings.NewReader(conf)))
	s := Current()
	assert.Equal(t, 2048, s.MemoryK)
	assert.Equal(t, []int{0, 1}, s.Numbers())
	assert.Equal(t, 100, s.CPUs[0].LockupLimit)
	assert.False(t, s.CPUs[0].SDWAM)
	assert.True(t, s.CPUs[0].PTWAM)
	assert.False(t, s.CPUs[1].PTWAM)
	assert.Equal(t, uint8(2), s.CPUs[1].FaultBase)
}

func TestBadCPU(t *testing.T) {
	tests := []string{
		"CPU 8",
		"CPU 0 LOCKUP=0",
		"CPU 0 LOCKUP=abc",
		"CPU 0 SDWAM=maybe",
		"CPU 0 SPEED=10",
		"MEMORY 0K",
		"MEMORY 64M",
		"FLTBASE 9",
	}
	for _, test := range tests {
		Reset()
		err := config.LoadConfig(strings.NewReader(test))
		assert.ErrorIs(t, err, config.ErrConfig, test)
	}

	Reset()
	err := config.LoadConfig(strings.NewReader("CPU 0\nCPU 0\n"))
	assert.ErrorIs(t, err, config.ErrConfig)
}

func TestAddCPUs(t *testing.T) {
	Reset()
	require.NoError(t, createCPU(1, "", []config.Option{{Name: "LOCKUP", EqualOpt: "10"}}))
	require.NoError(t, AddCPUs(3))
	s := Current()
	assert.Equal(t, []int{0, 1, 2}, s.Numbers())
	assert.Equal(t, 10, s.CPUs[1].LockupLimit)
	assert.Error(t, AddCPUs(9))
}
