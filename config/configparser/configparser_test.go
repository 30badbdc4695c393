/*
 * DPS8 - Configuration file parser tests
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

package configparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOptions []Option
	testUnit    uint16
	testValue   string
	testType    string
)

func cleanUpConfig() {
	models = map[string]modelDef{}
	testOptions = []Option{}
	testUnit = 0xfffe
	testValue = "error"
	testType = ""
}

func recorder(kind string) func(uint16, string, []Option) error {
	return func(unit uint16, value string, options []Option) error {
		testUnit = unit
		testValue = value
		testType = kind
		testOptions = options
		return nil
	}
}

func registerAll() {
	RegisterModel("CPU", TypeModel, recorder("model"))
	RegisterOption("MEMORY", recorder("option"))
	RegisterModel("DEBUG", TypeOptions, recorder("options"))
	RegisterSwitch("TRACE", recorder("switch"))
	RegisterFile("DEBUGFILE", recorder("file"))
}

// Test registering and creating each type.
func TestRegisterModel(t *testing.T) {
	cleanUpConfig()
	registerAll()

	fTest := FirstOption{unit: 1, isUnit: true, value: "1"}
	assert.Error(t, createModel("test", &fTest, nil), "Create non existent model succeeded")
	require.NoError(t, createModel("cpu", &fTest, nil))
	assert.Equal(t, uint16(1), testUnit)
	assert.Equal(t, "", testValue)
	assert.Error(t, createSwitch("cpu"), "Create model as switch succeeded")
	assert.Error(t, createModel("trace", &fTest, nil), "Create switch as model succeeded")
	assert.Error(t, createOption("cpu", &fTest), "Create model as option succeeded")
}

func TestParseLineSwitch(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: "trace   # comment"}
	require.NoError(t, line.parseLine())
	assert.Equal(t, "switch", testType)
	assert.Empty(t, testOptions)

	line = optionLine{line: "trace on"}
	assert.ErrorIs(t, line.parseLine(), ErrConfig)
}

func TestParseLineOption(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: "memory 1024K"}
	require.NoError(t, line.parseLine())
	assert.Equal(t, "option", testType)
	assert.Equal(t, "1024K", testValue)
	assert.Equal(t, NoUnit, testUnit)

	line = optionLine{line: "memory 16 extra"}
	assert.Error(t, line.parseLine(), "Option followed by more than value")

	line = optionLine{line: "memory"}
	assert.Error(t, line.parseLine(), "Option without value")
}

func TestParseLineModel(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: " CPU 2 LOCKUP=100 SDWAM=off ptwam"}
	require.NoError(t, line.parseLine())
	assert.Equal(t, "model", testType)
	assert.Equal(t, uint16(2), testUnit)
	require.Len(t, testOptions, 3)
	assert.Equal(t, Option{Name: "LOCKUP", EqualOpt: "100"}, testOptions[0])
	assert.Equal(t, Option{Name: "SDWAM", EqualOpt: "off"}, testOptions[1])
	assert.Equal(t, Option{Name: "ptwam"}, testOptions[2])

	line = optionLine{line: "CPU X LOCKUP=10"}
	assert.ErrorIs(t, line.parseLine(), ErrConfig)

	line = optionLine{line: "CPU 0 =10"}
	assert.ErrorIs(t, line.parseLine(), ErrConfig)
}

func TestParseLineOptionsComma(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: "debug cpu APPEND, FAULT,CACHE G7"}
	require.NoError(t, line.parseLine())
	assert.Equal(t, "options", testType)
	assert.Equal(t, "cpu", testValue)
	require.Len(t, testOptions, 2)
	assert.Equal(t, "APPEND", testOptions[0].Name)
	assert.Equal(t, []string{"FAULT", "CACHE"}, testOptions[0].Value)
	assert.Equal(t, "G7", testOptions[1].Name)
}

func TestParseLineQuote(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: `CPU 0 NAME="first ""cpu""" LOCKUP=8`}
	require.NoError(t, line.parseLine())
	require.Len(t, testOptions, 2)
	assert.Equal(t, `first "cpu"`, testOptions[0].EqualOpt)
	assert.Equal(t, "8", testOptions[1].EqualOpt)

	line = optionLine{line: `CPU 0 NAME="open`}
	assert.ErrorIs(t, line.parseLine(), ErrConfig)
}

func TestParseLineFile(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: "debugfile trace.log"}
	require.NoError(t, line.parseLine())
	assert.Equal(t, "file", testType)
	assert.Equal(t, "trace.log", testValue)

	line = optionLine{line: `debugfile "my trace.log"`}
	require.NoError(t, line.parseLine())
	assert.Equal(t, "my trace.log", testValue)

	line = optionLine{line: "debugfile"}
	assert.ErrorIs(t, line.parseLine(), ErrConfig)
}

func TestLoadConfig(t *testing.T) {
	cleanUpConfig()
	registerAll()

	conf := "# test configuration\n\nmemory 256K\r\ncpu 0 lockup=20\n"
	require.NoError(t, LoadConfig(strings.NewReader(conf)))
	assert.Equal(t, "model", testType)
	assert.Equal(t, uint16(0), testUnit)

	err := LoadConfig(strings.NewReader("memory 256K\nbogus 1\n"))
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "line: 2")
}
