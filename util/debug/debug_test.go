/*
 * DPS8 - Debug output tests
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

package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugfMask(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	Debugf("CPU0", 0x4, 0x2, "hidden %d", 1)
	assert.Empty(t, buf.String())
	Debugf("CPU0", 0x6, 0x2, "shown %d", 2)
	assert.Equal(t, "CPU0: shown 2\n", buf.String())
}

func TestDebugFile(t *testing.T) {
	SetOutput(nil)
	defer SetOutput(nil)

	name := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, create(0, name, nil))
	assert.Error(t, create(0, name, nil), "second debug file accepted")

	Debugf("CPU1", 1, 1, "fault %s", "ACV")
	f, ok := logFile.(*os.File)
	require.True(t, ok)
	require.NoError(t, f.Sync())
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "CPU1: fault ACV\n", string(data))
}
