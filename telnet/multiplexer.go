/*
 * DPS8 - telnet server, monitor ports and sessions.
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
	"fmt"
	"strconv"
	"strings"
	"sync"

	config "github.com/rcornwell/DPS8/config/configparser"
)

// Default sessions allowed on a port.
const defaultSessions = 1

// Monitor port from the configuration.
type portMap struct {
	port     string  // Port to listen on.
	sessions int     // Sessions allowed.
	active   int     // Sessions connected.
	server   *Server // Server while running.
}

var mapLock sync.Mutex

var ports = map[string]*portMap{}

// register a device on initialize.
func init() {
	config.RegisterModel("MONITOR", config.TypeOptions, setPort)
}

// Add a monitor port.
func registerPort(port string, sessions int) error {
	mapLock.Lock()
	defer mapLock.Unlock()
	if _, ok := ports[port]; ok {
		return fmt.Errorf("%w: monitor port %s defined twice", config.ErrConfig, port)
	}
	ports[port] = &portMap{port: port, sessions: sessions}
	return nil
}

// Take a session slot, false if all in use.
func (pm *portMap) connect() bool {
	mapLock.Lock()
	defer mapLock.Unlock()
	if pm.active >= pm.sessions {
		return false
	}
	pm.active++
	return true
}

// Release a session slot.
func (pm *portMap) disconnect() {
	mapLock.Lock()
	defer mapLock.Unlock()
	pm.active--
}

// Configure monitor port: MONITOR port SESSIONS=n.
func setPort(_ uint16, port string, options []config.Option) error {
	_, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return fmt.Errorf("%w: monitor requires port number: %s", config.ErrConfig, port)
	}
	sessions := defaultSessions
	for _, opt := range options {
		if strings.ToUpper(opt.Name) != "SESSIONS" || len(opt.Value) != 0 {
			return fmt.Errorf("%w: monitor option invalid: %s", config.ErrConfig, opt.Name)
		}
		n, err := strconv.Atoi(opt.EqualOpt)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: monitor sessions invalid: %s", config.ErrConfig, opt.EqualOpt)
		}
		sessions = n
	}
	return registerPort(port, sessions)
}
