/*
 * DPS8 - telnet server, listener.
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
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	command "github.com/rcornwell/DPS8/command/command"
)

type Server struct {
	wg         sync.WaitGroup
	listener   net.Listener
	shutdown   chan struct{}
	connection chan net.Conn
	core       command.Core
	port       *portMap
	mu         sync.Mutex
	sessions   map[net.Conn]struct{} // Open sessions, closed on Stop
}

// Open new listener.
func newServer(address string) (*Server, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on address %s: %w", address, err)
	}

	return &Server{
		listener:   listener,
		shutdown:   make(chan struct{}),
		connection: make(chan net.Conn),
		sessions:   map[net.Conn]struct{}{},
	}, nil
}

// Address server is listening on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Accept a connection.
func (s *Server) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		select {
		case s.connection <- conn:
		case <-s.shutdown:
			conn.Close()
			return
		}
	}
}

// Start processing for a new connection.
func (s *Server) handleConnections() {
	defer s.wg.Done()

	for {
		select {
		case <-s.shutdown:
			return
		case conn := <-s.connection:
			if !s.port.connect() {
				_, _ = conn.Write([]byte("All monitor sessions in use\r\n"))
				conn.Close()
				continue
			}
			slog.Info("Monitor connection from " + conn.RemoteAddr().String())
			s.mu.Lock()
			s.sessions[conn] = struct{}{}
			s.mu.Unlock()
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer s.port.disconnect()
				handleClient(conn, s.core)
				s.mu.Lock()
				delete(s.sessions, conn)
				s.mu.Unlock()
			}()
		}
	}
}

// Start a server for every configured monitor port.
func Start(core command.Core) error {
	mapLock.Lock()
	defer mapLock.Unlock()
	for portNum, p := range ports {
		s, err := newServer(":" + portNum)
		if err != nil {
			return err
		}
		s.core = core
		s.port = p
		p.server = s
		slog.Info("Monitor server started on " + s.Addr().String())

		s.wg.Add(2)
		go s.acceptConnections()
		go s.handleConnections()
	}
	return nil
}

// Stop a running server, waiting for sessions to end.
func (s *Server) Stop() {
	close(s.shutdown)
	s.listener.Close()
	s.mu.Lock()
	for conn := range s.sessions {
		conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for connections to finish.")
	}
}

// Stop running servers.
func Stop() {
	mapLock.Lock()
	servers := map[string]*Server{}
	for portNum, p := range ports {
		if p.server != nil {
			servers[portNum] = p.server
			p.server = nil
		}
	}
	mapLock.Unlock()

	// Sessions release their port under mapLock while the server waits.
	for portNum, s := range servers {
		slog.Info("Shutdown port: " + portNum)
		s.Stop()
	}
}
