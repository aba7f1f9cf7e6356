package server

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"chat-server/contract"
	chatruntime "chat-server/runtime"
)

var _ contract.Worker = (*Server)(nil)

// Server accepts TCP connections on a pre-bound listener and runs one
// session loop goroutine per client. It implements contract.Worker so the
// supervisor restarts the accept loop if it ever panics; the listener is
// bound by the caller precisely so a restart does not re-bind the port.
type Server struct {
	log          *slog.Logger
	listener     net.Listener
	registry     contract.IRegistry
	router       contract.IRouter
	writeTimeout time.Duration

	wg    sync.WaitGroup
	mu    sync.Mutex
	conns map[string]contract.Conn
}

func New(log *slog.Logger, listener net.Listener, registry contract.IRegistry,
	router contract.IRouter, writeTimeout time.Duration) *Server {
	return &Server{
		log:          log,
		listener:     listener,
		registry:     registry,
		router:       router,
		writeTimeout: writeTimeout,
		conns:        make(map[string]contract.Conn),
	}
}

// Run blocks accepting connections until the context is cancelled, then
// closes the listener and every live connection and waits for the session
// goroutines to drain.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("Chat server listening", "address", s.listener.Addr().String())

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
		s.closeAll()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				s.log.Info("Chat server stopped")
				return nil
			}
			s.log.Warn("Accept failed", "error", err)
			continue
		}

		lineConn := NewLineConn(conn, s.writeTimeout)
		s.log.Info("New connection", "conn", lineConn.ID(), "remote", lineConn.RemoteAddr())
		s.track(lineConn)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(lineConn)
			loop := chatruntime.NewSessionLoop(s.log, s.registry, s.router, lineConn)
			_ = loop.Run()
		}()
	}
}

// closeAll force-closes every live connection, which unblocks the session
// goroutines stuck in ReadLine; their cleanup paths then run as for any
// other disconnect.
func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *Server) track(conn contract.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn.ID()] = conn
}

func (s *Server) untrack(conn contract.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn.ID())
}
