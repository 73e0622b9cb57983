// Package telnet provides a line-oriented TCP front-end for a tether
// session, in the spirit of the classic debug-daemon telnet console.
// Each received line is submitted to the session queue and the command
// output is written back on the same connection.
package telnet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/probelab/tether/internal/logging"
	"github.com/probelab/tether/pkg/dispatch"
	"github.com/probelab/tether/pkg/runner"
)

// Submitter is the slice of a session the listener needs.
type Submitter interface {
	SubmitWait(ctx context.Context, line string) (*runner.Future, error)
}

// Server accepts TCP connections and relays command lines to a session.
type Server struct {
	addr    string
	prompt  string
	banner  string
	session Submitter
	logger  *slog.Logger

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address (default ":4444").
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithPrompt sets the per-line prompt (default "> ").
func WithPrompt(prompt string) Option {
	return func(s *Server) { s.prompt = prompt }
}

// WithBanner sets the greeting written on connect.
func WithBanner(banner string) Option {
	return func(s *Server) { s.banner = banner }
}

// WithLogger sets the listener logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a listener bound to the given session.
func NewServer(session Submitter, opts ...Option) *Server {
	s := &Server{
		addr:    ":4444",
		prompt:  "> ",
		session: session,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the bound listen address once ListenAndServe has started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ListenAndServe accepts connections until ctx is cancelled. It returns
// nil on graceful shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("telnet listen: %w", err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.logger.Info("telnet listener started", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("telnet accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	s.logger.Info("telnet client connected", "remote", remote)

	// Close the connection when the daemon stops so blocked reads wake up.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if s.banner != "" {
		fmt.Fprintf(conn, "%s\r\n", s.banner)
	}

	scanner := bufio.NewScanner(conn)
	fmt.Fprint(conn, s.prompt)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(conn, s.prompt)
			continue
		}

		fut, err := s.session.SubmitWait(ctx, line)
		if err != nil {
			s.writeErr(conn, err)
			if errors.Is(err, dispatch.ErrShuttingDown) {
				return
			}
			fmt.Fprint(conn, s.prompt)
			continue
		}

		out, err := fut.Wait(ctx)
		if out != "" {
			fmt.Fprint(conn, crlf(out))
		}
		if err != nil {
			s.writeErr(conn, err)
			if errors.Is(err, dispatch.ErrShuttingDown) {
				return
			}
		}
		fmt.Fprint(conn, s.prompt)
	}
	s.logger.Info("telnet client disconnected", "remote", remote)
}

func (s *Server) writeErr(conn net.Conn, err error) {
	fmt.Fprintf(conn, "error: %s\r\n", err)
}

// crlf normalizes line endings for raw telnet clients.
func crlf(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "\r\n")
}
