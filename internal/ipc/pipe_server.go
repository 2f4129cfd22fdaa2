package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os/user"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Microsoft/go-winio"
)

const (
	pipeConnDeadline    = 30 * time.Second
	maxPipeRequestBytes = 16 * 1024
	maxConcurrentConns  = 8
	connSlotWait        = 5 * time.Second
	acceptRetryDelay    = 500 * time.Millisecond
)

// PipeServer answers activation requests from secondary launches and from
// shortgroupctl over a per-user Named Pipe.
type PipeServer struct {
	pipeName string
	handler  ActivationHandler

	ctx    context.Context
	cancel context.CancelFunc
	slots  chan struct{}

	mu       sync.Mutex
	listener net.Listener
	started  bool
	wg       sync.WaitGroup
}

// NewPipeServer constructs a server for pipeName; an empty name selects the
// default per-user pipe.
func NewPipeServer(pipeName string, handler ActivationHandler) *PipeServer {
	if pipeName == "" {
		pipeName = DefaultPipeName()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PipeServer{
		pipeName: pipeName,
		handler:  handler,
		ctx:      ctx,
		cancel:   cancel,
		slots:    make(chan struct{}, maxConcurrentConns),
	}
}

// PipeName returns the listen pipe name.
func (s *PipeServer) PipeName() string {
	return s.pipeName
}

// Start opens the pipe listener and begins accepting connections.
func (s *PipeServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("pipe server already started")
	}
	if s.handler == nil {
		return errors.New("pipe server requires handler")
	}

	listener, err := listenPrivatePipe(s.pipeName)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.pipeName, err)
	}
	s.listener = listener
	s.started = true
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop()
	}()
	return nil
}

// Stop closes the listener and waits for in-flight connections to finish.
// Safe to call before Start and more than once.
func (s *PipeServer) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.cancel()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()

	if listener != nil {
		if err := listener.Close(); err != nil {
			slog.Warn("[ipc] failed to close pipe listener during shutdown", "error", err)
		}
	}
	s.wg.Wait()
	return nil
}

func (s *PipeServer) acceptLoop() {
	failures := 0
	for {
		s.mu.Lock()
		listener := s.listener
		s.mu.Unlock()
		if listener == nil {
			return
		}

		conn, err := listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			failures++
			if failures > 10 {
				slog.Warn("[ipc] accept keeps failing, backing off", "error", err, "count", failures)
				time.Sleep(acceptRetryDelay)
			} else {
				slog.Debug("[ipc] accept error", "error", err)
			}
			continue
		}
		failures = 0

		if !s.acquireSlot() {
			s.respond(conn, ActivationResponse{OK: false, Error: "server busy, try again later"})
			conn.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.releaseSlot()
			defer conn.Close()
			s.serveConn(conn)
		}()
	}
}

// serveConn handles one request/response exchange. Oversized or malformed
// requests get an error response rather than a dropped connection.
func (s *PipeServer) serveConn(conn net.Conn) {
	if err := conn.SetDeadline(time.Now().Add(pipeConnDeadline)); err != nil {
		slog.Warn("[ipc] failed to set connection deadline", "error", err)
		return
	}

	raw, err := readFrame(bufio.NewReaderSize(conn, maxPipeRequestBytes+1), maxPipeRequestBytes)
	if errors.Is(err, io.EOF) {
		slog.Debug("[ipc] client disconnected without sending data")
		return
	}
	if err != nil {
		s.respond(conn, ActivationResponse{OK: false, Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	req, err := decodeRequest(raw)
	if err != nil {
		s.respond(conn, ActivationResponse{OK: false, Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	slog.Debug("[ipc] received activation request", "action", req.Action, "shortcutID", req.ShortcutID)
	s.respond(conn, s.handler.HandleActivation(req))
}

func (s *PipeServer) respond(conn net.Conn, resp ActivationResponse) {
	payload, err := encodeResponse(resp)
	if err != nil {
		slog.Warn("[ipc] failed to encode response", "error", err)
		payload = []byte(`{"ok":false,"error":"internal encode error"}`)
	}
	if err := writeFrame(conn, payload); err != nil {
		slog.Debug("[ipc] failed to write response", "error", err)
	}
}

// acquireSlot bounds concurrent connections. A full table is a sign of a
// stuck handler, so waiting is capped rather than unbounded.
func (s *PipeServer) acquireSlot() bool {
	timer := time.NewTimer(connSlotWait)
	defer timer.Stop()
	select {
	case s.slots <- struct{}{}:
		return true
	case <-timer.C:
		slog.Warn("[ipc] connection slots exhausted, rejecting client")
		return false
	case <-s.ctx.Done():
		return false
	}
}

func (s *PipeServer) releaseSlot() {
	select {
	case <-s.slots:
	default:
		slog.Warn("[ipc] releaseSlot without matching acquire")
	}
}

// listenPrivatePipe opens the pipe with a DACL granting access only to
// SYSTEM and the current user, so other local users cannot drive this
// instance.
func listenPrivatePipe(pipeName string) (net.Listener, error) {
	descriptor, err := pipeSecurityDescriptor()
	if err != nil {
		return nil, err
	}
	return winio.ListenPipe(pipeName, &winio.PipeConfig{
		SecurityDescriptor: descriptor,
		MessageMode:        false,
		InputBufferSize:    maxPipeRequestBytes,
		OutputBufferSize:   maxPipeResponseBytes,
	})
}

var validSIDPattern = regexp.MustCompile(`^S-1(-\d+)+$`)

func pipeSecurityDescriptor() (string, error) {
	current, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve current user: %w", err)
	}
	sid := strings.TrimSpace(current.Uid)
	if sid == "" {
		return "", errors.New("current user SID is unavailable")
	}
	if !validSIDPattern.MatchString(sid) {
		return "", fmt.Errorf("current user SID has unexpected format: %s", sid)
	}
	// D:P protects the DACL from inheritance; SYSTEM and the owning user get
	// full access, nobody else gets any.
	return fmt.Sprintf("D:P(A;;GA;;;SY)(A;;GA;;;%s)", sid), nil
}
