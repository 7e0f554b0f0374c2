package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/SweetRetry/seedkit-ai/internal/events"
)

const requestTimeout = 30 * time.Second

// Server accepts connections from the MCP binary and proxies canvas requests
// to the connected canvas client via the event bus. Responses come back as
// canvas_response bus events and are matched to their request by ID.
type Server struct {
	socketPath string
	bus        *events.Bus
	timeout    time.Duration

	mu      sync.Mutex
	pending map[string]chan string
	conns   map[net.Conn]struct{}
	closed  bool

	listener net.Listener
	unsub    func()
}

// NewServer creates a bridge server bound to socketPath.
func NewServer(socketPath string, bus *events.Bus) *Server {
	return &Server{
		socketPath: socketPath,
		bus:        bus,
		timeout:    requestTimeout,
		pending:    make(map[string]chan string),
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start binds the socket (removing a stale file from a previous run) and
// begins accepting connections. Non-blocking.
func (s *Server) Start() error {
	if _, err := os.Stat(s.socketPath); err == nil {
		_ = os.Remove(s.socketPath)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to bind bridge socket: %w", err)
	}
	s.listener = listener
	slog.Info("bridge: listening", "path", s.socketPath)

	s.unsub = s.bus.Subscribe(s.onCanvasResponse, events.EventCanvasResponse)

	go s.acceptLoop()
	return nil
}

// Close stops the listener and fails every in-flight request.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	for id, ch := range s.pending {
		close(ch)
		delete(s.pending, id)
	}
	for conn := range s.conns {
		conn.Close()
		delete(s.conns, conn)
	}
	s.mu.Unlock()

	if s.unsub != nil {
		s.unsub()
	}
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	_ = os.Remove(s.socketPath)
	return err
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			slog.Error("bridge: accept error", "error", err)
			continue
		}
		go s.handleConn(conn)
	}
}

// onCanvasResponse delivers a canvas client answer to its waiting request.
// Runs on the bus dispatch path, so it must not block: the fast path uses
// TryLock; under contention the delivery moves to a goroutine.
func (s *Server) onCanvasResponse(e events.Event) {
	payload, ok := events.GetCanvasResponsePayload(e)
	if !ok {
		slog.Warn("bridge: failed to parse canvas response payload")
		return
	}
	if s.mu.TryLock() {
		s.deliverLocked(payload.RequestID, payload.Result)
		s.mu.Unlock()
		return
	}
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.deliverLocked(payload.RequestID, payload.Result)
	}()
}

// deliverLocked resolves a pending entry. An ID with no entry (already timed
// out, or never existed) is dropped. Caller holds s.mu.
func (s *Server) deliverLocked(requestID, result string) {
	ch, ok := s.pending[requestID]
	if !ok {
		return
	}
	delete(s.pending, requestID)
	ch <- result
}

func (s *Server) register(requestID string) (chan string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	ch := make(chan string, 1)
	s.pending[requestID] = ch
	return ch, true
}

func (s *Server) unregister(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, requestID)
}

// handleConn reads requests line by line. Requests on one connection are
// strictly sequential: the next line is not read until the response for the
// previous one has been written.
func (s *Server) handleConn(conn net.Conn) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if werr := s.writeResponse(writer,
				errorResponse("unknown", fmt.Sprintf("Invalid request JSON: %s", err))); werr != nil {
				return
			}
			continue
		}

		if werr := s.writeResponse(writer, s.dispatch(req)); werr != nil {
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	switch req.Method {
	case MethodCanvasRead, MethodCanvasBatch:
	default:
		return errorResponse(req.ID, fmt.Sprintf("Unknown method: %s", req.Method))
	}

	ch, ok := s.register(req.ID)
	if !ok {
		return errorResponse(req.ID, "Response channel closed")
	}

	if req.Method == MethodCanvasRead {
		s.bus.Publish(events.NewTypedEvent(events.SourceBridge, events.CanvasReadRequestPayload{
			RequestID: req.ID,
			Params:    req.Params,
		}))
	} else {
		s.bus.Publish(events.NewTypedEvent(events.SourceBridge, events.CanvasBatchRequestPayload{
			RequestID: req.ID,
			Params:    req.Params,
		}))
	}

	select {
	case result, open := <-ch:
		if !open {
			return errorResponse(req.ID, "Response channel closed")
		}
		return resultResponse(req.ID, result)
	case <-time.After(s.timeout):
		s.unregister(req.ID)
		return errorResponse(req.ID, "Request timed out (30s)")
	}
}

func (s *Server) writeResponse(w *bufio.Writer, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return w.Flush()
}
