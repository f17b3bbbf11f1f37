package ipc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/tsukumo919/window-mover/internal/config"
	"github.com/tsukumo919/window-mover/internal/engine"
	"github.com/tsukumo919/window-mover/internal/runtimepath"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       *engine.Engine
	configPath   string
	quit         func()
	shuttingDown bool
	shutdownMu   sync.Mutex

	// OnReload, when set, runs after a RELOAD command succeeds with the
	// newly applied configuration.
	OnReload func(*config.Config)
}

// NewServer creates a new IPC server. quit is invoked when a QUIT command
// arrives and should shut the daemon down.
func NewServer(eng *engine.Engine, configPath string, quit func()) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		engine:     eng,
		configPath: configPath,
		quit:       quit,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch req.Command {
	case CommandPause:
		if err := s.engine.Pause(ctx); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to pause: %v", err))
		}
	case CommandResume:
		if err := s.engine.Resume(ctx); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to resume: %v", err))
		}
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandDescribeWindows:
		return s.handleDescribeWindows(ctx)
	case CommandQuit:
		log.Println("IPC: Received QUIT command")
		go s.quit()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleReload reloads the configuration from disk and swaps the rule set
func (s *Server) handleReload(ctx context.Context) *Response {
	log.Println("IPC: Received RELOAD command")

	cfg, err := config.LoadOrDefault(s.configPath)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	if err := s.engine.Reload(ctx, cfg); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to apply config: %v", err))
	}
	if s.OnReload != nil {
		s.OnReload(cfg)
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus(ctx context.Context) *Response {
	st, err := s.engine.Status(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}

	status := StatusData{
		Status:        st,
		DaemonRunning: true,
		ConfigPath:    s.configPath,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleDescribeWindows classifies every current window
func (s *Server) handleDescribeWindows(ctx context.Context) *Response {
	windows, err := s.engine.DescribeWindows(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to describe windows: %v", err))
	}

	resp, _ := NewOKResponse(WindowsData{Windows: windows})
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
