// Package mcp exposes the daemon's control surface as MCP tools over stdio,
// so assistants can pause, resume and inspect window placement. Every tool
// talks to the running daemon through the IPC socket.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tsukumo919/window-mover/internal/ipc"
)

const (
	ServerName    = "window-mover"
	ServerVersion = "0.1.0"
)

// Server is the MCP server wrapping the daemon's IPC client.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates a new MCP server.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pause_placement",
		Description: "Pause automatic window placement. Windows opened while paused are not moved; delayed placements already scheduled still complete.",
	}, s.handlePause)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resume_placement",
		Description: "Resume automatic window placement after a pause.",
	}, s.handleResume)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Reload the placement rules from the configuration file. A configuration error leaves the previous rules active.",
	}, s.handleReload)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get the daemon status: paused flag, tracked window counts and active rule counts.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "describe_windows",
		Description: "List every open window with its title, process, class and how the active rules classify it (matched rule, ignored or unmatched). Useful for writing new rules.",
	}, s.handleDescribeWindows)
}

func (s *Server) handlePause(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ControlOutput, error) {
	if err := s.client.Pause(); err != nil {
		return nil, ControlOutput{}, fmt.Errorf("pause failed: %w", err)
	}
	return nil, ControlOutput{Done: true, Message: "placement paused"}, nil
}

func (s *Server) handleResume(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ControlOutput, error) {
	if err := s.client.Resume(); err != nil {
		return nil, ControlOutput{}, fmt.Errorf("resume failed: %w", err)
	}
	return nil, ControlOutput{Done: true, Message: "placement resumed"}, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ControlOutput, error) {
	if err := s.client.Reload(); err != nil {
		return nil, ControlOutput{}, fmt.Errorf("reload failed: %w", err)
	}
	return nil, ControlOutput{Done: true, Message: "configuration reloaded"}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("status failed: %w", err)
	}
	return nil, StatusOutput{
		Paused:           status.Paused,
		TrackedWindows:   status.TrackedWindows,
		ProcessedWindows: status.ProcessedWindows,
		Rules:            status.Rules,
		Ignores:          status.Ignores,
		UptimeSeconds:    status.UptimeSeconds,
		ConfigPath:       status.ConfigPath,
	}, nil
}

func (s *Server) handleDescribeWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, WindowsOutput, error) {
	windows, err := s.client.DescribeWindows()
	if err != nil {
		return nil, WindowsOutput{}, fmt.Errorf("describe failed: %w", err)
	}

	out := WindowsOutput{Windows: make([]WindowInfo, 0, len(windows))}
	for _, w := range windows {
		out.Windows = append(out.Windows, WindowInfo{
			ID:             w.ID,
			Title:          w.Title,
			Process:        w.Process,
			Class:          w.Class,
			Classification: w.Classification,
			Rule:           w.Rule,
			IgnoredBy:      w.IgnoredBy,
		})
	}
	return nil, out, nil
}
