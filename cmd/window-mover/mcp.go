package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tsukumo919/window-mover/internal/mcp"
)

func runMCP(args []string) int {
	if len(args) == 0 || args[0] != "serve" {
		fmt.Fprintln(os.Stderr, "Usage: window-mover mcp serve")
		return 2
	}

	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: window-mover mcp serve")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Expose the daemon's control surface as MCP tools over stdio.")
		fmt.Fprintln(os.Stderr, "Requires a running daemon.")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	server := mcp.NewServer()
	if err := server.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
