package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/tsukumo919/window-mover/internal/config"
	"github.com/tsukumo919/window-mover/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "pause":
		os.Exit(runSignal("pause", os.Args[2:]))
	case "resume":
		os.Exit(runSignal("resume", os.Args[2:]))
	case "reload":
		os.Exit(runSignal("reload", os.Args[2:]))
	case "quit":
		os.Exit(runSignal("quit", os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: window-mover <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the placement daemon (foreground)")
	fmt.Fprintln(w, "  pause               Pause automatic placement")
	fmt.Fprintln(w, "  resume              Resume automatic placement")
	fmt.Fprintln(w, "  reload              Reload the configuration file")
	fmt.Fprintln(w, "  quit                Stop the daemon")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  windows             List open windows and their rule classification")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'window-mover <command> --help' for command-specific options.")
}

// runSignal handles the argument-less control commands.
func runSignal(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: window-mover %s\n", name)
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	client := ipc.NewClient()
	var err error
	switch name {
	case "pause":
		err = client.Pause()
	case "resume":
		err = client.Resume()
	case "reload":
		err = client.Reload()
	case "quit":
		err = client.Quit()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("%s: ok\n", name)
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: window-mover status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	client := ipc.NewClient()
	if err := client.Ping(); err != nil {
		fmt.Fprintln(os.Stderr, "Daemon is not running")
		return 1
	}
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	state := "running"
	if status.Paused {
		state = "paused"
	}
	fmt.Printf("Daemon:     %s\n", state)
	fmt.Printf("Config:     %s\n", status.ConfigPath)
	fmt.Printf("Rules:      %d (+%d ignore entries)\n", status.Rules, status.Ignores)
	fmt.Printf("Windows:    %d tracked, %d processed\n", status.TrackedWindows, status.ProcessedWindows)
	fmt.Printf("Uptime:     %ds\n", status.UptimeSeconds)
	return 0
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output window list as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: window-mover windows [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List open windows with title, process, class and the rule")
		fmt.Fprintln(os.Stderr, "classification each would receive. Useful for writing rules.")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	client := ipc.NewClient()
	windows, err := client.DescribeWindows()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, err := json.MarshalIndent(windows, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROCESS\tCLASS\tCLASSIFICATION\tTITLE")
	for _, w := range windows {
		cls := w.Classification
		switch {
		case w.Rule != "":
			cls = fmt.Sprintf("matched (%s)", w.Rule)
		case w.IgnoredBy != "":
			cls = fmt.Sprintf("ignored (%s)", w.IgnoredBy)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", w.ID, w.Process, w.Class, cls, w.Title)
	}
	tw.Flush()
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: window-mover config <validate|print> [options]")
		return 2
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:])
	case "print":
		return runConfigPrint(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runConfigValidate(args []string) int {
	fs := flag.NewFlagSet("config validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Path to configuration file (default: ~/.config/window-mover/config.yaml)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfgPath, err := resolveConfigPath(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if _, err := config.LoadFromPath(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid: %v\n", err)
		return 1
	}

	fmt.Printf("Valid: %s\n", cfgPath)
	return 0
}

func runConfigPrint(args []string) int {
	fs := flag.NewFlagSet("config print", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Path to configuration file (default: ~/.config/window-mover/config.yaml)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfgPath, err := resolveConfigPath(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	cfg, err := config.LoadFromPath(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	os.Stdout.Write(data)
	return 0
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}
