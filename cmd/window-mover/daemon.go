package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/tsukumo919/window-mover/internal/config"
	"github.com/tsukumo919/window-mover/internal/engine"
	"github.com/tsukumo919/window-mover/internal/ipc"
	"github.com/tsukumo919/window-mover/internal/platform"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cfgFlag := fs.String("config", "", "Path to configuration file (default: ~/.config/window-mover/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: window-mover daemon [--config path]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the placement daemon in the foreground. The configuration")
		fmt.Fprintln(os.Stderr, "file is watched and reloaded on change; SIGHUP also reloads.")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfgPath, err := resolveConfigPath(*cfgFlag)
	if err != nil {
		log.Fatalf("Failed to resolve config path: %v", err)
	}
	cfgPath = filepath.Clean(cfgPath)

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logLevel slog.LevelVar
	logLevel.Set(parseLogLevel(cfg.Global.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: &logLevel,
	}))
	logger.Info("configuration loaded", "path", cfgPath, "rules", len(cfg.Rules), "ignores", len(cfg.Ignores))

	backend, err := platform.NewLinuxBackend()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Close()

	eng, err := engine.New(backend, cfg, logger)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ipcServer, err := ipc.NewServer(eng, cfgPath, cancel)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	ipcServer.OnReload = func(cfg *config.Config) {
		logLevel.Set(parseLogLevel(cfg.Global.LogLevel))
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("Failed to watch config: %v", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(cfgPath)); err != nil {
		logger.Warn("unable to watch config directory", "error", err)
	}
	if err := watcher.Add(cfgPath); err != nil {
		logger.Debug("unable to watch config file directly", "error", err)
	}

	reloadRequests := make(chan string, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return eng.Run(ctx)
	})

	g.Go(func() error {
		watchConfig(ctx, logger, watcher, cfgPath, reloadRequests)
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					reloadDaemonConfig(ctx, logger, &logLevel, eng, cfgPath, "SIGHUP received")
				case os.Interrupt, syscall.SIGTERM:
					logger.Info("shutting down", "signal", sig.String())
					cancel()
					return nil
				}
			case reason := <-reloadRequests:
				reloadDaemonConfig(ctx, logger, &logLevel, eng, cfgPath, reason)
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("daemon stopped", "error", err)
		return 1
	}
	return 0
}

func reloadDaemonConfig(ctx context.Context, logger *slog.Logger, logLevel *slog.LevelVar, eng *engine.Engine, cfgPath, reason string) {
	logger.Info("reloading configuration", "reason", reason)
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		logger.Error("reload failed, keeping previous rules", "error", err)
		return
	}
	if err := eng.Reload(ctx, cfg); err != nil {
		logger.Error("reload rejected, keeping previous rules", "error", err)
		return
	}
	logLevel.Set(parseLogLevel(cfg.Global.LogLevel))
}

// watchConfig debounces file events on the configuration file and posts a
// reload request when it settles.
func watchConfig(ctx context.Context, logger *slog.Logger, watcher *fsnotify.Watcher, target string, reloadRequests chan<- string) {
	const debounceWindow = 250 * time.Millisecond
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case reloadRequests <- "config file updated":
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
