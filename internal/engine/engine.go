// Package engine runs the placement loop: it polls the window system,
// classifies each new window against the active rule set and applies the
// matched rule's action, possibly after a delay. All tracking state is owned
// by the loop goroutine; control signals and delayed-placement results are
// funneled in over channels.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tsukumo919/window-mover/internal/config"
	"github.com/tsukumo919/window-mover/internal/platform"
	"github.com/tsukumo919/window-mover/internal/rules"
)

// Settings holds the engine-wide options derived from the global config
// section. Replaced wholesale on reload, like the rule set.
type Settings struct {
	PollingInterval      time.Duration
	CleanupInterval      time.Duration
	ApplyOnStartup       bool
	ApplyOnReload        bool
	ApplyOnResume        bool
	RecheckOnTitleChange bool
}

// minPollingInterval keeps a misconfigured interval from busy-looping the
// window system.
const minPollingInterval = 100 * time.Millisecond

func settingsFromConfig(cfg *config.Config) *Settings {
	poll := time.Duration(cfg.Global.PollingIntervalMs) * time.Millisecond
	if poll < minPollingInterval {
		poll = minPollingInterval
	}
	return &Settings{
		PollingInterval:      poll,
		CleanupInterval:      time.Duration(cfg.Global.CleanupIntervalSeconds) * time.Second,
		ApplyOnStartup:       cfg.Global.GetApplyOnStartup(),
		ApplyOnReload:        cfg.Global.GetApplyOnReload(),
		ApplyOnResume:        cfg.Global.GetApplyOnResume(),
		RecheckOnTitleChange: cfg.Global.RecheckOnTitleChange,
	}
}

// trackedWindow is the per-handle record owned by the loop goroutine.
type trackedWindow struct {
	processed bool
	lastSeen  time.Time
	title     string
}

// Status is a point-in-time snapshot of the engine for status reporting.
type Status struct {
	Paused           bool  `json:"paused"`
	TrackedWindows   int   `json:"tracked_windows"`
	ProcessedWindows int   `json:"processed_windows"`
	Rules            int   `json:"rules"`
	Ignores          int   `json:"ignores"`
	UptimeSeconds    int64 `json:"uptime_seconds"`
}

// WindowReport describes one window and how the active rule set classifies
// it. Used by the describe-window diagnostic.
type WindowReport struct {
	ID             uint32 `json:"id"`
	Title          string `json:"title"`
	Process        string `json:"process"`
	Class          string `json:"class"`
	Classification string `json:"classification"`
	Rule           string `json:"rule,omitempty"`
	IgnoredBy      string `json:"ignored_by,omitempty"`
}

type cmdKind int

const (
	cmdPause cmdKind = iota
	cmdResume
	cmdReload
	cmdStatus
	cmdDescribe
)

type cmdReply struct {
	err     error
	status  Status
	windows []WindowReport
}

type command struct {
	kind  cmdKind
	cfg   *config.Config
	reply chan cmdReply
}

type placementResult struct {
	window platform.WindowID
	title  string
	err    error
}

// Engine owns the rule set, the tracked-window map and the pause flag. The
// rule set and settings are swapped atomically so delayed placements always
// observe a fully built set.
type Engine struct {
	backend platform.Backend
	logger  *slog.Logger

	set      atomic.Pointer[rules.Set]
	settings atomic.Pointer[Settings]

	cmds    chan command
	results chan placementResult

	// Loop-owned state, never touched outside Run.
	paused    bool
	startedAt time.Time
	tracked   map[platform.WindowID]*trackedWindow
}

// New builds an engine from a validated configuration. A bad pattern in the
// configuration fails construction.
func New(backend platform.Backend, cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	set, err := rules.Build(cfg)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		backend: backend,
		logger:  logger,
		cmds:    make(chan command),
		results: make(chan placementResult, 16),
		tracked: make(map[platform.WindowID]*trackedWindow),
	}
	e.set.Store(set)
	e.settings.Store(settingsFromConfig(cfg))
	return e, nil
}

// Run starts the dispatch loop. Blocks until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.startedAt = time.Now()
	s := e.settings.Load()
	set := e.set.Load()

	e.logger.Info("engine started",
		"polling_interval", s.PollingInterval,
		"cleanup_interval", s.CleanupInterval,
		"rules", len(set.Rules),
		"ignores", len(set.Ignores))

	if !s.ApplyOnStartup {
		e.markExisting()
	}

	poll := time.NewTicker(s.PollingInterval)
	defer poll.Stop()
	cleanup := time.NewTicker(s.CleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped")
			return nil
		case cmd := <-e.cmds:
			if e.handleCommand(cmd) {
				// Intervals may have changed on reload.
				s = e.settings.Load()
				poll.Reset(s.PollingInterval)
				cleanup.Reset(s.CleanupInterval)
			}
		case res := <-e.results:
			e.handleResult(res)
		case <-poll.C:
			if !e.paused {
				e.dispatch(ctx)
			}
		case <-cleanup.C:
			e.cleanup()
		}
	}
}

// markExisting flags every currently open window as processed so that only
// windows appearing after startup are placed.
func (e *Engine) markExisting() {
	windows, err := e.backend.ListWindows()
	if err != nil {
		e.logger.Error("startup enumeration failed", "error", err)
		return
	}
	now := time.Now()
	count := 0
	for _, win := range windows {
		// Same gate as dispatch: a window hidden or untitled at startup is
		// treated as new once it becomes placeable.
		if win.Minimized || win.Title == "" {
			continue
		}
		e.tracked[win.ID] = &trackedWindow{processed: true, lastSeen: now, title: win.Title}
		count++
	}
	e.logger.Info("existing windows skipped", "count", count)
}

// handleCommand processes a control signal. Reports whether the settings
// were replaced.
func (e *Engine) handleCommand(cmd command) bool {
	var reply cmdReply
	reloaded := false

	switch cmd.kind {
	case cmdPause:
		if !e.paused {
			e.paused = true
			e.logger.Info("placement paused")
		}
	case cmdResume:
		if e.paused {
			e.paused = false
			e.logger.Info("placement resumed")
			if e.settings.Load().ApplyOnResume {
				e.resetProcessed("resume")
			}
		}
	case cmdReload:
		reply.err = e.reload(cmd.cfg)
		reloaded = reply.err == nil
	case cmdStatus:
		reply.status = e.status()
	case cmdDescribe:
		reply.windows, reply.err = e.describe()
	}

	cmd.reply <- reply
	return reloaded
}

// reload swaps in a freshly compiled rule set. On error the previous set
// stays active.
func (e *Engine) reload(cfg *config.Config) error {
	set, err := rules.Build(cfg)
	if err != nil {
		e.logger.Error("reload rejected", "error", err)
		return err
	}

	e.set.Store(set)
	e.settings.Store(settingsFromConfig(cfg))
	e.logger.Info("configuration reloaded", "rules", len(set.Rules), "ignores", len(set.Ignores))

	if e.settings.Load().ApplyOnReload {
		e.resetProcessed("reload")
	}
	return nil
}

// resetProcessed clears the processed flag on all tracked windows so the
// next cycle reclassifies them.
func (e *Engine) resetProcessed(cause string) {
	for _, t := range e.tracked {
		t.processed = false
	}
	e.logger.Info("windows queued for reapplication", "cause", cause, "count", len(e.tracked))
}

func (e *Engine) handleResult(res placementResult) {
	if res.err == nil {
		return
	}
	e.logger.Error("delayed placement failed", "window", res.title, "error", res.err)
	// Let the next discovery cycle retry the window.
	if t, ok := e.tracked[res.window]; ok {
		t.processed = false
	}
}

func (e *Engine) status() Status {
	processed := 0
	for _, t := range e.tracked {
		if t.processed {
			processed++
		}
	}
	set := e.set.Load()
	return Status{
		Paused:           e.paused,
		TrackedWindows:   len(e.tracked),
		ProcessedWindows: processed,
		Rules:            len(set.Rules),
		Ignores:          len(set.Ignores),
		UptimeSeconds:    int64(time.Since(e.startedAt).Seconds()),
	}
}

// describe classifies every current window without placing anything.
func (e *Engine) describe() ([]WindowReport, error) {
	windows, err := e.backend.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("enumerate windows: %w", err)
	}

	set := e.set.Load()
	reports := make([]WindowReport, 0, len(windows))
	for _, win := range windows {
		r := WindowReport{
			ID:      uint32(win.ID),
			Title:   win.Title,
			Process: win.Process,
			Class:   win.Class,
		}
		switch cls := set.Classify(win); cls.Kind {
		case rules.Ignored:
			r.Classification = "ignored"
			r.IgnoredBy = cls.IgnoredBy
		case rules.Matched:
			r.Classification = "matched"
			r.Rule = cls.Rule.Name
		default:
			r.Classification = "unmatched"
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Pause stops dispatching new placements. In-flight delayed placements are
// allowed to complete.
func (e *Engine) Pause(ctx context.Context) error {
	_, err := e.send(ctx, command{kind: cmdPause})
	return err
}

// Resume restarts dispatching.
func (e *Engine) Resume(ctx context.Context) error {
	_, err := e.send(ctx, command{kind: cmdResume})
	return err
}

// Reload replaces the active rule set with one built from cfg. Already
// scheduled delayed placements keep the action they were scheduled with.
func (e *Engine) Reload(ctx context.Context, cfg *config.Config) error {
	reply, err := e.send(ctx, command{kind: cmdReload, cfg: cfg})
	if err != nil {
		return err
	}
	return reply.err
}

// Status reports the engine state.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	reply, err := e.send(ctx, command{kind: cmdStatus})
	if err != nil {
		return Status{}, err
	}
	return reply.status, nil
}

// DescribeWindows reports every current window and its classification.
func (e *Engine) DescribeWindows(ctx context.Context) ([]WindowReport, error) {
	reply, err := e.send(ctx, command{kind: cmdDescribe})
	if err != nil {
		return nil, err
	}
	return reply.windows, reply.err
}

func (e *Engine) send(ctx context.Context, cmd command) (cmdReply, error) {
	cmd.reply = make(chan cmdReply, 1)
	select {
	case e.cmds <- cmd:
	case <-ctx.Done():
		return cmdReply{}, ctx.Err()
	}
	select {
	case reply := <-cmd.reply:
		return reply, nil
	case <-ctx.Done():
		return cmdReply{}, ctx.Err()
	}
}
