// Package rules compiles the parsed configuration into matchers that can be
// evaluated against window snapshots on every discovery cycle. Compilation
// happens once per load; a bad pattern fails the whole build so a reload
// never installs a half-working set.
package rules

import (
	"fmt"

	"github.com/tsukumo919/window-mover/internal/config"
	"github.com/tsukumo919/window-mover/internal/layout"
	"github.com/tsukumo919/window-mover/internal/platform"
)

// IgnoreEntry excludes matching windows from rule evaluation.
type IgnoreEntry struct {
	Name string
	When Group
}

// Rule pairs a compiled condition group with a compiled action.
type Rule struct {
	Name   string
	When   Group
	Action Action
}

// OffsetTable holds the per-monitor work-area insets, keyed by the 1-based
// monitor index, with a shared fallback.
type OffsetTable struct {
	Default   layout.Insets
	PerOutput map[int]layout.Insets
}

// For returns the insets for a monitor index (1-based).
func (t OffsetTable) For(monitor int) layout.Insets {
	if in, ok := t.PerOutput[monitor]; ok {
		return in
	}
	return t.Default
}

// Set is an immutable compiled rule set. The engine swaps the whole set on
// reload; nothing in here is mutated after Build returns.
type Set struct {
	Ignores []IgnoreEntry
	Rules   []Rule
	Offsets OffsetTable
}

// Build compiles a validated configuration. Errors name the offending rule
// or ignore entry.
func Build(cfg *config.Config) (*Set, error) {
	set := &Set{
		Ignores: make([]IgnoreEntry, 0, len(cfg.Ignores)),
		Rules:   make([]Rule, 0, len(cfg.Rules)),
		Offsets: buildOffsets(cfg.Global.MonitorOffsets),
	}

	for _, ig := range cfg.Ignores {
		g, err := compileGroup(ig.Logic, ig.Conditions)
		if err != nil {
			return nil, fmt.Errorf("ignore %q: %w", ig.Name, err)
		}
		set.Ignores = append(set.Ignores, IgnoreEntry{Name: ig.Name, When: g})
	}

	for _, r := range cfg.Rules {
		g, err := compileGroup(r.Condition.Logic, r.Condition.Conditions)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		act, err := compileAction(r.Action)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		set.Rules = append(set.Rules, Rule{Name: r.Name, When: g, Action: act})
	}

	return set, nil
}

func buildOffsets(offsets map[string]config.MonitorOffset) OffsetTable {
	t := OffsetTable{PerOutput: make(map[int]layout.Insets)}
	for key, off := range offsets {
		in := layout.Insets{Top: off.Top, Bottom: off.Bottom, Left: off.Left, Right: off.Right}
		if key == "default" {
			t.Default = in
			continue
		}
		var idx int
		if _, err := fmt.Sscanf(key, "monitor_%d", &idx); err == nil && idx > 0 {
			t.PerOutput[idx] = in
		}
	}
	return t
}

// Kind is the outcome of classifying a window.
type Kind int

const (
	// Unmatched windows hit neither the ignore list nor any rule.
	Unmatched Kind = iota
	// Ignored windows matched the ignore list and are never placed.
	Ignored
	// Matched windows selected a rule.
	Matched
)

// Classification reports how a window was classified. Rule is non-nil only
// for Matched; IgnoredBy names the ignore entry only for Ignored.
type Classification struct {
	Kind      Kind
	Rule      *Rule
	IgnoredBy string
}

// Classify runs the ignore list first, then the rules in declaration order.
// The first matching rule wins.
func (s *Set) Classify(win platform.Window) Classification {
	for i := range s.Ignores {
		if s.Ignores[i].When.Matches(win) {
			return Classification{Kind: Ignored, IgnoredBy: s.Ignores[i].Name}
		}
	}
	for i := range s.Rules {
		if s.Rules[i].When.Matches(win) {
			return Classification{Kind: Matched, Rule: &s.Rules[i]}
		}
	}
	return Classification{Kind: Unmatched}
}
