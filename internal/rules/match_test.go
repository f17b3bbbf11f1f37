package rules

import (
	"testing"

	"github.com/tsukumo919/window-mover/internal/config"
	"github.com/tsukumo919/window-mover/internal/platform"
)

func win(title, process, class string) platform.Window {
	return platform.Window{ID: 1, Title: title, Process: process, Class: class}
}

func TestMatcherLiteral(t *testing.T) {
	tests := []struct {
		name string
		cond config.Condition
		win  platform.Window
		want bool
	}{
		{
			name: "title substring",
			cond: config.Condition{Title: "Notepad"},
			win:  win("readme.txt - Notepad", "", ""),
			want: true,
		},
		{
			name: "title substring case folded",
			cond: config.Condition{Title: "notepad"},
			win:  win("readme.txt - NOTEPAD", "", ""),
			want: true,
		},
		{
			name: "title case sensitive miss",
			cond: config.Condition{Title: "notepad", CaseSensitive: true},
			win:  win("readme.txt - Notepad", "", ""),
			want: false,
		},
		{
			name: "process exact match",
			cond: config.Condition{Process: "firefox"},
			win:  win("", "firefox", ""),
			want: true,
		},
		{
			name: "process is not substring matched",
			cond: config.Condition{Process: "fire"},
			win:  win("", "firefox", ""),
			want: false,
		},
		{
			name: "process empty never matches",
			cond: config.Condition{Process: "firefox"},
			win:  win("", "", ""),
			want: false,
		},
		{
			name: "class substring",
			cond: config.Condition{Class: "terminal"},
			win:  win("", "", "org.gnome.Terminal"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := compileCondition(tt.cond)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if got := m.Matches(tt.win); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatcherRegex(t *testing.T) {
	tests := []struct {
		name string
		cond config.Condition
		win  platform.Window
		want bool
	}{
		{
			name: "title regex searches anywhere",
			cond: config.Condition{Title: `regex:\.txt - Notepad$`},
			win:  win("readme.txt - Notepad", "", ""),
			want: true,
		},
		{
			name: "title regex case insensitive by default",
			cond: config.Condition{Title: "regex:notepad"},
			win:  win("README - NOTEPAD", "", ""),
			want: true,
		},
		{
			name: "title regex case sensitive",
			cond: config.Condition{Title: "regex:notepad", CaseSensitive: true},
			win:  win("README - NOTEPAD", "", ""),
			want: false,
		},
		{
			name: "process regex must match whole name",
			cond: config.Condition{Process: "regex:fire"},
			win:  win("", "firefox", ""),
			want: false,
		},
		{
			name: "process regex full match",
			cond: config.Condition{Process: "regex:fire.*"},
			win:  win("", "firefox", ""),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := compileCondition(tt.cond)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if got := m.Matches(tt.win); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompileConditionErrors(t *testing.T) {
	if _, err := compileCondition(config.Condition{}); err == nil {
		t.Error("expected error for condition with no field")
	}
	if _, err := compileCondition(config.Condition{Title: "regex:["}); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestGroupLogic(t *testing.T) {
	and, err := compileGroup("AND", []config.Condition{
		{Title: "Notepad"},
		{Process: "notepad"},
	})
	if err != nil {
		t.Fatalf("compile AND group: %v", err)
	}
	if !and.Matches(win("readme - Notepad", "notepad", "")) {
		t.Error("AND group should match when all conditions hold")
	}
	if and.Matches(win("readme - Notepad", "gedit", "")) {
		t.Error("AND group should not match when one condition fails")
	}

	or, err := compileGroup("or", []config.Condition{
		{Title: "Notepad"},
		{Process: "gedit"},
	})
	if err != nil {
		t.Fatalf("compile OR group: %v", err)
	}
	if !or.Matches(win("scratch", "gedit", "")) {
		t.Error("OR group should match on any condition")
	}
	if or.Matches(win("scratch", "vim", "")) {
		t.Error("OR group should not match when no condition holds")
	}

	if _, err := compileGroup("XOR", nil); err == nil {
		t.Error("expected error for unknown logic")
	}
}

func TestEmptyGroupMatchesNothing(t *testing.T) {
	for _, logic := range []string{"AND", "OR"} {
		g, err := compileGroup(logic, nil)
		if err != nil {
			t.Fatalf("compile empty %s group: %v", logic, err)
		}
		if g.Matches(win("anything", "any", "any")) {
			t.Errorf("empty %s group must not match", logic)
		}
	}
}
