package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tsukumo919/window-mover/internal/config"
	"github.com/tsukumo919/window-mover/internal/platform"
)

// Field names the window metadata attribute a condition inspects.
type Field int

const (
	FieldTitle Field = iota
	FieldProcess
	FieldClass
)

func (f Field) String() string {
	switch f {
	case FieldProcess:
		return "process"
	case FieldClass:
		return "class"
	default:
		return "title"
	}
}

const regexPrefix = "regex:"

// Matcher is a single compiled condition. Literal title/class patterns use
// substring containment; literal process patterns use exact equality; regex
// patterns are compiled once at build time (title/class search anywhere,
// process must match the whole name).
type Matcher struct {
	Field         Field
	Pattern       string
	CaseSensitive bool

	re      *regexp.Regexp // nil for literal matchers
	literal string         // pre-folded for case-insensitive compares
}

func compileCondition(c config.Condition) (Matcher, error) {
	var field Field
	var pattern string
	switch {
	case c.Title != "":
		field, pattern = FieldTitle, c.Title
	case c.Process != "":
		field, pattern = FieldProcess, c.Process
	case c.Class != "":
		field, pattern = FieldClass, c.Class
	default:
		return Matcher{}, fmt.Errorf("condition targets no metadata field")
	}

	m := Matcher{Field: field, Pattern: pattern, CaseSensitive: c.CaseSensitive}

	if strings.HasPrefix(pattern, regexPrefix) {
		expr := strings.TrimPrefix(pattern, regexPrefix)
		if field == FieldProcess {
			// Process names match fully, not as a substring.
			expr = `\A(?:` + expr + `)\z`
		}
		if !c.CaseSensitive {
			expr = `(?i)` + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return Matcher{}, fmt.Errorf("invalid %s pattern %q: %w", field, pattern, err)
		}
		m.re = re
		return m, nil
	}

	m.literal = pattern
	if !c.CaseSensitive {
		m.literal = strings.ToLower(pattern)
	}
	return m, nil
}

// Matches evaluates the condition against a window snapshot.
func (m Matcher) Matches(win platform.Window) bool {
	subject := m.subject(win)

	if m.re != nil {
		if m.Field == FieldProcess && subject == "" {
			return false
		}
		return m.re.MatchString(subject)
	}

	if !m.CaseSensitive {
		subject = strings.ToLower(subject)
	}
	if m.Field == FieldProcess {
		return subject != "" && subject == m.literal
	}
	return strings.Contains(subject, m.literal)
}

func (m Matcher) subject(win platform.Window) string {
	switch m.Field {
	case FieldProcess:
		return win.Process
	case FieldClass:
		return win.Class
	default:
		return win.Title
	}
}

// Logic combines the conditions of a group.
type Logic int

const (
	LogicAnd Logic = iota
	LogicOr
)

func parseLogic(s string) (Logic, error) {
	switch strings.ToUpper(s) {
	case "", "AND":
		return LogicAnd, nil
	case "OR":
		return LogicOr, nil
	default:
		return LogicAnd, fmt.Errorf("unknown logic %q", s)
	}
}

// Group evaluates a list of compiled conditions under AND or OR.
type Group struct {
	Logic    Logic
	Matchers []Matcher
}

func compileGroup(logic string, conditions []config.Condition) (Group, error) {
	l, err := parseLogic(logic)
	if err != nil {
		return Group{}, err
	}
	g := Group{Logic: l, Matchers: make([]Matcher, 0, len(conditions))}
	for i, c := range conditions {
		m, err := compileCondition(c)
		if err != nil {
			return Group{}, fmt.Errorf("condition %d: %w", i+1, err)
		}
		g.Matchers = append(g.Matchers, m)
	}
	return g, nil
}

// Matches evaluates the group with short-circuiting. A group with no
// conditions never matches, for either logic: an accidentally empty ignore
// entry must not swallow every window.
func (g Group) Matches(win platform.Window) bool {
	if len(g.Matchers) == 0 {
		return false
	}
	if g.Logic == LogicOr {
		for _, m := range g.Matchers {
			if m.Matches(win) {
				return true
			}
		}
		return false
	}
	for _, m := range g.Matchers {
		if !m.Matches(win) {
			return false
		}
	}
	return true
}
