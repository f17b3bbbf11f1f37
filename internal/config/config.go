package config

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsukumo919/window-mover/internal/layout"
)

// MonitorOffset is a set of pixel insets subtracted from a monitor's usable
// work area before anchor and percentage resolution.
type MonitorOffset struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// Global holds the engine-wide options.
type Global struct {
	LogLevel               string                   `yaml:"log_level"`
	ApplyOnStartup         *bool                    `yaml:"apply_on_startup"`
	ApplyOnReload          *bool                    `yaml:"apply_on_reload"`
	ApplyOnResume          *bool                    `yaml:"apply_on_resume"`
	RecheckOnTitleChange   bool                     `yaml:"recheck_on_title_change"`
	PollingIntervalMs      int                      `yaml:"polling_interval"`
	CleanupIntervalSeconds int                      `yaml:"cleanup_interval_seconds"`
	MonitorOffsets         map[string]MonitorOffset `yaml:"monitor_offsets"`
}

// GetApplyOnStartup returns the effective value, defaulting to true.
func (g *Global) GetApplyOnStartup() bool {
	return g.ApplyOnStartup == nil || *g.ApplyOnStartup
}

// GetApplyOnReload returns the effective value, defaulting to true.
func (g *Global) GetApplyOnReload() bool {
	return g.ApplyOnReload == nil || *g.ApplyOnReload
}

// GetApplyOnResume returns the effective value, defaulting to false.
func (g *Global) GetApplyOnResume() bool {
	return g.ApplyOnResume != nil && *g.ApplyOnResume
}

// Condition targets exactly one metadata field of a window. The pattern is a
// literal by default; a "regex:" prefix switches to regular-expression
// matching. Matching is case-insensitive unless CaseSensitive is set.
type Condition struct {
	Title         string `yaml:"title,omitempty"`
	Process       string `yaml:"process,omitempty"`
	Class         string `yaml:"class,omitempty"`
	CaseSensitive bool   `yaml:"case_sensitive,omitempty"`
}

// ConditionGroup combines conditions under AND or OR logic. In YAML it may
// also be written as a bare single condition, which is treated as a
// one-element AND group.
type ConditionGroup struct {
	Logic      string      `yaml:"logic,omitempty"`
	Conditions []Condition `yaml:"conditions"`
}

// UnmarshalYAML accepts either the full group form ({logic, conditions}) or
// a single inline condition. A "logic" or "conditions" key selects the group
// form; anything else decodes as a one-condition AND group.
func (g *ConditionGroup) UnmarshalYAML(node *yaml.Node) error {
	if mappingHasKey(node, "logic") || mappingHasKey(node, "conditions") {
		type plain ConditionGroup
		var full plain
		if err := decodeStrictNode(node, &full); err != nil {
			return err
		}
		*g = ConditionGroup(full)
		return nil
	}

	var single Condition
	if err := decodeStrictNode(node, &single); err != nil {
		return err
	}
	g.Logic = "AND"
	g.Conditions = []Condition{single}
	return nil
}

func mappingHasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Scalar is a YAML value that may be written as an integer or a string
// (e.g. 320, "320px", "50%"). It is kept in string form and parsed into a
// layout.Length when the rule set is compiled.
type Scalar string

// UnmarshalYAML accepts scalar nodes of any primitive type.
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected a scalar value, got %s", node.Tag)
	}
	*s = Scalar(node.Value)
	return nil
}

// IsSet reports whether the scalar was present in the configuration.
func (s Scalar) IsSet() bool { return s != "" }

// ResizeTo specifies a target size. Each axis is independent and optional;
// "w"/"h" are aliases for "width"/"height", with the long names winning
// when both appear.
type ResizeTo struct {
	Width  Scalar `yaml:"width,omitempty"`
	Height Scalar `yaml:"height,omitempty"`
	W      Scalar `yaml:"w,omitempty"`
	H      Scalar `yaml:"h,omitempty"`
}

// EffectiveWidth resolves the width/w alias pair.
func (r *ResizeTo) EffectiveWidth() Scalar {
	if r.Width.IsSet() {
		return r.Width
	}
	return r.W
}

// EffectiveHeight resolves the height/h alias pair.
func (r *ResizeTo) EffectiveHeight() Scalar {
	if r.Height.IsSet() {
		return r.Height
	}
	return r.H
}

// MoveTo is either a named anchor point (scalar form) or explicit
// coordinates (mapping form).
type MoveTo struct {
	AnchorName string
	X, Y       Scalar
	Explicit   bool
}

// UnmarshalYAML decodes the two move_to forms.
func (m *MoveTo) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		m.AnchorName = node.Value
		return nil
	case yaml.MappingNode:
		var coords struct {
			X Scalar `yaml:"x"`
			Y Scalar `yaml:"y"`
		}
		if err := decodeStrictNode(node, &coords); err != nil {
			return err
		}
		m.X, m.Y = coords.X, coords.Y
		m.Explicit = true
		return nil
	default:
		return fmt.Errorf("move_to must be an anchor name or an {x, y} mapping")
	}
}

// Offset is a pixel delta applied after placement.
type Offset struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Action describes what to do with a matched window.
type Action struct {
	Anchor          string    `yaml:"anchor,omitempty"`
	MoveTo          *MoveTo   `yaml:"move_to,omitempty"`
	ResizeTo        *ResizeTo `yaml:"resize_to,omitempty"`
	Offset          *Offset   `yaml:"offset,omitempty"`
	TargetMonitor   int       `yaml:"target_monitor,omitempty"`
	TargetWorkspace int       `yaml:"target_workspace,omitempty"`
	Maximize        string    `yaml:"maximize,omitempty"`
	Minimize        string    `yaml:"minimize,omitempty"`
	ExecutionDelay  int       `yaml:"execution_delay,omitempty"`
}

// Rule pairs a condition group with an action. Rules are evaluated in
// declaration order and the first match wins.
type Rule struct {
	Name      string         `yaml:"name"`
	Condition ConditionGroup `yaml:"condition"`
	Action    Action         `yaml:"action"`
}

// Ignore excludes matching windows from all rule evaluation. The ignore
// list is checked before any rule, top to bottom.
type Ignore struct {
	Name       string      `yaml:"name"`
	Logic      string      `yaml:"logic,omitempty"`
	Conditions []Condition `yaml:"conditions"`
}

// Config is the whole configuration file.
type Config struct {
	Global  Global   `yaml:"global"`
	Ignores []Ignore `yaml:"ignores"`
	Rules   []Rule   `yaml:"rules"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Global: Global{
			LogLevel:               "info",
			PollingIntervalMs:      1000,
			CleanupIntervalSeconds: 300,
			MonitorOffsets:         map[string]MonitorOffset{},
		},
	}
}

// applyDefaults fills zero values after a strict decode.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = "info"
	}
	if c.Global.PollingIntervalMs == 0 {
		c.Global.PollingIntervalMs = 1000
	}
	if c.Global.CleanupIntervalSeconds == 0 {
		c.Global.CleanupIntervalSeconds = 300
	}
	if c.Global.MonitorOffsets == nil {
		c.Global.MonitorOffsets = map[string]MonitorOffset{}
	}
	for i := range c.Ignores {
		if c.Ignores[i].Logic == "" {
			c.Ignores[i].Logic = "OR"
		}
	}
	for i := range c.Rules {
		if c.Rules[i].Condition.Logic == "" {
			c.Rules[i].Condition.Logic = "AND"
		}
	}
}

var monitorOffsetKey = regexp.MustCompile(`^monitor_[1-9]\d*$`)

// Validate performs structural validation of the configuration. Regex
// patterns inside conditions are compiled later, when the rule set is
// built; both failure modes abort a reload the same way.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Global.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "global.log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Global.PollingIntervalMs < 0 {
		return &ValidationError{Path: "global.polling_interval", Err: fmt.Errorf("polling_interval must be >= 0")}
	}
	if c.Global.CleanupIntervalSeconds < 0 {
		return &ValidationError{Path: "global.cleanup_interval_seconds", Err: fmt.Errorf("cleanup_interval_seconds must be >= 0")}
	}
	for key := range c.Global.MonitorOffsets {
		if key != "default" && !monitorOffsetKey.MatchString(key) {
			return &ValidationError{
				Path: "global.monitor_offsets." + key,
				Err:  fmt.Errorf("keys must be %q or %q where N is greater than 0", "default", "monitor_N"),
			}
		}
	}

	for i, ig := range c.Ignores {
		path := fmt.Sprintf("ignores[%d]", i)
		if ig.Name == "" {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("name is required")}
		}
		if err := validateLogic(ig.Logic); err != nil {
			return &ValidationError{Path: path + ".logic", Err: err}
		}
		if len(ig.Conditions) == 0 {
			return &ValidationError{Path: path + ".conditions", Err: fmt.Errorf("at least one condition is required")}
		}
		for j, cond := range ig.Conditions {
			if err := validateCondition(cond); err != nil {
				return &ValidationError{Path: fmt.Sprintf("%s.conditions[%d]", path, j), Err: err}
			}
		}
	}

	for i, r := range c.Rules {
		path := fmt.Sprintf("rules[%d]", i)
		if r.Name == "" {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("name is required")}
		}
		if err := validateLogic(r.Condition.Logic); err != nil {
			return &ValidationError{Path: path + ".condition.logic", Err: err}
		}
		if len(r.Condition.Conditions) == 0 {
			return &ValidationError{Path: path + ".condition.conditions", Err: fmt.Errorf("at least one condition is required")}
		}
		for j, cond := range r.Condition.Conditions {
			if err := validateCondition(cond); err != nil {
				return &ValidationError{Path: fmt.Sprintf("%s.condition.conditions[%d]", path, j), Err: err}
			}
		}
		if err := validateAction(r.Action); err != nil {
			return &ValidationError{Path: path + ".action", Err: err}
		}
	}

	return nil
}

func validateLogic(logic string) error {
	switch strings.ToUpper(logic) {
	case "", "AND", "OR":
		return nil
	default:
		return fmt.Errorf("logic must be AND or OR")
	}
}

func validateCondition(c Condition) error {
	set := 0
	if c.Title != "" {
		set++
	}
	if c.Process != "" {
		set++
	}
	if c.Class != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of title, process or class must be set")
	}
	return nil
}

func validateSwitch(value, field string) error {
	switch strings.ToUpper(value) {
	case "", "ON", "OFF":
		return nil
	default:
		return fmt.Errorf("%s must be ON or OFF", field)
	}
}

func validateAction(a Action) error {
	if a.Anchor != "" && !isAnchorName(a.Anchor) {
		return fmt.Errorf("unknown anchor point %q", a.Anchor)
	}
	if a.MoveTo != nil && !a.MoveTo.Explicit && !isAnchorName(a.MoveTo.AnchorName) {
		return fmt.Errorf("unknown move_to anchor point %q", a.MoveTo.AnchorName)
	}
	if err := validateSwitch(a.Maximize, "maximize"); err != nil {
		return err
	}
	if err := validateSwitch(a.Minimize, "minimize"); err != nil {
		return err
	}
	if strings.ToUpper(a.Maximize) == "ON" && strings.ToUpper(a.Minimize) == "ON" {
		return fmt.Errorf("maximize and minimize cannot both be ON")
	}
	if a.TargetMonitor < 0 {
		return fmt.Errorf("target_monitor must be a 1-based index")
	}
	if a.TargetWorkspace < 0 {
		return fmt.Errorf("target_workspace must be a 1-based index")
	}
	if a.ExecutionDelay < 0 {
		return fmt.Errorf("execution_delay must be >= 0")
	}
	return nil
}

func isAnchorName(name string) bool {
	return layout.IsAnchorName(name)
}
