package mcp

// EmptyInput is used by tools that take no arguments.
type EmptyInput struct{}

// ControlOutput is the output of the pause/resume/reload tools.
type ControlOutput struct {
	Done    bool   `json:"done"`
	Message string `json:"message"`
}

// StatusOutput is the output of the get_status tool.
type StatusOutput struct {
	Paused           bool   `json:"paused"`
	TrackedWindows   int    `json:"tracked_windows"`
	ProcessedWindows int    `json:"processed_windows"`
	Rules            int    `json:"rules"`
	Ignores          int    `json:"ignores"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	ConfigPath       string `json:"config_path"`
}

// WindowsOutput is the output of the describe_windows tool.
type WindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// WindowInfo describes one window as seen by the describe_windows tool.
type WindowInfo struct {
	ID             uint32 `json:"id"`
	Title          string `json:"title"`
	Process        string `json:"process"`
	Class          string `json:"class"`
	Classification string `json:"classification"`
	Rule           string `json:"rule,omitempty"`
	IgnoredBy      string `json:"ignored_by,omitempty"`
}
