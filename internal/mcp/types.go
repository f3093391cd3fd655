package mcp

// ListSpacesInput is the input for the list_spaces tool.
type ListSpacesInput struct {
	Mask string `json:"mask,omitempty" jsonschema:"Which Spaces to list: current, other, all (default), or a comma separated combination such as current,other"`
}

// ListSpacesOutput is the output for the list_spaces tool.
type ListSpacesOutput struct {
	Mask   string   `json:"mask"`
	Spaces []uint64 `json:"spaces"`
}

// WindowSpaceInput is the input for the window_space tool.
type WindowSpaceInput struct {
	Window uint32 `json:"window" jsonschema:"required,Window server id of the window"`
}

// WindowSpaceOutput is the output for the window_space tool.
type WindowSpaceOutput struct {
	Window uint32 `json:"window"`
	Space  uint64 `json:"space,omitempty"`
	// Exists is false when the window closed; Space is then omitted.
	Exists bool `json:"exists"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	Window uint32 `json:"window" jsonschema:"required,Window server id of the window to move"`
	Space  uint64 `json:"space" jsonschema:"required,Target Space id as returned by list_spaces"`
}

// MoveWindowOutput is the output for the move_window tool.
type MoveWindowOutput struct {
	Window   uint32 `json:"window"`
	Target   uint64 `json:"target"`
	From     uint64 `json:"from,omitempty"`
	Final    uint64 `json:"final,omitempty"`
	Outcome  string `json:"outcome"`
	Attempts int    `json:"attempts"`
	Reason   string `json:"reason,omitempty"`
}

// CheckPermissionsInput is the input for the check_permissions tool.
type CheckPermissionsInput struct {
	Prompt bool `json:"prompt,omitempty" jsonschema:"When true, ask the system to show its accessibility authorization dialog"`
}

// CheckPermissionsOutput is the output for the check_permissions tool.
type CheckPermissionsOutput struct {
	Backend     string `json:"backend"`
	Capability  string `json:"capability"`
	Trusted     bool   `json:"trusted"`
	SettingsURL string `json:"settings_url,omitempty"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowInfo describes one on-screen window.
type WindowInfo struct {
	ID    uint32 `json:"id"`
	PID   int    `json:"pid,omitempty"`
	App   string `json:"app,omitempty"`
	Title string `json:"title,omitempty"`
	Space uint64 `json:"space,omitempty"`
	// Current is true when the window is on a currently visible Space.
	Current bool `json:"current"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}
