package mcp

// WindowInfo describes one registered window.
type WindowInfo struct {
	ID     int    `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	PID    int    `json:"pid,omitempty"`
	Title  string `json:"title,omitempty"`
	// Alive is false when the owning process is known to have exited.
	Alive    bool `json:"alive"`
	Metadata any  `json:"metadata,omitempty"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Count   int          `json:"count"`
	Windows []WindowInfo `json:"windows"`
}

// GetWindowInput is the input for the get_window tool.
type GetWindowInput struct {
	ID int `json:"id" jsonschema:"required,Window id as shown by list_windows"`
}

// GetWindowOutput is the output for the get_window tool.
type GetWindowOutput struct {
	Found  bool       `json:"found"`
	Window WindowInfo `json:"window"`
}

// ClearWindowsInput is the input for the clear_windows tool.
type ClearWindowsInput struct {
	Confirm bool `json:"confirm" jsonschema:"required,Must be true. Clearing drops every window record and resets the id counter."`
}

// ClearWindowsOutput is the output for the clear_windows tool.
type ClearWindowsOutput struct {
	Cleared int `json:"cleared"`
}

// PruneWindowsInput is the input for the prune_windows tool.
type PruneWindowsInput struct{}

// PruneWindowsOutput is the output for the prune_windows tool.
type PruneWindowsOutput struct {
	Removed   int `json:"removed"`
	Remaining int `json:"remaining"`
}
