package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winscene/internal/app"
	"github.com/1broseidon/winscene/internal/registry"
)

func (s *Server) windowInfo(w registry.WindowRecord) WindowInfo {
	info := WindowInfo{
		ID:       w.ID,
		X:        w.Shape.X,
		Y:        w.Shape.Y,
		Width:    w.Shape.W,
		Height:   w.Shape.H,
		Alive:    true,
		Metadata: w.Metadata,
	}
	if pid, ok := w.PID(); ok {
		info.PID = pid
		info.Alive = s.alive(pid)
	}
	if m, ok := w.Metadata.(map[string]any); ok {
		if title, ok := m["title"].(string); ok {
			info.Title = title
		}
	}
	return info
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	wins, err := registry.LoadWindows(s.store)
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	count, err := registry.LoadCount(s.store)
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	out := ListWindowsOutput{Count: count, Windows: make([]WindowInfo, 0, len(wins))}
	for _, w := range wins {
		out.Windows = append(out.Windows, s.windowInfo(w))
	}
	s.logger.Debug("list_windows", "windows", len(out.Windows))
	return nil, out, nil
}

func (s *Server) handleGetWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args GetWindowInput) (*mcpsdk.CallToolResult, GetWindowOutput, error) {
	wins, err := registry.LoadWindows(s.store)
	if err != nil {
		return nil, GetWindowOutput{}, err
	}
	for _, w := range wins {
		if w.ID == args.ID {
			return nil, GetWindowOutput{Found: true, Window: s.windowInfo(w)}, nil
		}
	}
	return nil, GetWindowOutput{}, nil
}

func (s *Server) handleClearWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ClearWindowsInput) (*mcpsdk.CallToolResult, ClearWindowsOutput, error) {
	if !args.Confirm {
		return nil, ClearWindowsOutput{}, fmt.Errorf("clear_windows requires confirm=true")
	}
	wins, err := registry.LoadWindows(s.store)
	if err != nil {
		return nil, ClearWindowsOutput{}, err
	}
	if err := app.Clear(s.store); err != nil {
		return nil, ClearWindowsOutput{}, err
	}
	s.logger.Info("store cleared over mcp", "windows", len(wins))
	return nil, ClearWindowsOutput{Cleared: len(wins)}, nil
}

func (s *Server) handlePruneWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ PruneWindowsInput) (*mcpsdk.CallToolResult, PruneWindowsOutput, error) {
	removed, err := s.reconciler.ReconcileNow()
	if err != nil {
		return nil, PruneWindowsOutput{}, err
	}
	wins, err := registry.LoadWindows(s.store)
	if err != nil {
		return nil, PruneWindowsOutput{}, err
	}
	return nil, PruneWindowsOutput{Removed: removed, Remaining: len(wins)}, nil
}
