package registry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/winscene/internal/store"
)

// Rect describes a window in screen pixels.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Center returns the screen-space center of the rectangle.
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.W)*0.5, float64(r.Y) + float64(r.H)*0.5
}

// WindowRecord is one window's entry in the shared window set.
type WindowRecord struct {
	ID       int  `json:"id"`
	Shape    Rect `json:"shape"`
	Metadata any  `json:"metaData,omitempty"`
}

// PID returns the owning process id recorded in the metadata, if any.
func (w WindowRecord) PID() (int, bool) {
	m, ok := w.Metadata.(map[string]any)
	if !ok {
		return 0, false
	}
	switch v := m["pid"].(type) {
	case float64:
		return int(v), v > 0
	case int:
		return v, v > 0
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil && n > 0
	}
	return 0, false
}

// DecodeWindows parses a stored window set.
func DecodeWindows(raw string) ([]WindowRecord, error) {
	var out []WindowRecord
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse window set: %w", err)
	}
	return out, nil
}

// EncodeWindows serialises a window set for storage. A nil set encodes as [].
func EncodeWindows(wins []WindowRecord) (string, error) {
	if wins == nil {
		wins = []WindowRecord{}
	}
	data, err := json.Marshal(wins)
	if err != nil {
		return "", fmt.Errorf("failed to encode window set: %w", err)
	}
	return string(data), nil
}

// LoadWindows reads the shared window set. A missing or malformed value is an
// empty set; only store failures are returned.
func LoadWindows(st store.Store) ([]WindowRecord, error) {
	raw, ok, err := st.Get(store.KeyWindows)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []WindowRecord{}, nil
	}
	wins, err := DecodeWindows(raw)
	if err != nil || wins == nil {
		return []WindowRecord{}, nil
	}
	return wins, nil
}

// SaveWindows writes the shared window set.
func SaveWindows(st store.Store, wins []WindowRecord) error {
	raw, err := EncodeWindows(wins)
	if err != nil {
		return err
	}
	if err := st.Set(store.KeyWindows, raw); err != nil {
		return fmt.Errorf("failed to persist window set: %w", err)
	}
	return nil
}

// LoadCount reads the monotonic id counter; missing or malformed is 0.
func LoadCount(st store.Store) (int, error) {
	raw, ok, err := st.Get(store.KeyCount)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}

// WindowsChanged reports whether the window set changed between prev and
// next. The comparison is positional: differing lengths, or a differing id at
// any index, count as a change. Other fields are ignored.
func WindowsChanged(prev, next []WindowRecord) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if prev[i].ID != next[i].ID {
			return true
		}
	}
	return false
}
