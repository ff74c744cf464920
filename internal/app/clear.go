package app

import (
	"fmt"

	"github.com/1broseidon/winscene/internal/store"
)

// Clear wipes the shared store. Windows that are still open keep drawing
// their last known set until they next write.
func Clear(st store.Store) error {
	if err := st.Clear(); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}
