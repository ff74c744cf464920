package app

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RunHeadless ticks the session hz times per second until ctx is done, then
// closes it.
func RunHeadless(ctx context.Context, s *Session, hz int) error {
	if hz <= 0 {
		return fmt.Errorf("hz must be > 0")
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.Close()
		case now := <-ticker.C:
			if err := s.Tick(now); err != nil {
				return errors.Join(err, s.Close())
			}
		}
	}
}
