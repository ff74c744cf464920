package daemon

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ProcessAlive probes pid with signal 0. A process owned by another user
// counts as alive.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
