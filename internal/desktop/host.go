package desktop

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/1broseidon/winscene/internal/platform"
)

// Host reads placement from the ebiten window. Must be used from the game
// loop.
type Host struct{}

var _ platform.Host = Host{}

func (Host) ScreenPosition() (int, int) {
	return ebiten.WindowPosition()
}

func (Host) ViewportSize() (int, int) {
	return ebiten.WindowSize()
}

func (Host) Visible() bool {
	return !ebiten.IsWindowMinimized()
}
