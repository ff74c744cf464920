package desktop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/1broseidon/winscene/internal/app"
)

// WindowConfig sets up the desktop window.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
}

// Game adapts a session to ebiten's loop: every Update is one session tick
// and closing the window removes it from the shared set.
type Game struct {
	ctx      context.Context
	session  *app.Session
	renderer *Ebiten
	logger   *slog.Logger
}

var _ ebiten.Game = (*Game)(nil)

// NewGame wraps a session. Cancelling ctx closes the window like the user
// would.
func NewGame(ctx context.Context, s *app.Session, r *Ebiten, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{ctx: ctx, session: s, renderer: r, logger: logger}
}

func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() || g.ctx.Err() != nil {
		if err := g.session.Close(); err != nil {
			g.logger.Warn("failed to leave scene cleanly", "error", err)
		}
		return ebiten.Termination
	}
	return g.session.Tick(time.Now())
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// RunWindow opens the desktop window and runs the session in it. It blocks
// until the window closes.
func RunWindow(ctx context.Context, cfg WindowConfig, s *app.Session, r *Ebiten, logger *slog.Logger) error {
	g := NewGame(ctx, s, r, logger)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil {
		return errors.Join(fmt.Errorf("window loop failed: %w", err), g.session.Close())
	}
	// No-op when Update already handled the close request.
	return g.session.Close()
}
