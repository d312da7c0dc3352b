package viz

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Player presents recorded runs to the user.
type Player interface {
	Play(ctx context.Context, runs ...Run) error
}

// TerminalPlayer replays runs in a full-screen terminal UI.
type TerminalPlayer struct {
	Title    string
	Skeleton Skeleton
	Options  []tea.ProgramOption
}

func (p *TerminalPlayer) Play(ctx context.Context, runs ...Run) error {
	m, err := NewModel(p.Title, p.Skeleton, runs...)
	if err != nil {
		return err
	}
	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, p.Options...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// NopPlayer discards runs; used when no terminal is attached.
type NopPlayer struct{}

func (NopPlayer) Play(context.Context, ...Run) error { return nil }
