package ports

import (
	"context"

	"github.com/aretw0/guidepost/pkg/domain"
)

// TourController is the surface presentation adapters (HTTP, MCP, terminal) drive.
type TourController interface {
	Snapshot() domain.Snapshot
	Script() *domain.Script

	// Subscribe registers fn to receive snapshots as the tour changes.
	Subscribe(fn func(domain.Snapshot)) CancelFunc

	Start(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	End(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Hold(ctx context.Context) error
	Release(ctx context.Context) error
	ToggleAutopilot(ctx context.Context) error
}

// Command names accepted by Dispatch.
const (
	CommandStart     = "start"
	CommandNext      = "next"
	CommandPrevious  = "previous"
	CommandEnd       = "end"
	CommandPause     = "pause"
	CommandResume    = "resume"
	CommandHold      = "hold"
	CommandRelease   = "release"
	CommandAutopilot = "autopilot"
)

// Commands lists every command name in a stable order.
var Commands = []string{
	CommandStart, CommandNext, CommandPrevious, CommandEnd, CommandPause,
	CommandResume, CommandHold, CommandRelease, CommandAutopilot,
}

// Dispatch runs the named command on tour. Unknown names fail with domain.ErrUnknownCommand.
func Dispatch(ctx context.Context, tour TourController, command string) error {
	switch command {
	case CommandStart:
		return tour.Start(ctx)
	case CommandNext:
		return tour.Next(ctx)
	case CommandPrevious:
		return tour.Previous(ctx)
	case CommandEnd:
		return tour.End(ctx)
	case CommandPause:
		return tour.Pause(ctx)
	case CommandResume:
		return tour.Resume(ctx)
	case CommandHold:
		return tour.Hold(ctx)
	case CommandRelease:
		return tour.Release(ctx)
	case CommandAutopilot:
		return tour.ToggleAutopilot(ctx)
	default:
		return domain.ErrUnknownCommand
	}
}
