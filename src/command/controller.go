// Package command implements the user facing controls of the player on top
// of the state store and the media surface.
package command

import (
	"context"
	"errors"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"webvlc/src/player"
	"webvlc/src/resource"
)

var ErrUnknownCommand = errors.New("unknown command")

const (
	volumeStep = 0.05
	rateStep   = 0.25
	// Going to the previous entry restarts the current one instead if
	// playback is further than this.
	restartThreshold = 3 * time.Second
)

// Controller augments the store with commands that need the surface, like
// seeking, or that release resources.
type Controller struct {
	store     *player.Store
	surface   player.Surface
	resources *resource.Server
}

func NewController(store *player.Store, surface player.Surface, resources *resource.Server) *Controller {
	return &Controller{
		store:     store,
		surface:   surface,
		resources: resources,
	}
}

// Do executes a command. The meaning of arg depends on the command: seconds
// for seeking and cycle lengths, a fraction in [0, 1] for SeekFraction and
// the new value for SetVolume and SetRate. Other commands ignore it.
//
// Failures of the media surface are not returned, they are logged or end up
// in the media error of the state.
func (ctl *Controller) Do(ctx context.Context, cmd Command, arg float64) error {
	log.WithField("command", cmd).Debugf("Executing command, arg=%v", arg)
	state := ctl.store.State()

	switch cmd {
	case TogglePlay:
		ctl.store.TogglePlayback()
	case Play:
		ctl.store.SetPlaying(true)
	case Pause:
		ctl.store.SetPlaying(false)
	case Stop:
		if err := ctl.surface.Pause(ctx); err != nil {
			log.Warnf("Could not pause surface: %v", err)
		}
		ctl.seek(ctx, state, 0)
		ctl.store.SetPlaying(false)

	case Next:
		return ctl.step(1)
	case Previous:
		if state.Time > restartThreshold {
			ctl.seek(ctx, state, 0)
			return nil
		}
		return ctl.step(-1)

	case SeekRelative:
		ctl.seek(ctx, state, state.Time+seconds(arg))
	case SeekAbsolute:
		ctl.seek(ctx, state, seconds(arg))
	case SeekFraction:
		if state.Duration <= 0 {
			return nil
		}
		ctl.seek(ctx, state, time.Duration(clamp(arg, 0, 1)*float64(state.Duration)))
	case SeekStart:
		ctl.seek(ctx, state, 0)
	case SeekEnd:
		if state.Duration != player.UnknownDuration {
			ctl.seek(ctx, state, state.Duration)
		}

	case SetVolume:
		ctl.store.SetVolume(arg)
	case VolumeUp:
		ctl.store.SetVolume(math.Min(1, state.Volume+volumeStep))
	case VolumeDown:
		ctl.store.SetVolume(math.Max(0, state.Volume-volumeStep))
	case ToggleMute:
		ctl.store.ToggleMute()

	case ToggleRepeat:
		ctl.store.ToggleRepeat()
	case ToggleShuffle:
		ctl.store.ToggleShuffle()

	case SetRate:
		ctl.store.SetPlaybackRate(arg)
	case RateUp:
		ctl.store.SetPlaybackRate(math.Min(player.MaxPlaybackRate, state.PlaybackRate+rateStep))
	case RateDown:
		ctl.store.SetPlaybackRate(math.Max(player.MinPlaybackRate, state.PlaybackRate-rateStep))
	case RateReset:
		ctl.store.SetPlaybackRate(1)

	case ToggleFullscreen:
		ctl.store.SetFullscreen(!state.Fullscreen)

	case ClearPlaylist:
		ctl.revokeSubtitle(state)
		ctl.store.ClearPlaylist()
	case ClearSubtitle:
		ctl.revokeSubtitle(state)
		ctl.store.ClearSubtitle()

	case ToggleVisualization:
		ctl.store.ToggleVisualization()
	case TogglePresetCycle:
		ctl.store.TogglePresetCycle()
	case TogglePresetRandom:
		ctl.store.TogglePresetRandom()
	case ToggleTrackTitle:
		ctl.store.ToggleTrackTitle()
	case TogglePresetControls:
		ctl.store.TogglePresetControls()
	case SetPresetCycleLength:
		ctl.store.SetPresetCycleLength(seconds(arg))

	default:
		return ErrUnknownCommand
	}
	return nil
}

// step moves to the next or previous entry as determined by the repeat and
// shuffle modes. Nothing happens at the edges of the playlist.
func (ctl *Controller) step(direction int) error {
	index := ctl.store.NextIndex(direction)
	if index < 0 {
		return nil
	}
	return ctl.store.SetCurrentIndex(index)
}

// seek moves the playback position of the current source, clamped to its
// duration if that is known.
func (ctl *Controller) seek(ctx context.Context, state player.State, t time.Duration) {
	entry, ok := state.Current()
	if !ok || entry.IsPlaceholder() {
		return
	}
	if t < 0 {
		t = 0
	}
	if state.Duration != player.UnknownDuration && t > state.Duration {
		t = state.Duration
	}
	if err := ctl.surface.Seek(ctx, t); err != nil {
		log.Warnf("Could not seek to %v: %v", t, err)
		return
	}
	ctl.store.SetCurrentTime(t)
}

func (ctl *Controller) revokeSubtitle(state player.State) {
	if state.Subtitle == nil {
		return
	}
	if err := ctl.resources.Revoke(state.Subtitle.URL); err != nil {
		log.Debugf("Could not revoke subtitle: %v", err)
	}
}

func seconds(secs float64) time.Duration {
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func clamp(v, low, high float64) float64 {
	if math.IsNaN(v) {
		return low
	}
	return math.Max(low, math.Min(high, v))
}
