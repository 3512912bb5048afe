package mpd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	log "github.com/sirupsen/logrus"

	"webvlc/src/player"
	"webvlc/src/util"
)

// Surface uses an MPD daemon to play sources. MPD fetches the media from the
// resource server over HTTP, so source URLs must be reachable from the host
// MPD runs on.
//
// MPD only renders audio, so subtitles and rate changes are not supported.
type Surface struct {
	util.Emitter

	network, address string
	passwd           string

	// Running the idle routine on the same connection as the main connection
	// will mess things up badly.
	watcher *mpd.Watcher

	lock sync.Mutex
	src  player.Source
	// Volume to restore when unmuting.
	volume float64
	muted  bool
	// Set while we stop MPD ourselves so the transition to the stopped state
	// is not mistaken for the end of a track.
	stopping bool
	last     status

	cancel context.CancelFunc
	done   chan struct{}
}

// Connect creates a surface for the MPD instance at the specified address.
// The interval determines how often the playback position is reported while
// playing.
func Connect(network, address string, mpdPassword *string, interval time.Duration) (*Surface, error) {
	var passwd string
	if mpdPassword != nil {
		passwd = *mpdPassword
	}
	if interval <= 0 {
		interval = time.Second
	}

	watcher, err := mpd.NewWatcher(network, address, passwd, "player", "mixer")
	if err != nil {
		return nil, fmt.Errorf("could not connect to mpd at %s: %w", address, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	surf := &Surface{
		network: network,
		address: address,
		passwd:  passwd,
		watcher: watcher,
		volume:  1,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	err = surf.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		// Play exactly one source at a time.
		if err := mpdc.Consume(false); err != nil {
			return err
		}
		if err := mpdc.Repeat(false); err != nil {
			return err
		}
		return mpdc.Single(true)
	})
	if err != nil {
		watcher.Close()
		cancel()
		return nil, err
	}
	go surf.eventLoop(ctx, interval)
	return surf, nil
}

// Close disconnects from MPD.
func (surf *Surface) Close() error {
	surf.cancel()
	<-surf.done
	return surf.watcher.Close()
}

func (surf *Surface) String() string {
	return fmt.Sprintf("MPD{%s}", surf.address)
}

func (surf *Surface) withMpd(ctx context.Context, fn func(context.Context, *mpd.Client) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client, err := mpd.DialAuthenticated(surf.network, surf.address, surf.passwd)
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(ctx, client)
}

func (surf *Surface) eventLoop(ctx context.Context, interval time.Duration) {
	defer close(surf.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-surf.watcher.Event:
			surf.poll(ctx, false)
		case <-ticker.C:
			surf.poll(ctx, true)
		case err := <-surf.watcher.Error:
			log.Errorf("MPD watcher: %v", err)
		}
	}
}

// poll reads the status of MPD and emits events for everything that changed
// since the last poll.
func (surf *Surface) poll(ctx context.Context, tick bool) {
	var attrs mpd.Attrs
	err := surf.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		var err error
		attrs, err = mpdc.Status()
		if err != nil {
			return err
		}
		if attrs["error"] != "" {
			return mpdc.Command("clearerror").OK()
		}
		return nil
	})
	if err != nil {
		if ctx.Err() == nil {
			log.Errorf("Could not read MPD status: %v", err)
		}
		return
	}

	cur := parseStatus(attrs)
	surf.lock.Lock()
	prev := surf.last
	surf.last = cur
	src := surf.src.URL
	stopping := surf.stopping
	if cur.state == "stop" {
		surf.stopping = false
	}
	surf.lock.Unlock()

	if src == "" {
		return
	}
	for _, event := range statusEvents(prev, cur, src, stopping) {
		surf.Emit(event)
	}
	if tick && cur.state == "play" {
		surf.Emit(player.SurfaceTimeEvent{Source: src, Time: cur.elapsed})
	}
}

func (surf *Surface) Load(ctx context.Context, src player.Source) error {
	surf.lock.Lock()
	surf.stopping = true
	surf.lock.Unlock()
	err := surf.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		if err := mpdc.Clear(); err != nil {
			return err
		}
		return mpdc.Add(src.URL)
	})
	if err != nil {
		return fmt.Errorf("could not load %q: %w", src.Name, err)
	}
	surf.lock.Lock()
	surf.src = src
	surf.last = status{}
	surf.lock.Unlock()
	return nil
}

func (surf *Surface) Unload(ctx context.Context) error {
	surf.lock.Lock()
	surf.stopping = true
	surf.src = player.Source{}
	surf.lock.Unlock()
	return surf.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		if err := mpdc.Stop(); err != nil {
			return err
		}
		return mpdc.Clear()
	})
}

func (surf *Surface) Play(ctx context.Context) error {
	return surf.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		status, err := mpdc.Status()
		if err != nil {
			return err
		}
		if status["playlistlength"] == "0" {
			return fmt.Errorf("%w: nothing loaded", player.ErrPlayRejected)
		}
		if status["state"] == "stop" {
			return mpdc.Play(0)
		}
		return mpdc.Pause(false)
	})
}

func (surf *Surface) Pause(ctx context.Context) error {
	return surf.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		return mpdc.Pause(true)
	})
}

func (surf *Surface) Seek(ctx context.Context, t time.Duration) error {
	err := surf.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		status, err := mpdc.Status()
		if err != nil {
			return err
		}
		if status["state"] == "stop" {
			// MPD can only seek in a started song.
			if err := mpdc.Play(0); err != nil {
				return err
			}
			if err := mpdc.Pause(true); err != nil {
				return err
			}
		}
		return mpdc.SeekCur(t, false)
	})
	if err != nil {
		return err
	}
	surf.lock.Lock()
	src := surf.src.URL
	surf.lock.Unlock()
	surf.Emit(player.SurfaceTimeEvent{Source: src, Time: t})
	return nil
}

func (surf *Surface) SetVolume(ctx context.Context, volume float64) error {
	surf.lock.Lock()
	surf.volume = volume
	muted := surf.muted
	surf.lock.Unlock()
	if muted {
		return nil
	}
	return surf.setVolume(ctx, volume)
}

// SetMuted is emulated by setting the volume to zero since MPD has no notion
// of muting.
func (surf *Surface) SetMuted(ctx context.Context, muted bool) error {
	surf.lock.Lock()
	surf.muted = muted
	volume := surf.volume
	surf.lock.Unlock()
	if muted {
		volume = 0
	}
	return surf.setVolume(ctx, volume)
}

func (surf *Surface) setVolume(ctx context.Context, volume float64) error {
	return surf.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		return mpdc.SetVolume(volumeToMpd(volume))
	})
}

func (surf *Surface) SetRate(ctx context.Context, rate float64) error {
	if rate == 1 {
		return nil
	}
	return player.ErrUnsupported
}

func (surf *Surface) AttachSubtitle(ctx context.Context, track player.TextTrack) error {
	return player.ErrUnsupported
}

func (surf *Surface) DetachSubtitles(ctx context.Context) error {
	return nil
}

type status struct {
	state    string
	elapsed  time.Duration
	duration time.Duration
	err      string
}

func parseStatus(attrs mpd.Attrs) status {
	return status{
		state:    attrs["state"],
		elapsed:  parseSeconds(attrs["elapsed"]),
		duration: parseSeconds(attrs["duration"]),
		err:      attrs["error"],
	}
}

func parseSeconds(str string) time.Duration {
	if str == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// statusEvents determines the events to emit for a status transition.
func statusEvents(prev, cur status, src string, stopping bool) []interface{} {
	var events []interface{}
	if cur.duration != prev.duration && cur.duration > 0 {
		events = append(events,
			player.SurfaceDurationEvent{Source: src, Duration: cur.duration},
			// MPD does not report buffering progress.
			player.SurfaceBufferedEvent{Source: src, End: cur.duration},
		)
	}
	if cur.err != "" {
		return append(events, player.SurfaceErrorEvent{
			Source:  src,
			Code:    errorCode(cur.err),
			Message: cur.err,
		})
	}

	wasPlaying, isPlaying := prev.state == "play", cur.state == "play"
	if wasPlaying != isPlaying && prev.state != "" {
		events = append(events, player.SurfacePlayingEvent{Source: src, Playing: isPlaying})
	} else if prev.state == "" && isPlaying {
		events = append(events, player.SurfacePlayingEvent{Source: src, Playing: true})
	}
	if wasPlaying && cur.state == "stop" && !stopping {
		events = append(events, player.SurfaceEndedEvent{Source: src})
	}
	return events
}

// errorCode makes an educated guess about the kind of failure from the error
// message reported by MPD.
func errorCode(message string) int {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "no decoder"), strings.Contains(msg, "unrecognized"), strings.Contains(msg, "not supported"):
		return player.CodeSourceUnsupported
	case strings.Contains(msg, "http"), strings.Contains(msg, "curl"), strings.Contains(msg, "failed to open"), strings.Contains(msg, "connection"):
		return player.CodeNetwork
	default:
		return player.CodeDecode
	}
}

func volumeToMpd(volume float64) int {
	if volume > 1 {
		volume = 1
	} else if volume < 0 {
		volume = 0
	}
	return int(volume*100 + 0.5)
}
