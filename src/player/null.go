package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"webvlc/src/util"
)

// NullSurface is a surface that does not render anything. It keeps track of
// what it has been told to do and lets the caller inject the events a real
// surface would produce. It is used for headless operation and for testing.
type NullSurface struct {
	util.Emitter

	// LoadFunc, if set, is called by Load before the source is accepted. An
	// error aborts the load.
	LoadFunc func(ctx context.Context, src Source) error
	// RejectPlay makes Play fail with ErrPlayRejected.
	RejectPlay bool

	lock     sync.Mutex
	source   Source
	playing  bool
	position time.Duration
	volume   float64
	muted    bool
	rate     float64
	subtitle *TextTrack
	calls    []string
}

// NewNullSurface creates a new surface without a source.
func NewNullSurface() *NullSurface {
	return &NullSurface{volume: 1, rate: 1}
}

func (surf *NullSurface) record(format string, args ...interface{}) {
	surf.calls = append(surf.calls, fmt.Sprintf(format, args...))
}

// Calls returns a log of all operations performed on the surface.
func (surf *NullSurface) Calls() []string {
	surf.lock.Lock()
	defer surf.lock.Unlock()
	return append([]string(nil), surf.calls...)
}

// Source returns the currently loaded source. The URL is empty when nothing
// is loaded.
func (surf *NullSurface) Source() Source {
	surf.lock.Lock()
	defer surf.lock.Unlock()
	return surf.source
}

// Playing reports whether the surface is currently playing.
func (surf *NullSurface) Playing() bool {
	surf.lock.Lock()
	defer surf.lock.Unlock()
	return surf.playing
}

func (surf *NullSurface) Load(ctx context.Context, src Source) error {
	if surf.LoadFunc != nil {
		if err := surf.LoadFunc(ctx, src); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	surf.lock.Lock()
	surf.record("load %s", src.URL)
	surf.source = src
	surf.playing = false
	surf.position = 0
	surf.lock.Unlock()
	log.WithField("url", src.URL).Debug("Null surface loaded source")
	return nil
}

func (surf *NullSurface) Unload(ctx context.Context) error {
	surf.lock.Lock()
	defer surf.lock.Unlock()
	surf.record("unload")
	surf.source = Source{}
	surf.playing = false
	surf.position = 0
	return nil
}

func (surf *NullSurface) Play(ctx context.Context) error {
	surf.lock.Lock()
	surf.record("play")
	if surf.RejectPlay {
		surf.lock.Unlock()
		return ErrPlayRejected
	}
	if surf.source.URL == "" {
		surf.lock.Unlock()
		return fmt.Errorf("no source loaded")
	}
	surf.playing = true
	url := surf.source.URL
	surf.lock.Unlock()
	surf.Emit(SurfacePlayingEvent{Source: url, Playing: true})
	return nil
}

func (surf *NullSurface) Pause(ctx context.Context) error {
	surf.lock.Lock()
	surf.record("pause")
	wasPlaying := surf.playing
	surf.playing = false
	url := surf.source.URL
	surf.lock.Unlock()
	if wasPlaying {
		surf.Emit(SurfacePlayingEvent{Source: url, Playing: false})
	}
	return nil
}

func (surf *NullSurface) Seek(ctx context.Context, t time.Duration) error {
	surf.lock.Lock()
	surf.record("seek %v", t)
	surf.position = t
	url := surf.source.URL
	surf.lock.Unlock()
	surf.Emit(SurfaceTimeEvent{Source: url, Time: t})
	return nil
}

func (surf *NullSurface) SetVolume(ctx context.Context, volume float64) error {
	surf.lock.Lock()
	defer surf.lock.Unlock()
	surf.record("volume %v", volume)
	surf.volume = volume
	return nil
}

func (surf *NullSurface) SetMuted(ctx context.Context, muted bool) error {
	surf.lock.Lock()
	defer surf.lock.Unlock()
	surf.record("muted %v", muted)
	surf.muted = muted
	return nil
}

func (surf *NullSurface) SetRate(ctx context.Context, rate float64) error {
	surf.lock.Lock()
	defer surf.lock.Unlock()
	surf.record("rate %v", rate)
	surf.rate = rate
	return nil
}

func (surf *NullSurface) AttachSubtitle(ctx context.Context, track TextTrack) error {
	surf.lock.Lock()
	defer surf.lock.Unlock()
	surf.record("attach %s", track.URL)
	surf.subtitle = &track
	return nil
}

func (surf *NullSurface) DetachSubtitles(ctx context.Context) error {
	surf.lock.Lock()
	defer surf.lock.Unlock()
	surf.record("detach")
	surf.subtitle = nil
	return nil
}

// Advance moves the playback position of the loaded source forward and
// reports the new position.
func (surf *NullSurface) Advance(d time.Duration) {
	surf.lock.Lock()
	surf.position += d
	url, pos := surf.source.URL, surf.position
	surf.lock.Unlock()
	surf.Emit(SurfaceTimeEvent{Source: url, Time: pos})
}

// Announce reports the duration of the loaded source, as a real surface would
// after reading the metadata.
func (surf *NullSurface) Announce(duration time.Duration) {
	url := surf.Source().URL
	surf.Emit(SurfaceDurationEvent{Source: url, Duration: duration})
	surf.Emit(SurfaceBufferedEvent{Source: url, End: duration})
}

// End simulates the loaded source playing to the end.
func (surf *NullSurface) End() {
	surf.lock.Lock()
	surf.playing = false
	url := surf.source.URL
	surf.lock.Unlock()
	surf.Emit(SurfacePlayingEvent{Source: url, Playing: false})
	surf.Emit(SurfaceEndedEvent{Source: url})
}

// Fail simulates a playback failure of the loaded source.
func (surf *NullSurface) Fail(code int, message string) {
	surf.lock.Lock()
	surf.playing = false
	url := surf.source.URL
	surf.lock.Unlock()
	surf.Emit(SurfaceErrorEvent{Source: url, Code: code, Message: message})
}
