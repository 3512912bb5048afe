package player

import (
	"context"
	"time"

	"webvlc/src/media"
	"webvlc/src/util"
)

// Source describes a loadable media resource.
type Source struct {
	URL  string
	Name string
	MIME string
	Kind media.Kind
}

// TextTrack is a caption track in WebVTT format.
type TextTrack struct {
	URL      string
	Label    string
	Language string
}

// A Surface is the thing that actually decodes and renders media. The store
// knows nothing about surfaces; the playback engine keeps the two in sync.
//
// Surfaces report what happens to the loaded source through events. Every
// event carries the URL of the source it concerns, so events belonging to a
// source that has since been replaced can be recognized and ignored.
type Surface interface {
	util.Eventer

	// Load binds the surface to a new source, replacing the previous one.
	// Load may block until the source has been accepted by the surface.
	Load(ctx context.Context, src Source) error
	// Unload releases the current source, if any.
	Unload(ctx context.Context) error

	// Play starts playback. ErrPlayRejected is returned if the surface
	// refuses to start.
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, t time.Duration) error

	// Property setters may return ErrUnsupported.
	SetVolume(ctx context.Context, volume float64) error
	SetMuted(ctx context.Context, muted bool) error
	SetRate(ctx context.Context, rate float64) error

	AttachSubtitle(ctx context.Context, track TextTrack) error
	DetachSubtitles(ctx context.Context) error
}

// SurfaceTimeEvent reports the playback position.
type SurfaceTimeEvent struct {
	Source string
	Time   time.Duration
}

// SurfaceDurationEvent reports the length of the source, UnknownDuration if
// it can not be determined.
type SurfaceDurationEvent struct {
	Source   string
	Duration time.Duration
}

type SurfaceBufferedEvent struct {
	Source string
	End    time.Duration
}

// SurfacePlayingEvent is emitted when the surface starts or stops playing.
type SurfacePlayingEvent struct {
	Source  string
	Playing bool
}

// SurfaceEndedEvent is emitted when playback reaches the end of the source.
type SurfaceEndedEvent struct {
	Source string
}

// SurfaceErrorEvent is emitted when the source can not be played. The code is
// one of the Code* constants.
type SurfaceErrorEvent struct {
	Source  string
	Code    int
	Message string
}
