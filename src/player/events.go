package player

import (
	"time"

	"webvlc/src/media"
)

// Events emitted by the Store. Every event is emitted after the state change
// it describes has been committed. Events of different actions are emitted in
// the order the actions were applied.

// PlaylistEvent is emitted when the contents or order of the playlist change.
type PlaylistEvent struct {
	Length int
}

// CurrentEvent is emitted when the current index changes.
type CurrentEvent struct {
	Index int
}

type PlayStateEvent struct {
	Playing bool
}

type VolumeEvent struct {
	Volume float64
	Muted  bool
}

type TimeEvent struct {
	Time time.Duration
}

type DurationEvent struct {
	Duration time.Duration
}

type BufferedEvent struct {
	End time.Duration
}

type RateEvent struct {
	Rate float64
}

// ModeEvent is emitted when the repeat mode or shuffle flag changes.
type ModeEvent struct {
	Repeat  RepeatMode
	Shuffle bool
}

type SubtitleEvent struct {
	URL string
}

type MediaKindEvent struct {
	Kind media.Kind
}

// ErrorEvent carries a nil Error when a previous error was cleared.
type ErrorEvent struct {
	Error *MediaError
}

// DisplayEvent is emitted for fullscreen and visualization changes.
type DisplayEvent struct{}
