package player

import (
	"fmt"
	"io"
	"time"

	"webvlc/src/media"
)

// UnknownDuration is reported while the surface has not determined the length
// of the current source.
const UnknownDuration time.Duration = -1

const (
	MinPlaybackRate = 0.25
	MaxPlaybackRate = 4.0
)

// RepeatMode determines what happens at the edges of the playlist.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// ParseRepeatMode is the inverse of RepeatMode.String.
func ParseRepeatMode(str string) (RepeatMode, error) {
	switch str {
	case "off", "":
		return RepeatOff, nil
	case "all":
		return RepeatAll, nil
	case "one":
		return RepeatOne, nil
	default:
		return RepeatOff, fmt.Errorf("invalid repeat mode: %q", str)
	}
}

func (mode RepeatMode) String() string {
	switch mode {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// Next cycles off -> all -> one -> off.
func (mode RepeatMode) Next() RepeatMode {
	return (mode + 1) % 3
}

// MarshalText implements encoding.TextMarshaler.
func (mode RepeatMode) MarshalText() ([]byte, error) {
	return []byte(mode.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (mode *RepeatMode) UnmarshalText(text []byte) error {
	m, err := ParseRepeatMode(string(text))
	if err != nil {
		return err
	}
	*mode = m
	return nil
}

// A SourceHandle provides access to the bytes of a media file. Handles are
// opaque to the store; only the playback engine and the resource server read
// from them.
type SourceHandle interface {
	Name() string
	Size() int64
	// ContentType is the type reported by whoever supplied the file. It may
	// be empty or wrong.
	ContentType() string
	Open() (io.ReadCloser, error)
}

// Entry is a single item in the playlist.
type Entry struct {
	ID     string       `json:"id"`
	Handle SourceHandle `json:"-"`
	Name   string       `json:"name"`
	Size   int64        `json:"size"`
}

// IsPlaceholder reports whether the entry is still waiting for a file to be
// supplied.
func (entry Entry) IsPlaceholder() bool {
	return entry.Handle == nil
}

func (entry Entry) String() string {
	if entry.IsPlaceholder() {
		return fmt.Sprintf("Entry{%q, placeholder}", entry.Name)
	}
	return fmt.Sprintf("Entry{%q, %d bytes}", entry.Name, entry.Size)
}

// Subtitle is a caption track that has already been converted into a form the
// surface understands.
type Subtitle struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Visualization holds the display preferences of the audio visualizer. None
// of these affect playback.
type Visualization struct {
	Enabled            bool          `json:"enabled"`
	PresetName         string        `json:"preset_name"`
	PresetCycle        bool          `json:"preset_cycle"`
	PresetCycleLength  time.Duration `json:"preset_cycle_length"`
	PresetRandom       bool          `json:"preset_random"`
	ShowTrackTitle     bool          `json:"show_track_title"`
	ShowPresetControls bool          `json:"show_preset_controls"`
}

// State is a snapshot of everything the player knows. Snapshots returned by
// the Store are copies and may be freely inspected.
type State struct {
	Playlist     []Entry
	CurrentIndex int
	ShuffleOrder []int
	Repeat       RepeatMode
	Shuffle      bool

	Playing      bool
	Volume       float64
	Muted        bool
	Time         time.Duration
	Duration     time.Duration
	BufferedEnd  time.Duration
	PlaybackRate float64

	Subtitle   *Subtitle
	MediaKind  media.Kind
	MediaError *MediaError
	Fullscreen bool

	Visualization Visualization
}

func initialState() State {
	return State{
		CurrentIndex: -1,
		ShuffleOrder: []int{},
		Volume:       1,
		PlaybackRate: 1,
		Visualization: Visualization{
			Enabled:            true,
			PresetCycle:        true,
			PresetCycleLength:  15 * time.Second,
			PresetRandom:       true,
			ShowTrackTitle:     true,
			ShowPresetControls: true,
		},
	}
}

// Current returns the current entry, if any.
func (state State) Current() (Entry, bool) {
	if state.CurrentIndex < 0 || state.CurrentIndex >= len(state.Playlist) {
		return Entry{}, false
	}
	return state.Playlist[state.CurrentIndex], true
}

func (state State) clone() State {
	c := state
	c.Playlist = append([]Entry(nil), state.Playlist...)
	c.ShuffleOrder = append([]int{}, state.ShuffleOrder...)
	if state.Subtitle != nil {
		sub := *state.Subtitle
		c.Subtitle = &sub
	}
	if state.MediaError != nil {
		merr := *state.MediaError
		c.MediaError = &merr
	}
	return c
}
