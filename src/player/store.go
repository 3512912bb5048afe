package player

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"webvlc/src/media"
	"webvlc/src/util"
)

// Store holds the player state and is the only thing that mutates it. All
// mutations happen through named actions which are applied one at a time.
// After an action has been applied, one or more events are emitted to notify
// listeners.
type Store struct {
	util.Emitter

	// Held from applying an action until its events have been emitted, so
	// listeners see events in the order the actions were applied.
	commit sync.Mutex
	lock   sync.RWMutex
	state  State
	rand   *rand.Rand
}

// StoreOption customizes a Store created by NewStore.
type StoreOption func(*Store)

// WithRand sets the source of randomness used for shuffle orders.
func WithRand(rnd *rand.Rand) StoreOption {
	return func(store *Store) {
		store.rand = rnd
	}
}

// NewStore creates a store containing the initial state: an empty playlist,
// full volume and repeat and shuffle disabled.
func NewStore(opts ...StoreOption) *Store {
	store := &Store{
		state: initialState(),
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// State returns a snapshot of the current state.
func (store *Store) State() State {
	store.lock.RLock()
	defer store.lock.RUnlock()
	return store.state.clone()
}

// NextIndex is shorthand for NextIndex(store.State(), direction).
func (store *Store) NextIndex(direction int) int {
	store.lock.RLock()
	defer store.lock.RUnlock()
	return NextIndex(store.state, direction)
}

// update applies fn to the state while holding the lock. The events returned
// by fn are emitted after the lock has been released, but before any other
// action is applied. If fn returns an error, the state is restored to what it
// was before.
func (store *Store) update(fn func(state *State) ([]interface{}, error)) error {
	store.commit.Lock()
	defer store.commit.Unlock()

	store.lock.Lock()
	backup := store.state.clone()
	events, err := fn(&store.state)
	if err != nil {
		store.state = backup
		store.lock.Unlock()
		return err
	}
	store.lock.Unlock()

	for _, event := range events {
		store.Emit(event)
	}
	return nil
}

// regenerateShuffle must be called with the lock held.
func (store *Store) regenerateShuffle(state *State) {
	state.ShuffleOrder = shuffleOrder(store.rand, len(state.Playlist))
}

func (store *Store) SetPlaying(playing bool) {
	store.update(func(state *State) ([]interface{}, error) {
		state.Playing = playing
		return []interface{}{PlayStateEvent{Playing: playing}}, nil
	})
}

func (store *Store) TogglePlayback() {
	store.update(func(state *State) ([]interface{}, error) {
		state.Playing = !state.Playing
		return []interface{}{PlayStateEvent{Playing: state.Playing}}, nil
	})
}

// SetVolume clamps the volume to [0, 1]. A volume of exactly zero also mutes
// the player, but a non-zero volume leaves the mute flag alone.
func (store *Store) SetVolume(volume float64) {
	if math.IsNaN(volume) {
		return
	}
	store.update(func(state *State) ([]interface{}, error) {
		state.Volume = math.Max(0, math.Min(1, volume))
		if state.Volume == 0 {
			state.Muted = true
		}
		return []interface{}{VolumeEvent{Volume: state.Volume, Muted: state.Muted}}, nil
	})
}

func (store *Store) SetMuted(muted bool) {
	store.update(func(state *State) ([]interface{}, error) {
		state.Muted = muted
		return []interface{}{VolumeEvent{Volume: state.Volume, Muted: state.Muted}}, nil
	})
}

func (store *Store) ToggleMute() {
	store.update(func(state *State) ([]interface{}, error) {
		state.Muted = !state.Muted
		return []interface{}{VolumeEvent{Volume: state.Volume, Muted: state.Muted}}, nil
	})
}

func (store *Store) SetCurrentTime(t time.Duration) {
	if t < 0 {
		t = 0
	}
	store.update(func(state *State) ([]interface{}, error) {
		state.Time = t
		return []interface{}{TimeEvent{Time: t}}, nil
	})
}

// SetDuration records the length of the current source. Negative values mean
// that the length is not known.
func (store *Store) SetDuration(d time.Duration) {
	if d < 0 {
		d = UnknownDuration
	}
	store.update(func(state *State) ([]interface{}, error) {
		state.Duration = d
		return []interface{}{DurationEvent{Duration: d}}, nil
	})
}

func (store *Store) SetBufferedEnd(t time.Duration) {
	if t < 0 {
		t = 0
	}
	store.update(func(state *State) ([]interface{}, error) {
		state.BufferedEnd = t
		return []interface{}{BufferedEvent{End: t}}, nil
	})
}

// SetPlaybackRate clamps the rate to [MinPlaybackRate, MaxPlaybackRate].
func (store *Store) SetPlaybackRate(rate float64) {
	if math.IsNaN(rate) {
		return
	}
	store.update(func(state *State) ([]interface{}, error) {
		state.PlaybackRate = math.Max(MinPlaybackRate, math.Min(MaxPlaybackRate, rate))
		return []interface{}{RateEvent{Rate: state.PlaybackRate}}, nil
	})
}

func (store *Store) SetRepeatMode(mode RepeatMode) {
	store.update(func(state *State) ([]interface{}, error) {
		state.Repeat = mode
		return []interface{}{ModeEvent{Repeat: state.Repeat, Shuffle: state.Shuffle}}, nil
	})
}

// ToggleRepeat cycles through the repeat modes.
func (store *Store) ToggleRepeat() {
	store.update(func(state *State) ([]interface{}, error) {
		state.Repeat = state.Repeat.Next()
		return []interface{}{ModeEvent{Repeat: state.Repeat, Shuffle: state.Shuffle}}, nil
	})
}

// SetShuffle enables or disables shuffle. Enabling shuffle always draws a
// fresh shuffle order.
func (store *Store) SetShuffle(shuffle bool) {
	store.update(func(state *State) ([]interface{}, error) {
		if shuffle && !state.Shuffle {
			store.regenerateShuffle(state)
		}
		state.Shuffle = shuffle
		return []interface{}{ModeEvent{Repeat: state.Repeat, Shuffle: state.Shuffle}}, nil
	})
}

func (store *Store) ToggleShuffle() {
	store.update(func(state *State) ([]interface{}, error) {
		state.Shuffle = !state.Shuffle
		if state.Shuffle {
			store.regenerateShuffle(state)
		}
		return []interface{}{ModeEvent{Repeat: state.Repeat, Shuffle: state.Shuffle}}, nil
	})
}

func (store *Store) SetSubtitle(sub Subtitle) {
	store.update(func(state *State) ([]interface{}, error) {
		state.Subtitle = &sub
		return []interface{}{SubtitleEvent{URL: sub.URL}}, nil
	})
}

func (store *Store) ClearSubtitle() {
	store.update(func(state *State) ([]interface{}, error) {
		state.Subtitle = nil
		return []interface{}{SubtitleEvent{}}, nil
	})
}

func (store *Store) SetMediaKind(kind media.Kind) {
	store.update(func(state *State) ([]interface{}, error) {
		state.MediaKind = kind
		return []interface{}{MediaKindEvent{Kind: kind}}, nil
	})
}

// SetMediaError records a failure of the surface. A non-nil error also stops
// playback; a nil error clears a previous one.
func (store *Store) SetMediaError(merr *MediaError) {
	store.update(func(state *State) ([]interface{}, error) {
		state.MediaError = merr
		events := []interface{}{ErrorEvent{Error: merr}}
		if merr != nil && state.Playing {
			state.Playing = false
			events = append(events, PlayStateEvent{Playing: false})
		}
		return events, nil
	})
}

func (store *Store) SetFullscreen(fullscreen bool) {
	store.update(func(state *State) ([]interface{}, error) {
		state.Fullscreen = fullscreen
		return []interface{}{DisplayEvent{}}, nil
	})
}

// UpdateVisualization applies fn to the visualization preferences.
func (store *Store) UpdateVisualization(fn func(vis *Visualization)) {
	store.update(func(state *State) ([]interface{}, error) {
		fn(&state.Visualization)
		if state.Visualization.PresetCycleLength < time.Second {
			state.Visualization.PresetCycleLength = time.Second
		}
		return []interface{}{DisplayEvent{}}, nil
	})
}

func (store *Store) ToggleVisualization() {
	store.UpdateVisualization(func(vis *Visualization) { vis.Enabled = !vis.Enabled })
}

func (store *Store) SetPresetName(name string) {
	store.UpdateVisualization(func(vis *Visualization) { vis.PresetName = name })
}

func (store *Store) TogglePresetCycle() {
	store.UpdateVisualization(func(vis *Visualization) { vis.PresetCycle = !vis.PresetCycle })
}

// SetPresetCycleLength sets the time between automatic preset changes. It is
// never shorter than a second.
func (store *Store) SetPresetCycleLength(length time.Duration) {
	store.UpdateVisualization(func(vis *Visualization) { vis.PresetCycleLength = length })
}

func (store *Store) TogglePresetRandom() {
	store.UpdateVisualization(func(vis *Visualization) { vis.PresetRandom = !vis.PresetRandom })
}

func (store *Store) ToggleTrackTitle() {
	store.UpdateVisualization(func(vis *Visualization) { vis.ShowTrackTitle = !vis.ShowTrackTitle })
}

func (store *Store) TogglePresetControls() {
	store.UpdateVisualization(func(vis *Visualization) { vis.ShowPresetControls = !vis.ShowPresetControls })
}

func newEntryID() string {
	return uuid.NewString()
}
