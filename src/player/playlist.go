package player

import (
	"fmt"
)

func (store *Store) assignIDs(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, entry := range entries {
		if entry.ID == "" {
			entry.ID = newEntryID()
		}
		if entry.Handle != nil {
			if entry.Name == "" {
				entry.Name = entry.Handle.Name()
			}
			if entry.Size == 0 {
				entry.Size = entry.Handle.Size()
			}
		}
		out[i] = entry
	}
	return out
}

// SetPlaylist replaces the playlist. The start index must point into the new
// playlist, unless the new playlist is empty.
func (store *Store) SetPlaylist(entries []Entry, start int) error {
	entries = store.assignIDs(entries)
	return store.update(func(state *State) ([]interface{}, error) {
		if len(entries) == 0 {
			start = -1
		} else if start < 0 || start >= len(entries) {
			return nil, fmt.Errorf("%w: start %d of %d", ErrIndexOutOfRange, start, len(entries))
		}
		state.Playlist = entries
		state.CurrentIndex = start
		state.MediaError = nil
		store.regenerateShuffle(state)
		return []interface{}{
			PlaylistEvent{Length: len(entries)},
			CurrentEvent{Index: start},
			ErrorEvent{},
		}, nil
	})
}

// AddToPlaylist first uses the incoming entries to resolve placeholders with
// the same name. Every incoming entry resolves at most one placeholder, the
// remaining incoming entries are appended to the end.
func (store *Store) AddToPlaylist(entries []Entry) {
	entries = store.assignIDs(entries)
	store.update(func(state *State) ([]interface{}, error) {
		used := make([]bool, len(entries))
		playlist := make([]Entry, len(state.Playlist))
		for i, existing := range state.Playlist {
			playlist[i] = existing
			if !existing.IsPlaceholder() {
				continue
			}
			for j, incoming := range entries {
				if used[j] || incoming.IsPlaceholder() || incoming.Name != existing.Name {
					continue
				}
				used[j] = true
				// The placeholder keeps its identity so the position in the
				// shuffle order remains meaningful.
				incoming.ID = existing.ID
				playlist[i] = incoming
				break
			}
		}
		for j, incoming := range entries {
			if !used[j] {
				playlist = append(playlist, incoming)
			}
		}

		state.Playlist = playlist
		events := []interface{}{PlaylistEvent{Length: len(playlist)}}
		if state.CurrentIndex < 0 && len(playlist) > 0 {
			state.CurrentIndex = 0
			events = append(events, CurrentEvent{Index: 0})
		}
		if len(state.ShuffleOrder) != len(playlist) {
			store.regenerateShuffle(state)
		}
		return events, nil
	})
}

// RemoveAt removes a single entry. If the current entry is removed, the entry
// that takes its place becomes current.
func (store *Store) RemoveAt(index int) error {
	return store.update(func(state *State) ([]interface{}, error) {
		if index < 0 || index >= len(state.Playlist) {
			return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(state.Playlist))
		}
		playlist := make([]Entry, 0, len(state.Playlist)-1)
		playlist = append(playlist, state.Playlist[:index]...)
		playlist = append(playlist, state.Playlist[index+1:]...)
		state.Playlist = playlist

		current := state.CurrentIndex
		if index < current {
			current--
		} else if index == current && current >= len(playlist) {
			current = len(playlist) - 1
		}
		if len(playlist) == 0 {
			current = -1
		}
		state.CurrentIndex = current
		store.regenerateShuffle(state)
		return []interface{}{
			PlaylistEvent{Length: len(playlist)},
			CurrentEvent{Index: current},
		}, nil
	})
}

// ClearPlaylist empties the playlist and stops playback. The caller is
// responsible for releasing the resource of any attached subtitle.
func (store *Store) ClearPlaylist() {
	store.update(func(state *State) ([]interface{}, error) {
		state.Playlist = nil
		state.CurrentIndex = -1
		state.ShuffleOrder = []int{}
		state.Playing = false
		state.Subtitle = nil
		return []interface{}{
			PlaylistEvent{Length: 0},
			CurrentEvent{Index: -1},
			PlayStateEvent{Playing: false},
			SubtitleEvent{},
		}, nil
	})
}

// MoveInPlaylist moves the entry at from to position to. The current index is
// updated so it keeps pointing at the same entry.
func (store *Store) MoveInPlaylist(from, to int) error {
	return store.update(func(state *State) ([]interface{}, error) {
		length := len(state.Playlist)
		if from < 0 || from >= length || to < 0 || to >= length {
			return nil, fmt.Errorf("%w: move %d -> %d of %d", ErrIndexOutOfRange, from, to, length)
		}
		if from == to {
			return nil, nil
		}
		entry := state.Playlist[from]
		playlist := make([]Entry, 0, length)
		playlist = append(playlist, state.Playlist[:from]...)
		playlist = append(playlist, state.Playlist[from+1:]...)
		playlist = append(playlist[:to], append([]Entry{entry}, playlist[to:]...)...)
		state.Playlist = playlist

		current := state.CurrentIndex
		switch {
		case current == from:
			current = to
		case from < current && to >= current:
			current--
		case from > current && to <= current:
			current++
		}
		events := []interface{}{PlaylistEvent{Length: length}}
		if current != state.CurrentIndex {
			state.CurrentIndex = current
			events = append(events, CurrentEvent{Index: current})
		}
		return events, nil
	})
}

// SetCurrentIndex jumps to the specified entry. -1 deselects the current entry.
func (store *Store) SetCurrentIndex(index int) error {
	return store.update(func(state *State) ([]interface{}, error) {
		if index < -1 || index >= len(state.Playlist) {
			return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(state.Playlist))
		}
		state.CurrentIndex = index
		state.MediaError = nil
		return []interface{}{CurrentEvent{Index: index}, ErrorEvent{}}, nil
	})
}
