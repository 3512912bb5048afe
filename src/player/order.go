package player

import (
	"math/rand"

	"github.com/samber/lo"
)

// NextIndex computes the index that should be played after stepping in the
// specified direction from the current entry. A return value of -1 means that
// playback should stop.
//
// Stepping forward past the end stops unless the playlist repeats, but
// stepping backward past the start clamps to the first entry instead.
func NextIndex(state State, direction int) int {
	length := len(state.Playlist)
	if length == 0 {
		return -1
	}
	if state.Repeat == RepeatOne || direction == 0 {
		return state.CurrentIndex
	}
	if direction > 0 {
		direction = 1
	} else {
		direction = -1
	}

	if state.Shuffle && len(state.ShuffleOrder) == length {
		order := state.ShuffleOrder
		next := lo.IndexOf(order, state.CurrentIndex) + direction
		if next >= len(order) {
			if state.Repeat == RepeatAll {
				return order[0]
			}
			return -1
		}
		if next < 0 {
			if state.Repeat == RepeatAll {
				return order[len(order)-1]
			}
			return order[0]
		}
		return order[next]
	}

	next := state.CurrentIndex + direction
	if next >= length {
		if state.Repeat == RepeatAll {
			return 0
		}
		return -1
	}
	if next < 0 {
		if state.Repeat == RepeatAll {
			return length - 1
		}
		return 0
	}
	return next
}

// shuffleOrder produces a random permutation of [0, length).
func shuffleOrder(rnd *rand.Rand, length int) []int {
	order := make([]int, length)
	for i := range order {
		order[i] = i
	}
	rnd.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
