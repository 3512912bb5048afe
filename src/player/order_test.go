package player

import (
	"math/rand"
	"sort"
	"testing"
)

func linearState(length, current int, repeat RepeatMode) State {
	state := initialState()
	state.Playlist = make([]Entry, length)
	state.CurrentIndex = current
	state.Repeat = repeat
	return state
}

func TestNextIndexLinear(t *testing.T) {
	cases := []struct {
		length, current, direction int
		repeat                     RepeatMode
		expect                     int
	}{
		{length: 3, current: 0, direction: 1, repeat: RepeatOff, expect: 1},
		{length: 3, current: 2, direction: 1, repeat: RepeatOff, expect: -1},
		{length: 3, current: 2, direction: 1, repeat: RepeatAll, expect: 0},
		{length: 3, current: 0, direction: -1, repeat: RepeatOff, expect: 0},
		{length: 3, current: 0, direction: -1, repeat: RepeatAll, expect: 2},
		{length: 3, current: 1, direction: -1, repeat: RepeatOff, expect: 0},
		{length: 3, current: 1, direction: 1, repeat: RepeatOne, expect: 1},
		{length: 3, current: 1, direction: -1, repeat: RepeatOne, expect: 1},
		{length: 0, current: -1, direction: 1, repeat: RepeatAll, expect: -1},
		{length: 0, current: -1, direction: 1, repeat: RepeatOne, expect: -1},
		{length: 1, current: 0, direction: 1, repeat: RepeatOff, expect: -1},
		{length: 1, current: 0, direction: 1, repeat: RepeatAll, expect: 0},
		{length: 3, current: 1, direction: 5, repeat: RepeatOff, expect: 2},
	}
	for _, c := range cases {
		state := linearState(c.length, c.current, c.repeat)
		if next := NextIndex(state, c.direction); next != c.expect {
			t.Fatalf("Unexpected next index for %+v: %v", c, next)
		}
	}
}

func TestNextIndexShuffle(t *testing.T) {
	state := linearState(4, 2, RepeatOff)
	state.Shuffle = true
	state.ShuffleOrder = []int{2, 0, 3, 1}

	if next := NextIndex(state, 1); next != 0 {
		t.Fatalf("Unexpected next index: %v", next)
	}
	state.CurrentIndex = 1
	if next := NextIndex(state, 1); next != -1 {
		t.Fatalf("Unexpected next index at end of order: %v", next)
	}
	state.Repeat = RepeatAll
	if next := NextIndex(state, 1); next != 2 {
		t.Fatalf("Unexpected wrapped index: %v", next)
	}
	state.CurrentIndex = 2
	if next := NextIndex(state, -1); next != 1 {
		t.Fatalf("Unexpected wrapped index going back: %v", next)
	}
	state.Repeat = RepeatOff
	if next := NextIndex(state, -1); next != 2 {
		t.Fatalf("Unexpected clamped index going back: %v", next)
	}
	state.CurrentIndex = 3
	if next := NextIndex(state, -1); next != 0 {
		t.Fatalf("Unexpected previous index: %v", next)
	}
}

func TestNextIndexInRange(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for length := 0; length < 8; length++ {
		for current := -1; current < length; current++ {
			for _, repeat := range []RepeatMode{RepeatOff, RepeatAll, RepeatOne} {
				for _, shuffle := range []bool{false, true} {
					state := linearState(length, current, repeat)
					state.Shuffle = shuffle
					state.ShuffleOrder = shuffleOrder(rnd, length)
					for _, dir := range []int{-1, 1} {
						next := NextIndex(state, dir)
						if next < -1 || next >= length {
							t.Fatalf("Index out of range for %d entries: %v", length, next)
						}
						if length == 0 && next != -1 {
							t.Fatalf("Empty playlist should yield -1, got %v", next)
						}
					}
				}
			}
		}
	}
}

func TestShuffleOrderIsPermutation(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for length := 0; length < 20; length++ {
		order := shuffleOrder(rnd, length)
		if len(order) != length {
			t.Fatalf("Unexpected length: %v != %v", len(order), length)
		}
		sorted := append([]int(nil), order...)
		sort.Ints(sorted)
		for i, v := range sorted {
			if v != i {
				t.Fatalf("Not a permutation: %v", order)
			}
		}
	}
}

func TestRepeatModeCycle(t *testing.T) {
	mode := RepeatOff
	expect := []RepeatMode{RepeatAll, RepeatOne, RepeatOff}
	for _, e := range expect {
		mode = mode.Next()
		if mode != e {
			t.Fatalf("Unexpected repeat mode: %v != %v", mode, e)
		}
	}
	for _, m := range []RepeatMode{RepeatOff, RepeatAll, RepeatOne} {
		parsed, err := ParseRepeatMode(m.String())
		if err != nil {
			t.Fatal(err)
		}
		if parsed != m {
			t.Fatalf("Unexpected parsed mode: %v != %v", parsed, m)
		}
	}
	if _, err := ParseRepeatMode("sometimes"); err == nil {
		t.Fatalf("Expected an error for an invalid mode")
	}
}
