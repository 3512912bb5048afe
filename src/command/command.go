package command

import (
	"fmt"
	"strings"
)

// Command names a user intent that is not a plain store action, or combines
// a store action with a surface call.
type Command int

const (
	Invalid Command = iota
	TogglePlay
	Play
	Pause
	Stop
	Next
	Previous
	SeekRelative
	SeekAbsolute
	SeekFraction
	SeekStart
	SeekEnd
	SetVolume
	VolumeUp
	VolumeDown
	ToggleMute
	ToggleRepeat
	ToggleShuffle
	SetRate
	RateUp
	RateDown
	RateReset
	ToggleFullscreen
	ClearPlaylist
	ClearSubtitle
	ToggleVisualization
	TogglePresetCycle
	TogglePresetRandom
	ToggleTrackTitle
	TogglePresetControls
	SetPresetCycleLength
)

var commandNames = map[Command]string{
	TogglePlay:           "toggle-play",
	Play:                 "play",
	Pause:                "pause",
	Stop:                 "stop",
	Next:                 "next",
	Previous:             "previous",
	SeekRelative:         "seek-relative",
	SeekAbsolute:         "seek-absolute",
	SeekFraction:         "seek-fraction",
	SeekStart:            "seek-start",
	SeekEnd:              "seek-end",
	SetVolume:            "volume",
	VolumeUp:             "volume-up",
	VolumeDown:           "volume-down",
	ToggleMute:           "toggle-mute",
	ToggleRepeat:         "toggle-repeat",
	ToggleShuffle:        "toggle-shuffle",
	SetRate:              "rate",
	RateUp:               "rate-up",
	RateDown:             "rate-down",
	RateReset:            "rate-reset",
	ToggleFullscreen:     "toggle-fullscreen",
	ClearPlaylist:        "clear-playlist",
	ClearSubtitle:        "clear-subtitle",
	ToggleVisualization:  "toggle-visualization",
	TogglePresetCycle:    "toggle-preset-cycle",
	TogglePresetRandom:   "toggle-preset-random",
	ToggleTrackTitle:     "toggle-track-title",
	TogglePresetControls: "toggle-preset-controls",
	SetPresetCycleLength: "preset-cycle-length",
}

// ParseCommand looks up a command by its name.
func ParseCommand(name string) (Command, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for cmd, n := range commandNames {
		if n == name {
			return cmd, nil
		}
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

func (cmd Command) String() string {
	if name, ok := commandNames[cmd]; ok {
		return name
	}
	return "invalid"
}

// Names lists the names of all commands.
func Names() []string {
	names := make([]string, 0, len(commandNames))
	for cmd := TogglePlay; cmd <= SetPresetCycleLength; cmd++ {
		names = append(names, cmd.String())
	}
	return names
}
