package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"webvlc/src/player"
)

func writeConfig(t *testing.T, content string) string {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestLoadConfig(t *testing.T) {
	conf, err := LoadConfig(writeConfig(t, `
bind: ":4000"
surface: mpd
mpd:
  address: 10.0.0.2:6600
player:
  volume: 0.5
  repeat: all
  skip_on_error: true
`))
	if err != nil {
		t.Fatal(err)
	}
	if errs := conf.Validate(); len(errs) > 0 {
		t.Fatalf("Unexpected validation errors: %v", errs)
	}
	if conf.Address != ":4000" || conf.MPD.Network != "tcp" || conf.MPD.Address != "10.0.0.2:6600" {
		t.Fatalf("Unexpected config: %+v", conf)
	}
	if *conf.Player.Volume != 0.5 || conf.Player.Repeat != player.RepeatAll || !conf.Player.SkipOnError {
		t.Fatalf("Unexpected player config: %+v", conf.Player)
	}
	if conf.Player.TimeInterval != time.Second {
		t.Fatalf("Default was not kept: %v", conf.Player.TimeInterval)
	}
}

func TestLoadConfigUnknownField(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "bind: \":3000\"\ncolors: {}\n")); err == nil {
		t.Fatalf("Expected an error for an unknown field")
	}
	if _, err := LoadConfig(writeConfig(t, "player:\n  repeat: twice\n")); err == nil {
		t.Fatalf("Expected an error for an invalid repeat mode")
	}
}

func TestValidate(t *testing.T) {
	conf := defaultConfig()
	conf.Address = ""
	conf.Surface = "vlc"
	volume := 2.0
	conf.Player.Volume = &volume
	conf.Player.TimeInterval = 0
	if errs := conf.Validate(); len(errs) != 4 {
		t.Fatalf("Unexpected validation errors: %v", errs)
	}
}
