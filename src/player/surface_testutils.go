package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"webvlc/src/util"
)

// TestSurfaceImplementation tests the implementation of the player.Surface
// interface. The source must point to a playable file of at least a few
// seconds long.
func TestSurfaceImplementation(t *testing.T, surf Surface, src Source) {
	ctx := context.Background()
	if err := surf.Load(ctx, src); err != nil {
		t.Fatal(err)
	}
	defer surf.Unload(ctx)

	t.Run("playing_event", func(t *testing.T) {
		testPlayingEvent(ctx, t, surf, src)
	})
	t.Run("seek_event", func(t *testing.T) {
		testSeekEvent(ctx, t, surf, src)
	})
	t.Run("properties", func(t *testing.T) {
		testProperties(ctx, t, surf)
	})
	t.Run("subtitles", func(t *testing.T) {
		testSubtitles(ctx, t, surf)
	})
}

func testPlayingEvent(ctx context.Context, t *testing.T, surf Surface, src Source) {
	util.TestEventEmission(t, surf, SurfacePlayingEvent{Source: src.URL, Playing: true}, func() {
		if err := surf.Play(ctx); err != nil {
			t.Fatal(err)
		}
	})
	util.TestEventEmission(t, surf, SurfacePlayingEvent{Source: src.URL, Playing: false}, func() {
		if err := surf.Pause(ctx); err != nil {
			t.Fatal(err)
		}
	})
}

func testSeekEvent(ctx context.Context, t *testing.T, surf Surface, src Source) {
	const seekTo = time.Second * 2
	util.TestEventEmission(t, surf, SurfaceTimeEvent{Source: src.URL, Time: seekTo}, func() {
		if err := surf.Seek(ctx, seekTo); err != nil {
			t.Fatal(err)
		}
	})
}

func testProperties(ctx context.Context, t *testing.T, surf Surface) {
	if err := surf.SetVolume(ctx, 0.5); err != nil && !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Unexpected error setting volume: %v", err)
	}
	if err := surf.SetMuted(ctx, true); err != nil && !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Unexpected error setting mute: %v", err)
	}
	if err := surf.SetMuted(ctx, false); err != nil && !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Unexpected error setting mute: %v", err)
	}
	if err := surf.SetRate(ctx, 1.5); err != nil && !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Unexpected error setting rate: %v", err)
	}
}

func testSubtitles(ctx context.Context, t *testing.T, surf Surface) {
	track := TextTrack{URL: "blob/subtitle", Label: "English", Language: "en"}
	if err := surf.AttachSubtitle(ctx, track); err != nil && !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Unexpected error attaching subtitles: %v", err)
	}
	if err := surf.DetachSubtitles(ctx); err != nil && !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Unexpected error detaching subtitles: %v", err)
	}
}
