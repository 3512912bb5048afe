package player

import (
	"testing"

	"webvlc/src/media"
)

func TestNullSurfaceImplementation(t *testing.T) {
	src := Source{URL: "http://127.0.0.1/blob/x", Name: "x.mp3", MIME: "audio/mpeg", Kind: media.MediaKind("x.mp3")}
	TestSurfaceImplementation(t, NewNullSurface(), src)
}
