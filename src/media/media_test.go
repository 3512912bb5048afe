package media

import "testing"

func TestClassify(t *testing.T) {
	cases := map[string]Kind{
		"song.mp3":          KindAudio,
		"SONG.FLAC":         KindAudio,
		"movie.mkv":         KindVideo,
		"clip.webm":         KindVideo,
		"dir.v2/movie.mov":  KindVideo,
		"subs.srt":          KindSubtitle,
		"subs.ass":          KindSubtitle,
		"list.m3u8":         KindPlaylist,
		"radio.pls":         KindPlaylist,
		"notes.txt":         KindUnknown,
		"README":            KindUnknown,
		".mp3":              KindUnknown,
		"archive.tar.gz":    KindUnknown,
		"weird.name.opus":   KindAudio,
		"/abs/path/a.3gp":   KindVideo,
		"mixed.Case.M4V":    KindVideo,
		"trailing.dot.":     KindUnknown,
		"no_ext_with_dot/x": KindUnknown,
	}
	for name, expected := range cases {
		if kind := Classify(name); kind != expected {
			t.Errorf("Unexpected kind for %q: %v != %v", name, kind, expected)
		}
	}
}

func TestMimeType(t *testing.T) {
	for _, name := range []string{"a.mov", "a.mkv", "a.avi", "a.m4v"} {
		if MimeType(name) == "" {
			t.Errorf("Ambiguous container %q has no explicit MIME type", name)
		}
	}
	if m := MimeType("a.mov"); m != "video/mp4" {
		t.Errorf("Unexpected MIME type for mov: %q", m)
	}
	if m := MimeType("a.unknown"); m != "" {
		t.Errorf("Unknown extension should yield no MIME type, got %q", m)
	}
}

func TestMediaKind(t *testing.T) {
	if MediaKind("a.srt") != KindUnknown {
		t.Fatalf("Subtitles are not media")
	}
	if MediaKind("a.mp4") != KindVideo || MediaKind("a.mp3") != KindAudio {
		t.Fatalf("Unexpected media kinds")
	}
	if !IsMedia("a.ogg") || IsMedia("a.pls") {
		t.Fatalf("Unexpected IsMedia results")
	}
}
