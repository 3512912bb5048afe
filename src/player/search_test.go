package player

import (
	"errors"
	"testing"
)

func TestSearch(t *testing.T) {
	playlist := placeholders(
		"01 Intro.mp3",
		"02 Live at the Hall.mkv",
		"03 Live Again.flac",
		"04 outro.mp4",
	)

	results, err := Search(playlist, "live kind:video")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Index != 1 {
		t.Fatalf("Unexpected results: %+v", results)
	}
	if m := results[0].Matches["name"]; len(m) != 1 || m[0] != (SearchMatch{Start: 3, End: 7}) {
		t.Fatalf("Unexpected name matches: %+v", results[0].Matches)
	}

	results, err = Search(playlist, "0*o")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("Unexpected number of results: %v", len(results))
	}

	results, _ = Search(playlist, `live\ at ext:mkv`)
	if len(results) != 1 || results[0].Entry.Name != "02 Live at the Hall.mkv" {
		t.Fatalf("Unexpected results for escaped whitespace: %+v", results)
	}

	results, _ = Search(playlist, "o")
	if len(results) != 2 || results[0].Index != 0 || results[1].Index != 3 {
		t.Fatalf("Results should keep their playlist order: %+v", results)
	}

	results, _ = Search(playlist, "(live)")
	if len(results) != 0 {
		t.Fatalf("Regex control characters should be literal: %+v", results)
	}

	if _, err := Search(playlist, "  "); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("Unexpected error for an empty query: %v", err)
	}
}
