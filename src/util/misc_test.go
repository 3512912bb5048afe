package util

import (
	"testing"
	"time"
)

func TestDetermineFullURLRoot(t *testing.T) {
	cases := []struct {
		root, address, expected string
	}{
		{"/", ":3000", "http://127.0.0.1:3000/"},
		{"", "0.0.0.0:80", "http://127.0.0.1:80/"},
		{"/", "[::]:3000", "http://[::1]:3000/"},
		{"//media.local:3000", ":3000", "http://media.local:3000/"},
		{"https://player.example/", ":3000", "https://player.example/"},
	}
	for _, c := range cases {
		root, err := DetermineFullURLRoot(c.root, c.address)
		if err != nil {
			t.Fatal(err)
		}
		if root != c.expected {
			t.Fatalf("Unexpected root for %q: %q != %q", c.root, root, c.expected)
		}
	}

	if _, err := DetermineFullURLRoot("relative/path", ":3000"); err == nil {
		t.Fatalf("Expected an error for a relative root")
	}
}

func TestFormatTime(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                   "0:00",
		-time.Second:                        "0:00",
		time.Second * 5:                     "0:05",
		time.Minute*3 + time.Second*7:       "3:07",
		time.Hour + time.Minute*2 + 3500e6:  "1:02:03",
		time.Hour*12 + time.Millisecond*999: "12:00:00",
	}
	for d, expected := range cases {
		if str := FormatTime(d); str != expected {
			t.Fatalf("Unexpected format for %v: %q != %q", d, str, expected)
		}
	}
}
