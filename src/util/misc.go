package util

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	absoluteRootRe = regexp.MustCompile(`^https?://`)
	schemelessRe   = regexp.MustCompile(`^//.`)
)

// DetermineFullURLRoot expands the configured URL root into an absolute URL
// with a trailing slash. Absolute URLs are needed because the media surface
// may live in another process and fetches resources over HTTP.
func DetermineFullURLRoot(root, address string) (string, error) {
	if root == "" {
		root = "/"
	}
	withSlash := func(s string) string {
		if strings.HasSuffix(s, "/") {
			return s
		}
		return s + "/"
	}
	// Handle "http://host:port/"
	if absoluteRootRe.MatchString(root) {
		return withSlash(root), nil
	}
	// Handle "//host:port/"
	if schemelessRe.MatchString(root) {
		// Assume plain HTTP. If you are smart enough to set up HTTPS you are
		// also smart enough to configure the URLRoot.
		return withSlash("http:" + root), nil
	}
	// Handle "/"
	if root == "/" {
		i := strings.LastIndex(address, ":")
		if i < 0 {
			return "", fmt.Errorf("bind address %q has no port", address)
		}
		host, port := address[:i], address[i+1:]
		if host == "" || host == "0.0.0.0" {
			host = "127.0.0.1"
		} else if host == "[::]" {
			host = "[::1]"
		}
		return fmt.Sprintf("http://%s:%s/", host, port), nil
	}
	// Give up
	return "", fmt.Errorf("unsupported URL root format: %q", root)
}

// FormatTime formats a playback position as m:ss, or h:mm:ss for positions of
// an hour or more. Negative durations are shown as 0:00.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
