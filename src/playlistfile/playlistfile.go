// Package playlistfile reads and writes M3U and PLS playlists.
package playlistfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"webvlc/src/media"
)

// ErrUnknownFormat is returned for files that are not M3U or PLS playlists.
var ErrUnknownFormat = errors.New("unknown playlist format")

// Entry is a single reference in a playlist file. The path is kept as it was
// written, which may be relative, absolute or even a path on another system.
type Entry struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Base returns the last element of the path, accepting both slashes and
// backslashes as separators.
func (entry Entry) Base() string {
	if i := strings.LastIndexAny(entry.Path, `/\`); i >= 0 {
		return entry.Path[i+1:]
	}
	return entry.Path
}

var m3uTemplate = template.Must(template.New("m3u").Parse(
	`#EXTM3U
{{ range . }}#EXTINF:-1,{{ or .Title "Unknown" }}
{{ .Path }}
{{ end }}`))

// Parse reads a playlist, the format is determined by the filename.
func Parse(filename string, r io.Reader) ([]Entry, error) {
	switch media.Extension(filename) {
	case "m3u", "m3u8":
		return ParseM3U(r)
	case "pls":
		return ParsePLS(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filename)
	}
}

// ParseM3U reads an M3U or M3U8 playlist. An #EXTINF title applies to the path
// on the next line, other directives are ignored.
func ParseM3U(r io.Reader) ([]Entry, error) {
	var entries []Entry
	nextTitle := ""
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		switch {
		case line == "", line == "#EXTM3U":
		case strings.HasPrefix(line, "#EXTINF:"):
			nextTitle = ""
			if i := strings.Index(line, ","); i >= 0 {
				nextTitle = strings.TrimSpace(line[i+1:])
			}
		case strings.HasPrefix(line, "#"):
		default:
			title := nextTitle
			if title == "" {
				title = line
			}
			entries = append(entries, Entry{Path: line, Title: title})
			nextTitle = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read m3u: %w", err)
	}
	return entries, nil
}

var plsLine = regexp.MustCompile(`(?i)^(File|Title)(\d+)=(.+)`)

// ParsePLS reads a PLS playlist. FileN and TitleN keys are collated by N and
// entries are returned ordered by N. Entries without a file are dropped.
func ParsePLS(r io.Reader) ([]Entry, error) {
	byNum := map[int]*Entry{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		match := plsLine.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if match == nil {
			continue
		}
		num, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}
		entry, ok := byNum[num]
		if !ok {
			entry = &Entry{}
			byNum[num] = entry
		}
		value := strings.TrimSpace(match[3])
		if strings.EqualFold(match[1], "file") {
			entry.Path = value
		} else {
			entry.Title = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read pls: %w", err)
	}

	nums := make([]int, 0, len(byNum))
	for num := range byNum {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	entries := make([]Entry, 0, len(nums))
	for _, num := range nums {
		entry := *byNum[num]
		if entry.Path == "" {
			continue
		}
		if entry.Title == "" {
			entry.Title = entry.Path
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// WriteM3U writes an extended M3U playlist.
func WriteM3U(w io.Writer, entries []Entry) error {
	return m3uTemplate.Execute(w, entries)
}
