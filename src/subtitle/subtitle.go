// Package subtitle converts caption files into WebVTT, the only format media
// surfaces are required to understand.
package subtitle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/asticode/go-astisub"
	"github.com/samber/lo"

	"webvlc/src/media"
)

// ErrUnknownDialect is returned for subtitle files that can not be parsed.
var ErrUnknownDialect = errors.New("unknown subtitle dialect")

// A Cue is a piece of text shown between Start and End.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

type Dialect int

const (
	SRT Dialect = iota + 1
	ASS
	VTT
)

func (dialect Dialect) String() string {
	switch dialect {
	case SRT:
		return "srt"
	case ASS:
		return "ass"
	case VTT:
		return "vtt"
	default:
		return "unknown"
	}
}

// DialectOf determines the dialect from the extension of a filename.
func DialectOf(filename string) (Dialect, error) {
	switch media.Extension(filename) {
	case "srt":
		return SRT, nil
	case "ass", "ssa":
		return ASS, nil
	case "vtt":
		return VTT, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, filename)
	}
}

func read(r io.Reader, dialect Dialect) (*astisub.Subtitles, error) {
	switch dialect {
	case SRT:
		return astisub.ReadFromSRT(r)
	case ASS:
		return astisub.ReadFromSSA(r)
	case VTT:
		return astisub.ReadFromWebVTT(r)
	default:
		return nil, ErrUnknownDialect
	}
}

// Parse reads all cues from r. Style overrides are dropped and cues without
// text or that end before they start are skipped.
func Parse(r io.Reader, dialect Dialect) ([]Cue, error) {
	subs, err := read(r, dialect)
	if err != nil {
		return nil, fmt.Errorf("could not parse %v subtitles: %w", dialect, err)
	}
	cues := lo.FilterMap(subs.Items, func(item *astisub.Item, _ int) (Cue, bool) {
		lines := lo.Map(item.Lines, func(line astisub.Line, _ int) string {
			return strings.TrimSpace(line.String())
		})
		text := strings.TrimSpace(strings.Join(lines, "\n"))
		cue := Cue{Start: item.StartAt, End: item.EndAt, Text: text}
		return cue, text != "" && cue.End >= cue.Start
	})
	return cues, nil
}

// ToVTT converts the subtitle file with the specified name into WebVTT.
func ToVTT(filename string, r io.Reader) ([]byte, error) {
	dialect, err := DialectOf(filename)
	if err != nil {
		return nil, err
	}
	cues, err := Parse(r, dialect)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteVTT(&buf, cues); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteVTT writes the cues as a WebVTT document. An empty list of cues yields
// just the header.
func WriteVTT(w io.Writer, cues []Cue) error {
	if len(cues) == 0 {
		_, err := io.WriteString(w, "WEBVTT\n")
		return err
	}
	subs := astisub.NewSubtitles()
	for _, cue := range cues {
		item := &astisub.Item{StartAt: cue.Start, EndAt: cue.End}
		for _, line := range strings.Split(cue.Text, "\n") {
			item.Lines = append(item.Lines, astisub.Line{Items: []astisub.LineItem{{Text: line}}})
		}
		subs.Items = append(subs.Items, item)
	}
	return subs.WriteToWebVTT(w)
}
