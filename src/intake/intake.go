// Package intake turns sets of user supplied files into playlist and subtitle
// changes.
package intake

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"webvlc/src/media"
	"webvlc/src/player"
	"webvlc/src/playlistfile"
	"webvlc/src/resource"
	"webvlc/src/subtitle"
)

// Result summarizes what was done with a set of files.
type Result struct {
	Media        int      `json:"media"`
	Placeholders int      `json:"placeholders"`
	Subtitle     string   `json:"subtitle,omitempty"`
	Ignored      []string `json:"ignored,omitempty"`
}

// Intake classifies files and applies them to the store.
type Intake struct {
	store     *player.Store
	resources *resource.Server
}

func New(store *player.Store, resources *resource.Server) *Intake {
	return &Intake{store: store, resources: resources}
}

type classified struct {
	media     []player.SourceHandle
	subtitles []player.SourceHandle
	playlists []player.SourceHandle
	ignored   []string
}

func classify(files []player.SourceHandle) classified {
	var c classified
	for _, file := range files {
		switch media.Classify(file.Name()) {
		case media.KindAudio, media.KindVideo:
			c.media = append(c.media, file)
		case media.KindSubtitle:
			c.subtitles = append(c.subtitles, file)
		case media.KindPlaylist:
			c.playlists = append(c.playlists, file)
		default:
			c.ignored = append(c.ignored, file.Name())
		}
	}
	return c
}

// Open replaces the playlist with the supplied files.
//
// If a playlist file is supplied alongside media, the media are ordered as
// listed in the first playlist file and unlisted media are appended. A
// playlist file on its own produces placeholders which can later be resolved
// with Add. Without a playlist file, media are sorted by name.
//
// The first subtitle file, if any, replaces the current subtitle.
func (in *Intake) Open(ctx context.Context, files []player.SourceHandle) (Result, error) {
	c := classify(files)
	res := Result{Ignored: c.ignored}

	var entries []player.Entry
	switch {
	case len(c.playlists) > 0:
		listing, err := readPlaylist(c.playlists[0])
		if err != nil {
			return res, err
		}
		if len(c.media) > 0 {
			entries = toEntries(orderByPlaylist(listing, c.media))
			res.Media = len(entries)
		} else {
			entries = lo.Map(listing, func(le playlistfile.Entry, _ int) player.Entry {
				return player.Entry{Name: le.Base()}
			})
			res.Placeholders = len(entries)
		}
	case len(c.media) > 0:
		sortNatural(c.media)
		entries = toEntries(c.media)
		res.Media = len(entries)
	}
	if len(entries) > 0 {
		if err := in.store.SetPlaylist(entries, 0); err != nil {
			return res, err
		}
		log.WithFields(log.Fields{
			"media":        res.Media,
			"placeholders": res.Placeholders,
		}).Info("Opened playlist")
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	in.applySubtitle(c.subtitles, &res)
	return res, nil
}

// Add appends the supplied media to the playlist, resolving placeholders of
// the same name. Playlist files are ignored.
func (in *Intake) Add(ctx context.Context, files []player.SourceHandle) (Result, error) {
	c := classify(files)
	res := Result{Ignored: append(c.ignored, lo.Map(c.playlists, func(f player.SourceHandle, _ int) string {
		return f.Name()
	})...)}
	if len(c.media) > 0 {
		sortNatural(c.media)
		in.store.AddToPlaylist(toEntries(c.media))
		res.Media = len(c.media)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	in.applySubtitle(c.subtitles, &res)
	return res, nil
}

// OpenPaths opens files from a filesystem. Directories are searched
// recursively.
func (in *Intake) OpenPaths(ctx context.Context, fs afero.Fs, paths []string) (Result, error) {
	files, err := Collect(fs, paths)
	if err != nil {
		return Result{}, err
	}
	return in.Open(ctx, files)
}

// Collect creates handles for the files at the specified paths, descending
// into directories.
func Collect(fs afero.Fs, paths []string) ([]player.SourceHandle, error) {
	var files []player.SourceHandle
	for _, p := range paths {
		err := afero.Walk(fs, p, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.Mode().IsRegular() {
				files = append(files, FileHandle(fs, path, info))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("could not collect %q: %w", p, err)
		}
	}
	return files, nil
}

// applySubtitle loads the first subtitle file. A subtitle that can not be
// converted does not undo the playlist change, it is reported as ignored.
func (in *Intake) applySubtitle(subtitles []player.SourceHandle, res *Result) {
	if len(subtitles) == 0 {
		return
	}
	name, err := in.loadSubtitle(subtitles[0])
	if err != nil {
		log.Warnf("%v", err)
		res.Ignored = append(res.Ignored, subtitles[0].Name())
		return
	}
	res.Subtitle = name
}

// loadSubtitle converts the file to WebVTT and makes it the current subtitle.
// The resource of the previous subtitle is released.
func (in *Intake) loadSubtitle(file player.SourceHandle) (string, error) {
	r, err := file.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()
	vtt, err := subtitle.ToVTT(file.Name(), r)
	if err != nil {
		return "", fmt.Errorf("could not load subtitle %q: %w", file.Name(), err)
	}
	url, err := in.resources.CreateText(file.Name(), "text/vtt", vtt)
	if err != nil {
		return "", err
	}
	if prev := in.store.State().Subtitle; prev != nil {
		in.resources.Revoke(prev.URL)
	}
	in.store.SetSubtitle(player.Subtitle{URL: url, Name: file.Name()})
	return file.Name(), nil
}

func readPlaylist(file player.SourceHandle) ([]playlistfile.Entry, error) {
	r, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return playlistfile.Parse(file.Name(), r)
}

// orderByPlaylist orders the media as they appear in the listing. Exact name
// matches are assigned first, remaining entries are matched when one name
// contains the other. Media not in the listing are appended in their original
// order.
func orderByPlaylist(listing []playlistfile.Entry, files []player.SourceHandle) []player.SourceHandle {
	used := make([]bool, len(files))
	matched := make([]int, len(listing))
	assign := func(accept func(name, base string) bool) {
		for li, le := range listing {
			if matched[li] >= 0 {
				continue
			}
			base := le.Base()
			for i, file := range files {
				if !used[i] && accept(file.Name(), base) {
					used[i] = true
					matched[li] = i
					break
				}
			}
		}
	}
	for i := range matched {
		matched[i] = -1
	}
	assign(func(name, base string) bool {
		return name == base
	})
	assign(func(name, base string) bool {
		return strings.Contains(name, base) || strings.Contains(base, name)
	})

	ordered := make([]player.SourceHandle, 0, len(files))
	for _, i := range matched {
		if i >= 0 {
			ordered = append(ordered, files[i])
		}
	}
	for i, file := range files {
		if !used[i] {
			ordered = append(ordered, file)
		}
	}
	return ordered
}

// sortNatural sorts by name with numbers compared by value, ignoring case.
func sortNatural(files []player.SourceHandle) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i].Name(), files[j].Name()
		if c := natural.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c < 0
		}
		return a < b
	})
}

func toEntries(files []player.SourceHandle) []player.Entry {
	return lo.Map(files, func(file player.SourceHandle, _ int) player.Entry {
		return player.Entry{Handle: file, Name: file.Name(), Size: file.Size()}
	})
}

type fileHandle struct {
	fs   afero.Fs
	path string
	info os.FileInfo
}

// FileHandle creates a source handle for a file in a filesystem. The file is
// opened every time the handle is read.
func FileHandle(fs afero.Fs, path string, info os.FileInfo) player.SourceHandle {
	return fileHandle{fs: fs, path: path, info: info}
}

func (h fileHandle) Name() string        { return h.info.Name() }
func (h fileHandle) Size() int64         { return h.info.Size() }
func (h fileHandle) ContentType() string { return "" }
func (h fileHandle) Open() (io.ReadCloser, error) {
	return h.fs.Open(h.path)
}
