// Package media classifies files by their name.
package media

import (
	"path"
	"strings"
)

// Kind is the category of a file as derived from its extension.
type Kind int

const (
	KindUnknown Kind = iota
	KindAudio
	KindVideo
	KindSubtitle
	KindPlaylist
)

func (kind Kind) String() string {
	switch kind {
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	case KindSubtitle:
		return "subtitle"
	case KindPlaylist:
		return "playlist"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (kind Kind) MarshalText() ([]byte, error) {
	return []byte(kind.String()), nil
}

// The extension sets are disjoint. WebM is ambiguous and treated as video.
var (
	audioExtensions = map[string]struct{}{
		"mp3": {}, "wav": {}, "ogg": {}, "flac": {}, "aac": {},
		"m4a": {}, "wma": {}, "opus": {}, "aiff": {},
	}
	videoExtensions = map[string]struct{}{
		"mp4": {}, "webm": {}, "ogv": {}, "mkv": {},
		"avi": {}, "mov": {}, "m4v": {}, "3gp": {},
	}
	subtitleExtensions = map[string]struct{}{
		"srt": {}, "vtt": {}, "sub": {}, "ass": {}, "ssa": {},
	}
	playlistExtensions = map[string]struct{}{
		"m3u": {}, "m3u8": {}, "pls": {},
	}
)

// Containers whose extension is not enough for the decoder to pick a demuxer
// are mapped explicitly.
var mimeTypes = map[string]string{
	"mp4":  "video/mp4",
	"m4v":  "video/mp4",
	"mov":  "video/mp4",
	"webm": "video/webm",
	"ogv":  "video/ogg",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"3gp":  "video/3gpp",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"flac": "audio/flac",
	"aac":  "audio/aac",
	"m4a":  "audio/mp4",
	"wma":  "audio/x-ms-wma",
	"opus": "audio/opus",
	"aiff": "audio/aiff",
	"vtt":  "text/vtt",
	"m3u":  "audio/x-mpegurl",
	"m3u8": "application/vnd.apple.mpegurl",
	"pls":  "audio/x-scpls",
}

// Extension returns the lowercased extension of the filename without the
// leading dot, or an empty string.
func Extension(filename string) string {
	ext := path.Ext(filename)
	if ext == "" || ext == filename {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// Classify determines the category of a file by its extension.
func Classify(filename string) Kind {
	ext := Extension(filename)
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	if _, ok := audioExtensions[ext]; ok {
		return KindAudio
	}
	if _, ok := subtitleExtensions[ext]; ok {
		return KindSubtitle
	}
	if _, ok := playlistExtensions[ext]; ok {
		return KindPlaylist
	}
	return KindUnknown
}

// IsMedia reports whether the file is playable audio or video.
func IsMedia(filename string) bool {
	kind := Classify(filename)
	return kind == KindAudio || kind == KindVideo
}

// MediaKind is like Classify but collapses everything that is not playable
// into KindUnknown.
func MediaKind(filename string) Kind {
	if kind := Classify(filename); kind == KindAudio || kind == KindVideo {
		return kind
	}
	return KindUnknown
}

// MimeType returns the negotiated container type for the file or an empty
// string if the extension is not known.
func MimeType(filename string) string {
	return mimeTypes[Extension(filename)]
}
