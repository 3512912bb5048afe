package player

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned by store actions that reference a
	// playlist position that does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrPlayRejected is returned by surfaces that refuse to start playback,
	// for example because of an autoplay policy. It is never a media error.
	ErrPlayRejected = errors.New("playback start rejected")

	// ErrUnsupported is returned by surfaces for operations they can not
	// perform, such as changing the playback rate.
	ErrUnsupported = errors.New("not supported by surface")
)

// Codes reported by surfaces in SurfaceErrorEvent.
const (
	CodeAborted           = 1
	CodeNetwork           = 2
	CodeDecode            = 3
	CodeSourceUnsupported = 4
)

// ErrorKind is the closed set of failures a media surface can report.
type ErrorKind int

const (
	ErrorAborted ErrorKind = iota + 1
	ErrorNetworkFailure
	ErrorDecodeFailure
	ErrorUnsupportedSource
)

func (kind ErrorKind) String() string {
	switch kind {
	case ErrorAborted:
		return "Aborted"
	case ErrorNetworkFailure:
		return "NetworkFailure"
	case ErrorDecodeFailure:
		return "DecodeFailure"
	case ErrorUnsupportedSource:
		return "UnsupportedSource"
	default:
		return "Invalid"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (kind ErrorKind) MarshalText() ([]byte, error) {
	return []byte(kind.String()), nil
}

func (kind ErrorKind) description() string {
	switch kind {
	case ErrorAborted:
		return "Playback was aborted"
	case ErrorNetworkFailure:
		return "The media could not be fetched"
	case ErrorUnsupportedSource:
		return "The media format is not supported"
	default:
		return "The media could not be decoded"
	}
}

// MediaError describes a failure of the media surface. It is stored in the
// player state for display and does not stop the rest of the player.
type MediaError struct {
	Kind    ErrorKind `json:"kind"`
	Code    int       `json:"code"`
	Message string    `json:"message"`
}

func (err *MediaError) Error() string {
	return fmt.Sprintf("%v (code %d): %s", err.Kind, err.Code, err.Message)
}

// ErrorFromCode maps a surface error code onto an ErrorKind. Unknown codes are
// treated as decode failures.
func ErrorFromCode(code int, message string) *MediaError {
	var kind ErrorKind
	switch code {
	case CodeAborted:
		kind = ErrorAborted
	case CodeNetwork:
		kind = ErrorNetworkFailure
	case CodeSourceUnsupported:
		kind = ErrorUnsupportedSource
	default:
		kind = ErrorDecodeFailure
	}
	if message == "" {
		message = kind.description()
	}
	return &MediaError{Kind: kind, Code: code, Message: message}
}
