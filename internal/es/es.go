// Package es defines the elementary-stream descriptor types shared by the
// matcher, transcode planner, output chain, and cast-proxy gate.
package es

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Category classifies one elementary stream.
type Category int

const (
	Audio Category = iota
	Video
	Subtitle
)

func (c Category) String() string {
	switch c {
	case Audio:
		return "audio"
	case Video:
		return "video"
	case Subtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// VideoFormat snapshots the original video format at Add time.
type VideoFormat struct {
	Width     int
	Height    int
	FrameRate float64
}

// AudioFormat snapshots the original audio format at Add time.
type AudioFormat struct {
	SampleRate int
	Channels   int
}

// Descriptor is one admitted elementary stream: category, codec fourcc, and
// a snapshot of its original format. Fourcc is an opaque 4-character code
// such as "h264", "mp4a", "mp3 ", "VP80".
type Descriptor struct {
	UUID     uuid.UUID
	Category Category
	Fourcc   string
	Video    VideoFormat
	Audio    AudioFormat
}

// Handle is the session-local identity returned by Add; it is distinct from
// the sub-identity the output chain assigns once the stream is admitted.
type Handle uuid.UUID

// NewHandle mints a fresh session-local handle.
func NewHandle() (Handle, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Handle{}, err
	}
	return Handle(id), nil
}

// SubIdentity is the identity a stream is given once admitted into an
// output chain instance. It is only valid for the lifetime of that chain.
type SubIdentity uuid.UUID

func NewSubIdentity() (SubIdentity, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return SubIdentity{}, err
	}
	return SubIdentity(id), nil
}

// Block is one unit of media data flowing through a stream after
// admission, carrying its presentation timestamp and the keyframe flag.
type Block struct {
	Data     []byte
	PTS      time.Duration
	Keyframe bool // BLOCK_FLAG_TYPE_I equivalent
}
