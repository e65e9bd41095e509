// Package pipeline defines the abstract contracts for the sub-pipeline
// nodes the output chain drives: the muxer/HTTP sink pair and the encoder
// prober used by the transcode planner. Concrete implementations (a real
// transcoder, muxer, and HTTP server) are external collaborators outside
// this module's scope; this package also provides in-memory fakes used by
// tests and the demo binary.
package pipeline

import (
	"context"

	"streamer/internal/es"
)

// Muxer is the local sub-pipeline instance built from a chain spec string.
// Build failures must leave no partial state; Close must be safe to call
// exactly once.
type Muxer interface {
	// Admit requests a sub-identity for a candidate elementary stream. The
	// muxer may refuse a stream (e.g. unsupported codec), in which case it
	// returns ok=false with no error.
	Admit(d es.Descriptor) (sub es.SubIdentity, ok bool, err error)
	Send(sub es.SubIdentity, block es.Block) error
	Flush(sub es.SubIdentity) error
	Close() error
}

// Builder constructs a new Muxer instance from a chain spec string (the
// textual `[transcode?] → mux → http` specification assembled by the
// output chain).
type Builder interface {
	Build(ctx context.Context, spec string) (Muxer, error)
}
