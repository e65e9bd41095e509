// Package chain implements the output chain (C7): building and tearing
// down the local [transcode?] -> mux -> http sub-pipeline, and tracking
// per-ES sub-identities.
package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"streamer/internal/es"
	"streamer/internal/pipeline"
	"streamer/internal/profile"
)

// Spec describes everything needed to assemble the chain spec string and
// build the sub-pipeline.
type Spec struct {
	HTTPPort      int
	TranscodeSpec string // "" when no transcode is needed
	Mux           string
	MIME          string
}

// Chain owns one output-chain instance: the built Muxer, its root path,
// and the set of admitted sub-identities.
type Chain struct {
	muxer    pipeline.Muxer
	RootPath string
	subs     map[uuid.UUID]es.SubIdentity // keyed by the ES's Handle-derived uuid
	hasVideo bool
	spuCount int
}

// NewRootPath mints a fresh, never-reused HTTP path, derived as
// /dlna/<tick>/<rand>/stream.mp4, so successive chain builds never collide.
func NewRootPath() (string, error) {
	tick := time.Now().UnixMicro()
	rnd, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate root path: %w", err)
	}
	return fmt.Sprintf("/dlna/%d/%s/stream.mp4", tick, rnd.String()), nil
}

// BuildSpecString assembles the textual chain specification consumed by
// the mux/http sub-pipeline builder.
func BuildSpecString(s Spec, rootPath string) string {
	base := fmt.Sprintf("cast-proxy:http{dst=:%d%s,mux=%s,access=http{mime=%s}}",
		s.HTTPPort, rootPath, s.Mux, s.MIME)
	if s.TranscodeSpec == "" {
		return base
	}
	return s.TranscodeSpec + ":" + base
}

// Build constructs a new chain instance via builder, then admits each
// candidate ES in turn, dropping any the muxer refuses. If construction
// fails, or the surviving admitted set is empty, Build tears down whatever
// it created and returns an error.
func Build(ctx context.Context, builder pipeline.Builder, spec Spec, candidates []es.Descriptor) (*Chain, error) {
	rootPath, err := NewRootPath()
	if err != nil {
		return nil, err
	}

	specStr := BuildSpecString(spec, rootPath)

	muxer, err := builder.Build(ctx, specStr)
	if err != nil {
		return nil, fmt.Errorf("build output chain: %w", err)
	}

	c := &Chain{
		muxer:    muxer,
		RootPath: rootPath,
		subs:     make(map[uuid.UUID]es.SubIdentity),
	}

	for _, d := range candidates {
		sub, ok, err := muxer.Admit(d)
		if err != nil {
			c.tearDown()
			return nil, fmt.Errorf("admit %s stream %s: %w", d.Category, d.Fourcc, err)
		}
		if !ok {
			// refused: log at the orchestrator layer, which has the logger
			continue
		}
		c.subs[d.UUID] = sub
		if d.Category == es.Video {
			c.hasVideo = true
		}
		if d.Category == es.Subtitle {
			c.spuCount++
		}
	}

	if len(c.subs) == 0 {
		c.tearDown()
		return nil, fmt.Errorf("output chain refused all declared elementary streams")
	}

	return c, nil
}

// SubFor resolves an ES's input-side identity to its chain sub-identity.
func (c *Chain) SubFor(id uuid.UUID) (es.SubIdentity, bool) {
	sub, ok := c.subs[id]
	return sub, ok
}

// Send forwards a block on the resolved sub-identity.
func (c *Chain) Send(sub es.SubIdentity, block es.Block) error {
	return c.muxer.Send(sub, block)
}

// Flush forwards a flush on the resolved sub-identity.
func (c *Chain) Flush(sub es.SubIdentity) error {
	return c.muxer.Flush(sub)
}

// StreamCount returns the total number of admitted streams and how many of
// them are subtitles; total-spu is the cast-proxy gate's completeness target.
func (c *Chain) StreamCount() (total, spu int) {
	return len(c.subs), c.spuCount
}

// HasVideo reports whether a video ES was admitted into this chain.
func (c *Chain) HasVideo() bool {
	return c.hasVideo
}

// TearDown destroys the chain instance; it must be called before any
// rebuild and on session close. Safe to call on an already-torn-down chain.
func (c *Chain) TearDown() error {
	return c.tearDown()
}

func (c *Chain) tearDown() error {
	if c.muxer == nil {
		return nil
	}
	err := c.muxer.Close()
	c.muxer = nil
	c.subs = nil
	return err
}

// SpecFromProfile is a small helper kept close to Spec construction so
// callers building a Spec from a matched profile.Profile don't repeat the
// field mapping.
func SpecFromProfile(httpPort int, p profile.Profile, transcodeSpec string) Spec {
	return Spec{
		HTTPPort:      httpPort,
		TranscodeSpec: transcodeSpec,
		Mux:           p.Mux,
		MIME:          p.MIME,
	}
}
