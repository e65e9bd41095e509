// Package session implements the session orchestrator (C9): the entry
// points (Add, Send, Flush, Del, Close) the outer player depends on, and
// the UpdateOutput rebuild driven by the dirty bit whenever the admitted
// elementary-stream set changes.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/uuid/v5"

	"streamer/internal/chain"
	"streamer/internal/es"
	"streamer/internal/gate"
	"streamer/internal/observability"
	"streamer/internal/pipeline"
	"streamer/internal/profile"
	"streamer/internal/renderer"
	"streamer/internal/transcode"
)

// Config holds everything the session needs that is not supplied
// per-call: device/network identity and the recognized configuration
// options named in the external-interfaces design.
type Config struct {
	DeviceIP          string
	DevicePort        int
	HTTPPort          int
	Video             bool // false: video ES refused at Add
	MuxOverride       string
	MIMEOverride      string
	BaseURL           string
	DeviceURL         string // required; missing -> Open fails
	ConversionQuality transcode.Tier
	ShowPerfWarning   bool
}

// PerfWarningDialog is consulted once, on the first transcoded H.264
// session, when ShowPerfWarning is set. Returning false aborts the update.
type PerfWarningDialog interface {
	Confirm(ctx context.Context) bool
}

// Sink is the capability set the outer player depends on, replacing the
// source's function-pointer dispatch table with an explicit interface.
type Sink interface {
	Add(d es.Descriptor) (es.Handle, error)
	Send(ctx context.Context, h es.Handle, block es.Block) error
	Flush(h es.Handle) error
	Del(ctx context.Context, h es.Handle) error
	Close(ctx context.Context) error
}

var _ Sink = (*Session)(nil)

type streamEntry struct {
	handle es.Handle
	desc   es.Descriptor
}

// Session owns one renderer-casting session's state from Open to Close.
type Session struct {
	cfg     Config
	log     *slog.Logger
	builder pipeline.Builder
	ctrl    *renderer.Controller
	planner *transcode.Planner
	dialog  PerfWarningDialog

	streams   []streamEntry
	esChanged bool

	supported []profile.ProtocolInfo

	chain *chain.Chain
	gate  *gate.Gate

	currentInfo  profile.ProtocolInfo
	transportURI string
	warnedOnce   atomic.Bool
}

// Open validates cfg, acquires the renderer controller, subscribes to
// RenderingControl events, and fetches the renderer's supported protocol
// list. Returns ErrConfigMissing if DeviceURL is empty.
func Open(ctx context.Context, cfg Config, ctrl *renderer.Controller, builder pipeline.Builder, prober transcode.Prober, dialog PerfWarningDialog, logger *slog.Logger) (*Session, error) {
	if cfg.DeviceURL == "" {
		return nil, ErrConfigMissing
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		cfg:     cfg,
		log:     logger,
		builder: builder,
		ctrl:    ctrl,
		planner: transcode.NewPlanner(prober),
		dialog:  dialog,
		gate:    gate.New(0, false, nil),
	}

	if err := ctrl.Subscribe(ctx); err != nil {
		s.log.Warn("open: subscribe failed, continuing without events", "error", err)
	}

	supported, err := ctrl.GetProtocolInfo(ctx)
	if err != nil {
		s.log.Warn("open: GetProtocolInfo failed", "error", err)
	}
	s.supported = supported

	return s, nil
}

// Add admits a new elementary stream. Video streams are refused outright
// when the session is configured audio-only.
func (s *Session) Add(d es.Descriptor) (es.Handle, error) {
	if !s.cfg.Video && d.Category == es.Video {
		return es.Handle{}, ErrStreamRefused
	}

	handle, err := es.NewHandle()
	if err != nil {
		return es.Handle{}, fmt.Errorf("%w: %v", ErrAllocation, err)
	}

	d.UUID = uuid.UUID(handle)
	s.streams = append(s.streams, streamEntry{handle: handle, desc: d})
	s.esChanged = true

	return handle, nil
}

func (s *Session) find(h es.Handle) (int, bool) {
	for i, e := range s.streams {
		if e.handle == h {
			return i, true
		}
	}
	return -1, false
}

// Send calls UpdateOutput, resolves handle to its chain sub-identity, and
// forwards block through the cast-proxy gate into the chain.
func (s *Session) Send(ctx context.Context, h es.Handle, block es.Block) error {
	if err := s.UpdateOutput(ctx); err != nil {
		return err
	}

	idx, ok := s.find(h)
	if !ok || s.chain == nil {
		return nil
	}
	d := s.streams[idx].desc

	sub, ok := s.chain.SubFor(uuid.UUID(h))
	if !ok {
		return nil
	}

	if !s.gate.Forward(d.Category, block) {
		return nil
	}

	if d.Category == es.Audio && s.chain.HasVideo() {
		block.Keyframe = false // only video blocks carry the I-flag into the chain
	}

	if err := s.chain.Send(sub, block); err != nil {
		return fmt.Errorf("forward block: %w", err)
	}

	if err := s.gate.Admit(); err != nil {
		s.log.Warn("gate admit callback failed", "error", err)
		return err
	}

	return nil
}

// Flush forwards a flush to the chain without triggering an update.
func (s *Session) Flush(h es.Handle) error {
	if s.chain == nil {
		return nil
	}
	sub, ok := s.chain.SubFor(uuid.UUID(h))
	if !ok {
		return nil
	}
	return s.chain.Flush(sub)
}

// Del removes the stream; if the output set becomes empty, tears down the
// chain and stops the renderer.
func (s *Session) Del(ctx context.Context, h es.Handle) error {
	idx, ok := s.find(h)
	if !ok {
		return nil
	}
	s.streams = append(s.streams[:idx], s.streams[idx+1:]...)
	s.esChanged = true

	if len(s.streams) == 0 {
		s.tearDownChain()
		if err := s.ctrl.Stop(ctx); err != nil {
			s.log.Warn("stop after last stream removed failed (best-effort)", "error", err)
		}
	}

	return nil
}

// Close tears down any live chain and releases the renderer subscription.
func (s *Session) Close(ctx context.Context) error {
	s.tearDownChain()
	if err := s.ctrl.Stop(ctx); err != nil {
		s.log.Warn("stop on close failed (best-effort)", "error", err)
	}
	s.ctrl.Unsubscribe()
	return nil
}

func (s *Session) tearDownChain() {
	if s.chain == nil {
		return
	}
	if err := s.chain.TearDown(); err != nil {
		s.log.Warn("chain teardown failed", "error", err)
	}
	s.chain = nil
	s.gate.Reset()
	observability.ActiveChains.Dec()
}

func (s *Session) descriptors() []es.Descriptor {
	out := make([]es.Descriptor, 0, len(s.streams))
	for _, e := range s.streams {
		out = append(out, e.desc)
	}
	return out
}
