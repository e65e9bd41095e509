package session

import (
	"context"
	"fmt"

	"streamer/internal/chain"
	"streamer/internal/es"
	"streamer/internal/gate"
	"streamer/internal/match"
	"streamer/internal/observability"
)

// UpdateOutput re-matches capabilities, re-plans transcoding, and rebuilds
// the output chain whenever the admitted ES set has changed. The renderer
// is NOT told to play here; the cast-proxy gate does that when the first
// block passes. On any step failure it tears down any partial chain and
// returns an error; the session remains alive and retries on the next
// ES-set change.
func (s *Session) UpdateOutput(ctx context.Context) error {
	if !s.esChanged {
		return nil
	}
	s.esChanged = false

	streams := s.descriptors()
	if len(streams) == 0 {
		s.tearDownChain()
		return nil
	}

	result := match.Capabilities(streams, s.supported)

	videoDesc, hasVideoInput := firstVideo(streams)
	hd := false
	if hasVideoInput {
		w, h := videoDesc.Video.Width, videoDesc.Video.Height
		hd = w >= 1280 && h >= 720
	}

	plan, err := s.planner.Plan(ctx,
		result.AudioNeedsTrans, result.VideoNeedsTrans,
		result.Info.Profile.AudioFourcc, result.Info.Profile.VideoFourcc,
		s.cfg.ConversionQuality, frameRate(videoDesc), hd)
	if err != nil {
		observability.ChainRebuildsTotal.WithLabelValues("build_failed").Inc()
		s.tearDownChain()
		return fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}

	if plan.Spec != "" && result.VideoNeedsTrans && result.Info.Profile.VideoFourcc == "h264" {
		if s.cfg.ShowPerfWarning && !s.warnedOnce.Load() {
			if s.dialog != nil && !s.dialog.Confirm(ctx) {
				return nil // user cancelled: abort this update, session stays live
			}
			s.warnedOnce.Store(true)
		}
	}

	mux := result.Info.Profile.Mux
	if s.cfg.MuxOverride != "" {
		mux = s.cfg.MuxOverride
	}
	mime := result.Info.Profile.MIME
	if s.cfg.MIMEOverride != "" {
		mime = s.cfg.MIMEOverride
	}
	result.Info.Profile.Mux = mux
	result.Info.Profile.MIME = mime

	spec := chain.SpecFromProfile(s.cfg.HTTPPort, result.Info.Profile, plan.Spec)

	// Tear down the old chain before building the new one: at no instant
	// are two output chains alive.
	s.tearDownChain()

	built, err := chain.Build(ctx, s.builder, spec, streams)
	if err != nil {
		observability.ChainRebuildsTotal.WithLabelValues("refused").Inc()
		return fmt.Errorf("%w: %v", ErrChainBuildFailed, err)
	}
	s.chain = built
	observability.ActiveChains.Inc()
	observability.ChainRebuildsTotal.WithLabelValues("success").Inc()

	total, spu := built.StreamCount()
	s.gate = gate.New(total-spu, built.HasVideo(), s.onFirstAdmit())
	// chain.Build already admitted every surviving candidate synchronously,
	// so the gate's completeness condition is satisfied immediately; there
	// is no separate async admission callback from the HTTP sink to wait on.
	for i := 0; i < total-spu; i++ {
		s.gate.StreamAdmitted()
	}

	localIP, err := resolveLocalAddress()
	if err != nil {
		s.tearDownChain()
		return err
	}

	s.transportURI = fmt.Sprintf("http://%s:%d%s", localIP, s.cfg.HTTPPort, built.RootPath)
	s.currentInfo = result.Info

	return nil
}

// onFirstAdmit returns the gate callback that publishes the URL and starts
// playback exactly once, on the first block admitted into the new chain.
// It reads s.transportURI/s.currentInfo at call time, which by then have
// been set by the UpdateOutput call that created this gate.
func (s *Session) onFirstAdmit() func() error {
	return func() error {
		ctx := context.Background()
		if err := s.ctrl.SetAVTransportURI(ctx, s.transportURI, s.currentInfo); err != nil {
			return err
		}
		return s.ctrl.Play(ctx, "1")
	}
}

func firstVideo(streams []es.Descriptor) (es.Descriptor, bool) {
	for _, d := range streams {
		if d.Category == es.Video {
			return d, true
		}
	}
	return es.Descriptor{}, false
}

func frameRate(d es.Descriptor) float64 {
	return d.Video.FrameRate
}
