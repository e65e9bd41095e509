// Package gate implements the cast-proxy admission gate (C8): it defers
// forwarding blocks into the output chain's HTTP sink until every declared
// non-subtitle stream has been opened and a video keyframe is available.
package gate

import (
	"time"

	"streamer/internal/es"
	"streamer/internal/observability"
)

// State is the gate's admission state machine.
type State int

const (
	Idle State = iota
	WaitingStreams
	WaitingKeyframe
	Streaming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case WaitingStreams:
		return "waiting-streams"
	case WaitingKeyframe:
		return "waiting-keyframe"
	case Streaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Gate tracks admission state for one output chain instance.
type Gate struct {
	state                 State
	hasVideo              bool
	streamsAdded          int
	streamsExpected       int // total - spu
	firstVideoKeyframePTS *time.Duration
	onFirstAdmit          func() error // SetAVTransportURI + Play, called exactly once
	ccHasInput            bool
}

// New creates a gate for a chain expecting streamsExpected non-subtitle
// streams; onFirstAdmit is called exactly once, on the first block that
// passes both gating checks and is successfully sent.
func New(streamsExpected int, hasVideo bool, onFirstAdmit func() error) *Gate {
	state := WaitingStreams
	if streamsExpected == 0 {
		state = Idle
	}
	return &Gate{
		state:           state,
		hasVideo:        hasVideo,
		streamsExpected: streamsExpected,
		onFirstAdmit:    onFirstAdmit,
	}
}

// StreamAdmitted notifies the gate that one more non-subtitle stream has
// been opened in the HTTP sink. Transitions WaitingStreams -> WaitingKeyframe
// once every expected stream has been admitted.
func (g *Gate) StreamAdmitted() {
	if g.state != WaitingStreams {
		return
	}
	g.streamsAdded++
	if g.streamsAdded >= g.streamsExpected {
		if g.hasVideo {
			g.state = WaitingKeyframe
		} else {
			g.state = Streaming
		}
	}
}

// complete reports the completeness condition: every non-subtitle declared
// ES has been opened by the HTTP sink.
func (g *Gate) complete() bool {
	return g.streamsAdded >= g.streamsExpected
}

// Forward decides whether block on the given category should be forwarded.
// Once cc_has_input is true, no block is ever dropped by either check
// (monotonicity), matching the gate's documented invariant.
func (g *Gate) Forward(cat es.Category, block es.Block) (forward bool) {
	if g.ccHasInput {
		return true
	}

	if !g.complete() {
		observability.GateAdmissionsTotal.WithLabelValues("blocked_completeness").Inc()
		return false
	}

	if !g.hasVideo {
		return true
	}

	// Keyframe alignment: audio blocks have their I-flag cleared on the way
	// through (Session.Send does that before the chain), so only video
	// blocks gate on Keyframe/PTS.
	if cat != es.Video {
		if g.firstVideoKeyframePTS == nil {
			observability.GateAdmissionsTotal.WithLabelValues("blocked_keyframe").Inc()
			return false
		}
		return true
	}

	if g.firstVideoKeyframePTS == nil {
		if !block.Keyframe {
			observability.GateAdmissionsTotal.WithLabelValues("blocked_keyframe").Inc()
			return false
		}
		pts := block.PTS
		g.firstVideoKeyframePTS = &pts
		return true
	}

	if block.PTS < *g.firstVideoKeyframePTS {
		observability.GateAdmissionsTotal.WithLabelValues("blocked_keyframe").Inc()
		return false
	}
	return true
}

// Admit is called once a block has passed Forward and been sent
// successfully. On the first such call it fires onFirstAdmit and marks
// ccHasInput, transitioning to Streaming.
func (g *Gate) Admit() error {
	if g.ccHasInput {
		return nil
	}
	if g.onFirstAdmit != nil {
		if err := g.onFirstAdmit(); err != nil {
			return err
		}
	}
	g.ccHasInput = true
	g.state = Streaming
	observability.GateAdmissionsTotal.WithLabelValues("first_admit").Inc()
	return nil
}

// Reset returns the gate to Idle, e.g. on output-chain tear-down.
func (g *Gate) Reset() {
	*g = Gate{}
	g.state = Idle
}

func (g *Gate) State() State {
	return g.state
}

func (g *Gate) CCHasInput() bool {
	return g.ccHasInput
}

func (g *Gate) FirstVideoKeyframePTS() (time.Duration, bool) {
	if g.firstVideoKeyframePTS == nil {
		return 0, false
	}
	return *g.firstVideoKeyframePTS, true
}
