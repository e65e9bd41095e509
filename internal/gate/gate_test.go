package gate

import (
	"testing"
	"time"

	"streamer/internal/es"
)

func TestNewZeroStreamsStartsIdle(t *testing.T) {
	t.Parallel()

	g := New(0, false, nil)
	if g.State() != Idle {
		t.Errorf("State() = %v, want Idle", g.State())
	}
}

func TestForwardDropsBeforeCompleteness(t *testing.T) {
	t.Parallel()

	g := New(2, true, nil)
	if g.Forward(es.Video, es.Block{Keyframe: true}) {
		t.Errorf("expected drop before completeness")
	}
}

func TestForwardDropsNonKeyframeVideoThenAdmitsAtKeyframe(t *testing.T) {
	t.Parallel()

	fired := false
	g := New(1, true, func() error { fired = true; return nil })
	g.StreamAdmitted()

	if g.State() != WaitingKeyframe {
		t.Fatalf("State() = %v, want WaitingKeyframe", g.State())
	}

	nonKey := es.Block{PTS: 0, Keyframe: false}
	if g.Forward(es.Video, nonKey) {
		t.Errorf("expected non-keyframe video block dropped")
	}

	key := es.Block{PTS: 100 * time.Millisecond, Keyframe: true}
	if !g.Forward(es.Video, key) {
		t.Fatalf("expected keyframe video block forwarded")
	}

	if err := g.Admit(); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !fired {
		t.Errorf("expected onFirstAdmit to fire")
	}
	if g.State() != Streaming {
		t.Errorf("State() = %v, want Streaming", g.State())
	}
}

func TestForwardAudioWaitsForFirstVideoKeyframe(t *testing.T) {
	t.Parallel()

	g := New(2, true, nil)
	g.StreamAdmitted()
	g.StreamAdmitted()

	audio := es.Block{PTS: 0}
	if g.Forward(es.Audio, audio) {
		t.Errorf("expected audio dropped before any video keyframe seen")
	}

	key := es.Block{PTS: 50 * time.Millisecond, Keyframe: true}
	if !g.Forward(es.Video, key) {
		t.Fatalf("expected keyframe forwarded")
	}

	if !g.Forward(es.Audio, es.Block{PTS: 60 * time.Millisecond}) {
		t.Errorf("expected audio forwarded once a video keyframe landed")
	}
}

func TestForwardDropsVideoBeforeFirstKeyframePTS(t *testing.T) {
	t.Parallel()

	g := New(1, true, nil)
	g.StreamAdmitted()

	key := es.Block{PTS: 100 * time.Millisecond, Keyframe: true}
	if !g.Forward(es.Video, key) {
		t.Fatal("expected keyframe forwarded")
	}

	earlier := es.Block{PTS: 50 * time.Millisecond, Keyframe: false}
	if g.Forward(es.Video, earlier) {
		t.Errorf("expected block preceding first keyframe PTS dropped")
	}
}

func TestForwardMonotonicOnceCCHasInput(t *testing.T) {
	t.Parallel()

	fired := 0
	g := New(1, true, func() error { fired++; return nil })
	g.StreamAdmitted()

	key := es.Block{PTS: 10 * time.Millisecond, Keyframe: true}
	g.Forward(es.Video, key)
	if err := g.Admit(); err != nil {
		t.Fatalf("Admit: %v", err)
	}

	// Once cc_has_input, every subsequent block forwards unconditionally,
	// even a stale/non-keyframe one.
	if !g.Forward(es.Video, es.Block{PTS: 0, Keyframe: false}) {
		t.Errorf("expected unconditional forward once cc_has_input is true")
	}

	if err := g.Admit(); err != nil {
		t.Fatalf("second Admit: %v", err)
	}
	if fired != 1 {
		t.Errorf("onFirstAdmit fired %d times, want exactly 1", fired)
	}
}

func TestAudioOnlyNoVideoSkipsKeyframeWait(t *testing.T) {
	t.Parallel()

	g := New(1, false, nil)
	g.StreamAdmitted()
	if g.State() != Streaming {
		t.Fatalf("State() = %v, want Streaming (no video to wait on)", g.State())
	}
	if !g.Forward(es.Audio, es.Block{}) {
		t.Errorf("expected audio-only stream to forward immediately")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	g := New(1, true, nil)
	g.StreamAdmitted()
	g.Forward(es.Video, es.Block{Keyframe: true})
	g.Admit()

	g.Reset()
	if g.State() != Idle {
		t.Errorf("State() after Reset = %v, want Idle", g.State())
	}
	if g.CCHasInput() {
		t.Errorf("CCHasInput() after Reset = true, want false")
	}
}
