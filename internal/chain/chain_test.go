package chain

import (
	"context"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"

	"streamer/internal/es"
	"streamer/internal/pipeline"
)

func TestBuildSpecStringNoTranscode(t *testing.T) {
	t.Parallel()

	got := BuildSpecString(Spec{HTTPPort: 8080, Mux: "avformat{mux=mp4}", MIME: "video/mp4"}, "/dlna/x/stream.mp4")
	want := "cast-proxy:http{dst=:8080/dlna/x/stream.mp4,mux=avformat{mux=mp4},access=http{mime=video/mp4}}"
	if got != want {
		t.Errorf("BuildSpecString = %q, want %q", got, want)
	}
}

func TestBuildSpecStringWithTranscodePrefix(t *testing.T) {
	t.Parallel()

	got := BuildSpecString(Spec{HTTPPort: 8080, TranscodeSpec: "transcode{vcodec=h264}", Mux: "ts", MIME: "video/mpeg"}, "/dlna/y/stream.mp4")
	if !strings.HasPrefix(got, "transcode{vcodec=h264}:cast-proxy:") {
		t.Errorf("BuildSpecString = %q, want transcode prefix", got)
	}
}

func TestNewRootPathUnique(t *testing.T) {
	t.Parallel()

	a, err := NewRootPath()
	if err != nil {
		t.Fatalf("NewRootPath: %v", err)
	}
	b, err := NewRootPath()
	if err != nil {
		t.Fatalf("NewRootPath: %v", err)
	}
	if a == b {
		t.Errorf("expected distinct root paths, got %q twice", a)
	}
	if !strings.HasSuffix(a, "/stream.mp4") {
		t.Errorf("root path %q missing /stream.mp4 suffix", a)
	}
}

func descriptor(cat es.Category, fourcc string) es.Descriptor {
	h, _ := es.NewHandle()
	return es.Descriptor{UUID: uuid.UUID(h), Category: cat, Fourcc: fourcc}
}

func TestBuildAdmitsAllAndTracksCounts(t *testing.T) {
	t.Parallel()

	audio := descriptor(es.Audio, "mp4a")
	video := descriptor(es.Video, "h264")

	b := &pipeline.FakeBuilder{}
	c, err := Build(context.Background(), b, Spec{HTTPPort: 8080, Mux: "m", MIME: "mime"}, []es.Descriptor{audio, video})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer c.TearDown()

	total, spu := c.StreamCount()
	if total != 2 || spu != 0 {
		t.Errorf("StreamCount = (%d, %d), want (2, 0)", total, spu)
	}
	if !c.HasVideo() {
		t.Errorf("HasVideo() = false, want true")
	}

	if _, ok := c.SubFor(audio.UUID); !ok {
		t.Errorf("expected audio UUID resolvable")
	}
	if _, ok := c.SubFor(video.UUID); !ok {
		t.Errorf("expected video UUID resolvable")
	}
}

func TestBuildDropsRefusedStreamsButSucceedsIfAnySurvive(t *testing.T) {
	t.Parallel()

	audio := descriptor(es.Audio, "mp4a")
	video := descriptor(es.Video, "VP80")

	b := &pipeline.FakeBuilder{RefuseFourcc: "VP80"}
	c, err := Build(context.Background(), b, Spec{HTTPPort: 8080}, []es.Descriptor{audio, video})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer c.TearDown()

	total, _ := c.StreamCount()
	if total != 1 {
		t.Errorf("StreamCount total = %d, want 1 (video refused)", total)
	}
	if c.HasVideo() {
		t.Errorf("HasVideo() = true, want false (video was refused)")
	}
}

func TestBuildFailsAndTearsDownWhenAllRefused(t *testing.T) {
	t.Parallel()

	video := descriptor(es.Video, "VP80")
	b := &pipeline.FakeBuilder{RefuseFourcc: "VP80"}

	_, err := Build(context.Background(), b, Spec{HTTPPort: 8080}, []es.Descriptor{video})
	if err == nil {
		t.Fatal("expected error when every candidate is refused")
	}
}

func TestSendAndFlushForwardThroughMuxer(t *testing.T) {
	t.Parallel()

	audio := descriptor(es.Audio, "mp4a")
	b := &pipeline.FakeBuilder{}
	c, err := Build(context.Background(), b, Spec{HTTPPort: 8080}, []es.Descriptor{audio})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer c.TearDown()

	sub, _ := c.SubFor(audio.UUID)
	if err := c.Send(sub, es.Block{Data: []byte{1}}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := c.Flush(sub); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestTearDownIsSafeToCallTwice(t *testing.T) {
	t.Parallel()

	audio := descriptor(es.Audio, "mp4a")
	b := &pipeline.FakeBuilder{}
	c, err := Build(context.Background(), b, Spec{HTTPPort: 8080}, []es.Descriptor{audio})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := c.TearDown(); err != nil {
		t.Fatalf("first TearDown: %v", err)
	}
	if err := c.TearDown(); err != nil {
		t.Fatalf("second TearDown: %v", err)
	}
}
