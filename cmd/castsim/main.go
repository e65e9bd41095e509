// Command castsim exercises the full renderer-casting pipeline against an
// in-process fake renderer: it opens a session, feeds it a demo audio+video
// elementary-stream pair with a keyframe-gated block sequence, and logs the
// resulting SOAP traffic and chain lifecycle.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamer/internal/config"
	"streamer/internal/es"
	"streamer/internal/pipeline"
	"streamer/internal/ratelimit"
	"streamer/internal/renderer"
	"streamer/internal/session"
	"streamer/internal/soap"
)

func main() {
	stderr := os.Stderr

	cfg := config.DefaultConfig()
	if err := config.ParseArgs(cfg, os.Args[1:], stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Logger.Level})
	logger := slog.New(logHandler).With("app", "castsim")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fake := newFakeRenderer(logger)

	srv := &http.Server{Addr: "127.0.0.1:0", Handler: fake.Handler()}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen for fake renderer: %w", err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("fake renderer server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	deviceURL := fmt.Sprintf("http://%s/desc.xml", ln.Addr().String())
	baseURL := fmt.Sprintf("http://%s", ln.Addr().String())

	if cfg.Renderer.URL != "" {
		deviceURL = cfg.Renderer.URL
		baseURL = cfg.Renderer.BaseURL
	}

	limiter := ratelimit.NewTargetLimiter(ctx, 5, 10)
	soapClient := soap.NewClient(deviceURL, baseURL, logger)
	soapClient.Limiter = limiter

	ctrl := renderer.NewController(soapClient, logger)
	builder := &pipeline.FakeBuilder{}
	prober := &pipeline.FakeProber{}

	sessCfg := session.Config{
		DeviceIP:          cfg.Renderer.IP,
		DevicePort:        cfg.Renderer.Port,
		HTTPPort:          cfg.Renderer.HTTPPort,
		Video:             cfg.Renderer.Video,
		MuxOverride:       cfg.Renderer.Mux,
		MIMEOverride:      cfg.Renderer.MIME,
		BaseURL:           baseURL,
		DeviceURL:         deviceURL,
		ConversionQuality: cfg.Renderer.ConversionQuality,
		ShowPerfWarning:   cfg.Renderer.ShowPerfWarning,
	}

	sess, err := session.Open(ctx, sessCfg, ctrl, builder, prober, nil, logger)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	if err := runDemoStreams(ctx, sess, logger); err != nil {
		return fmt.Errorf("demo stream sequence: %w", err)
	}

	logger.Info("demo complete; actions observed by fake renderer", "actions", fake.Actions())

	return sess.Close(ctx)
}

func runDemoStreams(ctx context.Context, sess *session.Session, logger *slog.Logger) error {
	audio := es.Descriptor{
		Category: es.Audio,
		Fourcc:   "mp4a",
		Audio:    es.AudioFormat{SampleRate: 48000, Channels: 2},
	}
	video := es.Descriptor{
		Category: es.Video,
		Fourcc:   "h264",
		Video:    es.VideoFormat{Width: 1920, Height: 1080, FrameRate: 30},
	}

	audioHandle, err := sess.Add(audio)
	if err != nil {
		return err
	}
	videoHandle, err := sess.Add(video)
	if err != nil {
		return err
	}

	// first 5 video blocks are not keyframes: the cast-proxy gate must drop
	// them; the 6th carries the keyframe and triggers SetAVTransportURI+Play.
	for i := 0; i < 6; i++ {
		block := es.Block{
			Data:     []byte{byte(i)},
			PTS:      time.Duration(i) * 33 * time.Millisecond,
			Keyframe: i == 5,
		}
		if err := sess.Send(ctx, videoHandle, block); err != nil {
			return fmt.Errorf("send video block %d: %w", i, err)
		}
		if err := sess.Send(ctx, audioHandle, es.Block{Data: []byte{0}, PTS: block.PTS}); err != nil {
			return fmt.Errorf("send audio block %d: %w", i, err)
		}
	}

	logger.Info("demo streams admitted", "audio", audioHandle, "video", videoHandle)
	return nil
}
