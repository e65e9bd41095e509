// Package config parses and validates the CLI configuration recognized by
// the renderer-casting session: device identity, HTTP serving parameters,
// and the transcode/perf-warning options.
package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"streamer/internal/transcode"
)

type ShutdownConfig struct {
	Timeout time.Duration // how long we give the shutdown process to gracefully terminate
}

type RendererConfig struct {
	IP                string // device IP; diagnostics only
	Port              int    // device UPnP port
	HTTPPort          int    // local HTTP server port
	Video             bool
	Mux               string
	MIME              string
	BaseURL           string
	URL               string // device-description URL; empty selects castsim's in-process fake renderer
	ConversionQuality transcode.Tier
	ShowPerfWarning   bool
}

type LogConfig struct {
	Level slog.Level
}

type Config struct {
	Renderer RendererConfig
	Shutdown ShutdownConfig
	Logger   LogConfig
}

func DefaultConfig() *Config {
	return &Config{
		Renderer: RendererConfig{
			HTTPPort:          8080,
			Video:             true,
			ConversionQuality: transcode.Medium,
			ShowPerfWarning:   true,
		},
		Shutdown: ShutdownConfig{
			Timeout: 15 * time.Second,
		},
		Logger: LogConfig{
			Level: slog.LevelInfo,
		},
	}
}

// ParseArgs parses args into cfg, validating every recognized option.
func ParseArgs(cfg *Config, args []string, stderr io.Writer) error {
	defaultCfg := DefaultConfig()

	fs := flag.NewFlagSet("castsim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [options]\n\n", fs.Name())
		fmt.Fprintln(fs.Output(), "Casts a live elementary-stream input to a DLNA/UPnP media renderer.")
		fmt.Fprintln(fs.Output(), "\nOptions:")
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.Renderer.IP, "ip", "", "device IP (diagnostics only)")
	fs.IntVar(&cfg.Renderer.Port, "port", 0, "device UPnP port")
	fs.IntVar(&cfg.Renderer.HTTPPort, "http-port", defaultCfg.Renderer.HTTPPort, "local HTTP server port")
	fs.BoolVar(&cfg.Renderer.Video, "video", defaultCfg.Renderer.Video, "allow video elementary streams")
	fs.StringVar(&cfg.Renderer.Mux, "mux", "", "override muxer descriptor (default: profile pick)")
	fs.StringVar(&cfg.Renderer.MIME, "mime", "", "override MIME type (default: profile pick)")
	fs.StringVar(&cfg.Renderer.BaseURL, "base_url", "", "absolute base for resolving relative service URLs")
	fs.StringVar(&cfg.Renderer.URL, "url", "", "absolute device-description URL of a real renderer (omit to cast against the in-process fake renderer)")

	var qualityInt int
	fs.IntVar(&qualityInt, "conversion-quality", int(defaultCfg.Renderer.ConversionQuality), "conversion quality tier: 0=high 1=medium 2=low 3=low-cpu")

	fs.BoolVar(&cfg.Renderer.ShowPerfWarning, "show-perf-warning", defaultCfg.Renderer.ShowPerfWarning, "gate the one-shot transcode performance warning")

	fs.DurationVar(&cfg.Shutdown.Timeout, "shutdown.timeout", defaultCfg.Shutdown.Timeout, "graceful shutdown timeout")

	var logLevelStr string
	fs.StringVar(&logLevelStr, "logger.level", "info", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	tier, err := transcode.TierFromInt(qualityInt)
	if err != nil {
		return err
	}
	cfg.Renderer.ConversionQuality = tier

	level, err := validateLoggerLevel(logLevelStr)
	if err != nil {
		return err
	}
	cfg.Logger.Level = level

	if cfg.Renderer.BaseURL == "" {
		cfg.Renderer.BaseURL = deriveBaseURL(cfg.Renderer.URL)
	}

	return nil
}

// deriveBaseURL defaults base_url to the device URL's scheme+host when not
// explicitly set, matching the common case where all service URLs resolve
// relative to the device description's own origin.
func deriveBaseURL(deviceURL string) string {
	idx := strings.Index(deviceURL, "://")
	if idx == -1 {
		return deviceURL
	}
	rest := deviceURL[idx+3:]
	if slash := strings.IndexByte(rest, '/'); slash != -1 {
		return deviceURL[:idx+3+slash]
	}
	return deviceURL
}

func validateLoggerLevel(logLevelStr string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevelStr)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", logLevelStr, err)
	}
	return level, nil
}
