// Package transcode implements the transcode planner (C4): choosing
// encoder options per profile and quality tier, and probing encoder
// candidates by dry run.
package transcode

import (
	"context"
	"fmt"
)

// Tier is the conversion-quality tier.
type Tier int

const (
	High Tier = iota
	Medium
	Low
	LowCPU
)

func (t Tier) String() string {
	switch t {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	case LowCPU:
		return "low-cpu"
	default:
		return "unknown"
	}
}

// TierFromInt maps the configuration's conversion-quality integer (0-3)
// onto a Tier, per the configuration's recognized {0,1,2,3} range.
func TierFromInt(n int) (Tier, error) {
	switch n {
	case 0:
		return High, nil
	case 1:
		return Medium, nil
	case 2:
		return Low, nil
	case 3:
		return LowCPU, nil
	default:
		return 0, fmt.Errorf("invalid conversion-quality %d: must be 0-3", n)
	}
}

// Prober dry-runs a one-shot sub-pipeline spec and reports whether the
// candidate encoder is usable. Implementations probe a real transcode
// pipeline (out of scope here); tests use a fake that records the specs it
// was asked to probe.
type Prober interface {
	Probe(ctx context.Context, spec string) bool
}

// VideoCandidate is one entry in the ordered list of candidate video
// encoders probed in order until one succeeds.
type VideoCandidate struct {
	Name    string // encoder identifier; the venc= fragment comes from Options
	Options func(tier Tier, hd bool) string
}

// Candidates lists the probe-ordered video encoder candidates: platform
// hardware encoders first, then software x264, matching the probe order of
// hardware-first-then-software.
var Candidates = []VideoCandidate{
	videotoolboxCandidate,
	{Name: "qsv", Options: qsvOptions},
	{Name: "x264", Options: x264Options},
}

// x264Options mirrors vlc_sout_renderer_GetVencX264Option: preset/crf pairs
// per tier, with an HD-vs-720p crf split.
func x264Options(tier Tier, hd bool) string {
	preset := "veryfast"
	var crf int
	switch tier {
	case High:
		crf = 21
	case Medium:
		crf = 23
	case Low:
		crf = 23
	case LowCPU:
		crf = 23
		preset = "ultrafast"
	}
	if !hd {
		crf += 2
	}
	return fmt.Sprintf("venc=x264{preset=%s,crf=%d}", preset, crf)
}

// qsvOptions mirrors vlc_sout_renderer_GetVencQSVH264Option: target-usage
// and bitrate per tier.
func qsvOptions(tier Tier, hd bool) string {
	targetUsage := 4
	bitrate := 4000
	switch tier {
	case High:
		targetUsage, bitrate = 1, 8000
	case Medium:
		targetUsage, bitrate = 4, 4000
	case Low:
		targetUsage, bitrate = 6, 2000
	case LowCPU:
		targetUsage, bitrate = 7, 2000
	}
	if !hd {
		bitrate /= 2
	}
	return fmt.Sprintf("venc=qsv{target-usage=%d,bitrate=%d}", targetUsage, bitrate)
}
