package transcode

import (
	"context"
	"fmt"
)

// Resolution caps: 1080p for high/medium, 720p for low/low-cpu; frame rate
// capped at 24 when the input is zero or exceeds 30.
func ResolutionCap(tier Tier) (width, height int) {
	if tier == High || tier == Medium {
		return 1920, 1080
	}
	return 1280, 720
}

func FrameRateCap(inputFPS float64) float64 {
	if inputFPS <= 0 || inputFPS > 30 {
		return 24
	}
	return inputFPS
}

// Plan is the planner's output: the transcode sub-pipeline spec fragment
// (empty when no transcoding is required) and the resolved candidate index
// used for video, cached across subsequent updates.
type Plan struct {
	Spec           string // e.g. "transcode{acodec=mp4a,vcodec=h264,venc=x264{...}}" or ""
	VideoCandidate int    // index into Candidates that won the probe, -1 if no video transcode
}

// Planner holds the cached winning video-encoder candidate index so
// subsequent Plan calls skip re-probing.
type Planner struct {
	prober       Prober
	cachedIndex  int
	hasCachedIdx bool
}

func NewPlanner(prober Prober) *Planner {
	return &Planner{prober: prober, cachedIndex: -1}
}

// Plan builds the transcode spec. audioFourcc/videoFourcc are the target
// codecs from the matched profile; audioNeeds/videoNeeds indicate which
// side(s) actually require transcoding (the matcher may report only one
// side mismatching in an audio+video session).
func (p *Planner) Plan(ctx context.Context, audioNeeds, videoNeeds bool, audioFourcc, videoFourcc string, tier Tier, inputFPS float64, hd bool) (Plan, error) {
	if !audioNeeds && !videoNeeds {
		return Plan{VideoCandidate: -1}, nil
	}

	var parts []string
	if audioNeeds {
		parts = append(parts, fmt.Sprintf("acodec=%s", audioFourcc))
	}

	candidateIdx := -1
	if videoNeeds {
		parts = append(parts, fmt.Sprintf("vcodec=%s", videoFourcc))

		idx, venc, err := p.resolveVideoEncoder(ctx, tier, hd)
		if err != nil {
			return Plan{}, err
		}
		candidateIdx = idx
		if venc != "" {
			parts = append(parts, venc)
		}
	}

	spec := "transcode{" + joinComma(parts) + "}"
	return Plan{Spec: spec, VideoCandidate: candidateIdx}, nil
}

// resolveVideoEncoder returns the cached winning candidate if one exists,
// otherwise probes Candidates in order (skipping the terminal "accept
// as-is" handling, which callers express by len(Candidates) as the index)
// and caches the first that succeeds.
func (p *Planner) resolveVideoEncoder(ctx context.Context, tier Tier, hd bool) (int, string, error) {
	if p.hasCachedIdx {
		if p.cachedIndex >= len(Candidates) {
			return p.cachedIndex, "", nil
		}
		c := Candidates[p.cachedIndex]
		return p.cachedIndex, c.Options(tier, hd), nil
	}

	for i, c := range Candidates {
		opt := c.Options(tier, hd)
		if opt == "" {
			continue
		}
		spec := fmt.Sprintf("transcode{%s}:dummy", opt)
		if p.prober.Probe(ctx, spec) {
			p.cachedIndex = i
			p.hasCachedIdx = true
			return i, opt, nil
		}
	}

	// Every candidate failed probing: accept the stream as-is (terminal
	// entry), represented by an index past the candidate list.
	p.cachedIndex = len(Candidates)
	p.hasCachedIdx = true
	return p.cachedIndex, "", nil
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
