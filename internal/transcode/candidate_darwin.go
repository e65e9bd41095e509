//go:build darwin

package transcode

import "fmt"

// videotoolboxCandidate is only probed on macOS, mirroring the original's
// #ifdef __APPLE__ guard around the VideoToolbox encoder.
var videotoolboxCandidate = VideoCandidate{
	Name:    "videotoolbox",
	Options: videotoolboxOptions,
}

func videotoolboxOptions(tier Tier, hd bool) string {
	quality := 0.7
	switch tier {
	case High:
		quality = 0.9
	case Medium:
		quality = 0.7
	case Low, LowCPU:
		quality = 0.5
	}
	if !hd {
		quality -= 0.1
	}
	return fmt.Sprintf("venc=avcodec{codec=h264_videotoolbox,options={quality=%.1f}}", quality)
}
