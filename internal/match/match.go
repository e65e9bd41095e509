// Package match implements the capability matcher (C3): given the admitted
// elementary streams and the renderer's supported protocol list, pick a
// single DLNA profile or fall back to a default with needs_transcode set.
package match

import (
	"streamer/internal/es"
	"streamer/internal/profile"
)

const noCodec = "none"

// Result is the matcher's verdict.
type Result struct {
	Info            profile.ProtocolInfo
	NeedsTranscode  bool
	AudioNeedsTrans bool
	VideoNeedsTrans bool
}

// firstSeen returns the fourcc of the first stream of the given category,
// or "" if none is present. Additional same-category streams are tolerated
// but only the first is considered, per the matcher's stated scope.
func firstSeen(streams []es.Descriptor, cat es.Category) string {
	for _, d := range streams {
		if d.Category == cat {
			return d.Fourcc
		}
	}
	return ""
}

// Capabilities matches the admitted stream set against supported, the
// parsed protocol list advertised by the renderer.
func Capabilities(streams []es.Descriptor, supported []profile.ProtocolInfo) Result {
	audioCodec := firstSeen(streams, es.Audio)
	videoCodec := firstSeen(streams, es.Video)

	switch {
	case audioCodec != "" && videoCodec != "":
		return matchAudioVideo(audioCodec, videoCodec, supported)
	case videoCodec != "":
		return matchVideoOnly(videoCodec, supported)
	case audioCodec != "":
		return matchAudioOnly(audioCodec, supported)
	default:
		return Result{
			Info:           profile.ProtocolInfo{Profile: profile.DefaultAudio, MIME: profile.DefaultAudio.MIME},
			NeedsTranscode: false,
		}
	}
}

func matchAudioOnly(audioCodec string, supported []profile.ProtocolInfo) Result {
	for _, pi := range supported {
		if pi.Profile.Class == profile.ClassAudio && pi.Profile.AudioFourcc == audioCodec {
			return Result{Info: pi, NeedsTranscode: false}
		}
	}
	return Result{
		Info:            defaultAudioInfo(),
		NeedsTranscode:  true,
		AudioNeedsTrans: true,
	}
}

func matchVideoOnly(videoCodec string, supported []profile.ProtocolInfo) Result {
	for _, pi := range supported {
		if pi.Profile.VideoFourcc == videoCodec && pi.Profile.AudioFourcc == noCodec {
			return Result{Info: pi, NeedsTranscode: false}
		}
	}
	return Result{
		Info:            defaultVideoInfo(),
		NeedsTranscode:  true,
		VideoNeedsTrans: true,
	}
}

func matchAudioVideo(audioCodec, videoCodec string, supported []profile.ProtocolInfo) Result {
	for _, pi := range supported {
		if pi.Profile.Class != profile.ClassAudioVideo {
			continue
		}
		if pi.Profile.VideoFourcc == videoCodec && pi.Profile.AudioFourcc == audioCodec {
			return Result{Info: pi, NeedsTranscode: false}
		}
	}

	// No exact row: record which codec(s) mismatch so the planner can keep
	// the matching side as-is and only transcode the mismatching one.
	audioMismatch, videoMismatch := true, true
	for _, pi := range supported {
		if pi.Profile.Class != profile.ClassAudioVideo {
			continue
		}
		if pi.Profile.AudioFourcc == audioCodec {
			audioMismatch = false
		}
		if pi.Profile.VideoFourcc == videoCodec {
			videoMismatch = false
		}
	}

	return Result{
		Info:            defaultVideoInfo(),
		NeedsTranscode:  true,
		AudioNeedsTrans: audioMismatch,
		VideoNeedsTrans: videoMismatch,
	}
}

func defaultAudioInfo() profile.ProtocolInfo {
	return profile.ProtocolInfo{
		MIME:    profile.DefaultAudio.MIME,
		PN:      profile.DefaultAudio.Name,
		Profile: profile.DefaultAudio,
	}
}

func defaultVideoInfo() profile.ProtocolInfo {
	return profile.ProtocolInfo{
		MIME:    profile.DefaultVideo.MIME,
		PN:      profile.DefaultVideo.Name,
		Profile: profile.DefaultVideo,
	}
}
