// Package profile holds the static DLNA profile catalog (C1) and the
// GetProtocolInfo CSV decoder (C2).
package profile

// Class tags a profile's media type.
type Class string

const (
	ClassAudio      Class = "audio"
	ClassAudioVideo Class = "audiovideo"
)

const wildcard = "*"

// Profile is an immutable catalog entry. Name may be the wildcard "*" for
// catch-all rows. VideoFourcc/AudioFourcc are "none" when not applicable.
type Profile struct {
	Name        string
	Mux         string
	MIME        string
	VideoFourcc string
	AudioFourcc string
	Class       Class
	DLNAFlags   string
}

// IsWildcard reports whether this catalog row is a catch-all.
func (p Profile) IsWildcard() bool {
	return p.Name == wildcard
}

// Default flag bitmask used when composing a protocolInfo header, per the
// renderer controller's SetAVTransportURI metadata (STREAMING_TRANSFER_MODE
// | BACKGROUND_TRANSFERT_MODE | CONNECTION_STALL | DLNA_V15, followed by 24
// reserved zero hex digits).
const DefaultDLNAFlags = "01700000000000000000000000000000"

// Catalog is the fixed, ordered profile table. It is scanned linearly
// because wildcard rows must still accumulate against a device advertising
// "*" (see Match). Order mirrors the audio-then-audiovideo layout of the
// table this was distilled from.
var Catalog = []Profile{
	// Audio profiles.
	{Name: wildcard, Mux: "ts", MIME: "audio/mpeg", VideoFourcc: "none", AudioFourcc: "mp3 ", Class: ClassAudio, DLNAFlags: DefaultDLNAFlags},
	{Name: "MP3", Mux: "raw", MIME: "audio/mpeg", VideoFourcc: "none", AudioFourcc: "mp3 ", Class: ClassAudio, DLNAFlags: DefaultDLNAFlags},
	{Name: "MP3X", Mux: "raw", MIME: "audio/mpeg", VideoFourcc: "none", AudioFourcc: "mp3 ", Class: ClassAudio, DLNAFlags: DefaultDLNAFlags},
	{Name: wildcard, Mux: "ogg", MIME: "audio/ogg", VideoFourcc: "none", AudioFourcc: "vorb", Class: ClassAudio, DLNAFlags: DefaultDLNAFlags},
	{Name: wildcard, Mux: "ogg", MIME: "audio/ogg", VideoFourcc: "none", AudioFourcc: "opus", Class: ClassAudio, DLNAFlags: DefaultDLNAFlags},
	{Name: "AAC_ISO", Mux: "raw", MIME: "audio/mp4", VideoFourcc: "none", AudioFourcc: "mp4a", Class: ClassAudio, DLNAFlags: DefaultDLNAFlags},

	// Audio/video profiles.
	{Name: wildcard, Mux: "ts", MIME: "video/mpeg", VideoFourcc: "mpgv", AudioFourcc: "mpga", Class: ClassAudioVideo, DLNAFlags: DefaultDLNAFlags},
	{Name: "AVC_MP4_MP_SD", Mux: "avformat{mux=mp4}", MIME: "video/mp4", VideoFourcc: "h264", AudioFourcc: "mp4a", Class: ClassAudioVideo, DLNAFlags: DefaultDLNAFlags},
	{Name: "AVC_MP4_HP_HD", Mux: "avformat{mux=mp4}", MIME: "video/mp4", VideoFourcc: "h264", AudioFourcc: "mp4a", Class: ClassAudioVideo, DLNAFlags: DefaultDLNAFlags},
	{Name: wildcard, Mux: "avformat{mux=webm}", MIME: "video/webm", VideoFourcc: "VP80", AudioFourcc: "vorb", Class: ClassAudioVideo, DLNAFlags: DefaultDLNAFlags},
}

// DefaultAudio is the built-in fallback profile returned when no supported
// audio-only protocol matches (MP3 in an MPEG-TS container).
var DefaultAudio = Profile{
	Name: wildcard, Mux: "ts", MIME: "audio/mpeg", VideoFourcc: "none", AudioFourcc: "mp3 ", Class: ClassAudio, DLNAFlags: DefaultDLNAFlags,
}

// DefaultVideo is the built-in fallback profile returned when no supported
// audio/video protocol matches (H.264 + AAC in MP4, DLNA PN AVC_MP4_MP_SD).
var DefaultVideo = Profile{
	Name: "AVC_MP4_MP_SD", Mux: "avformat{mux=mp4}", MIME: "video/mp4", VideoFourcc: "h264", AudioFourcc: "mp4a", Class: ClassAudioVideo, DLNAFlags: DefaultDLNAFlags,
}

// ProtocolInfo is one parsed entry from a GetProtocolInfo Sink CSV: a
// transport token (only "http-get" is accepted elsewhere), a network token
// (normally "*"), a mime type, the raw DLNA attribute bag, and a resolved
// profile copy picked by matching against Catalog.
type ProtocolInfo struct {
	Transport string
	Network   string
	MIME      string
	PN        string // DLNA.ORG_PN value, or "*" if unconstrained
	CI        string // DLNA.ORG_CI value
	OP        string // DLNA.ORG_OP value
	Flags     string // DLNA.ORG_FLAGS value
	Profile   Profile
}

// String rebuilds the protocolInfo wire form for SetAVTransportURI, per the
// renderer controller's metadata composition rule. When CI/FLAGS were not
// parsed off the wire (the matcher's own defaults, or a device entry that
// advertised no attribute bag), it falls back to CI=0 and the profile's
// DLNAFlags default rather than publishing an empty attribute.
func (pi ProtocolInfo) String() string {
	ci := pi.CI
	if ci == "" {
		ci = "0"
	}
	flags := pi.Flags
	if flags == "" {
		flags = pi.Profile.DLNAFlags
	}
	return "http-get:*:" + pi.MIME + ":DLNA.ORG_PN=" + pi.Profile.Name +
		";DLNA.ORG_OP=" + pi.OP + ";DLNA.ORG_CI=" + ci +
		";DLNA.ORG_FLAGS=" + flags
}

// Match scans Catalog for rows whose MIME equals pi.MIME and whose name
// equals pi.PN (or "*" when pi.PN is unconstrained, in which case every
// wildcard row with that MIME accumulates; named rows are not returned).
// Iteration never breaks early: a device advertising "*" expands into
// every wildcard catalog row for its MIME, not just the first.
func Match(pi ProtocolInfo) []Profile {
	var out []Profile
	wantWildcard := pi.PN == wildcard || pi.PN == ""
	for _, row := range Catalog {
		if row.MIME != pi.MIME {
			continue
		}
		if wantWildcard {
			if row.IsWildcard() {
				out = append(out, row)
			}
			continue
		}
		if row.Name == pi.PN {
			out = append(out, row)
		}
	}
	return out
}
