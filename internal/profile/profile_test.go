package profile

import "testing"

func TestMatchWildcardAccumulatesAllRows(t *testing.T) {
	t.Parallel()

	// Two wildcard rows share MIME "audio/ogg" (vorbis, opus); a device
	// advertising "*" for that MIME must get both, never just the first.
	pi := ProtocolInfo{MIME: "audio/ogg", PN: wildcard}
	got := Match(pi)
	if len(got) != 2 {
		t.Fatalf("Match(%+v) = %d rows, want 2", pi, len(got))
	}
}

func TestMatchNamedProfile(t *testing.T) {
	t.Parallel()

	pi := ProtocolInfo{MIME: "video/mp4", PN: "AVC_MP4_HP_HD"}
	got := Match(pi)
	if len(got) != 1 || got[0].Name != "AVC_MP4_HP_HD" {
		t.Fatalf("Match(%+v) = %+v, want single AVC_MP4_HP_HD row", pi, got)
	}
}

func TestMatchNoMIME(t *testing.T) {
	t.Parallel()

	pi := ProtocolInfo{MIME: "application/octet-stream", PN: wildcard}
	if got := Match(pi); len(got) != 0 {
		t.Fatalf("Match(%+v) = %+v, want no rows", pi, got)
	}
}

func TestProtocolInfoStringRoundTrips(t *testing.T) {
	t.Parallel()

	pi := ProtocolInfo{
		MIME:    "video/mp4",
		OP:      "01",
		CI:      "0",
		Flags:   DefaultDLNAFlags,
		Profile: Profile{Name: "AVC_MP4_MP_SD"},
	}
	want := "http-get:*:video/mp4:DLNA.ORG_PN=AVC_MP4_MP_SD;DLNA.ORG_OP=01;DLNA.ORG_CI=0;DLNA.ORG_FLAGS=" + DefaultDLNAFlags
	if got := pi.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIsWildcard(t *testing.T) {
	t.Parallel()

	if !(Profile{Name: "*"}).IsWildcard() {
		t.Error("expected Name \"*\" to be wildcard")
	}
	if (Profile{Name: "MP3"}).IsWildcard() {
		t.Error("expected named profile not to be wildcard")
	}
}
