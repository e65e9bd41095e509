package transcode

import "testing"

func TestTierFromInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n       int
		want    Tier
		wantErr bool
	}{
		{0, High, false},
		{1, Medium, false},
		{2, Low, false},
		{3, LowCPU, false},
		{4, 0, true},
		{-1, 0, true},
	}

	for _, tt := range tests {
		got, err := TierFromInt(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("TierFromInt(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("TierFromInt(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestTierString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tier Tier
		want string
	}{
		{High, "high"},
		{Medium, "medium"},
		{Low, "low"},
		{LowCPU, "low-cpu"},
		{Tier(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.tier.String(); got != tt.want {
			t.Errorf("Tier(%d).String() = %q, want %q", tt.tier, got, tt.want)
		}
	}
}

func TestX264OptionsHDvs720Split(t *testing.T) {
	t.Parallel()

	hd := x264Options(Medium, true)
	sd := x264Options(Medium, false)
	if hd == sd {
		t.Errorf("expected HD and non-HD x264 options to differ, both = %q", hd)
	}
}

func TestQSVOptionsBitrateHalvedWhenNotHD(t *testing.T) {
	t.Parallel()

	hd := qsvOptions(High, true)
	sd := qsvOptions(High, false)
	if hd == sd {
		t.Errorf("expected HD and non-HD qsv options to differ, both = %q", hd)
	}
}
