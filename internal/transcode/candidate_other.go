//go:build !darwin

package transcode

// videotoolboxCandidate degrades to a no-op candidate off macOS: its options
// are empty, so the planner skips it without probing and falls through to
// qsv then x264. Keeping a
// stub entry instead of omitting the row keeps Candidates' indices stable
// across platforms.
var videotoolboxCandidate = VideoCandidate{
	Name: "videotoolbox",
	Options: func(tier Tier, hd bool) string {
		return ""
	},
}
