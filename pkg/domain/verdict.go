package domain

// VerdictStatus is the terminal outcome of a scan.
type VerdictStatus string

const (
	// VerdictInvalid means no valid URL could be derived from the input.
	VerdictInvalid VerdictStatus = "INVALID"
	// VerdictSafe means the provider reported no matches. In fail-open mode it
	// is also returned when the lookup failed; see Verdict.Notices.
	VerdictSafe VerdictStatus = "SAFE"
	// VerdictUnsafe means the provider matched the URL against at least one
	// threat list.
	VerdictUnsafe VerdictStatus = "UNSAFE"
	// VerdictUnknown is only returned in fail-closed mode when the lookup
	// could not be completed.
	VerdictUnknown VerdictStatus = "UNKNOWN"
)

// Notice is a user-visible message produced next to a verdict, e.g. a
// missing provider credential or a network failure.
type Notice struct {
	// Code is the semantic error kind, e.g. "TIMEOUT".
	Code string `json:"code"`
	// Message is a human-readable description.
	Message string `json:"message"`
}

// Verdict is what a scan hands back to the presentation layer.
type Verdict struct {
	// Status is the tagged outcome.
	Status VerdictStatus `json:"status"`
	// URL is the validated candidate URL, empty for INVALID verdicts.
	URL CandidateURL `json:"url,omitempty"`
	// Threats lists the threat types for UNSAFE verdicts, in provider order.
	Threats []string `json:"threats,omitempty"`
	// Notices carries side-channel messages that did not change the flow.
	Notices []Notice `json:"notices,omitempty"`
}

// Invalid builds an INVALID verdict.
func Invalid(notices ...Notice) Verdict {
	return Verdict{Status: VerdictInvalid, Notices: notices}
}

// Safe builds a SAFE verdict for u.
func Safe(u CandidateURL, notices ...Notice) Verdict {
	return Verdict{Status: VerdictSafe, URL: u, Notices: notices}
}

// Unsafe builds an UNSAFE verdict. threats must not be empty.
func Unsafe(u CandidateURL, threats []string) Verdict {
	return Verdict{Status: VerdictUnsafe, URL: u, Threats: threats}
}

// Unknown builds an UNKNOWN verdict for u.
func Unknown(u CandidateURL, notices ...Notice) Verdict {
	return Verdict{Status: VerdictUnknown, URL: u, Notices: notices}
}
