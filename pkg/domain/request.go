package domain

// ScanKind tells which input channel a ScanRequest came from.
type ScanKind string

const (
	// ScanKindText is a URL typed or pasted by the user.
	ScanKindText ScanKind = "TEXT"
	// ScanKindImage is an uploaded image expected to contain a QR code.
	ScanKindImage ScanKind = "IMAGE"
)

// ScanRequest is the raw, unvalidated input of a single scan. Only the field
// matching Kind is meaningful.
type ScanRequest struct {
	Kind  ScanKind
	Text  string
	Image []byte
}

// NewTextRequest builds a ScanRequest for a typed URL.
func NewTextRequest(text string) ScanRequest {
	return ScanRequest{Kind: ScanKindText, Text: text}
}

// NewImageRequest builds a ScanRequest for uploaded image bytes.
func NewImageRequest(image []byte) ScanRequest {
	return ScanRequest{Kind: ScanKindImage, Image: image}
}

// CandidateURL is a URL string that already passed syntactic validation.
// Values are only produced by the normalizer; the threat lookup never receives
// anything else.
type CandidateURL string

func (u CandidateURL) String() string { return string(u) }
