package domain

// ThreatType is the provider's category label for a matched URL.
type ThreatType string

const (
	ThreatTypeSocialEngineering ThreatType = "SOCIAL_ENGINEERING"
	ThreatTypeMalware           ThreatType = "MALWARE"
	ThreatTypeUnwantedSoftware  ThreatType = "UNWANTED_SOFTWARE"
	// ThreatTypeUnspecified stands in for a match the provider returned
	// without a threat type.
	ThreatTypeUnspecified ThreatType = "THREAT_TYPE_UNSPECIFIED"
)

// LookupThreatTypes is the fixed set of categories every lookup asks for.
func LookupThreatTypes() []ThreatType {
	return []ThreatType{ThreatTypeSocialEngineering, ThreatTypeMalware, ThreatTypeUnwantedSoftware}
}

// ThreatMatch is a single provider match for a looked up URL.
type ThreatMatch struct {
	ThreatType      ThreatType `json:"threatType"`
	PlatformType    string     `json:"platformType,omitempty"`
	ThreatEntryType string     `json:"threatEntryType,omitempty"`
	URL             string     `json:"url,omitempty"`
}

// ThreatQueryResult is the provider's answer for one CandidateURL. Matches keep
// the order in which the provider returned them.
type ThreatQueryResult struct {
	Matches []ThreatMatch `json:"matches,omitempty"`
}

// Empty reports whether the provider found nothing.
func (r ThreatQueryResult) Empty() bool { return len(r.Matches) == 0 }

// ThreatTypes returns the threat type of every match in provider order,
// duplicates included.
func (r ThreatQueryResult) ThreatTypes() []string {
	out := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		t := m.ThreatType
		if t == "" {
			t = ThreatTypeUnspecified
		}
		out = append(out, string(t))
	}

	return out
}
