package models

// LayoutSettings are the per-user auto layout options.
type LayoutSettings struct {
	DuplicatesEnabled   bool `json:"duplicatesEnabled" yaml:"duplicates_enabled"`
	DuplicateLimit      int  `json:"duplicateLimit" yaml:"duplicate_limit"`
	IncludeSubContainer bool `json:"includeSubContainer" yaml:"include_sub_container"`
}

// DefaultLayoutSettings returns the settings a new user starts with.
func DefaultLayoutSettings() LayoutSettings {
	return LayoutSettings{
		DuplicatesEnabled:   true,
		DuplicateLimit:      4,
		IncludeSubContainer: true,
	}
}

// EffectiveDuplicateLimit is the limit handed to the generator: 0 when
// duplicates are disabled.
func (s LayoutSettings) EffectiveDuplicateLimit() int {
	if !s.DuplicatesEnabled {
		return 0
	}
	return s.DuplicateLimit
}
