package ui

// DisplayConfig holds configuration for UI rendering
type DisplayConfig struct {
	// Truncation limits
	MaxSubjectLength int
	MaxPreviewLines  int

	// Display lengths
	CommitHashDisplayLength int
	DefaultTerminalWidth    int
	DateLayout              string
}

// DefaultConfig returns the default display configuration
func DefaultConfig() DisplayConfig {
	return DisplayConfig{
		MaxSubjectLength: 60,
		MaxPreviewLines:  8,

		CommitHashDisplayLength: 7,
		DefaultTerminalWidth:    120,
		DateLayout:              "2006-01-02 15:04",
	}
}

// Global display configuration (can be overridden)
var Display = DefaultConfig()

