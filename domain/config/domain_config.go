package config

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Journey defaults
	DefaultJourneyTitle     string
	DescriptionPreviewRunes int

	// Input constraints
	MaxScenarioLength    int
	MaxTitleLength       int
	MaxDescriptionLength int
	MaxTextFieldLength   int

	// Graph constraints
	MaxNodesPerJourney int
	MaxEdgesPerJourney int

	// Edit rules
	AllowSelfConnections bool
	AllowDuplicateEdges  bool
	HistoryLimit         int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		DefaultJourneyTitle:     "New Journey Map",
		DescriptionPreviewRunes: 100,

		MaxScenarioLength:    20000,
		MaxTitleLength:       200,
		MaxDescriptionLength: 2000,
		MaxTextFieldLength:   2000,

		MaxNodesPerJourney: 500,
		MaxEdgesPerJourney: 2000,

		AllowSelfConnections: false,
		AllowDuplicateEdges:  false,
		HistoryLimit:         50,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Scenarios are sent to a paid model, keep them bounded
	config.MaxScenarioLength = 10000
	config.HistoryLimit = 30

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxScenarioLength = 50000
	config.AllowSelfConnections = true
	config.AllowDuplicateEdges = true
	config.HistoryLimit = 100

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}
