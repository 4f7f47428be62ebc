package config

// DomainConfig holds the tunable business rules of the card domain
type DomainConfig struct {
	// Cards
	MaxQuestionLength  int // runes
	MaxConceptLength   int // runes
	MaxLinksPerSection int
	MaxResponseLength  int // runes

	// Question grouping
	SimilarityThreshold float64

	// Linking
	ManualLinkConfidence float64
}

// DefaultDomainConfig returns the default business rules
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxQuestionLength:    120,
		MaxConceptLength:     80,
		MaxLinksPerSection:   200,
		MaxResponseLength:    500,
		SimilarityThreshold:  0.3,
		ManualLinkConfidence: 1.0,
	}
}
