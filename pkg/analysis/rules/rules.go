package rules

import (
	"github.com/flowther/workflow-extractor/pkg/config"
)

// Rules provides a convenient aggregator for rule-based components
type Rules struct {
	Classifier *Classifier
}

// NewRules creates a new Rules instance with clean configuration injection
func NewRules(cfg *config.Config) *Rules {
	return &Rules{
		Classifier: NewClassifier(cfg),
	}
}
