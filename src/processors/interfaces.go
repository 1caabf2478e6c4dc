package processors

import (
	"github.com/username/jamtax/src/models"
)

// EvaluateOptions tunes Evaluate.
type EvaluateOptions struct {
	// StrictRates enforces the [0, 100] range on percentage rates.
	StrictRates bool
}

// ComparisonProcessor defines the interface for evaluating and ranking structures.
type ComparisonProcessor interface {
	Evaluate(input models.EvaluationInput) (models.ComparisonReport, error)
	Compare(results []models.StructureResult) (models.ComparisonReport, error)
}
