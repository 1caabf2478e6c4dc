package processors

import (
	"errors"

	"github.com/username/jamtax/src/models"
)

var (
	// ErrInvalidAllocation is returned when the salary/dividend split does not fit inside gross income.
	ErrInvalidAllocation = errors.New("invalid salary/dividend allocation")
	// ErrInvalidRate is returned when a rate or threshold fails validation.
	ErrInvalidRate = models.ErrInvalidRate
	// ErrInvalidInput is returned for unusable non-rate inputs such as the credit mode or presence days.
	ErrInvalidInput = models.ErrInvalidInput
	// ErrEmptyComparisonSet is returned when there is nothing to compare.
	ErrEmptyComparisonSet = errors.New("comparison set is empty")
)
