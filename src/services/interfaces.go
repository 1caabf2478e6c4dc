package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/username/jamtax/src/model"
	"github.com/username/jamtax/src/models"
)

var (
	ErrInvalidSweep       = errors.New("invalid sweep")
	ErrEvaluationNotFound = model.ErrEvaluationNotFound
	ErrHistoryDisabled    = errors.New("evaluation history is disabled")
)

// Sweep parameters.
const (
	ParamUSDToJMD     = "usd_to_jmd"
	ParamSalaryAmount = "salary_amount"
	ParamGrossIncome  = "gross_income"
)

// SweepRequest varies one parameter of Input over [From, To] in Step increments.
// To is always included as the last point.
type SweepRequest struct {
	Input     models.EvaluationInput `json:"input"`
	Parameter string                 `json:"parameter"`
	From      decimal.Decimal        `json:"from"`
	To        decimal.Decimal        `json:"to"`
	Step      decimal.Decimal        `json:"step"`
}

// EvaluationResult is a report plus the ID it was stored under (empty when history is off).
type EvaluationResult struct {
	ID     string                  `json:"id,omitempty"`
	Report models.ComparisonReport `json:"report"`
}

// OptimalSalaryResult is the salary that maximises the salary-plus-dividends structure.
type OptimalSalaryResult struct {
	SalaryAmount models.Amount           `json:"salary_amount"`
	Report       models.ComparisonReport `json:"report"`
	PointsTried  int                     `json:"points_tried"`
}

// EvaluationService defines the interface for running and recording comparisons.
type EvaluationService interface {
	Defaults() (models.EvaluationInput, error)
	Evaluate(ctx context.Context, input models.EvaluationInput) (*EvaluationResult, error)
	Sweep(ctx context.Context, req SweepRequest) ([]models.SweepPoint, error)
	OptimalSalary(ctx context.Context, input models.EvaluationInput, step decimal.Decimal) (*OptimalSalaryResult, error)
	ListEvaluations(ctx context.Context, limit int) ([]model.EvaluationSummary, error)
	GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error)
}
