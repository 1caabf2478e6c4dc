package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/jamtax/src/logger"
	"github.com/username/jamtax/src/model"
	"github.com/username/jamtax/src/models"
	"github.com/username/jamtax/src/processors"
	"github.com/username/jamtax/src/security/validation"
	"github.com/username/jamtax/src/utils"
)

const (
	ckReport = "res_report_%s"
	ckSweep  = "res_sweep_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute

	defaultSalaryIntervals = 100

	DefaultListLimit = 20
	MaxListLimit     = 200
)

// SweepLimits bounds the work a single sweep may request.
type SweepLimits struct {
	MaxPoints   int
	Concurrency int
}

type evaluationServiceImpl struct {
	processor   processors.ComparisonProcessor
	reportCache *cache.Cache
	db          *sql.DB // nil disables history
	limits      SweepLimits
	defaults    func() (models.EvaluationInput, error)
}

// NewEvaluationService wires the engine to its cache and history store.
// A nil db disables evaluation history, a nil reportCache gets one with DefaultCacheExpiration,
// and a nil defaults func falls back to the built-in scenario.
func NewEvaluationService(
	processor processors.ComparisonProcessor,
	reportCache *cache.Cache,
	db *sql.DB,
	limits SweepLimits,
	defaults func() (models.EvaluationInput, error),
) EvaluationService {
	if limits.MaxPoints < 1 {
		limits.MaxPoints = 500
	}
	if limits.Concurrency < 1 {
		limits.Concurrency = 1
	}
	if reportCache == nil {
		reportCache = cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	}
	if defaults == nil {
		defaults = func() (models.EvaluationInput, error) { return models.DefaultEvaluationInput(), nil }
	}
	return &evaluationServiceImpl{
		processor:   processor,
		reportCache: reportCache,
		db:          db,
		limits:      limits,
		defaults:    defaults,
	}
}

func (s *evaluationServiceImpl) Defaults() (models.EvaluationInput, error) {
	return s.defaults()
}

func (s *evaluationServiceImpl) Evaluate(ctx context.Context, input models.EvaluationInput) (*EvaluationResult, error) {
	log := logger.FromContext(ctx)
	input.Label = validation.SanitizeLabel(input.Label)

	hash, report, err := s.evaluateCached(input)
	if err != nil {
		log.Warn("Evaluation rejected", "label", input.Label, "error", err)
		return nil, err
	}

	result := &EvaluationResult{Report: report}
	if s.db == nil {
		return result, nil
	}

	record := &model.Evaluation{Label: input.Label, Input: input, Report: report, InputHash: hash}
	if err := model.CreateEvaluation(s.db, record); err != nil {
		// History is best effort.
		log.Error("Failed to store evaluation", "label", input.Label, "error", err)
		return result, nil
	}
	result.ID = record.ID
	log.Info("Evaluation stored", "id", record.ID, "recommended", report.RecommendedStructure)
	return result, nil
}

// evaluateCached returns the input hash and the report, computing it on a cache miss.
func (s *evaluationServiceImpl) evaluateCached(input models.EvaluationInput) (string, models.ComparisonReport, error) {
	hash, err := utils.GenerateETag(input)
	if err != nil {
		return "", models.ComparisonReport{}, err
	}
	cacheKey := fmt.Sprintf(ckReport, hash)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for comparison report", "hash", hash)
		return hash, cached.(models.ComparisonReport).Clone(), nil
	}

	report, err := s.processor.Evaluate(input)
	if err != nil {
		return hash, models.ComparisonReport{}, err
	}
	s.reportCache.Set(cacheKey, report.Clone(), cache.DefaultExpiration)
	return hash, report, nil
}

func (s *evaluationServiceImpl) ListEvaluations(ctx context.Context, limit int) ([]model.EvaluationSummary, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return model.ListEvaluations(s.db, limit)
}

func (s *evaluationServiceImpl) GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}
	return model.GetEvaluationByID(s.db, id)
}

func (s *evaluationServiceImpl) OptimalSalary(ctx context.Context, input models.EvaluationInput, step decimal.Decimal) (*OptimalSalaryResult, error) {
	if input.GrossIncome.IsNegative() {
		return nil, fmt.Errorf("%w: gross income %s is negative", processors.ErrInvalidAllocation, input.GrossIncome.StringFixed(2))
	}
	if step.IsZero() {
		step = defaultSalaryStep(input.GrossIncome, s.limits.MaxPoints)
	}
	if input.GrossIncome.IsZero() {
		step = decimal.NewFromInt(1)
	}

	points, err := s.Sweep(ctx, SweepRequest{
		Input:     input,
		Parameter: ParamSalaryAmount,
		From:      decimal.Zero,
		To:        input.GrossIncome,
		Step:      step,
	})
	if err != nil {
		return nil, err
	}

	bestIdx := -1
	var bestNet decimal.Decimal
	for i, p := range points {
		net := hybridResult(p.Report).USDNetAfterUSTax.Value
		if bestIdx < 0 || net.GreaterThan(bestNet) {
			bestIdx, bestNet = i, net
		}
	}

	best := points[bestIdx]
	logger.FromContext(ctx).Info("Optimal salary found", "salary", best.Value.StringFixed(2), "netUSD", bestNet.StringFixed(2), "points", len(points))
	return &OptimalSalaryResult{
		SalaryAmount: models.NewJMD(best.Value),
		Report:       best.Report,
		PointsTried:  len(points),
	}, nil
}

// defaultSalaryStep splits [0, gross] into at most 100 whole-JMD intervals, fewer when
// maxPoints cannot hold 101 points.
func defaultSalaryStep(gross decimal.Decimal, maxPoints int) decimal.Decimal {
	intervals := int64(defaultSalaryIntervals)
	if limit := int64(maxPoints - 1); limit < intervals {
		intervals = limit
	}
	if intervals < 1 {
		return gross
	}
	return gross.Div(decimal.NewFromInt(intervals)).Ceil()
}

func hybridResult(report models.ComparisonReport) models.StructureResult {
	for _, r := range report.Results {
		if r.StructureName == processors.StructureSalaryDividend {
			return r
		}
	}
	return report.Results[len(report.Results)-1]
}
