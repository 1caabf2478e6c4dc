package services

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/jamtax/src/logger"
	"github.com/username/jamtax/src/models"
	"github.com/username/jamtax/src/utils"
	"golang.org/x/sync/errgroup"
)

// parameterSetters maps a sweep parameter onto the input field it varies.
var parameterSetters = map[string]func(in *models.EvaluationInput, v decimal.Decimal){
	ParamUSDToJMD:     func(in *models.EvaluationInput, v decimal.Decimal) { in.Rates.USDToJMDRate = v },
	ParamSalaryAmount: func(in *models.EvaluationInput, v decimal.Decimal) { in.SalaryAmount = v },
	ParamGrossIncome:  func(in *models.EvaluationInput, v decimal.Decimal) { in.GrossIncome = v },
}

// sweepValues lists From, From+Step, ... up to and including To.
func sweepValues(from, to, step decimal.Decimal, maxPoints int) ([]decimal.Decimal, error) {
	if !step.IsPositive() {
		return nil, fmt.Errorf("%w: step must be > 0 (got %s)", ErrInvalidSweep, step)
	}
	if to.LessThan(from) {
		return nil, fmt.Errorf("%w: to (%s) is below from (%s)", ErrInvalidSweep, to, from)
	}

	steps := to.Sub(from).Div(step).Floor()
	if steps.GreaterThanOrEqual(decimal.NewFromInt(int64(maxPoints))) {
		return nil, fmt.Errorf("%w: %s..%s by %s exceeds the %d point limit", ErrInvalidSweep, from, to, step, maxPoints)
	}

	n := int(steps.IntPart()) + 1
	values := make([]decimal.Decimal, 0, n+1)
	for i := 0; i < n; i++ {
		values = append(values, from.Add(step.Mul(decimal.NewFromInt(int64(i)))))
	}
	if last := values[len(values)-1]; last.LessThan(to) {
		if len(values) >= maxPoints {
			return nil, fmt.Errorf("%w: %s..%s by %s exceeds the %d point limit", ErrInvalidSweep, from, to, step, maxPoints)
		}
		values = append(values, to)
	}
	return values, nil
}

// Sweep evaluates req.Input once per value of the swept parameter, in parallel.
// Points come back in ascending parameter order. The first failing point aborts the sweep.
func (s *evaluationServiceImpl) Sweep(ctx context.Context, req SweepRequest) ([]models.SweepPoint, error) {
	setter, ok := parameterSetters[req.Parameter]
	if !ok {
		return nil, fmt.Errorf("%w: unknown parameter %q", ErrInvalidSweep, req.Parameter)
	}
	values, err := sweepValues(req.From, req.To, req.Step, s.limits.MaxPoints)
	if err != nil {
		return nil, err
	}

	hash, err := utils.GenerateETag(req)
	if err != nil {
		return nil, err
	}
	cacheKey := fmt.Sprintf(ckSweep, hash)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for sweep", "parameter", req.Parameter, "points", len(values))
		return models.CloneSweep(cached.([]models.SweepPoint)), nil
	}

	points := make([]models.SweepPoint, len(values))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limits.Concurrency)
	for i, v := range values {
		i, v := i, v
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			in := req.Input
			setter(&in, v)
			_, report, err := s.evaluateCached(in)
			if err != nil {
				return fmt.Errorf("%s=%s: %w", req.Parameter, v, err)
			}
			points[i] = models.SweepPoint{Parameter: req.Parameter, Value: v, Report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.FromContext(ctx).Warn("Sweep aborted", "parameter", req.Parameter, "error", err)
		return nil, err
	}

	s.reportCache.Set(cacheKey, models.CloneSweep(points), cache.DefaultExpiration)
	logger.FromContext(ctx).Info("Sweep complete", "parameter", req.Parameter, "points", len(points))
	return points, nil
}
