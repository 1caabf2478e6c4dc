package processors

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/jamtax/src/models"
)

// Structure names, in the order Evaluate lists them.
const (
	StructureSoleProprietor = "Sole Proprietor"
	StructureCompany        = "Company"
	StructureSalaryDividend = "Salary + Dividends"
)

// comparisonProcessorImpl implements the ComparisonProcessor interface.
type comparisonProcessorImpl struct {
	opts EvaluateOptions
}

// NewComparisonProcessor creates a ComparisonProcessor bound to opts.
func NewComparisonProcessor(opts EvaluateOptions) ComparisonProcessor {
	return &comparisonProcessorImpl{opts: opts}
}

func (p *comparisonProcessorImpl) Evaluate(input models.EvaluationInput) (models.ComparisonReport, error) {
	return Evaluate(input, p.opts)
}

func (p *comparisonProcessorImpl) Compare(results []models.StructureResult) (models.ComparisonReport, error) {
	return Compare(results)
}

// Compare picks the structure with the highest USD net after US tax.
// On exact ties the earlier entry wins.
func Compare(results []models.StructureResult) (models.ComparisonReport, error) {
	if len(results) == 0 {
		return models.ComparisonReport{}, ErrEmptyComparisonSet
	}

	best := 0
	for i := 1; i < len(results); i++ {
		if results[i].USDNetAfterUSTax.Value.GreaterThan(results[best].USDNetAfterUSTax.Value) {
			best = i
		}
	}

	advantage := decimal.Zero
	runnerUpFound := false
	var runnerUp decimal.Decimal
	for i, r := range results {
		if i == best {
			continue
		}
		if !runnerUpFound || r.USDNetAfterUSTax.Value.GreaterThan(runnerUp) {
			runnerUp = r.USDNetAfterUSTax.Value
			runnerUpFound = true
		}
	}
	if runnerUpFound {
		advantage = results[best].USDNetAfterUSTax.Value.Sub(runnerUp)
	}

	out := make([]models.StructureResult, len(results))
	copy(out, results)

	return models.ComparisonReport{
		Results:              out,
		RecommendedStructure: results[best].StructureName,
		RecommendedIndex:     best,
		AdvantageUSD:         models.NewUSD(advantage),
	}, nil
}

// Evaluate runs every structure for input and ranks them.
func Evaluate(input models.EvaluationInput, opts EvaluateOptions) (models.ComparisonReport, error) {
	rates := input.Rates
	if err := rates.Validate(opts.StrictRates); err != nil {
		return models.ComparisonReport{}, err
	}
	if input.GrossIncome.IsNegative() {
		return models.ComparisonReport{}, fmt.Errorf("%w: gross income %s is negative", ErrInvalidAllocation, input.GrossIncome.StringFixed(2))
	}
	mode, err := models.ParseForeignTaxCreditMode(string(input.ForeignTaxCredit))
	if err != nil {
		return models.ComparisonReport{}, err
	}

	if days := input.PhysicalPresenceDays; days != nil && (*days < 0 || *days > MaxPresenceDays) {
		return models.ComparisonReport{}, fmt.Errorf("%w: physical_presence_days %d is outside [0, %d]", ErrInvalidInput, *days, MaxPresenceDays)
	}

	feieApplied := true
	if input.PhysicalPresenceDays != nil && !IsPhysicalPresenceMet(*input.PhysicalPresenceDays) {
		feieApplied = false
		rates.FEIELimitUSD = decimal.Zero
	}

	gross := input.GrossIncome

	personalTax, _ := CalculateSoleProprietorTax(gross, rates.PersonalTaxRate)
	companyTax, dividendTax, _ := CalculateCompanyTax(gross, rates.DividendWithholdingRate, rates.CorporateTaxRate)
	hybrid, err := CalculateSalaryDividendTax(gross, input.SalaryAmount, rates.PAYEThreshold, rates.DividendWithholdingRate, rates.PersonalTaxRate)
	if err != nil {
		return models.ComparisonReport{}, err
	}

	locals := []localOutcome{
		{
			name:  StructureSoleProprietor,
			parts: []models.TaxComponent{{Name: "Personal Income Tax", Amount: models.NewJMD(personalTax)}},
		},
		{
			name: StructureCompany,
			parts: []models.TaxComponent{
				{Name: "Corporate Tax", Amount: models.NewJMD(companyTax)},
				{Name: "Dividend Withholding Tax", Amount: models.NewJMD(dividendTax)},
			},
		},
		{
			name: StructureSalaryDividend,
			parts: []models.TaxComponent{
				{Name: "PAYE Salary Tax", Amount: models.NewJMD(hybrid.SalaryTax)},
				{Name: "Dividend Withholding Tax", Amount: models.NewJMD(hybrid.DividendTax)},
			},
		},
	}

	results := make([]models.StructureResult, 0, len(locals))
	for _, lo := range locals {
		res, err := buildStructureResult(gross, lo, rates, mode)
		if err != nil {
			return models.ComparisonReport{}, err
		}
		results = append(results, res)
	}

	report, err := Compare(results)
	if err != nil {
		return models.ComparisonReport{}, err
	}
	report.FEIEApplied = feieApplied
	return report, nil
}

// localOutcome is one structure's local levies, all in JMD.
type localOutcome struct {
	name  string
	parts []models.TaxComponent
}

func buildStructureResult(gross decimal.Decimal, lo localOutcome, rates models.RateInputs, mode models.ForeignTaxCreditMode) (models.StructureResult, error) {
	grossJMD := models.NewJMD(gross)
	localTax := models.NewJMD(decimal.Zero)
	for _, p := range lo.parts {
		sum, err := localTax.Add(p.Amount)
		if err != nil {
			return models.StructureResult{}, fmt.Errorf("%s %s: %w", lo.name, p.Name, err)
		}
		localTax = sum
	}
	localNet, err := grossJMD.Sub(localTax)
	if err != nil {
		return models.StructureResult{}, fmt.Errorf("%s: %w", lo.name, err)
	}

	usdNet, err := models.ConvertToUSD(localNet, rates.USDToJMDRate)
	if err != nil {
		return models.StructureResult{}, fmt.Errorf("%w: %v", ErrInvalidRate, err)
	}

	var foreignTaxPaid decimal.Decimal
	switch mode {
	case models.CreditLocal:
		localUSD, err := models.ConvertToUSD(localTax, rates.USDToJMDRate)
		if err != nil {
			return models.StructureResult{}, fmt.Errorf("%w: %v", ErrInvalidRate, err)
		}
		foreignTaxPaid = localUSD.Value
	case models.CreditNone:
		foreignTaxPaid = decimal.Zero
	default:
		foreignTaxPaid = rates.ForeignTaxPaidUSD
	}

	us := CalculateUSTax(usdNet.Value, rates.FEIELimitUSD, rates.USMarginalRate, foreignTaxPaid)

	return models.StructureResult{
		StructureName:     lo.name,
		GrossIncome:       grossJMD,
		Components:        lo.parts,
		LocalTaxPaid:      localTax,
		LocalNetIncome:    localNet,
		USDNetBeforeUSTax: usdNet,
		TaxableIncomeUSD:  models.NewUSD(us.TaxableIncome),
		USTaxPaid:         models.NewUSD(us.USTax),
		ForeignTaxCredit:  models.NewUSD(us.CreditApplied),
		USTaxDue:          models.NewUSD(us.USTaxAfterCredit),
		USDNetAfterUSTax:  models.NewUSD(usdNet.Value.Sub(us.USTaxAfterCredit)),
	}, nil
}
