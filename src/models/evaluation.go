package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for evaluation inputs that are not rates but still cannot be used.
var ErrInvalidInput = errors.New("invalid input")

// ForeignTaxCreditMode selects which figure is offset against US tax.
type ForeignTaxCreditMode string

const (
	CreditFixed ForeignTaxCreditMode = "fixed" // RateInputs.ForeignTaxPaidUSD
	CreditLocal ForeignTaxCreditMode = "local" // each structure's own Jamaican tax, in USD
	CreditNone  ForeignTaxCreditMode = "none"
)

// ParseForeignTaxCreditMode treats an empty string as CreditFixed.
func ParseForeignTaxCreditMode(s string) (ForeignTaxCreditMode, error) {
	switch m := ForeignTaxCreditMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return CreditFixed, nil
	case CreditFixed, CreditLocal, CreditNone:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown foreign tax credit mode %q", ErrInvalidInput, s)
	}
}

// EvaluationInput is everything one comparison run consumes.
type EvaluationInput struct {
	Label        string          `json:"label,omitempty" yaml:"label"`
	GrossIncome  decimal.Decimal `json:"gross_income" yaml:"gross_income"`   // JMD
	SalaryAmount decimal.Decimal `json:"salary_amount" yaml:"salary_amount"` // JMD, portion paid as salary in the hybrid structure
	// PhysicalPresenceDays is the number of full days spent outside the US in the
	// qualifying 12-month window. Nil means the test is assumed met.
	PhysicalPresenceDays *int                 `json:"physical_presence_days,omitempty" yaml:"physical_presence_days"`
	ForeignTaxCredit     ForeignTaxCreditMode `json:"foreign_tax_credit,omitempty" yaml:"foreign_tax_credit"`
	Rates                RateInputs           `json:"rates" yaml:"rates"`
}

// DefaultEvaluationInput is the built-in scenario used when no scenario file is configured.
func DefaultEvaluationInput() EvaluationInput {
	rates := DefaultRateInputs()
	return EvaluationInput{
		Label:            "default",
		GrossIncome:      decimal.NewFromInt(10000000),
		SalaryAmount:     rates.PAYEThreshold,
		ForeignTaxCredit: CreditFixed,
		Rates:            rates,
	}
}

// TaxComponent is one named levy inside a structure's local tax.
type TaxComponent struct {
	Name   string `json:"name"`
	Amount Amount `json:"amount"`
}

// StructureResult is the outcome of one business structure.
// USTaxPaid is the US tax before any foreign tax credit; USTaxDue is what remains after it.
type StructureResult struct {
	StructureName     string         `json:"structure_name"`
	GrossIncome       Amount         `json:"gross_income"`
	Components        []TaxComponent `json:"components"`
	LocalTaxPaid      Amount         `json:"local_tax_paid"`
	LocalNetIncome    Amount         `json:"local_net_income"`
	USDNetBeforeUSTax Amount         `json:"usd_net_before_us_tax"`
	TaxableIncomeUSD  Amount         `json:"taxable_income_usd"`
	USTaxPaid         Amount         `json:"us_tax_paid"`
	ForeignTaxCredit  Amount         `json:"foreign_tax_credit"`
	USTaxDue          Amount         `json:"us_tax_due"`
	USDNetAfterUSTax  Amount         `json:"usd_net_after_us_tax"`
}

// ComparisonReport ranks the structures of one evaluation.
type ComparisonReport struct {
	Results              []StructureResult `json:"results"`
	RecommendedStructure string            `json:"recommended_structure"`
	RecommendedIndex     int               `json:"recommended_index"`
	// AdvantageUSD is the winner's lead over the best other structure; zero with a single result.
	AdvantageUSD Amount `json:"advantage_usd"`
	FEIEApplied  bool   `json:"feie_applied"`
}

// Recommended returns the winning entry.
func (r ComparisonReport) Recommended() StructureResult {
	return r.Results[r.RecommendedIndex]
}

// Clone returns a copy of r that shares no slices with it.
func (r ComparisonReport) Clone() ComparisonReport {
	if r.Results == nil {
		return r
	}
	out := r
	out.Results = make([]StructureResult, len(r.Results))
	for i, res := range r.Results {
		if res.Components != nil {
			res.Components = append([]TaxComponent(nil), res.Components...)
		}
		out.Results[i] = res
	}
	return out
}

// SweepPoint is one evaluation in a sensitivity sweep.
type SweepPoint struct {
	Parameter string           `json:"parameter"`
	Value     decimal.Decimal  `json:"value"`
	Report    ComparisonReport `json:"report"`
}

// CloneSweep copies points and every report they carry.
func CloneSweep(points []SweepPoint) []SweepPoint {
	if points == nil {
		return nil
	}
	out := make([]SweepPoint, len(points))
	for i, p := range points {
		p.Report = p.Report.Clone()
		out[i] = p
	}
	return out
}
