package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidRate is returned when a rate or threshold is out of range.
var ErrInvalidRate = errors.New("invalid rate")

var hundred = decimal.NewFromInt(100)

// RateInputs bundles every rate and threshold one comparison run needs.
// Percentages are expressed as 0-100. Monetary fields are in the currency named by their suffix;
// PAYEThreshold is JMD.
type RateInputs struct {
	CorporateTaxRate        decimal.Decimal `json:"corporate_tax_rate" yaml:"corporate_tax_rate"`
	DividendWithholdingRate decimal.Decimal `json:"dividend_withholding_rate" yaml:"dividend_withholding_rate"`
	PersonalTaxRate         decimal.Decimal `json:"personal_tax_rate" yaml:"personal_tax_rate"`
	USMarginalRate          decimal.Decimal `json:"us_marginal_rate" yaml:"us_marginal_rate"`
	FEIELimitUSD            decimal.Decimal `json:"feie_limit_usd" yaml:"feie_limit_usd"`
	USDToJMDRate            decimal.Decimal `json:"usd_to_jmd_rate" yaml:"usd_to_jmd_rate"`
	PAYEThreshold           decimal.Decimal `json:"paye_threshold" yaml:"paye_threshold"`
	ForeignTaxPaidUSD       decimal.Decimal `json:"foreign_tax_paid_usd" yaml:"foreign_tax_paid_usd"`
}

// Validate checks the bundle. The exchange rate must always be positive and monetary
// fields non-negative; percentage bounds are only enforced when strict is set.
func (r RateInputs) Validate(strict bool) error {
	var problems []string

	if !r.USDToJMDRate.IsPositive() {
		problems = append(problems, fmt.Sprintf("usd_to_jmd_rate must be > 0 (got %s)", r.USDToJMDRate))
	}

	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"feie_limit_usd", r.FEIELimitUSD},
		{"paye_threshold", r.PAYEThreshold},
		{"foreign_tax_paid_usd", r.ForeignTaxPaidUSD},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			problems = append(problems, fmt.Sprintf("%s must not be negative (got %s)", a.name, a.value))
		}
	}

	if strict {
		percentages := []struct {
			name  string
			value decimal.Decimal
		}{
			{"corporate_tax_rate", r.CorporateTaxRate},
			{"dividend_withholding_rate", r.DividendWithholdingRate},
			{"personal_tax_rate", r.PersonalTaxRate},
			{"us_marginal_rate", r.USMarginalRate},
		}
		for _, p := range percentages {
			if p.value.IsNegative() || p.value.GreaterThan(hundred) {
				problems = append(problems, fmt.Sprintf("%s must be within [0, 100] (got %s)", p.name, p.value))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRate, strings.Join(problems, "; "))
	}
	return nil
}

// DefaultRateInputs mirrors the figures the comparison was first run with.
func DefaultRateInputs() RateInputs {
	return RateInputs{
		CorporateTaxRate:        decimal.NewFromInt(25),
		DividendWithholdingRate: decimal.NewFromInt(15),
		PersonalTaxRate:         decimal.NewFromInt(25),
		USMarginalRate:          decimal.NewFromInt(24),
		FEIELimitUSD:            decimal.NewFromInt(120000),
		USDToJMDRate:            decimal.NewFromInt(150),
		PAYEThreshold:           decimal.NewFromInt(1500096),
		ForeignTaxPaidUSD:       decimal.Zero,
	}
}
