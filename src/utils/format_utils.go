package utils

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/username/jamtax/src/models"
)

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// HumanizeAmount renders an amount with thousands separators, e.g. "USD 42,500.00".
// Report lines use models.Amount.String instead, which never groups digits.
func HumanizeAmount(a models.Amount) string {
	v := RoundMoney(a.Value)
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	fixed := v.StringFixed(2)
	cents := fixed[len(fixed)-3:]
	return fmt.Sprintf("%s %s%s%s", a.Currency, sign, humanize.BigComma(v.Truncate(0).BigInt()), cents)
}

// PercentOf describes part as a percentage of whole, e.g. "36.25%". Returns "n/a" when whole is zero.
func PercentOf(part, whole decimal.Decimal) string {
	if whole.IsZero() {
		return "n/a"
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// FormatReportLines renders a comparison one monetary figure per line, currency-prefixed
// with two fixed decimals, followed by the recommendation.
func FormatReportLines(report models.ComparisonReport) []string {
	var lines []string
	for _, r := range report.Results {
		lines = append(lines, fmt.Sprintf("[%s]", r.StructureName))
		for _, c := range r.Components {
			lines = append(lines, fmt.Sprintf("%s Paid: %s", c.Name, c.Amount))
		}
		lines = append(lines,
			fmt.Sprintf("Local Tax Paid: %s", r.LocalTaxPaid),
			fmt.Sprintf("Effective Local Tax Rate: %s", PercentOf(r.LocalTaxPaid.Value, r.GrossIncome.Value)),
			fmt.Sprintf("Net Income After Local Tax: %s", r.LocalNetIncome),
			fmt.Sprintf("Net Income Before US Tax (USD): %s", r.USDNetBeforeUSTax),
			fmt.Sprintf("US Tax Before Credit: %s", r.USTaxPaid),
			fmt.Sprintf("Foreign Tax Credit: %s", r.ForeignTaxCredit),
			fmt.Sprintf("Net Income After Tax (USD): %s", r.USDNetAfterUSTax),
		)
	}
	if len(report.Results) > 0 {
		lines = append(lines, fmt.Sprintf("Recommendation: operating as %s is the most tax-efficient (ahead by %s).",
			report.RecommendedStructure, report.AdvantageUSD))
	}
	if !report.FEIEApplied {
		lines = append(lines, "Note: physical presence test not met; Foreign Earned Income Exclusion not applied.")
	}
	return lines
}

// FormatReport joins FormatReportLines with newlines.
func FormatReport(report models.ComparisonReport) string {
	return strings.Join(FormatReportLines(report), "\n") + "\n"
}
