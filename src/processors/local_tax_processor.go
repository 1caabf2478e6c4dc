package processors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// percentOf returns amount × rate/100.
func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// CalculateSoleProprietorTax taxes the whole gross income at the personal rate.
// Rates are not range-checked here.
func CalculateSoleProprietorTax(grossIncome, personalTaxRate decimal.Decimal) (personalTax, netIncome decimal.Decimal) {
	personalTax = percentOf(grossIncome, personalTaxRate)
	netIncome = grossIncome.Sub(personalTax)
	return personalTax, netIncome
}

// CalculateCompanyTax levies corporate tax on gross income, then dividend withholding on
// what is left after corporate tax.
func CalculateCompanyTax(grossIncome, dividendWithholdingRate, corporateTaxRate decimal.Decimal) (companyTax, dividendTax, netIncome decimal.Decimal) {
	companyTax = percentOf(grossIncome, corporateTaxRate)
	distributable := grossIncome.Sub(companyTax)
	dividendTax = percentOf(distributable, dividendWithholdingRate)
	netIncome = grossIncome.Sub(companyTax).Sub(dividendTax)
	return companyTax, dividendTax, netIncome
}

// SalaryDividendBreakdown is the result of splitting income into salary and dividends.
type SalaryDividendBreakdown struct {
	SalaryAmount    decimal.Decimal
	SalaryTax       decimal.Decimal
	DividendPortion decimal.Decimal
	DividendTax     decimal.Decimal
	NetIncome       decimal.Decimal
}

// TotalTax is salary tax plus dividend tax.
func (b SalaryDividendBreakdown) TotalTax() decimal.Decimal {
	return b.SalaryTax.Add(b.DividendTax)
}

// CalculateSalaryDividendTax pays salaryAmount as salary and the remainder of grossIncome
// as dividends. Salary up to payeThreshold is untaxed; only the excess is taxed at the
// personal rate. Dividends bear withholding only.
func CalculateSalaryDividendTax(grossIncome, salaryAmount, payeThreshold, dividendWithholdingRate, personalTaxRate decimal.Decimal) (SalaryDividendBreakdown, error) {
	if salaryAmount.IsNegative() {
		return SalaryDividendBreakdown{}, fmt.Errorf("%w: salary %s is negative", ErrInvalidAllocation, salaryAmount.StringFixed(2))
	}
	if salaryAmount.GreaterThan(grossIncome) {
		return SalaryDividendBreakdown{}, fmt.Errorf("%w: salary %s exceeds gross income %s",
			ErrInvalidAllocation, salaryAmount.StringFixed(2), grossIncome.StringFixed(2))
	}

	taxableSalary := decimal.Max(decimal.Zero, salaryAmount.Sub(payeThreshold))
	salaryTax := percentOf(taxableSalary, personalTaxRate)

	dividendPortion := grossIncome.Sub(salaryAmount)
	dividendTax := percentOf(dividendPortion, dividendWithholdingRate)

	net := salaryAmount.Sub(salaryTax).Add(dividendPortion.Sub(dividendTax))

	return SalaryDividendBreakdown{
		SalaryAmount:    salaryAmount,
		SalaryTax:       salaryTax,
		DividendPortion: dividendPortion,
		DividendTax:     dividendTax,
		NetIncome:       net,
	}, nil
}
