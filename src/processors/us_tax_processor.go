package processors

import "github.com/shopspring/decimal"

// PhysicalPresenceDays is the minimum number of full days abroad for the FEIE.
const PhysicalPresenceDays = 330

// MaxPresenceDays is the longest a qualifying 12-month window can be.
const MaxPresenceDays = 366

// USTaxBreakdown is the simplified US federal tax on one USD income figure.
type USTaxBreakdown struct {
	TaxableIncome    decimal.Decimal
	USTax            decimal.Decimal // before credit
	CreditApplied    decimal.Decimal
	USTaxAfterCredit decimal.Decimal
}

// IsPhysicalPresenceMet reports whether daysOutsideUS satisfies the physical-presence test.
func IsPhysicalPresenceMet(daysOutsideUS int) bool {
	return daysOutsideUS >= PhysicalPresenceDays
}

// CalculateUSTax excludes up to feieLimitUSD, taxes the rest at the flat marginal rate, then
// offsets foreignTaxPaidUSD against that tax. The exclusion and the credit are applied as
// independent reductions even though real law does not allow both on the same dollar.
// Callers that fail the physical-presence test must pass a zero feieLimitUSD.
func CalculateUSTax(incomeUSD, feieLimitUSD, usMarginalRate, foreignTaxPaidUSD decimal.Decimal) USTaxBreakdown {
	taxable := decimal.Max(decimal.Zero, incomeUSD.Sub(feieLimitUSD))
	usTax := percentOf(taxable, usMarginalRate)
	if usTax.IsNegative() {
		usTax = decimal.Zero
	}

	credit := decimal.Min(decimal.Max(decimal.Zero, foreignTaxPaidUSD), usTax)

	return USTaxBreakdown{
		TaxableIncome:    taxable,
		USTax:            usTax,
		CreditApplied:    credit,
		USTaxAfterCredit: usTax.Sub(credit),
	}
}
